package logger

import (
	"testing"

	"github.com/philipp01105/rlog/core"
)

var discard = ReporterFunc(func(*core.LogObject) error { return nil })

// BenchmarkInfoNoArgs benchmarks Info() with a single no-op reporter.
func BenchmarkInfoNoArgs(b *testing.B) {
	log := NewBuilder().WithReporter(discard).MustBuild()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		log.Info("test message")
	}
}

// BenchmarkInfowWith2Fields benchmarks a structured call with 2 fields.
func BenchmarkInfowWith2Fields(b *testing.B) {
	log := NewBuilder().WithReporter(discard).MustBuild()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		log.Infow("test message", String("key1", "value1"), String("key2", "value2"))
	}
}

// BenchmarkFilteredDebug benchmarks Debug() when level is Info.
// Filtered calls must not allocate.
func BenchmarkFilteredDebug(b *testing.B) {
	log := NewBuilder().WithReporter(discard).MustBuild()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		log.Debugw("debug message", String("key", "value"))
	}
}

// BenchmarkFanOut8 benchmarks one event dispatched to 8 reporters.
func BenchmarkFanOut8(b *testing.B) {
	builder := NewBuilder()
	for i := 0; i < 8; i++ {
		builder.WithReporter(discard)
	}
	log := builder.MustBuild()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		log.Warn("fan out")
	}
}

func BenchmarkParallelInfo(b *testing.B) {
	log := NewBuilder().WithReporter(discard).WithCoarseClock().MustBuild()

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			log.Info("parallel message")
		}
	})
}
