package logrusreporter

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/philipp01105/rlog/core"
	"github.com/philipp01105/rlog/logger"
)

// Reporter writes log objects through a *logrus.Logger. Entries are
// emitted with Entry.Log, which never exits or panics at FatalLevel.
type Reporter struct {
	logger.BaseReporter

	ll      *logrus.Logger
	argsKey string
}

// New wraps ll. A nil logger is replaced by logrus.New.
func New(ll *logrus.Logger) *Reporter {
	if ll == nil {
		ll = logrus.New()
	}
	return &Reporter{ll: ll, argsKey: "args"}
}

// Config builds a logrus logger for NewWithConfig.
type Config struct {
	// Writer receives encoded output (default: os.Stdout)
	Writer io.Writer
	// Text selects logrus.TextFormatter instead of JSON
	Text bool
	// ArgsFieldName is the key of plain event arguments (default "args")
	ArgsFieldName string
}

// NewWithConfig builds a logrus logger from cfg and wraps it.
func NewWithConfig(cfg Config) *Reporter {
	ll := logrus.New()
	ll.SetOutput(os.Stdout)
	if cfg.Writer != nil {
		ll.SetOutput(cfg.Writer)
	}
	if cfg.Text {
		ll.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	} else {
		ll.SetFormatter(&logrus.JSONFormatter{})
	}
	ll.SetLevel(logrus.TraceLevel)

	r := New(ll)
	if cfg.ArgsFieldName != "" {
		r.argsKey = cfg.ArgsFieldName
	}
	return r
}

// Logrus returns the wrapped logger.
func (r *Reporter) Logrus() *logrus.Logger {
	return r.ll
}

// Write emits obj as one logrus entry.
func (r *Reporter) Write(obj *core.LogObject) error {
	lvl := ToLogrusLevel(obj.Level())
	if !r.ll.IsLevelEnabled(lvl) {
		return nil
	}

	fields := make(logrus.Fields, obj.NumFields()+2)
	obj.EachField(func(f core.Field) {
		fields[f.Key] = f.Value()
	})

	if obj.NumArgs() > 0 {
		args := make([]any, 0, obj.NumArgs())
		obj.EachArg(func(_ int, a any) {
			if err, ok := a.(error); ok {
				a = err.Error()
			}
			args = append(args, a)
		})
		fields[r.argsKey] = args
	}

	if c := obj.Caller(); c.Defined {
		fields["caller"] = c.ShortFile + ":" + strconv.Itoa(c.Line)
	}

	r.ll.WithTime(obj.Time()).WithFields(fields).Log(lvl, obj.Message())
	return nil
}

// ToLogrusLevel maps a level to logrus.
func ToLogrusLevel(l core.Level) logrus.Level {
	switch l {
	case core.TraceLevel:
		return logrus.TraceLevel
	case core.DebugLevel:
		return logrus.DebugLevel
	case core.InfoLevel:
		return logrus.InfoLevel
	case core.WarnLevel:
		return logrus.WarnLevel
	case core.ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.FatalLevel
	}
}
