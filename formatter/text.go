package formatter

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/philipp01105/rlog/core"
)

// TextFormatter renders log objects as human-readable lines
type TextFormatter struct {
	Config
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(cfg Config) *TextFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339
	}
	return &TextFormatter{Config: cfg}
}

// Format renders obj as text
func (f *TextFormatter) Format(obj *core.LogObject) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.formatToBuffer(obj, buf)

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo renders obj and writes it directly to the writer
func (f *TextFormatter) FormatTo(obj *core.LogObject, w io.Writer) error {
	buf := getBuffer()

	f.formatToBuffer(obj, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// FormatObject renders obj into buf (implements BufferFormatter).
func (f *TextFormatter) FormatObject(obj *core.LogObject, buf *bytes.Buffer) {
	f.formatToBuffer(obj, buf)
}

// pre-formatted level strings to avoid multiple WriteString calls
var levelBrackets = [core.NumLevels]string{
	core.SilentLevel: " [SILENT] ",
	core.FatalLevel:  " [FATAL] ",
	core.ErrorLevel:  " [ERROR] ",
	core.WarnLevel:   " [WARN] ",
	core.InfoLevel:   " [INFO] ",
	core.DebugLevel:  " [DEBUG] ",
	core.TraceLevel:  " [TRACE] ",
}

func (f *TextFormatter) formatToBuffer(obj *core.LogObject, buf *bytes.Buffer) {
	buf.Write(obj.Time().AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))

	if level := obj.Level(); level.Valid() {
		buf.WriteString(levelBrackets[level])
	} else {
		buf.WriteString(" [UNKNOWN] ")
	}

	if c := obj.Caller(); f.IncludeCaller && c.Defined {
		buf.WriteByte('[')
		buf.WriteString(c.ShortFile)
		buf.WriteByte(':')
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(c.Line), 10))
		buf.WriteString("] ")
	}

	buf.WriteString(obj.Message())

	obj.EachArg(func(i int, a any) {
		if i > 0 || obj.Message() != "" {
			buf.WriteByte(' ')
		}
		writeArg(buf, a)
	})

	obj.EachField(func(field core.Field) {
		buf.WriteByte(' ')
		buf.WriteString(field.Key)
		buf.WriteByte('=')
		buf.WriteString(field.StringValue())
	})

	buf.WriteByte('\n')
}

func writeArg(buf *bytes.Buffer, a any) {
	switch v := a.(type) {
	case string:
		buf.WriteString(v)
	case int:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(v), 10))
	case error:
		buf.WriteString(v.Error())
	default:
		fmt.Fprint(buf, v)
	}
}
