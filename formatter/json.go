package formatter

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/philipp01105/rlog/core"
)

// JSONFormatter renders log objects as one JSON document per line
type JSONFormatter struct {
	Config
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(cfg Config) *JSONFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339Nano
	}
	return &JSONFormatter{Config: cfg}
}

// Format renders obj as JSON
func (f *JSONFormatter) Format(obj *core.LogObject) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.formatJSONToBuffer(obj, buf)

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo renders obj as JSON and writes it directly to the writer
func (f *JSONFormatter) FormatTo(obj *core.LogObject, w io.Writer) error {
	buf := getBuffer()

	f.formatJSONToBuffer(obj, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// FormatObject renders obj as JSON into buf (implements BufferFormatter).
func (f *JSONFormatter) FormatObject(obj *core.LogObject, buf *bytes.Buffer) {
	f.formatJSONToBuffer(obj, buf)
}

// formatJSONToBuffer builds JSON manually into the buffer
func (f *JSONFormatter) formatJSONToBuffer(obj *core.LogObject, buf *bytes.Buffer) {
	buf.WriteString(`{"time":"`)
	buf.Write(obj.Time().AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
	buf.WriteByte('"')

	buf.WriteString(`,"level":"`)
	buf.WriteString(obj.Level().CapitalString())
	buf.WriteByte('"')

	if !f.OmitType {
		buf.WriteString(`,"type":"`)
		buf.WriteString(obj.Type().String())
		buf.WriteByte('"')
	}

	buf.WriteString(`,"message":"`)
	appendJSONString(buf, obj.Message())
	buf.WriteByte('"')

	if c := obj.Caller(); f.IncludeCaller && c.Defined {
		buf.WriteString(`,"caller":{"file":"`)
		appendJSONString(buf, c.ShortFile)
		buf.WriteString(`","line":`)
		buf.WriteString(strconv.Itoa(c.Line))
		if c.Function != "" {
			buf.WriteString(`,"function":"`)
			appendJSONString(buf, c.Function)
			buf.WriteByte('"')
		}
		buf.WriteByte('}')
	}

	if obj.NumArgs() > 0 {
		buf.WriteString(`,"args":[`)
		obj.EachArg(func(i int, a any) {
			if i > 0 {
				buf.WriteByte(',')
			}
			appendJSONArg(buf, a)
		})
		buf.WriteByte(']')
	}

	obj.EachField(func(field core.Field) {
		buf.WriteString(`,"`)
		appendJSONString(buf, field.Key)
		buf.WriteString(`":`)
		appendJSONFieldValue(buf, field)
	})

	buf.WriteString("}\n")
}

// appendJSONString writes a JSON-escaped string (without surrounding quotes) to the buffer
func appendJSONString(buf *bytes.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		if start < i {
			buf.WriteString(s[start:i])
		}
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexChars[c>>4])
			buf.WriteByte(hexChars[c&0x0f])
		}
		start = i + 1
	}
	if start < len(s) {
		buf.WriteString(s[start:])
	}
}

var hexChars = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}

// appendJSONArg writes a plain argument. Numbers and booleans keep their
// JSON type; everything else is rendered with fmt and quoted.
func appendJSONArg(buf *bytes.Buffer, a any) {
	switch v := a.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.Write(strconv.AppendBool(buf.AvailableBuffer(), v))
	case int:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(v), 10))
	case int64:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), v, 10))
	case float64:
		appendJSONFloat(buf, v)
	case string:
		buf.WriteByte('"')
		appendJSONString(buf, v)
		buf.WriteByte('"')
	default:
		buf.WriteByte('"')
		appendJSONString(buf, fmt.Sprint(v))
		buf.WriteByte('"')
	}
}

// appendJSONFloat writes f as a JSON number. NaN and infinities have no
// JSON number form and are written as the strings "NaN", "+Inf" and "-Inf".
func appendJSONFloat(buf *bytes.Buffer, f float64) {
	switch {
	case math.IsNaN(f):
		buf.WriteString(`"NaN"`)
	case math.IsInf(f, 1):
		buf.WriteString(`"+Inf"`)
	case math.IsInf(f, -1):
		buf.WriteString(`"-Inf"`)
	default:
		buf.Write(strconv.AppendFloat(buf.AvailableBuffer(), f, 'f', -1, 64))
	}
}

// appendJSONFieldValue writes a JSON-encoded field value to the buffer
func appendJSONFieldValue(buf *bytes.Buffer, field core.Field) {
	switch field.Type {
	case core.StringType, core.ErrorType:
		buf.WriteByte('"')
		appendJSONString(buf, field.Str)
		buf.WriteByte('"')
	case core.IntType, core.Int64Type:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), field.Int64, 10))
	case core.Uint64Type:
		buf.Write(strconv.AppendUint(buf.AvailableBuffer(), uint64(field.Int64), 10))
	case core.Float64Type:
		appendJSONFloat(buf, field.Float64)
	case core.BoolType:
		buf.Write(strconv.AppendBool(buf.AvailableBuffer(), field.Int64 == 1))
	case core.TimeType:
		buf.WriteByte('"')
		buf.Write(time.Unix(0, field.Int64).AppendFormat(buf.AvailableBuffer(), time.RFC3339Nano))
		buf.WriteByte('"')
	case core.DurationType:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), field.Int64, 10))
	default:
		buf.WriteByte('"')
		appendJSONString(buf, field.StringValue())
		buf.WriteByte('"')
	}
}
