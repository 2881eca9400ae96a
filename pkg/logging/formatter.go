/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Custom log formatter. Compact single-line output with coloured levels, a
fuzzing prefix derived from the message, and sorted structured fields.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

var (
	timestampColor = newColor(color.FgCyan)
	callerColor    = newColor(color.FgYellow)
	prefixColor    = newColor(color.FgMagenta, color.Bold)
	keyColor       = newColor(color.FgBlue)
	valueColor     = newColor(color.FgGreen)

	levelColors = map[logrus.Level]*color.Color{
		logrus.TraceLevel: newColor(color.FgWhite),
		logrus.DebugLevel: newColor(color.FgWhite),
		logrus.InfoLevel:  newColor(color.FgGreen),
		logrus.WarnLevel:  newColor(color.FgYellow),
		logrus.ErrorLevel: newColor(color.FgRed),
		logrus.FatalLevel: newColor(color.FgMagenta),
		logrus.PanicLevel: newColor(color.FgMagenta),
	}
)

// CustomFormatter renders entries as
// "<time> LEVEL [PREFIX] [file:line] message key=value ..."
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
}

// Format implements logrus.Formatter
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	if f.Timestamp {
		b.WriteString(f.paint(timestampColor, entry.Time.Format("2006-01-02 15:04:05.000")))
		b.WriteByte(' ')
	}

	level := strings.ToUpper(entry.Level.String())
	b.WriteString(f.paint(levelColors[entry.Level], level))
	b.WriteByte(' ')

	if prefix := messagePrefix(entry.Message); prefix != "" {
		b.WriteString(f.paint(prefixColor, "["+prefix+"]"))
		b.WriteByte(' ')
	}

	if f.Caller && entry.HasCaller() {
		b.WriteString(f.paint(callerColor, fmt.Sprintf("[%s:%d]", entry.Caller.File, entry.Caller.Line)))
		b.WriteByte(' ')
	}

	b.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		b.WriteByte(' ')
		b.WriteString(f.formatFields(entry.Data))
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func (f *CustomFormatter) paint(c *color.Color, s string) string {
	if !f.Colors || c == nil {
		return s
	}
	return c.Sprint(s)
}

// newColor ignores color.NoColor: whether to colour is decided by CustomFormatter.Colors.
func newColor(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

func messagePrefix(message string) string {
	switch {
	case strings.Contains(message, "Crash detected"):
		return "CRASH"
	case strings.Contains(message, "Harness hung"):
		return "HANG"
	case strings.Contains(message, "Finding"):
		return "FINDING"
	case strings.Contains(message, "Input executed"):
		return "EXEC"
	case strings.Contains(message, "Statistics update"):
		return "STATS"
	case strings.Contains(message, "Engine"):
		return "ENGINE"
	default:
		return ""
	}
}

func (f *CustomFormatter) formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, f.paint(keyColor, k)+"="+f.paint(valueColor, formatValue(fields[k])))
	}
	return strings.Join(parts, " ")
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format("15:04:05.000")
	case float64:
		return fmt.Sprintf("%.2f", v)
	case string:
		return truncate(v, 50)
	case []byte:
		if len(v) > 20 {
			return fmt.Sprintf("[%d bytes]", len(v))
		}
		return fmt.Sprintf("%x", v)
	case error:
		return v.Error()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// truncate cuts s to at most limit runes so multi-byte characters stay whole
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
