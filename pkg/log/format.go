package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Formatter renders a log entry into bytes.
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// TextFormatter renders entries as a human-readable line:
//
//	2026-08-25T10:12:03.004Z WARN persist failed component=tracking pending=12 error="disk full"
type TextFormatter struct{}

// Format implements Formatter.
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(entry.Timestamp.UTC().Format(time.RFC3339Nano))
	buf.WriteByte(' ')
	buf.WriteString(entry.Level.String())
	buf.WriteByte(' ')
	buf.WriteString(entry.Message)

	for _, key := range sortedKeys(entry.Fields) {
		fmt.Fprintf(&buf, " %s=%v", key, entry.Fields[key])
	}
	if entry.Error != nil {
		fmt.Fprintf(&buf, " error=%q", entry.Error.Error())
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// JSONFormatter renders entries as a single JSON object per line with the
// structured fields flattened into the object.
type JSONFormatter struct{}

// Format implements Formatter.
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	payload := make(map[string]interface{}, len(entry.Fields)+4)
	for k, v := range entry.Fields {
		payload[k] = v
	}
	payload["ts"] = entry.Timestamp.UTC().Format(time.RFC3339Nano)
	payload["level"] = entry.Level.String()
	payload["msg"] = entry.Message
	if entry.Error != nil {
		payload["error"] = entry.Error.Error()
	}

	out, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func sortedKeys(fields Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
