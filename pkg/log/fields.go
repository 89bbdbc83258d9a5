package log

import "time"

const errorFieldKey = "error"

// Field is a single structured key/value attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// Component tags entries with the emitting component's name.
func Component(name string) Field { return Field{Key: "component", Value: name} }

// String builds a string-valued field.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int builds an int-valued field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Int64 builds an int64-valued field.
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

// Bool builds a bool-valued field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Duration builds a duration field rendered in its string form.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Time builds a field carrying an RFC3339 timestamp.
func Time(key string, value time.Time) Field {
	return Field{Key: key, Value: value.Format(time.RFC3339Nano)}
}

// Err attaches an error to the entry's Error slot.
func Err(err error) Field { return Field{Key: errorFieldKey, Value: err} }

// Any builds a field with an arbitrary value.
func Any(key string, value interface{}) Field { return Field{Key: key, Value: value} }
