package output

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// MarshalReport encodes a report as indented JSON. Struct fields keep their
// declaration order and map keys are sorted, so equal reports encode to equal
// bytes. Names such as Task<T> are written without HTML escaping.
func MarshalReport(v interface{}, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Items returns s, or an empty slice when s is nil, so report lists encode
// as [] rather than null.
func Items[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Seconds formats a pass duration in seconds, rounded to the millisecond and
// without trailing zeros.
func Seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Round(time.Millisecond).Seconds(), 'f', -1, 64)
}
