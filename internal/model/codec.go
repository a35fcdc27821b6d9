package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const maxEchoedValue = 64

var errNullPayload = errors.New("payload is null, want a JSON object")

// dateLayouts are tried in order. The offset-less form is read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
}

// EncodeRegistration returns the JSON wire encoding of r with all fields present.
// Strings must be valid UTF-8 since json.Marshal would substitute U+FFFD, and
// Date must fall in years 0 to 9999.
func EncodeRegistration(r Registration) ([]byte, error) {
	strs := []struct {
		key string
		val string
	}{
		{"Type", r.Type},
		{"CustomerId", r.CustomerId},
		{"CustomerName", r.CustomerName},
		{"Passport", r.Passport},
		{"Address", r.Address},
		{"Culture", r.Culture},
		{"PhoneNumber", r.PhoneNumber},
	}
	for _, f := range strs {
		if !utf8.ValidString(f.val) {
			return nil, fmt.Errorf("encode registration: field %q is not valid UTF-8", f.key)
		}
	}
	return json.Marshal(r)
}

// DecodeRegistration parses a JSON wire encoding. Every failure, including
// invalid JSON, is reported as *MalformedInputError.
func DecodeRegistration(data []byte) (Registration, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return Registration{}, &MalformedInputError{Err: errNullPayload}
	}
	var r Registration
	if err := json.Unmarshal(data, &r); err != nil {
		var mie *MalformedInputError
		if errors.As(err, &mie) {
			return Registration{}, mie
		}
		return Registration{}, &MalformedInputError{Err: err}
	}
	return r, nil
}

// UnmarshalJSON decodes the wire keys by exact name. Unknown keys are ignored;
// missing keys and null values leave the field zero. r is only written when
// every field decodes.
func (r *Registration) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &MalformedInputError{Err: err}
	}

	var (
		out Registration
		err error
	)
	ints := []struct {
		key string
		dst *int
	}{
		{"Id", &out.Id},
		{"Amount", &out.Amount},
		{"Total", &out.Total},
	}
	for _, f := range ints {
		if *f.dst, err = decodeInt(f.key, raw[f.key]); err != nil {
			return err
		}
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"Type", &out.Type},
		{"CustomerId", &out.CustomerId},
		{"CustomerName", &out.CustomerName},
		{"Passport", &out.Passport},
		{"Address", &out.Address},
		{"Culture", &out.Culture},
		{"PhoneNumber", &out.PhoneNumber},
	}
	for _, f := range strs {
		if *f.dst, err = decodeString(f.key, raw[f.key]); err != nil {
			return err
		}
	}

	if out.Date, err = decodeTime("Date", raw["Date"]); err != nil {
		return err
	}

	*r = out
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func malformed(field string, raw json.RawMessage, err error) *MalformedInputError {
	v := string(raw)
	if len(v) > maxEchoedValue {
		v = v[:maxEchoedValue] + "..."
	}
	return &MalformedInputError{Field: field, Value: v, Err: err}
}

// decodeInt accepts integral JSON numbers and strings holding a base-10 integer.
func decodeInt(field string, raw json.RawMessage) (int, error) {
	if isNull(raw) {
		return 0, nil
	}

	text := string(raw)
	quoted := raw[0] == '"'
	if quoted {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, malformed(field, raw, err)
		}
		text = strings.TrimSpace(text)
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		if n < math.MinInt || n > math.MaxInt {
			return 0, malformed(field, raw, fmt.Errorf("integer out of range"))
		}
		return int(n), nil
	}
	if quoted {
		return 0, malformed(field, raw, fmt.Errorf("not a decimal integer"))
	}

	// Only JSON number syntax reaches here (1e3, 100.0).
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, malformed(field, raw, fmt.Errorf("not an integer"))
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, malformed(field, raw, fmt.Errorf("not an integer"))
	}
	return int(f), nil
}

func decodeString(field string, raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", malformed(field, raw, fmt.Errorf("not a string"))
	}
	return s, nil
}

func decodeTime(field string, raw json.RawMessage) (time.Time, error) {
	if isNull(raw) {
		return time.Time{}, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, malformed(field, raw, fmt.Errorf("not a date-time string"))
	}
	var perr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if perr == nil {
			perr = err
		}
	}
	return time.Time{}, malformed(field, raw, perr)
}
