package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Flag is a status flag the API sends as a bool, a number or null.
// Numbers keep their value so sentinels like poll_is_closed == 1 can be
// told apart from other non-zero values.
type Flag float64

// UnmarshalJSON accepts true/false, numbers, numeric strings and null
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*f = 0
		return nil
	case bytes.Equal(data, []byte("true")):
		*f = 1
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = parseFlagString(s)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		// objects and arrays count as set when non-empty
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = 0
		switch val := v.(type) {
		case map[string]any:
			if len(val) > 0 {
				*f = 1
			}
		case []any:
			if len(val) > 0 {
				*f = 1
			}
		}
		return nil
	}

	*f = Flag(n)
	return nil
}

// IsSet reports whether the flag is truthy
func (f Flag) IsSet() bool {
	return f != 0
}

func parseFlagString(s string) Flag {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return Flag(n)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		if b {
			return 1
		}
		return 0
	}
	if s == "" {
		return 0
	}
	return 1
}
