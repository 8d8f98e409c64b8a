package core

import (
	"encoding/json"
	"fmt"
)

// DecodeEnum reads either a symbolic string (the preferred, forward-
// compatible wire form) or a legacy integer ordinal into one of names.
// Every enum type in this module was originally a plain int; on-disk
// documents written before the symbolic-name format must keep decoding,
// so each enum's UnmarshalJSON routes through this with its own
// declaration-ordered name list.
func DecodeEnum(data []byte, names []string) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n < 0 || n >= len(names) {
			return "", fmt.Errorf("legacy enum ordinal %d out of range", n)
		}
		return names[n], nil
	}
	return "", fmt.Errorf("enum value is neither a string nor an integer: %s", string(data))
}
