package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToInt64 converts numbers and numeric strings to int64. Strings may be
// decimal or 0x-prefixed hexadecimal. The bool result is false when val is
// empty or cannot be read as a non-negative integer.
func ToInt64(val any) (int64, bool) {
	switch v := val.(type) {
	case nil:
		return 0, false
	case int:
		return int64(v), v >= 0
	case int64:
		return v, v >= 0
	case int32:
		return int64(v), v >= 0
	case uint:
		return int64(v), v <= math.MaxInt64
	case uint64:
		return int64(v), v <= math.MaxInt64
	case uint32:
		return int64(v), true
	case float64:
		return int64(v), v >= 0 && v == math.Trunc(v) && v <= math.MaxInt64
	case json.Number:
		return ToInt64(string(v))
	case []byte:
		return ToInt64(string(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" || s == "-" {
			return 0, false
		}
		base := 10
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			s, base = s[2:], 16
		}
		n, err := strconv.ParseInt(s, base, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	default:
		return ToInt64(fmt.Sprintf("%v", v))
	}
}

// ToString converts various types to string. nil becomes "".
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
