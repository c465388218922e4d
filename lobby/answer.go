package lobby

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Answer is a submitted answer. An invalid answer never matches.
type Answer struct {
	Value int
	Valid bool
}

// ParseAnswer reads the submitAnswer payload, which browsers send either as a
// number or as the raw input string. Numbers are truncated toward zero;
// strings are read like parseInt: leading spaces, an optional sign, then the
// leading decimal (or 0x hex) digits.
func ParseAnswer(raw []byte) Answer {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Answer{}
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Answer{}
		}
		return parseIntPrefix(s)
	}

	var f float64
	if bytes.Equal(raw, []byte("null")) {
		return Answer{}
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return Answer{}
	}
	f = math.Trunc(f)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return Answer{}
	}
	return Answer{Value: int(f), Valid: true}
}

func parseIntPrefix(s string) Answer {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = "-"
		}
		s = s[1:]
	}

	base, isDigit := 10, func(r byte) bool { return r >= '0' && r <= '9' }
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, s = 16, s[2:]
		isDigit = func(r byte) bool {
			return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
		}
	}

	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return Answer{}
	}

	v, err := strconv.ParseInt(sign+s[:end], base, 32)
	if err != nil {
		return Answer{}
	}
	return Answer{Value: int(v), Valid: true}
}
