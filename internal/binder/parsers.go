package binder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Parser converts the raw string of a flag into a typed value.
type Parser[V any] func(raw string) (V, error)

// ParseString returns the raw value unchanged.
func ParseString(raw string) (string, error) {
	return raw, nil
}

// ParseBool accepts the forms understood by strconv.ParseBool.
func ParseBool(raw string) (bool, error) {
	return cast.ToBoolE(strings.TrimSpace(raw))
}

// ParseInt reads a base 10 integer; leading zeros are ignored.
func ParseInt(raw string) (int, error) {
	digits, err := decimal(raw)
	if err != nil {
		return 0, err
	}
	return cast.ToIntE(digits)
}

// ParseInt64 reads a base 10 64-bit integer.
func ParseInt64(raw string) (int64, error) {
	digits, err := decimal(raw)
	if err != nil {
		return 0, err
	}
	return cast.ToInt64E(digits)
}

// ParseUint reads a non-negative base 10 integer.
func ParseUint(raw string) (uint, error) {
	digits, err := decimal(raw)
	if err != nil {
		return 0, err
	}
	return cast.ToUintE(digits)
}

// decimal validates raw as an optionally signed run of decimal digits and
// strips its leading zeros, so cast never sees a base prefix.
func decimal(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	if s == "" {
		return "", fmt.Errorf("invalid decimal number %q", raw)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid decimal number %q", raw)
		}
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0", nil
	}
	return sign + s, nil
}

// ParseFloat accepts decimal and exponent notation.
func ParseFloat(raw string) (float64, error) {
	return cast.ToFloat64E(strings.TrimSpace(raw))
}

// ParseDuration accepts Go duration strings ("1m30s"); a bare number is
// taken as nanoseconds.
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("empty duration")
	}
	return cast.ToDurationE(raw)
}

// ParsePath expands a leading "~/" and environment references, then cleans
// the result. It does not require the path to exist.
func ParsePath(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty path")
	}
	if strings.HasPrefix(raw, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		raw = filepath.Join(home, raw[2:])
	}
	return filepath.Clean(os.ExpandEnv(raw)), nil
}
