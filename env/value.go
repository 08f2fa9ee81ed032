// Package env reads superbus settings from environment variables.
package env

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrNotBool = errors.New("not a boolean value")

// Lookup returns the trimmed value of the variable key, and whether it holds anything but whitespace.
// Keys are matched case-insensitively, so SUPERBUS_METRICS and superbus_metrics are the same variable.
func Lookup(key string) (string, bool) {
	for _, entry := range os.Environ() {
		name, val, found := strings.Cut(entry, "=")
		if !found || !strings.EqualFold(name, key) {
			continue
		}
		if val = strings.TrimSpace(val); len(val) > 0 {
			return val, true
		}
	}
	return "", false
}

// Val returns the value of the variable key, or defaultVal if it's unset or blank.
func Val(key string, defaultVal string) string {
	if val, ok := Lookup(key); ok {
		return val
	}
	return defaultVal
}

// Parse interprets the variable key with parse.
// The defaultVal is returned without error if the variable is unset or blank.
// A value that can't be parsed is reported as an error naming the variable, along with defaultVal.
func Parse[T any](key string, defaultVal T, parse func(string) (T, error)) (T, error) {
	sval, ok := Lookup(key)
	if !ok {
		return defaultVal, nil
	}
	val, err := parse(sval)
	if err != nil {
		return defaultVal, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return val, nil
}

// Bool is [Parse] for switches like SUPERBUS_METRICS, accepting 1/0, yes/no, true/false, and on/off in any case.
func Bool(key string, defaultVal bool) (bool, error) {
	return Parse(key, defaultVal, parseBool)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off":
		return false, nil
	}
	return false, fmt.Errorf("%w: '%s'", ErrNotBool, s)
}
