package env

import (
	"github.com/stretchr/testify/assert"
	"log/slog"
	"testing"
)

func TestVal(t *testing.T) {
	const key = "TEST_VAL"

	tests := []struct {
		name     string
		value    string
		expected string
		unset    bool
	}{
		{
			name:     "Unset",
			unset:    true,
			expected: "default",
		},
		{
			name:     "Empty",
			value:    "",
			expected: "default",
		},
		{
			name:     "Blank",
			value:    " \t",
			expected: "default",
		},
		{
			name:     "Trimmed",
			value:    "\n\t abc \t\n",
			expected: "abc",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.unset {
				t.Setenv(key, tc.value)
			}
			assert.Equal(t, tc.expected, Val(key, "default"))
		})
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	t.Setenv("superbus_test_lookup", "json")
	val, ok := Lookup("SUPERBUS_TEST_LOOKUP")
	assert.True(t, ok)
	assert.Equal(t, "json", val)

	_, ok = Lookup("SUPERBUS_TEST_LOOKUP_MISSING")
	assert.False(t, ok)
}

func TestBool(t *testing.T) {
	const key = "TEST_BOOL"
	tests := []struct {
		name     string
		unset    bool
		value    string
		expected bool
		invalid  bool
	}{
		{
			name:     "Unset",
			unset:    true,
			expected: true,
		},
		{
			name:     "Empty",
			value:    "",
			expected: true,
		},
		{
			name:     "Not a bool",
			value:    "blah",
			expected: true,
			invalid:  true,
		},
		{
			name:     "Truthy",
			value:    "yes",
			expected: true,
		},
		{
			name:     "Falsy",
			value:    "0",
			expected: false,
		},
		{
			name:     "Falsy Uppercase",
			value:    "OFF",
			expected: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.unset {
				t.Setenv(key, tc.value)
			}
			val, err := Bool(key, true)
			assert.Equal(t, tc.expected, val)
			if tc.invalid {
				assert.ErrorIs(t, err, ErrNotBool)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	const key = "TEST_PARSE"
	parseLevel := func(s string) (slog.Level, error) {
		var level slog.Level
		err := level.UnmarshalText([]byte(s))
		return level, err
	}

	t.Setenv(key, "")
	level, err := Parse(key, slog.LevelWarn, parseLevel)
	assert.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	t.Setenv(key, " debug ")
	level, err = Parse(key, slog.LevelWarn, parseLevel)
	assert.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	t.Setenv(key, "loud")
	level, err = Parse(key, slog.LevelWarn, parseLevel)
	assert.ErrorContains(t, err, "invalid value for "+key)
	assert.Equal(t, slog.LevelWarn, level)
}
