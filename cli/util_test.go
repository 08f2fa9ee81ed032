package cli

import (
	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestGet(t *testing.T) {
	flags := flag.NewFlagSet("bench", flag.ContinueOnError)
	flags.Int("posts", 3, "Posts per producer")
	assert.NoError(t, flags.Parse([]string{"--posts", "5"}))
	assert.Equal(t, 5, Get(flags, (*flag.FlagSet).GetInt, "posts"))
	func() {
		defer func() {
			assert.Contains(t, recover(), "cli: reading flag 'posts' of command 'bench'", "Wrong flag type should panic with the flag name")
		}()
		Get(flags, (*flag.FlagSet).GetString, "posts")
	}()
	assert.Panics(t, func() {
		Get(flags, (*flag.FlagSet).GetBool, "missing")
	}, "Undefined flag should panic")
}
