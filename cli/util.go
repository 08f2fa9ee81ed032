package cli

import (
	"fmt"
	flag "github.com/spf13/pflag"
)

// Get reads the flag called name with one of the typed [flag.FlagSet] getters, like (*flag.FlagSet).GetInt.
// Flags are declared by the same code that reads them, so a missing or mistyped flag is a bug and Get panics.
func Get[T any](flags *flag.FlagSet, get func(*flag.FlagSet, string) (T, error), name string) T {
	val, err := get(flags, name)
	if err != nil {
		panic(fmt.Sprintf("cli: reading flag '%s' of command '%s': %v", name, flags.Name(), err))
	}
	return val
}
