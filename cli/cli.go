package cli

import (
	"context"
	"errors"
	"fmt"
	flag "github.com/spf13/pflag"
	"regexp"
	"slices"
	"strings"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	HelpPatterns      = []string{"--help", "-h"} // HelpPatterns is a slice of flags that should trigger the output of usage information with the top-level [CommandSet].

	keyCleansePattern = regexp.MustCompile(`\s`)
)

// CommandFunc is a function that may be executed within a [Command].
// The context is the one passed to [CommandSet.Exec], and is usually cancelled on interrupt.
type CommandFunc = func(ctx context.Context, flags *flag.FlagSet, printer *Printer) error

// Command is an executable function in a CLI.
// It should be linked to a [CommandSet] to establish a tree of commands available to the user.
type Command struct {
	CommandSet
	flags      *flag.FlagSet
	exec       CommandFunc
	key        string
	shortUsage string
	usage      string
	aliases    []string
}

func cleanseKey(key string) string {
	return keyCleansePattern.ReplaceAllString(strings.ToLower(key), "")
}

func newCommand(key, parent, shortUsage string, printer *Printer) *Command {
	key = cleanseKey(key)
	fs := flag.NewFlagSet(key, flag.ContinueOnError)
	fs.BoolP("help", "h", false, "Prints this usage information")
	fs.SetInterspersed(false)
	fs.SetOutput(printer)
	cmd := &Command{
		CommandSet: CommandSet{printer: printer, parent: strings.TrimSpace(parent + " " + key)},
		flags:      fs,
		key:        key,
		shortUsage: shortUsage,
	}
	fs.Usage = cmd.printUsage
	cmd.exec = func(context.Context, *flag.FlagSet, *Printer) error {
		cmd.printUsage()
		return nil
	}
	return cmd
}

// Does specifies the [CommandFunc] that should be executed by this [Command].
func (c *Command) Does(commandFunc CommandFunc) *Command {
	if commandFunc == nil {
		return c
	}
	c.exec = commandFunc
	return c
}

// CommandPath returns the reference chain for this [Command].
func (c *Command) CommandPath() string {
	return c.CommandSet.parent
}

// Flags returns the [flag.FlagSet] for this [Command].
func (c *Command) Flags() *flag.FlagSet {
	return c.flags
}

// Usage allows specifying a longer description of the [Command] that will be output when a [HelpPatterns] flag is passed.
// The parent command chain is prepended to it.
//
// The short description, flag usages, and sub-command usages will be appended to this description.
func (c *Command) Usage(format string, args ...any) *Command {
	c.usage = fmt.Sprintf(format, args...)
	return c
}

func (c *Command) printUsage() {
	var buf strings.Builder
	if len(c.usage) == 0 {
		buf.WriteString("\n" + c.shortUsage)
	} else {
		text := strings.TrimSpace(strings.TrimSuffix(c.CommandSet.parent, c.key)) + " " + c.usage
		buf.WriteString(fmt.Sprintf("%s\n\nUSAGE:\n%s\n", c.shortUsage, strings.TrimSpace(text)))
	}
	buf.WriteString("\nFLAGS\n")
	buf.WriteString(c.flags.FlagUsages())
	if len(c.CommandSet.commands) > 0 {
		buf.WriteString("\nCOMMANDS\n")
		buf.WriteString(c.CommandUsages())
	}
	c.printer.Print(buf.String())
}

// Exec executes the command with given arguments, parsing flags.
// If the first argument names a sub-command, then that is executed instead.
func (c *Command) Exec(ctx context.Context, args []string) error {
	err := c.CommandSet.Exec(ctx, args)
	if err == nil || !errors.Is(err, ErrUnknownCommand) {
		return err
	}
	if err := c.flags.Parse(args); err != nil {
		return err
	}
	if val, _ := c.flags.GetBool("help"); val {
		c.printUsage()
		return nil
	}
	if err := c.CommandSet.runPreExec(ctx); err != nil {
		return withCommand(err, c.CommandPath())
	}
	return withCommand(c.exec(ctx, c.flags, c.printer), c.CommandPath())
}

// CommandSet is a group of [Command].
type CommandSet struct {
	commands map[string]*Command
	aliases  map[string]*Command
	printer  *Printer
	parent   string
	up       *CommandSet
	preExec  []PreExec
}

// NewCommandSet is used to set up a top level [CommandSet] as the root of a CLI's command structure.
//
// Note: the parent(s) passed to this function will be used to populate sub-command usage information.
// So they should only contain the commands used to invoke this [CommandSet].
func NewCommandSet(parent ...string) *CommandSet {
	return &CommandSet{printer: NewPrinter(), parent: strings.Join(parent, " ")}
}

// Parent retrieves the command chain used to invoke this [CommandSet].
func (s *CommandSet) Parent() string {
	return s.parent
}

// AddCommand adds a sub-command to this [CommandSet].
// The key parameter will be cleansed to remove spaces, and normalize to lower-case.
// Aliases may be added as a way to support shorter variants of the same [Command].
func (s *CommandSet) AddCommand(key, shortUsage string, aliases ...string) *Command {
	cmd := newCommand(key, s.parent, shortUsage, s.Printer())
	cmd.up = s
	if s.commands == nil {
		s.commands = map[string]*Command{}
	}
	s.commands[cmd.key] = cmd
	for _, alias := range aliases {
		alias = cleanseKey(alias)
		if len(alias) == 0 {
			continue
		}
		if s.aliases == nil {
			s.aliases = map[string]*Command{}
		}
		s.aliases[alias] = cmd
		cmd.aliases = append(cmd.aliases, alias)
	}
	slices.Sort(cmd.aliases)
	return cmd
}

// Printer returns the cached [Printer] for this [CommandSet].
func (s *CommandSet) Printer() *Printer {
	if s.printer == nil {
		s.printer = NewPrinter()
	}
	return s.printer
}

// Exec executes this [CommandSet].
// It's expected that the first 1+ arguments include the key/alias for a sub-command.
func (s *CommandSet) Exec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no arguments", ErrUnknownCommand)
	}
	key := strings.ToLower(args[0])
	cmd, ok := s.commands[key]
	if !ok {
		cmd, ok = s.aliases[key]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
		}
	}
	return cmd.Exec(ctx, args[1:])
}

// RespondUsage will print usage information with the [Printer] if args is empty, or one of [HelpPatterns] is given as the first argument.
// If usage information was printed, then true will be returned.
func (s *CommandSet) RespondUsage(args []string, format string, vals ...any) bool {
	if len(args) > 0 && !slices.Contains(HelpPatterns, args[0]) {
		return false
	}
	text := fmt.Sprintf(format, vals...)
	if len(text) > 0 {
		text = strings.TrimSuffix("\n\n"+text, "\n")
	}
	s.Printer().Printf("%s%s\n\nCOMMANDS:\n%s", s.parent, text, s.CommandUsages())
	return true
}

// CommandUsages returns a string including the usage information for sub-commands in this [CommandSet].
//
// The sub-command keys will be sorted alphabetically before output.
func (s *CommandSet) CommandUsages() string {
	keys := make([]string, 0, len(s.commands))
	for key := range s.commands {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var maxLen int
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = strings.Join(append([]string{key}, s.commands[key].aliases...), ", ")
		maxLen = max(maxLen, len(names[i]))
	}
	var buf strings.Builder
	for i, key := range keys {
		buf.WriteString(fmt.Sprintf("  %-*s\t%s\n", maxLen, names[i], s.commands[key].shortUsage))
	}
	return buf.String()
}
