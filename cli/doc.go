/*
Package cli structures the superbus command line as a tree of sub-commands.

	superbus [SUB-COMMAND...] [FLAGS...] [ARGS...]

Output goes through a [Printer], which writes to STDERR unless redirected, so tests can capture it.
Flags are parsed with [pflag], and aren't interspersed with arguments, so "superbus run a.yaml --help" treats "--help" as a file.
Every [Command] gets '-h' and '--help', which print its [Command.Usage] along with its flags and sub-commands.
Calling the root [CommandSet] with no arguments prints usage for the whole tool with [CommandSet.RespondUsage].

# Setup and errors

Setup that several commands share, like logging and metrics, is registered with [CommandSet.BeforeExec] and runs only when a command actually executes.
Every [CommandFunc] and [PreExec] receives the context passed to [CommandSet.Exec], which is cancelled on interrupt.

A command rejects its arguments by returning a [UsageError].
Exec records which command failed, so [UsageError.Hint] can point the user at the right --help.

[pflag]: https://github.com/spf13/pflag
*/
package cli
