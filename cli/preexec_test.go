package cli

import (
	"context"
	"errors"
	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"io"
	"testing"
)

func TestCommandSet_BeforeExec(t *testing.T) {
	var order []string
	tlc := NewCommandSet("base")
	tlc.Printer().Redirect(io.Discard)
	tlc.BeforeExec(func(context.Context) error {
		order = append(order, "root")
		return nil
	})
	testCmd := tlc.AddCommand("test", "Runs the test sub-command").Does(func(context.Context, *flag.FlagSet, *Printer) error {
		order = append(order, "test")
		return nil
	})
	testCmd.AddCommand("two", "Runs the test two sub-command").Does(func(context.Context, *flag.FlagSet, *Printer) error {
		order = append(order, "two")
		return nil
	})
	testCmd.BeforeExec(func(context.Context) error {
		order = append(order, "test hook")
		return nil
	})
	tlc.AddCommand("other", "Runs another sub-command").Does(func(context.Context, *flag.FlagSet, *Printer) error {
		order = append(order, "other")
		return nil
	})

	assert.NoError(t, tlc.Exec(context.Background(), []string{"test"}))
	assert.Equal(t, []string{"root", "test hook", "test"}, order)
	order = nil
	assert.NoError(t, tlc.Exec(context.Background(), []string{"test", "two"}))
	assert.Equal(t, []string{"root", "test hook", "two"}, order, "Hooks should run once, from the root down")
	order = nil
	assert.NoError(t, tlc.Exec(context.Background(), []string{"other"}))
	assert.Equal(t, []string{"root", "other"}, order, "Hooks on a sibling should not run")
	order = nil
	assert.NoError(t, tlc.Exec(context.Background(), []string{"test", "-h"}))
	assert.Empty(t, order, "Hooks should not run when only printing usage")
}

func TestCommandSet_BeforeExec_Error(t *testing.T) {
	errSetup := errors.New("setup failed")
	var ran bool
	tlc := NewCommandSet("base")
	tlc.BeforeExec(func(context.Context) error {
		return errSetup
	})
	tlc.AddCommand("test", "Runs the test sub-command").Does(func(context.Context, *flag.FlagSet, *Printer) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, tlc.Exec(context.Background(), []string{"test"}), errSetup)
	assert.False(t, ran)
	assert.Panics(t, func() {
		tlc.BeforeExec(nil)
	})
}
