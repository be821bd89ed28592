package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCompileCommand(t *testing.T) {
	cmd := NewCompileCommand()

	assert.Equal(t, "compile [file...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"write", "check"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
	assert.Equal(t, "w", cmd.Flags().Lookup("write").Shorthand)
}

func TestNewParseCommand(t *testing.T) {
	cmd := NewParseCommand()

	assert.Equal(t, "parse [file]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	format := cmd.Flags().Lookup("format")
	if assert.NotNil(t, format) {
		assert.Equal(t, "json", format.DefValue)
	}
}

func TestNewTokensCommand(t *testing.T) {
	cmd := NewTokensCommand()

	assert.Equal(t, "tokens [file]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewREPLCommand(t *testing.T) {
	cmd := NewREPLCommand()

	assert.Equal(t, "repl", cmd.Use)
	for _, flag := range []string{"history", "ast"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewWatchCommand(t *testing.T) {
	cmd := NewWatchCommand()

	assert.Equal(t, "watch [dir]", cmd.Use)
	for _, flag := range []string{"debounce", "once"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)
	assert.NotEmpty(t, cmd.Long)
	for _, flag := range []string{"port", "cors", "watch"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewLSPCommand(t *testing.T) {
	cmd := NewLSPCommand("test")

	assert.Equal(t, "lsp", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}
