package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalPlain(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, false)

	term.Info("The most similar command is")
	term.Warning("Usage of `--package` argument is deprecated.")
	term.Error("'%s' is not a pakman command.", "biuld")
	term.Success("Reference '%s' in editable mode", "zlib/1.3@")
	term.Write("raw")
	term.Writeln(" value")

	want := "The most similar command is\n" +
		"WARN: Usage of `--package` argument is deprecated.\n" +
		"ERROR: 'biuld' is not a pakman command.\n" +
		"Reference 'zlib/1.3@' in editable mode\n" +
		"raw value\n"
	assert.Equal(t, want, buf.String())
}

func TestTerminalColorKeepsText(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, true)
	term.Error("line one\nline two")
	assert.Contains(t, buf.String(), "line one")
	assert.Contains(t, buf.String(), "line two")
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	rec.Info("a %d", 1)
	rec.Error("b")
	rec.Write("c")
	rec.Writeln("d")

	assert.Equal(t, []Entry{
		{Level: LevelInfo, Message: "a 1"},
		{Level: LevelError, Message: "b"},
		{Level: LevelPlain, Message: "d"},
	}, rec.Entries())
	assert.Equal(t, []string{"b"}, rec.Messages(LevelError))
	assert.Equal(t, "a 1\nb\ncd\n", rec.Text())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "warning", LevelWarning.String())
	assert.Equal(t, "plain", Level(42).String())
}

func TestWriter(t *testing.T) {
	rec := NewRecorder()
	n, err := Writer(rec).Write([]byte("compiling\n"))
	assert.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, "compiling\n", rec.Text())
}
