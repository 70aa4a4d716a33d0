package meson

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lex00/pakman/errs"
	"github.com/lex00/pakman/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	commands []string
	err      error
}

func (r *recordingRunner) Run(_ context.Context, command string) error {
	r.commands = append(r.commands, command)
	return r.err
}

func newMeson(t *testing.T) (*Meson, *recordingRunner, *output.Recorder) {
	t.Helper()
	root := t.TempDir()
	runner := &recordingRunner{}
	rec := output.NewRecorder()
	return &Meson{
		Runner:           runner,
		Out:              rec,
		BuildFolder:      filepath.Join(root, "build"),
		SourceFolder:     filepath.Join(root, "src"),
		GeneratorsFolder: filepath.Join(root, "gen"),
	}, runner, rec
}

func TestRunFormatsOptions(t *testing.T) {
	m, runner, rec := newMeson(t)

	err := m.Run(context.Background(), "setup", []string{"a", "b"}, RunOptions{
		Options: []Option{
			{Key: "--wipe", Value: true},
			{Key: "--fatal-meson-warnings", Value: false},
			{Key: "--buildtype", Value: "release"},
			{Key: "-j", Value: 4},
		},
		InfoName: "custom",
	})
	require.NoError(t, err)

	want := "meson setup --wipe --buildtype release -j 4 a b"
	assert.Equal(t, []string{want}, runner.commands)
	assert.Equal(t, []string{"Meson custom cmd: " + want}, rec.Messages(output.LevelInfo))
}

func TestRunWithoutCommandOrInfoName(t *testing.T) {
	m, runner, rec := newMeson(t)
	require.NoError(t, m.Run(context.Background(), "", []string{"--version"}, RunOptions{}))
	assert.Equal(t, []string{"meson --version"}, runner.commands)
	assert.Equal(t, []string{"Meson cmd: meson --version"}, rec.Messages(output.LevelInfo))
}

func TestRunQuiet(t *testing.T) {
	m, _, rec := newMeson(t)
	require.NoError(t, m.Run(context.Background(), "introspect", nil, RunOptions{Quiet: true}))
	assert.Empty(t, rec.Entries())
}

func TestRunSetupReconfigure(t *testing.T) {
	m, runner, _ := newMeson(t)
	ctx := context.Background()

	require.NoError(t, m.RunSetup(ctx, nil, RunOptions{}, true))
	require.NoError(t, os.MkdirAll(filepath.Join(m.BuildFolder, "meson-private"), 0755))
	require.NoError(t, m.RunSetup(ctx, nil, RunOptions{}, true))
	require.NoError(t, m.RunSetup(ctx, nil, RunOptions{}, false))

	setup := `meson setup "` + m.BuildFolder + `" "` + m.SourceFolder + `"`
	assert.Equal(t, []string{
		setup,
		`meson setup --reconfigure "` + m.BuildFolder + `" "` + m.SourceFolder + `"`,
		setup,
	}, runner.commands)
}

func TestRunConfigure(t *testing.T) {
	m, runner, rec := newMeson(t)
	require.NoError(t, m.RunConfigure(context.Background(), []string{"-Dfoo=bar"}, RunOptions{}))
	assert.Equal(t, []string{`meson configure "` + m.BuildFolder + `" -Dfoo=bar`}, runner.commands)
	assert.Contains(t, rec.Messages(output.LevelInfo)[0], "Meson configure cmd:")
}

func TestConfigureNativeAndPrefix(t *testing.T) {
	m, runner, _ := newMeson(t)
	m.PackageFolder = "/opt/pkg"

	require.NoError(t, m.Configure(context.Background(), []Option{{Key: "--buildtype", Value: "debug"}}))

	native := filepath.Join(m.GeneratorsFolder, NativeFilename)
	assert.Equal(t, []string{
		`meson setup --buildtype debug --native-file "` + native + `" -D prefix="/opt/pkg" "` +
			m.BuildFolder + `" "` + m.SourceFolder + `"`,
	}, runner.commands)
}

func TestConfigureCrossFile(t *testing.T) {
	m, runner, _ := newMeson(t)
	require.NoError(t, os.MkdirAll(m.GeneratorsFolder, 0755))
	cross := filepath.Join(m.GeneratorsFolder, CrossFilename)
	require.NoError(t, os.WriteFile(cross, []byte("[host_machine]\n"), 0644))

	require.NoError(t, m.Configure(context.Background(), nil))
	assert.Contains(t, runner.commands[0], `--cross-file "`+cross+`"`)
	assert.NotContains(t, runner.commands[0], "--native-file")
}

func TestBuild(t *testing.T) {
	m, runner, rec := newMeson(t)
	m.Jobs = 8
	ctx := context.Background()

	require.NoError(t, m.Build(ctx, ""))
	require.NoError(t, m.Build(ctx, "hello"))
	m.Jobs = 0
	require.NoError(t, m.Build(ctx, ""))

	compile := `meson compile -C "` + m.BuildFolder + `"`
	assert.Equal(t, []string{compile + " -j8", compile + " -j8 hello", compile}, runner.commands)
	assert.Equal(t, "Meson build cmd: "+compile+" -j8", rec.Messages(output.LevelInfo)[0])
}

func TestInstallAndTest(t *testing.T) {
	m, runner, _ := newMeson(t)
	ctx := context.Background()

	require.NoError(t, m.Install(ctx))
	require.NoError(t, m.Test(ctx))

	require.Len(t, runner.commands, 3)
	assert.Contains(t, runner.commands[0], "meson setup")
	assert.Equal(t, `meson install -C "`+m.BuildFolder+`"`, runner.commands[1])
	assert.Equal(t, `meson test -v -C "`+m.BuildFolder+`"`, runner.commands[2])
}

func TestInstallStopsOnConfigureFailure(t *testing.T) {
	m, runner, _ := newMeson(t)
	runner.err = errs.Domain("error 1 while executing meson setup")

	err := m.Install(context.Background())
	require.Error(t, err)
	assert.Len(t, runner.commands, 1)
}
