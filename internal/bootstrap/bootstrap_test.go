package bootstrap

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shirou/gopsutil/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setup-devenv/internal/config"
	"setup-devenv/internal/logger"
	"setup-devenv/internal/platform"
	"setup-devenv/internal/state"
	"setup-devenv/internal/system"
	"setup-devenv/internal/system/systemtest"
)

const ubuntuRelease = `NAME="Ubuntu"
ID=ubuntu
ID_LIKE=debian
VERSION_ID="24.04"
PRETTY_NAME="Ubuntu 24.04 LTS"
`

// testUser does not exist in any real passwd file.
const testUser = "devenv-fixture-user"

func quietLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(prev) })
	return &buf
}

func ubuntuProbe() platform.Probe {
	return platform.Probe{
		ReadOSRelease: func() ([]byte, error) { return []byte(ubuntuRelease), nil },
		LookPath:      func(string) (string, error) { return "", os.ErrNotExist },
		HostInfo:      func() (*host.InfoStat, error) { return &host.InfoStat{Hostname: "devbox"}, nil },
	}
}

func testEnv(home string) Environment {
	return Environment{GOOS: "linux", Home: home, User: testUser, EUID: 1000, Shell: "/bin/bash"}
}

// fakeHost answers git identity queries and materializes what the
// framework installer and git clone would create, so a second run sees a
// provisioned machine.
func fakeHost(t *testing.T) *systemtest.Recorder {
	t.Helper()
	rec := systemtest.NewRecorder().Has("zsh", "/usr/bin/zsh").Has("chsh", "/usr/bin/chsh")
	rec.Outputs["git config --global --get user.name"] = "Dev Eloper\n"
	rec.Outputs["git config --global --get user.email"] = "dev@example.com\n"
	rec.Hook = func(c system.Command) error {
		switch {
		case c.Name == "git" && len(c.Args) > 0 && c.Args[0] == "clone":
			return os.MkdirAll(c.Args[len(c.Args)-1], 0755)
		case c.Name == "sh":
			for _, kv := range c.Env {
				if dir, ok := strings.CutPrefix(kv, "ZSH="); ok {
					return os.MkdirAll(dir, 0755)
				}
			}
		}
		return nil
	}
	return rec
}

func loadCatalog(t *testing.T) config.Catalog {
	t.Helper()
	c, err := config.LoadCatalog()
	require.NoError(t, err)
	return c
}

func countPrefix(lines []string, prefix string) int {
	n := 0
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

func TestRunRefusesRoot(t *testing.T) {
	quietLogs(t)
	home := t.TempDir()
	env := testEnv(home)
	env.EUID = 0
	rec := fakeHost(t)

	statePath := filepath.Join(home, ".local", "state", "setup-devenv", "state.json")

	st, err := New(env, rec, loadCatalog(t), ubuntuProbe(), nil, Options{StatePath: statePath}).Run(context.Background())

	require.ErrorIs(t, err, ErrRunningAsRoot)
	assert.Empty(t, rec.Calls)
	entries, _ := os.ReadDir(home)
	assert.Empty(t, entries, "nothing may be created under home")
	assert.NoFileExists(t, statePath)
	require.Len(t, st.Steps, 2)
	assert.Equal(t, state.Failed, st.Steps[1].Outcome)
}

func TestRunFailureStillSavesRecord(t *testing.T) {
	quietLogs(t)
	home := t.TempDir()
	statePath := filepath.Join(home, ".local", "state", "setup-devenv", "state.json")
	rec := fakeHost(t).Fail("sudo apt-get update")

	_, err := New(testEnv(home), rec, loadCatalog(t), ubuntuProbe(), nil, Options{StatePath: statePath}).Run(context.Background())
	require.Error(t, err)

	saved, err := state.LoadState(statePath)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Contains(t, saved.Error, StepPackages)
}

func TestRunRootRefusalIsNotLoggedAsError(t *testing.T) {
	out := quietLogs(t)
	env := testEnv(t.TempDir())
	env.EUID = 0

	_, err := New(env, fakeHost(t), loadCatalog(t), ubuntuProbe(), nil, Options{}).Run(context.Background())

	require.ErrorIs(t, err, ErrRunningAsRoot)
	assert.NotContains(t, out.String(), "[ERROR]", "the caller reports the returned error")
	assert.Contains(t, out.String(), "Setup failed")
}

func TestRunUnsupportedPlatform(t *testing.T) {
	quietLogs(t)
	rec := fakeHost(t)
	env := testEnv(t.TempDir())
	env.GOOS = "windows"

	_, err := New(env, rec, loadCatalog(t), ubuntuProbe(), nil, Options{}).Run(context.Background())

	require.ErrorIs(t, err, platform.ErrUnsupportedPlatform)
	assert.Empty(t, rec.Calls)
}

func TestRunUnknownLinuxWithoutManager(t *testing.T) {
	quietLogs(t)
	rec := fakeHost(t)
	probe := ubuntuProbe()
	probe.ReadOSRelease = func() ([]byte, error) { return []byte("ID=plan9\n"), nil }

	_, err := New(testEnv(t.TempDir()), rec, loadCatalog(t), probe, nil, Options{}).Run(context.Background())

	require.ErrorIs(t, err, platform.ErrUnsupportedPlatform)
	assert.Empty(t, rec.Calls)
}

func TestRunProvisionsThenRerunIsQuiet(t *testing.T) {
	out := quietLogs(t)
	home := t.TempDir()
	statePath := filepath.Join(t.TempDir(), "state.json")
	rec := fakeHost(t)
	b := New(testEnv(home), rec, loadCatalog(t), ubuntuProbe(), nil, Options{StatePath: statePath})

	st, err := b.Run(context.Background())
	require.NoError(t, err)

	lines := rec.Lines()
	assert.Equal(t, "sudo apt-get update", lines[0])
	assert.Equal(t, 4, countPrefix(lines, "git clone"))
	assert.Contains(t, lines, "sudo chsh -s /usr/bin/zsh "+testUser)
	for _, d := range []string{"code", "bin", ".local/bin", ".config", ".vim/undodir"} {
		assert.DirExists(t, filepath.Join(home, d))
	}
	for _, f := range []string{".zshrc", ".zsh_aliases", ".vimrc"} {
		assert.FileExists(t, filepath.Join(home, f))
	}
	assert.Equal(t, "ubuntu", st.Profile)
	assert.Equal(t, "devbox", st.Host)
	assert.Contains(t, out.String(), "Next steps")

	saved, err := state.LoadState(statePath)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Len(t, saved.Steps, 8)
	assert.Empty(t, saved.Error)

	zshrc, err := os.ReadFile(filepath.Join(home, ".zshrc"))
	require.NoError(t, err)

	rec.Calls = nil
	_, err = b.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, countPrefix(rec.Lines(), "git clone"))
	for _, c := range rec.Calls {
		assert.NotEqual(t, "sh", c.Name, "framework installer must not rerun")
	}
	again, err := os.ReadFile(filepath.Join(home, ".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, zshrc, again, "dotfiles render byte-identically")
}

func TestRunFailsFastOnBasePackages(t *testing.T) {
	quietLogs(t)
	home := t.TempDir()
	rec := fakeHost(t).Fail("sudo apt-get install -y build-essential")

	st, err := New(testEnv(home), rec, loadCatalog(t), ubuntuProbe(), nil, Options{}).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), StepPackages)
	assert.Zero(t, countPrefix(rec.Lines(), "git clone"))
	assert.NoFileExists(t, filepath.Join(home, ".zshrc"))
	last := st.Steps[len(st.Steps)-1]
	assert.Equal(t, StepPackages, last.Name)
	assert.Equal(t, state.Failed, last.Outcome)
}

func TestRunLoginShellFailureIsOnlyAWarning(t *testing.T) {
	out := quietLogs(t)
	rec := fakeHost(t).Fail("sudo chsh").Fail("chsh")

	st, err := New(testEnv(t.TempDir()), rec, loadCatalog(t), ubuntuProbe(), nil, Options{}).Run(context.Background())

	require.NoError(t, err)
	last := st.Steps[len(st.Steps)-1]
	assert.Equal(t, StepLoginShell, last.Name)
	assert.Equal(t, state.Warning, last.Outcome)
	assert.Contains(t, out.String(), "chsh -s /usr/bin/zsh")
}

func TestRunDryRunChangesNothing(t *testing.T) {
	quietLogs(t)
	home := t.TempDir()
	rec := fakeHost(t)

	st, err := New(testEnv(home), rec, loadCatalog(t), ubuntuProbe(), nil, Options{DryRun: true}).Run(context.Background())

	require.NoError(t, err)
	assert.True(t, st.DryRun)
	assert.Empty(t, rec.Calls)
	assert.NotEmpty(t, rec.Queries, "queries still run in dry-run")
	entries, _ := os.ReadDir(home)
	assert.Empty(t, entries)
}

func TestWriteStepTable(t *testing.T) {
	var buf bytes.Buffer
	WriteStepTable(&buf, []state.StepRecord{
		{Name: StepDetect, Outcome: state.Done, Detail: "ubuntu via apt"},
		{Name: StepGit, Outcome: state.Warning, Detail: "unset: user.email"},
	})
	assert.Contains(t, buf.String(), "ubuntu via apt")
	assert.Contains(t, buf.String(), "unset: user.email")
}
