package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "basis-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "basis")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/basis")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runBasis(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runBasisEnv(t, nil, args...)
}

func runBasisEnv(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// initProject runs `basis init` and returns the project dir and its config path.
func initProject(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	out, err := runBasis(t, "init", dir)
	require.NoError(t, err, out)
	return dir, filepath.Join(dir, "basis.yaml")
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, err := runBasis(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized basis project at "+dir)

	for _, d := range []string{"import", filepath.Join("import", "processed")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
	for _, f := range []string{"basis.yaml", "ledger.db", ".gitignore"} {
		_, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err, "%s should exist", f)
	}
}

func TestInit_Config(t *testing.T) {
	dir, cfgPath := initProject(t)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "path: ledger.db")
	assert.Contains(t, contents, "header: Fee CAD")
	assert.Contains(t, contents, "header: Fee USD")
	assert.Contains(t, contents, "level: info")

	gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(gitignore), "ledger.db\n"))
}

func TestInit_RefusesExistingProject(t *testing.T) {
	dir, _ := initProject(t)

	out, err := runBasis(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestVersion(t *testing.T) {
	out, err := runBasis(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit: none, built: unknown)")
}
