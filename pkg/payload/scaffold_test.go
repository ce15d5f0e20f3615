package payload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaffoldRequiresProjectName(t *testing.T) {
	_, err := ScaffoldProject(ScaffoldOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "projectName")

	_, err = ScaffoldProject(ScaffoldOptions{ProjectName: "   "})
	require.Error(t, err)
}

func TestScaffoldWritesFiles(t *testing.T) {
	dir := t.TempDir()

	res, err := ScaffoldProject(ScaffoldOptions{ProjectName: "my-app", OutputDir: dir})
	require.NoError(t, err)

	assert.Equal(t, "my-app", res.ProjectName)
	assert.Equal(t, filepath.Join(dir, "my-app"), res.BasePath)
	require.Len(t, res.FileStructure, 2)

	readme, err := os.ReadFile(res.FileStructure["README.md"])
	require.NoError(t, err)
	assert.Contains(t, string(readme), "# my-app")

	index, err := os.ReadFile(res.FileStructure["src/index.js"])
	require.NoError(t, err)
	assert.Contains(t, string(index), "console.log")
}

func TestScaffoldDryRunWithoutOutputDir(t *testing.T) {
	res, err := ScaffoldProject(ScaffoldOptions{ProjectName: "planned"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(os.TempDir(), "planned"), res.BasePath)
	_, statErr := os.Stat(res.FileStructure["README.md"])
	assert.True(t, os.IsNotExist(statErr))
}
