package remix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadPlan(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	require.NoError(os.MkdirAll(filepath.Join(dir, "build", "server"), 0755))
	require.NoError(os.WriteFile(filepath.Join(dir, "build", "server", "index.js"), nil, 0644))
	require.NoError(os.MkdirAll(filepath.Join(dir, "build", "client", "assets"), 0755))
	require.NoError(os.WriteFile(filepath.Join(dir, "vite.config.mjs"),
		[]byte(`remix({ basename: "/blog" })`), 0644))

	plan, err := LoadPlan(dir)
	require.NoError(err)

	assert.Equal("/blog", plan.Base)
	require.NotNil(plan.Server)
	assert.Equal(filepath.Join(dir, "build", "server"), plan.Server.Bundle)
}

func Test_LoadPlanWithoutBuild(t *testing.T) {
	assert := assert.New(t)

	_, err := LoadPlan(t.TempDir())
	assert.ErrorContains(err, "remix vite:build")
}
