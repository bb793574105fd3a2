package astro

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBuild(t *testing.T, meta map[string]any, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, rel := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}
	data, err := json.Marshal(meta)
	require.NoError(t, err)
	metaPath := filepath.Join(dir, "dist", buildMetaFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(metaPath), 0755))
	require.NoError(t, os.WriteFile(metaPath, data, 0644))
	return dir
}

func Test_LoadPlanServer(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := writeBuild(t, map[string]any{
		"adapterVersion":             "2.3.0",
		"outputMode":                 "server",
		"responseMode":               "buffer",
		"base":                       "/docs",
		"clientBuildVersionedSubDir": "_astro",
	}, "dist/server/entry.mjs")

	plan, err := LoadPlan(dir)
	require.NoError(err)

	require.NotNil(plan.Server)
	assert.Equal(filepath.Join(dir, "dist", "server"), plan.Server.Bundle)
	assert.Equal("entry.handler", plan.Server.Handler)
	assert.False(plan.Server.Streaming)
	assert.Equal("/docs", plan.Base)
	require.Len(plan.Assets, 1)
	assert.Equal(filepath.Join(dir, "dist", "client"), plan.Assets[0].From)
	assert.Equal("_astro", plan.Assets[0].Versioned)
	assert.True(plan.Assets[0].Cached)
}

func Test_LoadPlanStreaming(t *testing.T) {
	require := require.New(t)

	dir := writeBuild(t, map[string]any{
		"adapterVersion": "2.0.0",
		"outputMode":     "server",
		"responseMode":   "stream",
	}, "dist/server/entry.mjs")

	plan, err := LoadPlan(dir)
	require.NoError(err)
	require.NotNil(plan.Server)
	require.True(plan.Server.Streaming)
}

func Test_LoadPlanStatic(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := writeBuild(t, map[string]any{
		"adapterVersion": "2.0.0",
		"outputMode":     "static",
	}, "dist/index.html", "dist/404.html")

	plan, err := LoadPlan(dir)
	require.NoError(err)

	assert.Nil(plan.Server)
	assert.Equal("404.html", plan.Custom404)
	require.Len(plan.Assets, 1)
	assert.Equal(filepath.Join(dir, "dist"), plan.Assets[0].From)
}

func Test_LoadPlanStaticWithout404(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := writeBuild(t, map[string]any{
		"adapterVersion": "2.0.0",
		"outputMode":     "static",
	}, "dist/index.html")

	plan, err := LoadPlan(dir)
	require.NoError(err)
	assert.Empty(plan.Custom404)
}

func Test_LoadPlanErrors(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "missing metadata",
			setup:   func(t *testing.T) string { return t.TempDir() },
			wantErr: "astro build",
		},
		{
			name: "no adapter version",
			setup: func(t *testing.T) string {
				return writeBuild(t, map[string]any{"outputMode": "server"})
			},
			wantErr: "no adapter version",
		},
		{
			name: "adapter too old",
			setup: func(t *testing.T) string {
				return writeBuild(t, map[string]any{"adapterVersion": "1.9.0", "outputMode": "server"})
			},
			wantErr: "no longer supported",
		},
		{
			name: "server output missing",
			setup: func(t *testing.T) string {
				return writeBuild(t, map[string]any{"adapterVersion": "2.0.0", "outputMode": "server"})
			},
			wantErr: "server build output",
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := LoadPlan(tt.setup(t))
			assert.ErrorContains(err, tt.wantErr)
		})
	}
}
