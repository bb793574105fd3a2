package nextjs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBuild(t *testing.T, output map[string]any, extra map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	data, err := json.Marshal(output)
	require.NoError(t, err)
	path := filepath.Join(dir, buildOutputDir, buildOutputFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
	for rel, content := range extra {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return dir
}

func fullOutput() map[string]any {
	return map[string]any{
		"version": map[string]any{"openNext": "3.1.2"},
		"origins": map[string]any{
			"s3": map[string]any{
				"type": "s3",
				"copy": []map[string]any{
					{"from": ".open-next/assets", "to": "_assets", "cached": true, "versionedSubDir": "_next"},
					{"from": ".open-next/cache", "to": "_cache", "cached": false},
				},
			},
			"default": map[string]any{
				"type":      "function",
				"handler":   "index.handler",
				"bundle":    ".open-next/server-functions/default",
				"streaming": true,
			},
			"imageOptimizer": map[string]any{
				"type":    "function",
				"handler": "index.handler",
				"bundle":  ".open-next/image-optimization-function",
			},
		},
	}
}

func Test_LoadPlan(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := writeBuild(t, fullOutput(), map[string]string{
		".next/BUILD_ID": "abc123\n",
		"next.config.js": `module.exports = { basePath: "/docs" }`,
	})

	plan, err := LoadPlan(dir)
	require.NoError(err)

	assert.Equal("abc123", plan.BuildID)
	assert.Equal("/docs", plan.Base)

	require.NotNil(plan.Server)
	assert.Equal(filepath.Join(dir, ".open-next", "server-functions", "default"), plan.Server.Bundle)
	assert.Equal("index.handler", plan.Server.Handler)
	assert.True(plan.Server.Streaming)

	require.NotNil(plan.ImageOptimizer)
	assert.Equal(filepath.Join(dir, ".open-next", "image-optimization-function"), plan.ImageOptimizer.Bundle)

	require.Len(plan.Assets, 1)
	assert.Equal("_assets", plan.Assets[0].To)
	assert.Equal("_next", plan.Assets[0].Versioned)
	assert.True(plan.Assets[0].Cached)

	require.NotNil(plan.IncrementalCache)
	assert.Equal("_cache", plan.IncrementalCache.To)
}

func Test_LoadPlanWithoutOptionalPieces(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	output := map[string]any{
		"version": map[string]any{"openNext": "3.0.0"},
		"origins": map[string]any{
			"default": map[string]any{
				"type":    "function",
				"handler": "index.handler",
				"bundle":  ".open-next/server-functions/default",
			},
		},
	}
	plan, err := LoadPlan(writeBuild(t, output, nil))
	require.NoError(err)

	assert.Empty(plan.BuildID)
	assert.Empty(plan.Base)
	assert.Nil(plan.ImageOptimizer)
	assert.Nil(plan.IncrementalCache)
	require.NotNil(plan.Server)
	assert.False(plan.Server.Streaming)
}

func Test_LoadPlanErrors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(output map[string]any)
		wantErr string
	}{
		{
			name: "version too old",
			mutate: func(output map[string]any) {
				output["version"] = map[string]any{"openNext": "2.9.0"}
			},
			wantErr: "no longer supported",
		},
		{
			name: "schema violation",
			mutate: func(output map[string]any) {
				delete(output, "origins")
			},
			wantErr: "unexpected shape",
		},
		{
			name: "more than one server function",
			mutate: func(output map[string]any) {
				origins := output["origins"].(map[string]any)
				origins["api"] = map[string]any{
					"type":    "function",
					"handler": "index.handler",
					"bundle":  ".open-next/server-functions/api",
				}
			},
			wantErr: "more than one server function",
		},
		{
			name: "server origin missing",
			mutate: func(output map[string]any) {
				origins := output["origins"].(map[string]any)
				delete(origins, "default")
				delete(origins, "imageOptimizer")
			},
			wantErr: "no server function origin",
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			output := fullOutput()
			tt.mutate(output)
			_, err := LoadPlan(writeBuild(t, output, nil))
			assert.ErrorContains(err, tt.wantErr)
		})
	}
}

func Test_LoadPlanMissingManifest(t *testing.T) {
	assert := assert.New(t)
	_, err := LoadPlan(t.TempDir())
	assert.ErrorContains(err, "open-next build")
}

func Test_ReadBasePath(t *testing.T) {
	cases := []struct {
		name   string
		config string
		file   string
		want   string
	}{
		{name: "double quotes", file: "next.config.js", config: `basePath: "/docs"`, want: "/docs"},
		{name: "single quotes", file: "next.config.mjs", config: `basePath: '/shop'`, want: "/shop"},
		{name: "no base path", file: "next.config.ts", config: `export default {}`, want: ""},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.config), 0644))
			assert.Equal(tt.want, readBasePath(dir))
		})
	}
}
