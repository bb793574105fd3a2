package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackform/stackform/pkg/core"
)

func Test_NewStatic(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	require.NoError(os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html/>"), 0644))
	require.NoError(os.WriteFile(filepath.Join(dir, "404.html"), []byte("<html/>"), 0644))

	g := core.NewResourceGraph()
	site, err := NewStatic(testContext(), "docs", StaticArgs{Dir: dir, Base: "/docs"}, g)
	require.NoError(err)

	assert.Equal("/docs", site.Plan.Base)
	assert.Equal("404.html", site.Plan.Custom404)
	require.Len(site.Plan.Assets, 1)
	assert.Equal(dir, site.Plan.Assets[0].From)
	assert.True(site.Plan.Assets[0].Cached)
	assert.Empty(site.Servers)
}

func Test_NewStaticErrorPage(t *testing.T) {
	cases := []struct {
		name      string
		files     []string
		errorPage string
		want      string
	}{
		{name: "conventional 404 missing", files: []string{"index.html"}, want: ""},
		{name: "custom error page", files: []string{"index.html", "error.html"}, errorPage: "error.html", want: "error.html"},
		{name: "custom error page missing", files: []string{"index.html"}, errorPage: "error.html", want: ""},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			dir := t.TempDir()
			for _, f := range tt.files {
				require.NoError(os.WriteFile(filepath.Join(dir, f), nil, 0644))
			}
			site, err := NewStatic(testContext(), "docs", StaticArgs{Dir: dir, ErrorPage: tt.errorPage}, core.NewResourceGraph())
			require.NoError(err)
			assert.Equal(tt.want, site.Plan.Custom404)
		})
	}
}

func Test_NewStaticErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := NewStatic(testContext(), "docs", StaticArgs{}, core.NewResourceGraph())
	assert.ErrorContains(err, "dir is required")

	_, err = NewStatic(testContext(), "docs", StaticArgs{Dir: filepath.Join(t.TempDir(), "missing")}, core.NewResourceGraph())
	assert.ErrorContains(err, "is not a directory")
}
