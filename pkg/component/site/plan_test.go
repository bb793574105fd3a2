package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PlanNormalizeBase(t *testing.T) {
	cases := []struct {
		name string
		base string
		want string
	}{
		{name: "empty stays empty", base: "", want: ""},
		{name: "root collapses to empty", base: "/", want: ""},
		{name: "missing leading slash added", base: "docs", want: "/docs"},
		{name: "trailing slash stripped", base: "/docs/", want: "/docs"},
		{name: "doubled slashes collapse", base: "//docs//", want: "/docs"},
		{name: "nested path kept", base: "docs/v2/", want: "/docs/v2"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			p := Plan{Base: tt.base, Assets: []AssetCopy{{From: "/build/client"}}}
			require.NoError(t, p.Normalize())
			assert.Equal(tt.want, p.Base)
		})
	}
}

func Test_PlanNormalizeAssetPrefixes(t *testing.T) {
	assert := assert.New(t)

	p := Plan{
		Assets: []AssetCopy{
			{From: "/build/client", To: "/docs/"},
			{From: "/build/static", To: "static"},
		},
		IncrementalCache: &AssetCopy{From: "/build/cache", To: "/_cache/"},
	}
	require.NoError(t, p.Normalize())
	assert.Equal("docs", p.Assets[0].To)
	assert.Equal("static", p.Assets[1].To)
	assert.Equal("_cache", p.IncrementalCache.To)
}

func Test_PlanNormalizeValidation(t *testing.T) {
	cases := []struct {
		name    string
		plan    Plan
		wantErr string
	}{
		{
			name:    "asset without source",
			plan:    Plan{Assets: []AssetCopy{{To: "docs"}}},
			wantErr: "source directory is required",
		},
		{
			name:    "server without bundle",
			plan:    Plan{Server: &ServerDescriptor{Handler: "index.handler"}},
			wantErr: "bundle directory is required",
		},
		{
			name:    "server without handler",
			plan:    Plan{Server: &ServerDescriptor{Bundle: "/build/server"}},
			wantErr: "handler entry point is required",
		},
		{
			name:    "image optimizer without bundle",
			plan:    Plan{ImageOptimizer: &ServerDescriptor{}},
			wantErr: "image optimizer",
		},
		{
			name:    "cache without source",
			plan:    Plan{IncrementalCache: &AssetCopy{To: "_cache"}},
			wantErr: "incremental cache",
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.ErrorContains(tt.plan.Normalize(), tt.wantErr)
		})
	}
}

func Test_PlanNormalizeAggregatesErrors(t *testing.T) {
	assert := assert.New(t)

	p := Plan{
		Assets: []AssetCopy{{To: "docs"}},
		Server: &ServerDescriptor{},
	}
	err := p.Normalize()
	assert.ErrorContains(err, "source directory is required")
	assert.ErrorContains(err, "bundle directory is required")
	assert.ErrorContains(err, "handler entry point is required")
}

func Test_CheckRouterPrefix(t *testing.T) {
	cases := []struct {
		name    string
		base    string
		prefix  string
		wantErr bool
	}{
		{name: "catch-all always fine", base: "", prefix: "/"},
		{name: "empty prefix fine", base: "/docs", prefix: ""},
		{name: "base matches prefix", base: "/docs", prefix: "/docs"},
		{name: "base under prefix", base: "/docs/v2", prefix: "/docs"},
		{name: "unnormalized prefix accepted", base: "/docs", prefix: "docs/"},
		{name: "prefix without base", base: "", prefix: "/docs", wantErr: true},
		{name: "base outside prefix", base: "/blog", prefix: "/docs", wantErr: true},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			p := Plan{Base: tt.base}
			err := p.CheckRouterPrefix(tt.prefix)
			if tt.wantErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}
