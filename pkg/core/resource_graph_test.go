package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	fakeBucket struct {
		Name string
		Refs ComponentRefSet
	}

	fakeFunction struct {
		Name   string
		Refs   ComponentRefSet
		Bucket *fakeBucket
		Values []IaCValue
		Env    map[string]IaCValue
	}
)

func (b *fakeBucket) Id() ResourceId {
	return ResourceId{Provider: "aws", Type: "s3_bucket", Name: b.Name}
}
func (b *fakeBucket) ComponentRefs() ComponentRefSet { return b.Refs }

func (f *fakeFunction) Id() ResourceId {
	return ResourceId{Provider: "aws", Type: "lambda_function", Name: f.Name}
}
func (f *fakeFunction) ComponentRefs() ComponentRefSet { return f.Refs }

func Test_AddResourceMergesRefs(t *testing.T) {
	assert := assert.New(t)

	g := NewResourceGraph()
	g.AddResource(&fakeBucket{Name: "shared", Refs: RefsFor("web")})
	g.AddResource(&fakeBucket{Name: "shared", Refs: RefsFor("docs")})

	assert.Equal(1, g.Len())
	got, ok := g.GetResource(ResourceId{Provider: "aws", Type: "s3_bucket", Name: "shared"})
	require.True(t, ok)
	assert.True(got.ComponentRefs().Has("web"))
	assert.True(got.ComponentRefs().Has("docs"))
}

func Test_AddDependenciesReflect(t *testing.T) {
	assert := assert.New(t)

	bucket := &fakeBucket{Name: "assets", Refs: RefsFor("web")}
	cache := &fakeBucket{Name: "cache", Refs: RefsFor("web")}
	queue := &fakeBucket{Name: "queue", Refs: RefsFor("web")}
	fn := &fakeFunction{
		Name:   "server",
		Refs:   RefsFor("web"),
		Bucket: bucket,
		Values: []IaCValue{ValueOf(cache, NAME_IAC_VALUE)},
		Env:    map[string]IaCValue{"QUEUE_URL": ValueOf(queue, URL_IAC_VALUE)},
	}

	g := NewResourceGraph()
	g.AddResource(bucket)
	g.AddResource(cache)
	g.AddResource(queue)
	g.AddDependenciesReflect(fn)

	assert.True(g.HasDependency(fn, bucket))
	assert.True(g.HasDependency(fn, cache))
	assert.True(g.HasDependency(fn, queue))
}

func Test_AddDependenciesReflectSkipsNilAndUnknown(t *testing.T) {
	assert := assert.New(t)

	orphan := &fakeBucket{Name: "orphan", Refs: RefsFor("web")}
	fn := &fakeFunction{
		Name: "server",
		Refs: RefsFor("web"),
		// Bucket nil; orphan's value references a resource not in the graph
		Values: []IaCValue{ValueOf(orphan, ARN_IAC_VALUE)},
	}

	g := NewResourceGraph()
	g.AddDependenciesReflect(fn)

	assert.Equal(1, g.Len())
	assert.False(g.HasDependency(fn, orphan))
}

func Test_TopologicalOrderIsCreationOrder(t *testing.T) {
	require := require.New(t)

	bucket := &fakeBucket{Name: "assets", Refs: RefsFor("web")}
	fn := &fakeFunction{Name: "server", Refs: RefsFor("web"), Bucket: bucket}

	g := NewResourceGraph()
	g.AddDependenciesReflect(fn)

	order, err := g.TopologicalOrder()
	require.NoError(err)
	require.Equal([]string{"aws:s3_bucket:assets", "aws:lambda_function:server"}, order)
}

func Test_ListResourcesOfType(t *testing.T) {
	assert := assert.New(t)

	g := NewResourceGraph()
	g.AddResource(&fakeBucket{Name: "a", Refs: RefsFor("web")})
	g.AddResource(&fakeBucket{Name: "b", Refs: RefsFor("web")})
	g.AddResource(&fakeFunction{Name: "server", Refs: RefsFor("web")})

	assert.Len(ListResourcesOfType[*fakeBucket](g), 2)
	assert.Len(ListResourcesOfType[*fakeFunction](g), 1)

	fn, ok := GetResourceOfType[*fakeFunction](g, ResourceId{Provider: "aws", Type: "lambda_function", Name: "server"})
	assert.True(ok)
	assert.Equal("server", fn.Name)
}
