package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ResourceIdString(t *testing.T) {
	assert := assert.New(t)

	id := ResourceId{Provider: "aws", Type: "s3_bucket", Name: "my-app-prod-web"}
	assert.Equal("aws:s3_bucket:my-app-prod-web", id.String())
	assert.False(id.IsZero())
	assert.True(ResourceId{}.IsZero())
}

func Test_ResourceIdTextRoundTrip(t *testing.T) {
	assert := assert.New(t)

	id := ResourceId{Provider: "aws", Type: "lambda_function", Name: "my-app-prod-server"}
	text, err := id.MarshalText()
	assert.NoError(err)

	var parsed ResourceId
	assert.NoError(parsed.UnmarshalText(text))
	assert.Equal(id, parsed)
}

func Test_ComponentRefSet(t *testing.T) {
	assert := assert.New(t)

	refs := RefsFor("web")
	assert.True(refs.Has("web"))
	assert.False(refs.Has("api"))

	refs.Add("api")
	assert.True(refs.Has("api"))

	clone := refs.Clone()
	clone.Add("docs")
	assert.False(refs.Has("docs"))

	refs.AddAll(clone)
	assert.True(refs.Has("docs"))
}
