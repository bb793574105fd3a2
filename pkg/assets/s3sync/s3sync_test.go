package s3sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackform/stackform/pkg/assets"
)

type fakeS3 struct {
	puts    []s3.PutObjectInput
	deletes []string
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, *params)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type fakeCloudFront struct {
	batches [][]string
}

func (f *fakeCloudFront) CreateInvalidation(ctx context.Context, params *cloudfront.CreateInvalidationInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error) {
	f.batches = append(f.batches, params.InvalidationBatch.Paths.Items)
	return &cloudfront.CreateInvalidationOutput{}, nil
}

func scanDir(t *testing.T, files map[string]string) []assets.Asset {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	scanned, err := assets.Scan(dir, nil, nil)
	require.NoError(t, err)
	return scanned
}

func Test_SyncUploadsOnlyChanged(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	scanned := scanDir(t, map[string]string{
		"index.html":    "<html>",
		"assets/app.js": "console.log(1)",
	})
	previous := assets.Manifest{}
	for _, a := range scanned {
		if a.Rel == "index.html" {
			previous[a.Rel] = a.Hash // unchanged
		}
	}
	previous["gone.txt"] = "deadbeef"

	client := &fakeS3{}
	result, err := Sync(context.Background(), client, "my-bucket", Directive{}, scanned, previous)
	require.NoError(err)

	assert.Equal(1, result.Uploaded)
	assert.Equal(1, result.Deleted)
	require.Len(client.puts, 1)
	assert.Equal("assets/app.js", *client.puts[0].Key)
	assert.Equal([]string{"gone.txt"}, client.deletes)
	assert.ElementsMatch([]string{"/assets/app.js", "/gone.txt"}, result.InvalidationPaths)
}

func Test_SyncCacheControl(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	scanned := scanDir(t, map[string]string{
		"index.html":       "<html>",
		"assets/app.1f.js": "hashed",
	})

	client := &fakeS3{}
	directive := Directive{Cached: true, Versioned: "assets"}
	_, err := Sync(context.Background(), client, "my-bucket", directive, scanned, nil)
	require.NoError(err)
	require.Len(client.puts, 2)

	byKey := map[string]s3.PutObjectInput{}
	for _, put := range client.puts {
		byKey[*put.Key] = put
	}
	assert.Equal(immutableCacheControl, *byKey["assets/app.1f.js"].CacheControl)
	assert.Equal(defaultCacheControl, *byKey["index.html"].CacheControl)
	assert.Equal("text/html; charset=utf-8", *byKey["index.html"].ContentType)
}

func Test_SyncPrefix(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	scanned := scanDir(t, map[string]string{"app.js": "x"})
	client := &fakeS3{}
	result, err := Sync(context.Background(), client, "my-bucket", Directive{Prefix: "docs"}, scanned, nil)
	require.NoError(err)

	require.Len(client.puts, 1)
	assert.Equal("docs/app.js", *client.puts[0].Key)
	assert.Equal([]string{"/docs/app.js"}, result.InvalidationPaths)
}

func Test_InvalidationPathsCollapseToWildcard(t *testing.T) {
	assert := assert.New(t)

	changed := make([]string, 40)
	for i := range changed {
		changed[i] = fmt.Sprintf("file-%d.html", i)
	}
	assert.Equal([]string{"/*"}, invalidationPaths(Directive{}, changed, nil))
	assert.Equal([]string{"/docs/*"}, invalidationPaths(Directive{Prefix: "docs"}, changed, nil))
	assert.Nil(invalidationPaths(Directive{}, nil, nil))
}

func Test_Invalidate(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	client := &fakeCloudFront{}
	require.NoError(Invalidate(context.Background(), client, "E123", []string{"/index.html"}))
	require.Len(client.batches, 1)
	assert.Equal([]string{"/index.html"}, client.batches[0])

	// nothing to invalidate, no API call
	require.NoError(Invalidate(context.Background(), client, "E123", nil))
	assert.Len(client.batches, 1)
}
