// Package s3sync uploads changed static assets to the deployment bucket and
// issues the CloudFront invalidation for the paths that changed. It is the
// one place this library talks to AWS directly; the deploy harness calls it
// after the reconciliation engine has settled the resource graph.
package s3sync

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/stackform/stackform/pkg/assets"
)

type (
	// S3Client is the narrow slice of the S3 API sync needs; *s3.Client
	// satisfies it and tests substitute a mock.
	S3Client interface {
		PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
		DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	}

	// CloudFrontClient is the slice of the CloudFront API used for
	// invalidations.
	CloudFrontClient interface {
		CreateInvalidation(ctx context.Context, params *cloudfront.CreateInvalidationInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error)
	}

	// Directive mirrors the plan's asset copy directive fields the uploader
	// needs to pick cache headers.
	Directive struct {
		Prefix    string
		Cached    bool
		Versioned string
	}

	Result struct {
		Uploaded          int
		Deleted           int
		InvalidationPaths []string
	}
)

var (
	_ S3Client         = (*s3.Client)(nil)
	_ CloudFrontClient = (*cloudfront.Client)(nil)
)

const (
	// immutableCacheControl is applied to content-hashed files; they can be
	// cached forever because a content change changes the key.
	immutableCacheControl = "public,max-age=31536000,immutable"
	// defaultCacheControl lets the CDN cache briefly but forces revalidation
	// at the browser, matching how HTML entry points must behave.
	defaultCacheControl = "public,max-age=0,s-maxage=86400,must-revalidate"
)

// Sync uploads assets that changed since the previous manifest and deletes
// objects for files that disappeared. It returns the CloudFront paths to
// invalidate. Uploads are sequential; the per-file work is network-bound and
// the reconciliation engine parallelizes deployments above this layer.
func Sync(ctx context.Context, client S3Client, bucket string, directive Directive, scanned []assets.Asset, previous assets.Manifest) (Result, error) {
	current := assets.ToManifest(scanned)
	changed, removed := assets.Diff(previous, current)
	changedSet := make(map[string]struct{}, len(changed))
	for _, rel := range changed {
		changedSet[rel] = struct{}{}
	}

	var result Result
	for _, asset := range scanned {
		if _, ok := changedSet[asset.Rel]; !ok {
			continue
		}
		if err := putAsset(ctx, client, bucket, directive, asset); err != nil {
			return result, err
		}
		result.Uploaded++
	}

	for _, rel := range removed {
		key := objectKey(directive.Prefix, rel)
		_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return result, errors.Wrapf(err, "deleting stale object %s", key)
		}
		result.Deleted++
	}

	result.InvalidationPaths = invalidationPaths(directive, changed, removed)
	zap.S().Infow("asset sync complete",
		"bucket", bucket,
		"uploaded", result.Uploaded,
		"deleted", result.Deleted,
		"invalidations", len(result.InvalidationPaths),
	)
	return result, nil
}

func putAsset(ctx context.Context, client S3Client, bucket string, directive Directive, asset assets.Asset) error {
	f, err := os.Open(asset.Path)
	if err != nil {
		return errors.Wrapf(err, "opening asset %s", asset.Rel)
	}
	defer f.Close()

	key := objectKey(directive.Prefix, asset.Rel)
	contentType := mime.TypeByExtension(path.Ext(asset.Rel))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	cacheControl := defaultCacheControl
	if directive.Cached && isVersioned(directive, asset.Rel) {
		cacheControl = immutableCacheControl
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		Body:         f,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	return errors.Wrapf(err, "uploading asset %s", key)
}

// isVersioned reports whether rel sits under the directive's versioned
// subdirectory of content-hashed filenames.
func isVersioned(directive Directive, rel string) bool {
	if directive.Versioned == "" {
		return false
	}
	return strings.HasPrefix(rel, directive.Versioned+"/")
}

// invalidationPaths maps the changed keys to CDN paths. Above a small
// threshold a wildcard is cheaper than per-path invalidations, which
// CloudFront bills individually.
func invalidationPaths(directive Directive, changed []string, removed []string) []string {
	all := append(append([]string{}, changed...), removed...)
	if len(all) == 0 {
		return nil
	}
	const maxIndividualPaths = 30
	prefix := "/"
	if directive.Prefix != "" {
		prefix = "/" + directive.Prefix + "/"
	}
	if len(all) > maxIndividualPaths {
		return []string{prefix + "*"}
	}
	paths := make([]string, len(all))
	for i, rel := range all {
		paths[i] = prefix + rel
	}
	return paths
}

func objectKey(prefix string, rel string) string {
	if prefix == "" {
		return rel
	}
	return prefix + "/" + rel
}

// Invalidate issues one CloudFront invalidation covering the given paths.
func Invalidate(ctx context.Context, client CloudFrontClient, distributionId string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	ref := fmt.Sprintf("stackform-%d", time.Now().UnixNano())
	_, err := client.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(distributionId),
		InvalidationBatch: &cftypes.InvalidationBatch{
			CallerReference: aws.String(ref),
			Paths: &cftypes.Paths{
				Items:    paths,
				Quantity: aws.Int32(int32(len(paths))),
			},
		},
	})
	return errors.Wrap(err, "creating cloudfront invalidation")
}
