package resources

import (
	"fmt"

	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/sanitization/aws"
)

const (
	S3_BUCKET_TYPE              = "s3_bucket"
	S3_BUCKET_POLICY_TYPE       = "s3_bucket_policy"
	ORIGIN_ACCESS_IDENTITY_TYPE = "cloudfront_origin_access_identity"
)

type (
	S3Bucket struct {
		Name          string
		ConstructRefs core.ComponentRefSet `yaml:"-"`
		// IndexDocument is set for buckets serving a fully static site.
		IndexDocument string
		ForceDestroy  bool
	}

	S3BucketPolicy struct {
		Name          string
		ConstructRefs core.ComponentRefSet `yaml:"-"`
		Bucket        *S3Bucket
		Policy        *PolicyDocument
	}

	OriginAccessIdentity struct {
		Name          string
		ConstructRefs core.ComponentRefSet `yaml:"-"`
		Comment       string
	}
)

func NewS3Bucket(name string, refs core.ComponentRefSet) *S3Bucket {
	return &S3Bucket{
		Name:          aws.S3BucketSanitizer.Apply(name),
		ConstructRefs: refs.Clone(),
		ForceDestroy:  true,
	}
}

func (bucket *S3Bucket) ComponentRefs() core.ComponentRefSet { return bucket.ConstructRefs }

func (bucket *S3Bucket) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: S3_BUCKET_TYPE, Name: bucket.Name}
}

func NewS3BucketPolicy(name string, bucket *S3Bucket, refs core.ComponentRefSet) *S3BucketPolicy {
	return &S3BucketPolicy{
		Name:          fmt.Sprintf("%s-policy", name),
		ConstructRefs: refs.Clone(),
		Bucket:        bucket,
	}
}

func (policy *S3BucketPolicy) ComponentRefs() core.ComponentRefSet { return policy.ConstructRefs }

func (policy *S3BucketPolicy) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: S3_BUCKET_POLICY_TYPE, Name: policy.Name}
}

func NewOriginAccessIdentity(name string, refs core.ComponentRefSet) *OriginAccessIdentity {
	return &OriginAccessIdentity{
		Name:          name,
		ConstructRefs: refs.Clone(),
		Comment:       fmt.Sprintf("origin access identity for %s", name),
	}
}

func (oai *OriginAccessIdentity) ComponentRefs() core.ComponentRefSet { return oai.ConstructRefs }

func (oai *OriginAccessIdentity) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: ORIGIN_ACCESS_IDENTITY_TYPE, Name: oai.Name}
}
