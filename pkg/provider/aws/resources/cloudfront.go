package resources

import (
	"fmt"

	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/sanitization/aws"
)

const (
	CLOUDFRONT_DISTRIBUTION_TYPE = "cloudfront_distribution"
	CLOUDFRONT_FUNCTION_TYPE     = "cloudfront_function"
	CLOUDFRONT_KV_STORE_TYPE     = "cloudfront_key_value_store"
)

type (
	CloudfrontDistribution struct {
		Name                         string
		ConstructRefs                core.ComponentRefSet `yaml:"-"`
		Origins                      []*CloudfrontOrigin
		Enabled                      bool
		CloudfrontDefaultCertificate bool
		Aliases                      []string
		DefaultRootObject            string
		DefaultCacheBehavior         *CacheBehavior
		OrderedCacheBehaviors        []*CacheBehavior
		CustomErrorResponses         []CustomErrorResponse
		Restrictions                 *Restrictions
	}

	CloudfrontOrigin struct {
		OriginId           string
		DomainName         core.IaCValue
		OriginPath         string
		S3OriginConfig     *S3OriginConfig
		CustomOriginConfig *CustomOriginConfig
	}

	S3OriginConfig struct {
		OriginAccessIdentity core.IaCValue
	}

	CustomOriginConfig struct {
		HttpPort             int
		HttpsPort            int
		OriginProtocolPolicy string
		OriginSslProtocols   []string
		OriginReadTimeout    int
	}

	CacheBehavior struct {
		PathPattern          string
		TargetOriginId       string
		AllowedMethods       []string
		CachedMethods        []string
		ViewerProtocolPolicy string
		MinTtl               int
		DefaultTtl           int
		MaxTtl               int
		Compress             bool
		FunctionAssociations []FunctionAssociation
	}

	FunctionAssociation struct {
		EventType string
		Function  *CloudfrontFunction
	}

	CustomErrorResponse struct {
		ErrorCode        int
		ResponseCode     int
		ResponsePagePath string
	}

	Restrictions struct {
		GeoRestrictionType string
	}

	// CloudfrontFunction is a viewer-request/viewer-response handler deployed
	// to the CloudFront edge runtime. Code is the generated JS source.
	CloudfrontFunction struct {
		Name          string
		ConstructRefs core.ComponentRefSet `yaml:"-"`
		Runtime       string
		Code          string
		KeyValueStore *CloudfrontKeyValueStore
	}

	// CloudfrontKeyValueStore holds the routing metadata records read by the
	// shared router function at request time.
	CloudfrontKeyValueStore struct {
		Name          string
		ConstructRefs core.ComponentRefSet `yaml:"-"`
		// Entries maps namespaced keys to JSON-encoded routing records.
		Entries map[string]string
	}
)

func NewCloudfrontDistribution(name string, refs core.ComponentRefSet) *CloudfrontDistribution {
	return &CloudfrontDistribution{
		Name:                         name,
		ConstructRefs:                refs.Clone(),
		Enabled:                      true,
		CloudfrontDefaultCertificate: true,
		Restrictions:                 &Restrictions{GeoRestrictionType: "none"},
	}
}

func (distro *CloudfrontDistribution) ComponentRefs() core.ComponentRefSet {
	return distro.ConstructRefs
}

func (distro *CloudfrontDistribution) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: CLOUDFRONT_DISTRIBUTION_TYPE, Name: distro.Name}
}

// AddS3Origin wires a bucket origin restricted through an origin access
// identity, along with the bucket policy granting that identity read access.
func AddS3Origin(distro *CloudfrontDistribution, originId string, bucket *S3Bucket, oai *OriginAccessIdentity, g *core.ResourceGraph) *CloudfrontOrigin {
	origin := &CloudfrontOrigin{
		OriginId:   originId,
		DomainName: core.ValueOf(bucket, core.REGIONAL_DOMAIN_NAME_IAC_VALUE),
		S3OriginConfig: &S3OriginConfig{
			OriginAccessIdentity: core.ValueOf(oai, core.ID_IAC_VALUE),
		},
	}
	distro.Origins = append(distro.Origins, origin)

	policy := NewS3BucketPolicy(fmt.Sprintf("%s-%s", bucket.Name, originId), bucket, distro.ConstructRefs)
	policy.Policy = &PolicyDocument{
		Version: POLICY_VERSION,
		Statement: []StatementEntry{
			{
				Effect:    "Allow",
				Action:    []string{"s3:GetObject"},
				Resource:  []core.IaCValue{core.ValueOf(bucket, core.ALL_OBJECTS_ARN_IAC_VALUE)},
				Principal: &Principal{AWS: core.ValueOf(oai, core.ARN_IAC_VALUE)},
			},
		},
	}
	g.AddDependency(policy, oai)
	g.AddDependency(policy, bucket)
	g.AddDependency(distro, oai)
	g.AddDependency(distro, bucket)
	return origin
}

// AddCustomOrigin wires an https origin pointing at a function URL or other
// external endpoint.
func AddCustomOrigin(distro *CloudfrontDistribution, originId string, domainName core.IaCValue) *CloudfrontOrigin {
	origin := &CloudfrontOrigin{
		OriginId:   originId,
		DomainName: domainName,
		CustomOriginConfig: &CustomOriginConfig{
			HttpPort:             80,
			HttpsPort:            443,
			OriginProtocolPolicy: "https-only",
			OriginSslProtocols:   []string{"TLSv1.2"},
			OriginReadTimeout:    30,
		},
	}
	distro.Origins = append(distro.Origins, origin)
	return origin
}

func NewCloudfrontFunction(name string, code string, refs core.ComponentRefSet) *CloudfrontFunction {
	return &CloudfrontFunction{
		Name:          aws.CloudfrontFunctionSanitizer.Apply(name),
		ConstructRefs: refs.Clone(),
		Runtime:       "cloudfront-js-2.0",
		Code:          code,
	}
}

func (fn *CloudfrontFunction) ComponentRefs() core.ComponentRefSet { return fn.ConstructRefs }

func (fn *CloudfrontFunction) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: CLOUDFRONT_FUNCTION_TYPE, Name: fn.Name}
}

func NewCloudfrontKeyValueStore(name string, refs core.ComponentRefSet) *CloudfrontKeyValueStore {
	return &CloudfrontKeyValueStore{
		Name:          aws.KeyValueStoreSanitizer.Apply(name),
		ConstructRefs: refs.Clone(),
		Entries:       make(map[string]string),
	}
}

func (kv *CloudfrontKeyValueStore) ComponentRefs() core.ComponentRefSet { return kv.ConstructRefs }

func (kv *CloudfrontKeyValueStore) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: CLOUDFRONT_KV_STORE_TYPE, Name: kv.Name}
}
