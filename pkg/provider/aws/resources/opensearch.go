package resources

import (
	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/sanitization/aws"
)

const OPENSEARCH_DOMAIN_TYPE = "opensearch_domain"

type (
	OpenSearchDomain struct {
		Name           string
		ConstructRefs  core.ComponentRefSet `yaml:"-"`
		EngineVersion  string
		ClusterConfig  OpenSearchClusterConfig
		EbsOptions     OpenSearchEbsOptions
		AccessPolicies *PolicyDocument
		// NodeToNodeEncryption and EncryptionAtRest are always on; the fields
		// exist so a transform hook can surface them in generated previews.
		NodeToNodeEncryption bool
		EncryptionAtRest     bool
	}

	OpenSearchClusterConfig struct {
		InstanceType  string
		InstanceCount int
		ZoneAwareness bool
	}

	OpenSearchEbsOptions struct {
		EbsEnabled bool
		VolumeSize int
		VolumeType string
	}
)

func NewOpenSearchDomain(name string, refs core.ComponentRefSet) *OpenSearchDomain {
	return &OpenSearchDomain{
		Name:          aws.OpenSearchDomainSanitizer.Apply(name),
		ConstructRefs: refs.Clone(),
		EngineVersion: "OpenSearch_2.11",
		ClusterConfig: OpenSearchClusterConfig{
			InstanceType:  "t3.small.search",
			InstanceCount: 1,
		},
		EbsOptions: OpenSearchEbsOptions{
			EbsEnabled: true,
			VolumeSize: 10,
			VolumeType: "gp3",
		},
		NodeToNodeEncryption: true,
		EncryptionAtRest:     true,
	}
}

func (domain *OpenSearchDomain) ComponentRefs() core.ComponentRefSet { return domain.ConstructRefs }

func (domain *OpenSearchDomain) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: OPENSEARCH_DOMAIN_TYPE, Name: domain.Name}
}
