package resources

import (
	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/sanitization/aws"
)

const DYNAMODB_TABLE_TYPE = "dynamodb_table"

type (
	DynamodbTable struct {
		Name          string
		ConstructRefs core.ComponentRefSet `yaml:"-"`
		Attributes    []DynamodbTableAttribute
		BillingMode   string
		HashKey       string
		RangeKey      string
		// TtlAttribute enables item expiry on the named attribute.
		TtlAttribute           string
		GlobalSecondaryIndexes []DynamodbGlobalSecondaryIndex
	}

	DynamodbTableAttribute struct {
		Name string
		Type string
	}

	DynamodbGlobalSecondaryIndex struct {
		Name           string
		HashKey        string
		RangeKey       string
		ProjectionType string
	}
)

func NewDynamodbTable(name string, hashKey string, refs core.ComponentRefSet) *DynamodbTable {
	return &DynamodbTable{
		Name:          aws.DynamoDBTableSanitizer.Apply(name),
		ConstructRefs: refs.Clone(),
		BillingMode:   "PAY_PER_REQUEST",
		HashKey:       hashKey,
		Attributes:    []DynamodbTableAttribute{{Name: hashKey, Type: "S"}},
	}
}

func (table *DynamodbTable) ComponentRefs() core.ComponentRefSet { return table.ConstructRefs }

func (table *DynamodbTable) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: DYNAMODB_TABLE_TYPE, Name: table.Name}
}
