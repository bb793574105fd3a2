package resources

import (
	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/sanitization/aws"
)

const (
	SQS_QUEUE_TYPE                = "sqs_queue"
	SQS_EVENT_SOURCE_MAPPING_TYPE = "sqs_event_source_mapping"
)

type (
	SqsQueue struct {
		Name                      string
		ConstructRefs             core.ComponentRefSet `yaml:"-"`
		FifoQueue                 bool
		ContentBasedDeduplication bool
		VisibilityTimeoutSeconds  int
	}

	// SqsEventSourceMapping subscribes a lambda function to a queue.
	SqsEventSourceMapping struct {
		Name          string
		ConstructRefs core.ComponentRefSet `yaml:"-"`
		Queue         *SqsQueue
		Function      *LambdaFunction
		BatchSize     int
	}
)

func NewSqsQueue(name string, refs core.ComponentRefSet) *SqsQueue {
	return &SqsQueue{
		Name:                     aws.SqsQueueSanitizer.Apply(name),
		ConstructRefs:            refs.Clone(),
		VisibilityTimeoutSeconds: 300,
	}
}

func (q *SqsQueue) ComponentRefs() core.ComponentRefSet { return q.ConstructRefs }

func (q *SqsQueue) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: SQS_QUEUE_TYPE, Name: q.Name}
}

func NewSqsEventSourceMapping(queue *SqsQueue, fn *LambdaFunction, refs core.ComponentRefSet) *SqsEventSourceMapping {
	return &SqsEventSourceMapping{
		Name:          queue.Name + "-subscription",
		ConstructRefs: refs.Clone(),
		Queue:         queue,
		Function:      fn,
		BatchSize:     10,
	}
}

func (m *SqsEventSourceMapping) ComponentRefs() core.ComponentRefSet { return m.ConstructRefs }

func (m *SqsEventSourceMapping) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: SQS_EVENT_SOURCE_MAPPING_TYPE, Name: m.Name}
}
