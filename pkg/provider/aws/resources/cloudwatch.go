package resources

import (
	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/sanitization/aws"
)

const LOG_GROUP_TYPE = "log_group"

type LogGroup struct {
	Name            string
	ConstructRefs   core.ComponentRefSet `yaml:"-"`
	LogGroupName    string
	RetentionInDays int
}

func NewLogGroup(name string, logGroupName string, refs core.ComponentRefSet) *LogGroup {
	return &LogGroup{
		Name:            name,
		ConstructRefs:   refs.Clone(),
		LogGroupName:    aws.LogGroupSanitizer.Apply(logGroupName),
		RetentionInDays: 30,
	}
}

func (lg *LogGroup) ComponentRefs() core.ComponentRefSet { return lg.ConstructRefs }

func (lg *LogGroup) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: LOG_GROUP_TYPE, Name: lg.Name}
}
