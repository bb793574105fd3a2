package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type componentField struct {
	kind string
	name string
}

func (f componentField) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("kind", f.kind)
	enc.AddString("name", f.name)
	return nil
}

// ComponentField tags log entries with the component they were emitted for,
// so interleaved provisioning logs can be filtered per component.
func ComponentField(kind, name string) zap.Field {
	return zap.Object("component", componentField{kind: kind, name: name})
}

// FileField tags log entries with a build-output file path.
func FileField(path string) zap.Field {
	return zap.String("file", path)
}
