package core

import "strings"

type (
	// ResourceId uniquely identifies one provider resource description within
	// a deployment. Its string form is "provider:type:name".
	ResourceId struct {
		Provider string `yaml:"provider" json:"provider"`
		Type     string `yaml:"type" json:"type"`
		Name     string `yaml:"name" json:"name"`
	}

	// Resource is a declarative description of one cloud resource. Resources
	// carry no live-API handles; they are evaluated by the external
	// reconciliation engine after the graph is complete.
	Resource interface {
		Id() ResourceId
		// ComponentRefs names the components that declared or share this
		// resource, for attribution in logs and diffs.
		ComponentRefs() ComponentRefSet
	}

	// ComponentRefSet is the set of component names referencing a resource.
	ComponentRefSet map[string]struct{}
)

func (id ResourceId) String() string {
	return id.Provider + ":" + id.Type + ":" + id.Name
}

func (id ResourceId) IsZero() bool {
	return id == ResourceId{}
}

func (id ResourceId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ResourceId) UnmarshalText(data []byte) error {
	parts := strings.SplitN(string(data), ":", 3)
	if len(parts) == 3 {
		id.Provider, id.Type, id.Name = parts[0], parts[1], parts[2]
	}
	return nil
}

func RefsFor(components ...string) ComponentRefSet {
	set := make(ComponentRefSet, len(components))
	for _, c := range components {
		set[c] = struct{}{}
	}
	return set
}

func (s ComponentRefSet) Add(component string) {
	s[component] = struct{}{}
}

func (s ComponentRefSet) AddAll(other ComponentRefSet) {
	for c := range other {
		s[c] = struct{}{}
	}
}

func (s ComponentRefSet) Has(component string) bool {
	_, ok := s[component]
	return ok
}

func (s ComponentRefSet) Clone() ComponentRefSet {
	clone := make(ComponentRefSet, len(s))
	clone.AddAll(s)
	return clone
}
