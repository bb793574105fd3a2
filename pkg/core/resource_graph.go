package core

import (
	"reflect"

	"github.com/stackform/stackform/pkg/graph"
	"go.uber.org/zap"
)

type (
	// ResourceGraph is the dependency graph of resource descriptions a
	// deployment hands to the external reconciliation engine. Additions are
	// idempotent so that re-running a component with an unchanged plan leaves
	// the graph unchanged.
	ResourceGraph struct {
		underlying *graph.Directed[graphResource]
	}

	// graphResource adapts Resource's structured id to the string ids the
	// graph package keys by.
	graphResource struct {
		Resource
	}
)

func (r graphResource) Id() string { return r.Resource.Id().String() }

func NewResourceGraph() *ResourceGraph {
	return &ResourceGraph{
		underlying: graph.NewDirected[graphResource](),
	}
}

func (rg *ResourceGraph) AddResource(resource Resource) {
	if existing, ok := rg.underlying.GetVertex(resource.Id().String()); ok {
		existing.ComponentRefs().AddAll(resource.ComponentRefs())
		return
	}
	rg.underlying.AddVertex(graphResource{resource})
	zap.S().Debugf("adding resource %s", resource.Id())
}

// AddDependency records that source must be created after dest. Both are
// added to the graph if absent.
func (rg *ResourceGraph) AddDependency(source Resource, dest Resource) {
	rg.AddResource(source)
	rg.AddResource(dest)
	err := rg.underlying.AddEdge(graphResource{source}, graphResource{dest})
	if err != nil {
		zap.S().With(zap.Error(err)).Errorf("could not add dependency %s -> %s", source.Id(), dest.Id())
		return
	}
	zap.S().Debugf("adding dependency %s -> %s", source.Id(), dest.Id())
}

// AddDependenciesReflect adds source and a dependency for every Resource or
// IaCValue reachable through its exported fields, one level deep. Supported
// field shapes: Resource, *T, []Resource, []*T, map[string]Resource and the
// IaCValue equivalents.
func (rg *ResourceGraph) AddDependenciesReflect(source Resource) {
	rg.AddResource(source)

	sourceValue := reflect.ValueOf(source)
	sourceType := sourceValue.Type()
	if sourceType.Kind() == reflect.Pointer {
		sourceValue = sourceValue.Elem()
		sourceType = sourceType.Elem()
	}
	add := func(targetValue reflect.Value) {
		if targetValue.Kind() == reflect.Pointer && targetValue.IsNil() {
			return
		}
		if !targetValue.CanInterface() {
			return
		}
		switch target := targetValue.Interface().(type) {
		case Resource:
			rg.AddDependency(source, target)
		case IaCValue:
			rg.addValueDependency(source, target)
		case *IaCValue:
			if target != nil {
				rg.addValueDependency(source, *target)
			}
		}
	}
	for i := 0; i < sourceType.NumField(); i++ {
		fieldValue := sourceValue.Field(i)
		switch fieldValue.Kind() {
		case reflect.Slice, reflect.Array:
			for elemIdx := 0; elemIdx < fieldValue.Len(); elemIdx++ {
				add(fieldValue.Index(elemIdx))
			}

		case reflect.Map:
			for iter := fieldValue.MapRange(); iter.Next(); {
				add(iter.Value())
			}

		default:
			add(fieldValue)
		}
	}
}

func (rg *ResourceGraph) addValueDependency(source Resource, value IaCValue) {
	if value.ResourceId.IsZero() {
		return
	}
	if dest, ok := rg.GetResource(value.ResourceId); ok {
		rg.AddDependency(source, dest)
	}
}

func (rg *ResourceGraph) GetResource(id ResourceId) (Resource, bool) {
	v, ok := rg.underlying.GetVertex(id.String())
	if !ok {
		return nil, false
	}
	return v.Resource, true
}

// GetResourceOfType fetches a resource by id, asserting its concrete type.
func GetResourceOfType[T Resource](rg *ResourceGraph, id ResourceId) (T, bool) {
	var zero T
	res, ok := rg.GetResource(id)
	if !ok {
		return zero, false
	}
	typed, ok := res.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// ListResourcesOfType returns every resource in the graph assignable to T.
func ListResourcesOfType[T Resource](rg *ResourceGraph) []T {
	var matches []T
	for _, res := range rg.ListResources() {
		if typed, ok := res.(T); ok {
			matches = append(matches, typed)
		}
	}
	return matches
}

func (rg *ResourceGraph) ListResources() []Resource {
	vertices := rg.underlying.Vertices()
	resources := make([]Resource, len(vertices))
	for i, v := range vertices {
		resources[i] = v.Resource
	}
	return resources
}

func (rg *ResourceGraph) ListDependencies() []graph.Edge[graph.Identifiable] {
	edges := rg.underlying.Edges()
	out := make([]graph.Edge[graph.Identifiable], len(edges))
	for i, e := range edges {
		out[i] = graph.Edge[graph.Identifiable]{Source: e.Source, Destination: e.Destination}
	}
	return out
}

func (rg *ResourceGraph) HasDependency(source Resource, dest Resource) bool {
	return rg.underlying.HasEdge(source.Id().String(), dest.Id().String())
}

func (rg *ResourceGraph) Len() int {
	return rg.underlying.Len()
}

// TopologicalOrder returns resource ids in creation order, stable across runs.
func (rg *ResourceGraph) TopologicalOrder() ([]string, error) {
	order, err := rg.underlying.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	// edges point create-after -> create-before, so creation order is the
	// reverse of the edge direction order
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}
