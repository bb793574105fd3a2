package graph

import (
	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type (
	// Directed is a directed graph whose vertices are keyed by their Id().
	// Adds are idempotent so components can re-declare shared resources
	// without tracking what has already been registered.
	Directed[V Identifiable] struct {
		underlying graph.Graph[string, V]
	}

	Edge[V Identifiable] struct {
		Source      V
		Destination V
	}

	Identifiable interface {
		Id() string
	}
)

func NewDirected[V Identifiable]() *Directed[V] {
	return &Directed[V]{
		underlying: graph.New(V.Id, graph.Directed(), graph.PreventCycles()),
	}
}

func (d *Directed[V]) AddVertex(v V) {
	err := d.underlying.AddVertex(v)
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		zap.S().With(zap.Error(err)).Errorf("unexpected error adding vertex %s", v.Id())
	}
}

func (d *Directed[V]) AddEdge(source V, dest V) error {
	d.AddVertex(source)
	d.AddVertex(dest)
	err := d.underlying.AddEdge(source.Id(), dest.Id())
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "adding edge %s -> %s", source.Id(), dest.Id())
	}
	return nil
}

func (d *Directed[V]) GetVertex(id string) (V, bool) {
	v, err := d.underlying.Vertex(id)
	if err != nil {
		if !errors.Is(err, graph.ErrVertexNotFound) {
			zap.S().With(zap.Error(err)).Errorf("unexpected error getting vertex %q", id)
		}
		var zero V
		return zero, false
	}
	return v, true
}

func (d *Directed[V]) HasEdge(source string, dest string) bool {
	_, err := d.underlying.Edge(source, dest)
	return err == nil
}

func (d *Directed[V]) Vertices() []V {
	adjacency := d.adjacency()
	vertices := make([]V, 0, len(adjacency))
	for id := range adjacency {
		if v, err := d.underlying.Vertex(id); err == nil {
			vertices = append(vertices, v)
		}
	}
	return vertices
}

func (d *Directed[V]) Edges() []Edge[V] {
	var edges []Edge[V]
	for _, neighbors := range d.adjacency() {
		for _, e := range neighbors {
			source, err := d.underlying.Vertex(e.Source)
			if err != nil {
				continue
			}
			dest, err := d.underlying.Vertex(e.Target)
			if err != nil {
				continue
			}
			edges = append(edges, Edge[V]{Source: source, Destination: dest})
		}
	}
	return edges
}

// Downstream returns the vertices the source vertex points at.
func (d *Directed[V]) Downstream(source V) []V {
	var results []V
	for _, e := range d.adjacency()[source.Id()] {
		if v, err := d.underlying.Vertex(e.Target); err == nil {
			results = append(results, v)
		}
	}
	return results
}

// Upstream returns the vertices pointing at the target vertex.
func (d *Directed[V]) Upstream(target V) []V {
	predecessors, err := d.underlying.PredecessorMap()
	if err != nil {
		// the in-memory store never errors; the interface allows it for
		// external-store implementations
		panic(err)
	}
	var results []V
	for _, e := range predecessors[target.Id()] {
		if v, err := d.underlying.Vertex(e.Source); err == nil {
			results = append(results, v)
		}
	}
	return results
}

func (d *Directed[V]) Len() int {
	order, err := d.underlying.Order()
	if err != nil {
		panic(err)
	}
	return order
}

func (d *Directed[V]) adjacency() map[string]map[string]graph.Edge[string] {
	adjacency, err := d.underlying.AdjacencyMap()
	if err != nil {
		panic(err)
	}
	return adjacency
}
