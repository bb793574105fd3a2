package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vertex string

func (v vertex) Id() string { return string(v) }

func Test_AddVertexIdempotent(t *testing.T) {
	assert := assert.New(t)

	d := NewDirected[vertex]()
	d.AddVertex("a")
	d.AddVertex("a")
	assert.Equal(1, d.Len())
}

func Test_AddEdge(t *testing.T) {
	assert := assert.New(t)

	d := NewDirected[vertex]()
	assert.NoError(d.AddEdge("a", "b"))
	// re-adding is a no-op
	assert.NoError(d.AddEdge("a", "b"))

	assert.True(d.HasEdge("a", "b"))
	assert.False(d.HasEdge("b", "a"))
	assert.Equal(2, d.Len())
}

func Test_AddEdgeRejectsCycle(t *testing.T) {
	assert := assert.New(t)

	d := NewDirected[vertex]()
	assert.NoError(d.AddEdge("a", "b"))
	assert.NoError(d.AddEdge("b", "c"))
	assert.Error(d.AddEdge("c", "a"))
}

func Test_TopologicalOrder(t *testing.T) {
	cases := []struct {
		name  string
		edges [][2]string
		lone  []string
		want  []string
	}{
		{
			name: "chain",
			edges: [][2]string{
				{"a", "b"}, {"b", "c"},
			},
			want: []string{"a", "b", "c"},
		},
		{
			name: "ties break lexicographically",
			edges: [][2]string{
				{"z", "m"}, {"a", "m"},
			},
			want: []string{"a", "z", "m"},
		},
		{
			name: "disconnected vertices included",
			edges: [][2]string{
				{"b", "c"},
			},
			lone: []string{"a"},
			want: []string{"a", "b", "c"},
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			d := NewDirected[vertex]()
			for _, v := range tt.lone {
				d.AddVertex(vertex(v))
			}
			for _, e := range tt.edges {
				require.NoError(d.AddEdge(vertex(e[0]), vertex(e[1])))
			}

			order, err := d.TopologicalOrder()
			require.NoError(err)
			assert.Equal(tt.want, order)
		})
	}
}

func Test_DownstreamUpstream(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	d := NewDirected[vertex]()
	require.NoError(d.AddEdge("a", "b"))
	require.NoError(d.AddEdge("a", "c"))
	require.NoError(d.AddEdge("b", "c"))

	assert.ElementsMatch([]string{"b", "c"}, SortedIds(d.Downstream("a")))
	assert.ElementsMatch([]string{"a", "b"}, SortedIds(d.Upstream("c")))
	assert.Empty(d.Upstream("a"))
}
