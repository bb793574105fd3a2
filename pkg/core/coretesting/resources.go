// Package coretesting holds assertion helpers shared by component tests.
package coretesting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stackform/stackform/pkg/core"
)

type (
	StringDep struct {
		Source      string
		Destination string
	}

	// ResourcesExpectation asserts the contents of a resource graph by id.
	ResourcesExpectation struct {
		Nodes []string
		Deps  []StringDep

		// AssertSubset asserts the graph contains all the Nodes and Deps
		// instead of checking full equality.
		AssertSubset bool
	}
)

func (expect ResourcesExpectation) Assert(t *testing.T, g *core.ResourceGraph) {
	var res []string
	for _, r := range g.ListResources() {
		res = append(res, r.Id().String())
	}
	if expect.AssertSubset {
		assert.Subset(t, res, expect.Nodes)
	} else {
		assert.ElementsMatch(t, expect.Nodes, res)
	}

	var deps []StringDep
	for _, e := range g.ListDependencies() {
		deps = append(deps, StringDep{Source: e.Source.Id(), Destination: e.Destination.Id()})
	}
	if expect.AssertSubset {
		assert.Subset(t, deps, expect.Deps)
	} else {
		assert.ElementsMatch(t, expect.Deps, deps)
	}
}
