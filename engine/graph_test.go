package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/internal/testutil"
)

func TestEngine_Graph(t *testing.T) {
	inner, _, _ := newResearchTeam(t, testutil.NewScriptedDecider())

	board, err := New("editorial_board", testutil.NewScriptedDecider(),
		[]core.Actor{inner.AsActor(), testutil.NewEchoActor("writer")},
		func(o *Options) { o.SupervisorName = "chief_editor" })
	require.NoError(t, err)

	g := board.Graph()

	assert.Equal(t, "editorial_board", g.Name)
	assert.Equal(t, "chief_editor", g.Entry)
	require.Len(t, g.Nodes, 4)
	assert.Equal(t, NodeSupervisor, g.Nodes[0].Kind)
	assert.Equal(t, NodeOrchestrator, g.Nodes[1].Kind)
	assert.Equal(t, NodeWorker, g.Nodes[2].Kind)
	assert.Equal(t, NodeTerminal, g.Nodes[3].Kind)

	require.NotNil(t, g.Nodes[1].Graph)
	assert.Equal(t, "research_team", g.Nodes[1].Graph.Name)
	assert.Len(t, g.Nodes[1].Graph.Nodes, 4)

	assert.Contains(t, g.Edges, Edge{From: "chief_editor", To: "research_team", Conditional: true})
	assert.Contains(t, g.Edges, Edge{From: "research_team", To: "chief_editor"})
	assert.Contains(t, g.Edges, Edge{From: "chief_editor", To: core.Terminal, Conditional: true})
	assert.Len(t, g.Edges, 5)
}

func TestGraph_Render(t *testing.T) {
	inner, _, _ := newResearchTeam(t, testutil.NewScriptedDecider())
	board := newEngine(t, testutil.NewScriptedDecider(), []core.Actor{inner.AsActor()})

	tree := board.Graph().String()
	assert.True(t, strings.HasPrefix(tree, "team\n"))
	assert.Contains(t, tree, "  [supervisor] supervisor\n")
	assert.Contains(t, tree, "  [team] research_team\n")
	assert.Contains(t, tree, "    [agent] search_agent\n")

	mermaid := board.Graph().Mermaid()
	assert.Contains(t, mermaid, "flowchart TD\n")
	assert.Contains(t, mermaid, "__start__ --> team__supervisor")
	assert.Contains(t, mermaid, "subgraph team__research_team [research_team]")
	assert.Contains(t, mermaid, "team_research_team__supervisor -.-> team_research_team__search_agent")
	assert.Contains(t, mermaid, "team__research_team --> team__supervisor")
}
