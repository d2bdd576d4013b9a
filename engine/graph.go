package engine

import (
	"fmt"
	"strings"

	"github.com/hupe1980/teammesh/core"
)

// NodeKind classifies the nodes of a run graph.
type NodeKind string

const (
	NodeSupervisor   NodeKind = "supervisor"
	NodeWorker       NodeKind = "worker"
	NodeOrchestrator NodeKind = "orchestrator"
	NodeTerminal     NodeKind = "terminal"
)

// Node is a vertex of a run graph. Orchestrator nodes carry the graph of
// the nested engine.
type Node struct {
	Name        string   `json:"name"`
	Kind        NodeKind `json:"kind"`
	Description string   `json:"description,omitempty"`
	Graph       *Graph   `json:"graph,omitempty"`
}

// Edge connects two nodes. Conditional edges leave the supervisor and are
// taken depending on its decision.
type Edge struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Conditional bool   `json:"conditional,omitempty"`
}

// Graph is a static description of an orchestrator's state machine.
type Graph struct {
	Name  string `json:"name"`
	Entry string `json:"entry"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

type grapher interface {
	Graph() *Graph
}

// Graph describes the engine's state machine, nested orchestrators included.
func (e *Engine) Graph() *Graph {
	sup := e.supervisor.Name()

	g := &Graph{
		Name:  e.name,
		Entry: sup,
		Nodes: []Node{{Name: sup, Kind: NodeSupervisor, Description: e.description}},
	}

	for _, name := range e.order {
		a := e.actors[name]

		n := Node{Name: name, Kind: NodeWorker, Description: a.Description()}
		if a.Kind() == core.KindOrchestrator {
			n.Kind = NodeOrchestrator
			if gr, ok := a.(grapher); ok {
				n.Graph = gr.Graph()
			}
		}

		g.Nodes = append(g.Nodes, n)
		g.Edges = append(g.Edges,
			Edge{From: sup, To: name, Conditional: true},
			Edge{From: name, To: sup},
		)
	}

	g.Nodes = append(g.Nodes, Node{Name: core.Terminal, Kind: NodeTerminal})
	g.Edges = append(g.Edges, Edge{From: sup, To: core.Terminal, Conditional: true})

	return g
}

// String renders the graph as an indented tree.
func (g *Graph) String() string {
	var b strings.Builder
	b.WriteString(g.Name + "\n")
	g.writeTree(&b, 1)
	return b.String()
}

func (g *Graph) writeTree(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)

	for _, n := range g.Nodes {
		switch n.Kind {
		case NodeSupervisor:
			fmt.Fprintf(b, "%s[supervisor] %s\n", indent, n.Name)
		case NodeTerminal:
			fmt.Fprintf(b, "%s[end] %s\n", indent, n.Name)
		case NodeOrchestrator:
			fmt.Fprintf(b, "%s[team] %s\n", indent, n.Name)
			if n.Graph != nil {
				n.Graph.writeTree(b, depth+1)
			}
		default:
			fmt.Fprintf(b, "%s[agent] %s\n", indent, n.Name)
		}
	}
}

// Mermaid renders the graph as a Mermaid flowchart. Nested orchestrators
// become subgraphs.
func (g *Graph) Mermaid() string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	b.WriteString("  __start__([start])\n")
	g.writeMermaid(&b, g.Name, "  ")
	fmt.Fprintf(&b, "  __start__ --> %s\n", mermaidID(g.Name, g.Entry))
	return b.String()
}

func (g *Graph) writeMermaid(b *strings.Builder, prefix, indent string) {
	for _, n := range g.Nodes {
		id := mermaidID(prefix, n.Name)
		switch {
		case n.Kind == NodeOrchestrator && n.Graph != nil:
			fmt.Fprintf(b, "%ssubgraph %s [%s]\n", indent, id, n.Name)
			n.Graph.writeMermaid(b, prefix+"/"+n.Name, indent+"  ")
			fmt.Fprintf(b, "%send\n", indent)
		case n.Kind == NodeTerminal:
			fmt.Fprintf(b, "%s%s([%s])\n", indent, id, n.Name)
		case n.Kind == NodeSupervisor:
			fmt.Fprintf(b, "%s%s{%s}\n", indent, id, n.Name)
		default:
			fmt.Fprintf(b, "%s%s[%s]\n", indent, id, n.Name)
		}
	}

	for _, e := range g.Edges {
		arrow := "-->"
		if e.Conditional {
			arrow = "-.->"
		}
		fmt.Fprintf(b, "%s%s %s %s\n", indent, mermaidID(prefix, e.From), arrow, mermaidID(prefix, e.To))
	}
}

func mermaidID(prefix, name string) string {
	raw := prefix + "__" + name
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, raw)
}
