// Package graph renders the dependency graph of a synthesized stack in DOT
// or Mermaid format.
package graph

import (
	"io"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Grouping selects how nodes are clustered.
type Grouping string

const (
	GroupNone Grouping = ""
	// GroupService clusters by AWS service, e.g. EC2 or ECS.
	GroupService Grouping = "service"
	// GroupConstruct clusters by the top-level construct that added the
	// resource.
	GroupConstruct Grouping = "construct"
)

// Generator creates dependency graphs from synthesized resources.
type Generator struct {
	// IncludeParameters includes template parameters as nodes.
	IncludeParameters bool

	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	GroupBy Grouping
}

// Generate writes the graph of nodes to w.
func (g *Generator) Generate(nodes []wetwire.ResourceNode, parameters map[string]wetwire.Parameter, w io.Writer) error {
	graph := g.buildGraph(nodes, parameters)

	var output string
	if g.Format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := io.WriteString(w, output)
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(nodes []wetwire.ResourceNode, parameters map[string]wetwire.Parameter) (string, error) {
	var sb strings.Builder
	if err := g.Generate(nodes, parameters, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *Generator) buildGraph(nodes []wetwire.ResourceNode, parameters map[string]wetwire.Parameter) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	// Sorted so the output is stable between runs.
	sorted := make([]wetwire.ResourceNode, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LogicalID < sorted[j].LogicalID })

	known := make(map[string]bool, len(sorted))
	for _, n := range sorted {
		known[n.LogicalID] = true
	}

	if g.GroupBy == GroupNone {
		for _, n := range sorted {
			addNode(graph, n)
		}
	} else {
		g.addClusteredNodes(graph, sorted)
	}

	if g.IncludeParameters {
		names := make([]string, 0, len(parameters))
		for name := range parameters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			n := graph.Node(name)
			n.Attr("shape", "ellipse")
			n.Attr("style", "dashed")
			n.Label(name)
		}
	}

	for _, n := range sorted {
		attrs := make(map[string]bool, len(n.AttrDependencies))
		for _, dep := range n.AttrDependencies {
			attrs[dep] = true
		}
		for _, dep := range n.Dependencies {
			_, isParam := parameters[dep]
			if !known[dep] && !(isParam && g.IncludeParameters) {
				continue
			}
			e := graph.Edge(graph.Node(n.LogicalID), graph.Node(dep))
			if attrs[dep] {
				e.Attr("color", "blue")
			}
		}
	}

	return graph
}

func addNode(graph *dot.Graph, n wetwire.ResourceNode) {
	graph.Node(n.LogicalID).Label(n.LogicalID + "\\n[" + n.Type + "]")
}

// addClusteredNodes puts groups of more than one resource in a cluster.
func (g *Generator) addClusteredNodes(graph *dot.Graph, nodes []wetwire.ResourceNode) {
	groups := make(map[string][]wetwire.ResourceNode)
	var order []string
	for _, n := range nodes {
		key := g.groupKey(n)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], n)
	}
	sort.Strings(order)

	for _, key := range order {
		members := groups[key]
		if len(members) == 1 || key == "" {
			for _, n := range members {
				addNode(graph, n)
			}
			continue
		}
		cluster := graph.Subgraph("cluster_"+key, dot.ClusterOption{})
		cluster.Attr("label", key)
		cluster.Attr("style", "rounded")
		cluster.Attr("bgcolor", "lightyellow")
		for _, n := range members {
			cluster.Node(n.LogicalID).Label(n.LogicalID + "\\n[" + n.Type + "]")
		}
	}
}

func (g *Generator) groupKey(n wetwire.ResourceNode) string {
	if g.GroupBy == GroupConstruct {
		root, _, _ := strings.Cut(n.Construct, "/")
		return root
	}
	return Service(n.Type)
}

// Service extracts the service from a CloudFormation type.
// e.g., "AWS::EC2::Subnet" -> "EC2", "Custom::SubnetTagging" -> "Custom"
func Service(cfType string) string {
	parts := strings.Split(cfType, "::")
	switch {
	case len(parts) >= 3:
		return parts[1]
	case len(parts) == 2:
		return parts[0]
	}
	return "Other"
}
