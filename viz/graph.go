// ABOUTME: Graphviz rendering of the partner pipeline
// ABOUTME: One cluster per stage with partners as nodes, stages linked in order
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/schoolcrm/models"
)

var stageColors = map[string]string{
	models.StatusNewLead:             "lightgrey",
	models.StatusContacted:           "lightblue",
	models.StatusProposalSent:        "lightyellow",
	models.StatusContractPreparation: "orange",
	models.StatusOnboarding:          "plum",
	models.StatusActive:              "lightgreen",
}

// GeneratePipelineGraph renders the pipeline as DOT.
func GeneratePipelineGraph(ctx context.Context, partners []models.Partner) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel("Partner Pipeline")
	graph.SetRankDir(cgraph.LRRank)

	summary := Summarize(partners)
	stageNodes := make(map[string]*cgraph.Node, len(summary))
	var prev *cgraph.Node
	for i, s := range summary {
		node, err := graph.CreateNodeByName(fmt.Sprintf("stage_%d", i))
		if err != nil {
			return "", fmt.Errorf("failed to create stage node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%d partners\n%s", s.Status, s.Count, FormatCents(s.ContractValue)))
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor(stageColors[s.Status])
		stageNodes[s.Status] = node

		if prev != nil {
			edge, err := graph.CreateEdgeByName(fmt.Sprintf("next_%d", i), prev, node)
			if err != nil {
				return "", fmt.Errorf("failed to create stage edge: %w", err)
			}
			edge.SetStyle("bold")
		}
		prev = node
	}

	for _, p := range partners {
		stage, ok := stageNodes[p.Status]
		if !ok {
			continue
		}
		node, err := graph.CreateNodeByName("partner_" + p.ID.String())
		if err != nil {
			return "", fmt.Errorf("failed to create partner node: %w", err)
		}
		node.SetLabel(p.Name)
		node.SetShape("ellipse")

		edge, err := graph.CreateEdgeByName("in_stage", stage, node)
		if err != nil {
			return "", fmt.Errorf("failed to create partner edge: %w", err)
		}
		edge.SetStyle("dashed")
		edge.SetDir("none")
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}
