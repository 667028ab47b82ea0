// ABOUTME: Pipeline CLI command
// ABOUTME: Prints the stage dashboard or emits the pipeline as a Graphviz DOT graph
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/viz"
)

// PipelineCommand renders the pipeline dashboard, or DOT with --graph.
func PipelineCommand(store *db.Store, args []string) error {
	fs := flag.NewFlagSet("pipeline", flag.ExitOnError)
	graph := fs.Bool("graph", false, "Emit a Graphviz DOT graph instead of the dashboard")
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	partners, err := crm.LoadPartners(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to load partners: %w", err)
	}

	var out string
	if *graph {
		out, err = viz.GeneratePipelineGraph(ctx, partners)
		if err != nil {
			return err
		}
	} else {
		out = viz.RenderDashboard(viz.GenerateDashboardStats(partners, models.Today()))
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(out), 0644)
	}
	fmt.Print(out)
	return nil
}
