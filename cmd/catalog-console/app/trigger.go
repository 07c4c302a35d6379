package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var triggerCmd = &cobra.Command{
	Use:   "trigger <endpoint-id>",
	Short: "Trigger a metadata-collection run",
	Long: `Trigger a metadata-collection run on one endpoint and wait for the
reconciled status. The command fails before contacting the backend when the
endpoint is unknown, not triggerable, lacks the metadata capability, or
belongs to a disabled collection.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrigger,
}

func runTrigger(cmd *cobra.Command, args []string) error {
	endpointID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d := buildDeps(cfg, nil)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Trigger preconditions read the local endpoint lookup, so resolve the
	// endpoint listing first.
	if err := resolveEndpoint(ctx, d, endpointID); err != nil {
		return err
	}

	rec, err := d.reconciler.Trigger(ctx, endpointID)
	if err != nil {
		return err
	}
	slog.Info("Collection run started",
		"endpoint", endpointID,
		"run", rec.ID,
		"status", rec.Status)

	// Block until the completion poll settles or its budget runs out.
	d.reconciler.Wait()

	final, ok := d.reconciler.Record(endpointID)
	if !ok {
		return fmt.Errorf("run record for endpoint %s disappeared", endpointID)
	}

	if final.Status.IsTerminal() {
		cmd.Printf("Run %s finished: %s\n", final.ID, final.Status)
		if final.Error != "" {
			cmd.Printf("Error: %s\n", final.Error)
		}
	} else {
		cmd.Printf("Run %s still %s after the poll budget, check again later\n", final.ID, final.Status)
	}
	return nil
}

// resolveEndpoint pages through the endpoint listing until the target is in
// the local lookup.
func resolveEndpoint(ctx context.Context, d *deps, endpointID string) error {
	first, after := d.cfg.PageSize, ""
	for {
		conn, err := d.svc.ListEndpoints(ctx, first, after)
		if err != nil {
			return fmt.Errorf("failed to resolve endpoint %s: %w", endpointID, err)
		}
		d.index.Upsert(conn.Nodes...)

		if _, ok := d.index.Endpoint(endpointID); ok {
			return nil
		}
		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == "" {
			return nil
		}
		after = conn.PageInfo.EndCursor
	}
}
