package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/metagrid-io/catalog-console/internal/catalog"
	"github.com/metagrid-io/catalog-console/internal/pager"
)

func newListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog resources",
	}

	listCmd.PersistentFlags().Bool("all", false, "Follow pagination until the last page")
	listCmd.AddCommand(newListEndpointsCmd(), newListDatasetsCmd())

	return listCmd
}

func newListEndpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List metadata-collection endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d := buildDeps(cfg, nil)

			loader := pager.NewLoader(d.exec, catalog.OpListEndpoints, nil,
				cfg.PageSize, catalog.EndpointsConnection)

			items, err := drainLoader(cmd, loader)
			if err != nil {
				return err
			}

			renderEndpoints(cmd.OutOrStdout(), items)
			return nil
		},
	}
}

func newListDatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List cataloged datasets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d := buildDeps(cfg, nil)

			loader := pager.NewLoader(d.exec, catalog.OpListDatasets, nil,
				cfg.PageSize, catalog.DatasetsConnection)

			items, err := drainLoader(cmd, loader)
			if err != nil {
				return err
			}

			renderDatasets(cmd.OutOrStdout(), items)
			return nil
		},
	}
}

// drainLoader fetches the first page and, with --all, follows the cursor to
// the last page.
func drainLoader[T any](cmd *cobra.Command, loader *pager.Loader[T]) ([]T, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := loader.FetchFirst(ctx); err != nil {
		return nil, err
	}

	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return nil, err
	}
	for all && loader.Snapshot().PageInfo.HasNextPage {
		if err := loader.FetchNext(ctx); err != nil {
			return nil, err
		}
	}

	snap := loader.Snapshot()
	if !snap.Configured {
		return nil, fmt.Errorf("query backend not configured, set backend.url in the config file")
	}
	return snap.Items, nil
}

func renderEndpoints(w io.Writer, endpoints []*catalog.Endpoint) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"ID", "NAME", "CAPABILITIES", "COLLECTION", "TRIGGERABLE"})
	for _, ep := range endpoints {
		collection := ""
		if ep.Collection != nil {
			collection = ep.Collection.Name
			if ep.Collection.Disabled {
				collection += " (disabled)"
			}
		}
		t.AppendRow(table.Row{
			ep.ID,
			ep.Name,
			strings.Join(ep.Capabilities, ","),
			collection,
			ep.Permissions.CanTriggerCollection,
		})
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d endpoints)\n", len(endpoints))
}

func renderDatasets(w io.Writer, datasets []*catalog.Dataset) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"ID", "NAME", "SOURCE ENDPOINT"})
	for _, ds := range datasets {
		source := ds.SourceEndpointID
		if source == "" {
			source = "(unlinked)"
		}
		t.AppendRow(table.Row{ds.ID, ds.Name, source})
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d datasets)\n", len(datasets))
}
