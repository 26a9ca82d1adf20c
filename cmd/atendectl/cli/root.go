package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/atende-erp/atende/internal/historico"
	"github.com/atende-erp/atende/internal/recibos"
)

// Receipts renders receipts from the database or from decoded documents.
type Receipts interface {
	Render(ctx context.Context, id string) (recibos.Artifact, error)
	RenderReceipt(ctx context.Context, r recibos.Receipt) (recibos.Artifact, error)
}

// History loads enriched service history.
type History interface {
	Load(ctx context.Context, filters historico.Filters) ([]historico.Item, error)
}

// Jobs submits and inspects background work.
type Jobs interface {
	EnqueueReceipt(ctx context.Context, id string) (*asynq.TaskInfo, error)
	InspectQueue(ctx context.Context) (QueueStats, error)
}

// Factory opens the resources a command needs. Every function returns a
// release callback that is safe to call once; callers never see nil.
type Factory struct {
	Receipts        func(ctx context.Context) (Receipts, func(), error)
	OfflineReceipts func(ctx context.Context) (Receipts, func(), error)
	History         func(ctx context.Context) (History, func(), error)
	Jobs            func(ctx context.Context) (Jobs, func(), error)
}

// NewRootCommand builds the atendectl command tree.
func NewRootCommand(f Factory) *cobra.Command {
	root := &cobra.Command{
		Use:           "atendectl",
		Short:         "Operational tooling for receipts and service history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRenderCommand(f),
		newRenderJSONCommand(f),
		newHistoricoCommand(f),
		newEnqueueCommand(f),
		newQueueCommand(f),
	)
	return root
}

func newRenderCommand(f Factory) *cobra.Command {
	var id, out string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a stored receipt to a PDF file",
		Example: `  atendectl render --id 7f1c0f7e-0b59-4a43-9a63-3f0c5f7e2c11
  atendectl render --id 7f1c0f7e-0b59-4a43-9a63-3f0c5f7e2c11 --out /tmp/recibo.pdf`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := uuid.Parse(id); err != nil {
				return fmt.Errorf("invalid --id %q", id)
			}
			receipts, release, err := open(cmd.Context(), f.Receipts)
			if err != nil {
				return err
			}
			defer release()
			artifact, err := receipts.Render(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeArtifact(cmd.OutOrStdout(), artifact, out)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "receipt id")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to the receipt file name)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newRenderJSONCommand(f Factory) *cobra.Command {
	var file, out string
	cmd := &cobra.Command{
		Use:   "render-json",
		Short: "Render a receipt described by a JSON file, without a database",
		Example: `  atendectl render-json --file recibo.json --out recibo.pdf`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read receipt: %w", err)
			}
			var receipt recibos.Receipt
			if err := json.Unmarshal(data, &receipt); err != nil {
				return fmt.Errorf("decode receipt: %w", err)
			}
			receipts, release, err := open(cmd.Context(), f.OfflineReceipts)
			if err != nil {
				return err
			}
			defer release()
			artifact, err := receipts.RenderReceipt(cmd.Context(), receipt)
			if err != nil {
				return err
			}
			return writeArtifact(cmd.OutOrStdout(), artifact, out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "receipt JSON file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to the receipt file name)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newHistoricoCommand(f Factory) *cobra.Command {
	var consultor, cliente string
	cmd := &cobra.Command{
		Use:   "historico",
		Short: "Print the enriched service history as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters, err := parseFilters(consultor, cliente)
			if err != nil {
				return err
			}
			history, release, err := open(cmd.Context(), f.History)
			if err != nil {
				return err
			}
			defer release()
			items, err := history.Load(cmd.Context(), filters)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"items": items, "count": len(items)})
		},
	}
	cmd.Flags().StringVar(&consultor, "consultor", "", "filter by consultant id")
	cmd.Flags().StringVar(&cliente, "cliente", "", "filter by client id")
	return cmd
}

func newEnqueueCommand(f Factory) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Submit the background render job for a receipt",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := uuid.Parse(id); err != nil {
				return fmt.Errorf("invalid --id %q", id)
			}
			client, release, err := open(cmd.Context(), f.Jobs)
			if err != nil {
				return err
			}
			defer release()
			info, err := client.EnqueueReceipt(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"task_id": info.ID, "queue": info.Queue})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "receipt id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newQueueCommand(f Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show the job queue counters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, release, err := open(cmd.Context(), f.Jobs)
			if err != nil {
				return err
			}
			defer release()
			stats, err := client.InspectQueue(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}

func open[T any](ctx context.Context, fn func(context.Context) (T, func(), error)) (T, func(), error) {
	var zero T
	if fn == nil {
		return zero, nil, errors.New("command not available in this build")
	}
	v, release, err := fn(ctx)
	if err != nil {
		return zero, nil, err
	}
	if release == nil {
		release = func() {}
	}
	return v, release, nil
}

func parseFilters(consultor, cliente string) (historico.Filters, error) {
	var filters historico.Filters
	if consultor != "" {
		id, err := uuid.Parse(consultor)
		if err != nil {
			return filters, fmt.Errorf("invalid --consultor %q", consultor)
		}
		filters.ConsultorID = &id
	}
	if cliente != "" {
		id, err := uuid.Parse(cliente)
		if err != nil {
			return filters, fmt.Errorf("invalid --cliente %q", cliente)
		}
		filters.ClienteID = &id
	}
	return filters, nil
}

func writeArtifact(w io.Writer, artifact recibos.Artifact, out string) error {
	if out == "" {
		out = artifact.Filename
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(out, artifact.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	_, err := fmt.Fprintf(w, "%s (%d bytes)\n", out, len(artifact.Data))
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
