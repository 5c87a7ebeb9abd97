package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"inventory-import/core/importer"
	"inventory-import/core/logger"
	"inventory-import/feature/inventory"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	importFile   string
	importObject string
	importMode   string
)

// importCmd runs one import in the foreground and reports its progress.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import inventory items from a CSV file",
	Long: `Imports a CSV file into the inventory database and waits for the job to finish.

The file is read from disk (or stdin with --file -), or from the storage bucket with --object.
Ctrl+C cancels the job at the next row; rows already written are kept.

Examples:
  # Create new items
  import --file items.csv --mode create

  # Update existing items by SKU
  import --file items.csv --mode update_by_sku

  # Upsert from an uploaded object
  import --object uploads/items.csv --mode upsert`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "CSV file to import, - for stdin")
	importCmd.Flags().StringVarP(&importObject, "object", "o", "", "Object key of a CSV file in the storage bucket")
	importCmd.Flags().StringVarP(&importMode, "mode", "m", string(importer.ModeUpsert), "Reconciliation mode: create, update_by_sku or upsert")
	importCmd.MarkFlagsMutuallyExclusive("file", "object")
	importCmd.MarkFlagsOneRequired("file", "object")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode, err := importer.ParseMode(importMode)
	if err != nil {
		return err
	}

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	l := rt.logger
	defer l.Sync()

	if rt.db == nil {
		return errors.New("inventory database is unavailable")
	}

	store := inventory.NewGormStore(rt.db, l)
	if err := store.Prepare(ctx); err != nil {
		return err
	}
	svc := inventory.NewService(store, rt.client, rt.cfg.Storage, rt.cfg.Import, l)
	defer func() {
		_ = svc.Shutdown(context.Background())
	}()

	var view inventory.JobView
	if importObject != "" {
		view, err = svc.StartImportFromObject(ctx, importObject, mode)
	} else {
		var text string
		text, err = readImportFile(importFile, rt.cfg.Import.MaxUploadBytes)
		if err == nil {
			view, err = svc.StartImport(text, mode)
		}
	}
	if err != nil {
		return err
	}

	jl := logger.WithJob(l, view.ID)
	jl.Info("Import started",
		zap.String("source", view.Source),
		zap.String("mode", string(mode)),
		zap.Int("total", view.Snapshot.Total),
	)

	updates, unwatch, err := svc.Watch(view.ID)
	if err != nil {
		return err
	}
	defer unwatch()

	finished := make(chan struct{})
	g := new(errgroup.Group)

	g.Go(func() error {
		logProgress(jl, updates)
		return nil
	})

	g.Go(func() error {
		select {
		case <-ctx.Done():
			jl.Warn("Interrupted, cancelling import")
			if _, err := svc.Cancel(view.ID); err != nil && !errors.Is(err, importer.ErrInvalidState) {
				return err
			}
		case <-finished:
		}
		return nil
	})

	final, err := svc.Wait(context.Background(), view.ID)
	close(finished)
	if gErr := g.Wait(); gErr != nil {
		return gErr
	}
	if err != nil {
		return err
	}

	return summarize(jl, final)
}

// readImportFile reads the CSV text from path, or stdin for "-", up to limit bytes.
func readImportFile(path string, limit int) (string, error) {
	if limit <= 0 {
		limit = 10 << 20
	}

	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) > limit {
		return "", fmt.Errorf("file %s exceeds %d bytes", path, limit)
	}
	return string(data), nil
}

// logProgress logs each time the percentage moves, until the job finishes.
func logProgress(l *zap.Logger, updates <-chan importer.Snapshot) {
	last := -1
	for snap := range updates {
		if snap.Percentage == last || snap.Status.IsTerminal() {
			continue
		}
		last = snap.Percentage
		l.Info("Import progress",
			zap.String("status", string(snap.Status)),
			zap.Int("current", snap.Current),
			zap.Int("total", snap.Total),
			zap.Int("percentage", snap.Percentage),
		)
	}
}

// summarize logs the final counts and returns an error when the job failed.
func summarize(l *zap.Logger, view inventory.JobView) error {
	snap := view.Snapshot
	fields := []zap.Field{
		zap.String("status", string(snap.Status)),
		zap.Int("processed", snap.Processed()),
		zap.Int("total", snap.Total),
		zap.Int("created", snap.SuccessCount),
		zap.Int("updated", snap.UpdatedCount),
		zap.Int("errors", snap.ErrorCount),
		zap.Duration("elapsed", snap.FinishedAt.Sub(snap.StartedAt)),
	}
	if view.Report != "" {
		fields = append(fields, zap.String("report", view.Report))
	}

	for _, e := range view.Errors {
		l.Warn("Row error", zap.Int("row", e.Row), zap.String("message", e.Message))
	}
	if view.ErrorsTruncated {
		l.Warn("More row errors omitted", zap.Int("shown", len(view.Errors)))
	}

	switch {
	case snap.Cancelled():
		l.Warn("Import cancelled", fields...)
		return nil
	case snap.Status == importer.StatusError:
		l.Error("Import failed", append(fields, zap.String("reason", snap.Message))...)
		return fmt.Errorf("import failed: %s", snap.Message)
	default:
		l.Info("Import completed", fields...)
		return nil
	}
}
