// Package importer provides the bulk inventory import engine.
//
// An import turns CSV text into typed candidate records, reconciles each record against
// the existing inventory under a fixed mode, and writes the result through an ItemStore,
// one row at a time and in file order.
//
// # Components
//
//   - Parser: Parse, ParseLines and ParseRecords split the text and apply the field Schema.
//   - Reconciler: Reconcile returns a Decision (insert, update or row error) for one record.
//   - Controller: owns the job state machine and the row loop, with Pause, Resume and Cancel.
//   - Progress: NewSnapshot derives the read model published after every row.
//
// # State Machine
//
//	idle -> preparing -> processing <-> paused
//	                         |            |
//	                         v            v
//	                     completed      error
//
// Completed and error are terminal; Reset returns the controller to idle.
//
// # Failure Semantics
//
// Row errors (missing identity, unknown SKU, store failures) are recorded and counted,
// never returned. Only precondition failures (bad mode, malformed file, no records,
// wrong state) are returned as errors. Cancellation is cooperative and does not roll back
// rows already written.
//
// # Usage
//
//	ctrl := importer.NewController(store, logger, cfg.Import)
//	if err := ctrl.StartCSV(ctx, text, importer.ModeUpsert); err != nil {
//	    return err
//	}
//	updates, stop := ctrl.Subscribe()
//	defer stop()
//	for snap := range updates {
//	    fmt.Printf("%d/%d\n", snap.Current, snap.Total)
//	}
package importer
