// Package storage wraps the MinIO Go client for the object storage used by imports.
//
// CSV files can be imported straight from a bucket object, and the row errors of a
// finished import are uploaded back as a CSV report. Both AWS S3 and self-hosted MinIO
// work.
//
// # Client Interface
//
// Client narrows the MinIO client to the calls the service makes, so tests can use the
// testify mock in core/storage/mocks.
//
// # Helpers
//
//   - EnsureBucket: creates the configured bucket on startup when missing.
//   - ReadObject: downloads an object with a size cap.
//   - Config.ReportKey: object key of a job's error report.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
