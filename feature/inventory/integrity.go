package inventory

import (
	"context"
	"fmt"
)

// Check statuses.
const (
	CheckOK      = "ok"
	CheckFail    = "fail"
	CheckError   = "error"
	CheckSkipped = "skipped"
)

// CheckResult is the outcome of one integrity check.
type CheckResult struct {
	Status  string   `json:"status"`
	Missing []string `json:"missing,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// IntegrityReport covers everything an import depends on.
type IntegrityReport struct {
	Database CheckResult `json:"database"`
	Storage  CheckResult `json:"storage"`
}

// Healthy reports whether imports can run. Skipped storage is fine.
func (r IntegrityReport) Healthy() bool {
	return r.Database.Status == CheckOK &&
		(r.Storage.Status == CheckOK || r.Storage.Status == CheckSkipped)
}

// CheckIntegrity verifies the items table columns and the report bucket.
func (s *Service) CheckIntegrity(ctx context.Context) IntegrityReport {
	return IntegrityReport{
		Database: s.checkDatabase(ctx),
		Storage:  s.checkStorage(ctx),
	}
}

func (s *Service) checkDatabase(ctx context.Context) CheckResult {
	missing, err := s.store.MissingColumns(ctx)
	switch {
	case err != nil:
		return CheckResult{Status: CheckError, Error: err.Error()}
	case len(missing) > 0:
		return CheckResult{Status: CheckFail, Missing: missing}
	default:
		return CheckResult{Status: CheckOK}
	}
}

func (s *Service) checkStorage(ctx context.Context) CheckResult {
	if s.client == nil {
		return CheckResult{Status: CheckSkipped}
	}
	exists, err := s.client.BucketExists(ctx, s.storageCfg.Bucket)
	switch {
	case err != nil:
		return CheckResult{Status: CheckError, Error: fmt.Sprintf("failed to check bucket: %v", err)}
	case !exists:
		return CheckResult{Status: CheckFail, Missing: []string{s.storageCfg.Bucket}}
	default:
		return CheckResult{Status: CheckOK}
	}
}
