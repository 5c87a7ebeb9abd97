package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"inventory-import/core/importer"
	"inventory-import/core/logger"
	"inventory-import/core/metrics"
	"inventory-import/core/storage"
	"inventory-import/feature/inventory/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrJobNotFound is returned for an unknown import job id.
	ErrJobNotFound = errors.New("import job not found")
	// ErrStorageDisabled is returned when an object import is requested without storage.
	ErrStorageDisabled = errors.New("object storage is not configured")
)

// SourceUpload marks jobs whose CSV came in the request body.
const SourceUpload = "upload"

const reportTimeout = 30 * time.Second

type job struct {
	id        string
	source    string
	createdAt time.Time
	ctrl      *importer.Controller
	finalized chan struct{}
	reportKey string
}

// JobView is the API representation of an import job.
type JobView struct {
	ID              string              `json:"id"`
	Source          string              `json:"source"`
	CreatedAt       time.Time           `json:"created_at"`
	Snapshot        importer.Snapshot   `json:"snapshot"`
	Errors          []importer.RowError `json:"errors,omitempty"`
	ErrorsTruncated bool                `json:"errors_truncated,omitempty"`
	Report          string              `json:"report,omitempty"`
}

// Store is the persistence the service needs. GormStore implements it.
type Store interface {
	importer.ItemStore
	FindBySKU(ctx context.Context, sku string) ([]models.Item, error)
	MissingColumns(ctx context.Context) ([]string, error)
}

// Service runs import jobs against the inventory store.
type Service struct {
	store      Store
	client     storage.Client
	storageCfg storage.Config
	cfg        importer.Config
	logger     *zap.Logger
	observer   *metrics.Observer

	// base outlives requests; Shutdown cancels it.
	base   context.Context
	cancel context.CancelFunc
	fetch  singleflight.Group
	wg     sync.WaitGroup

	mu   sync.RWMutex
	jobs map[string]*job
}

// NewService creates a new import service. A nil client disables object imports and
// error reports.
func NewService(store Store, client storage.Client, storageCfg storage.Config, cfg importer.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Service{
		store:      store,
		client:     client,
		storageCfg: storageCfg,
		cfg:        cfg,
		logger:     logger,
		observer:   metrics.NewObserver(),
		base:       base,
		cancel:     cancel,
		jobs:       make(map[string]*job),
	}
}

// StartImport starts a job for CSV text. The job runs in the background until it
// finishes, is cancelled, or the service shuts down.
func (s *Service) StartImport(text string, mode importer.Mode) (JobView, error) {
	return s.start(text, mode, SourceUpload)
}

// StartImportFromObject downloads a CSV object from the bucket and starts a job for it.
// Concurrent requests for the same object share one download.
func (s *Service) StartImportFromObject(ctx context.Context, key string, mode importer.Mode) (JobView, error) {
	if s.client == nil {
		return JobView{}, ErrStorageDisabled
	}
	if !mode.IsValid() {
		return JobView{}, &importer.ModeError{Value: string(mode)}
	}

	// The download is shared, so it must not die with the first caller's request.
	ch := s.fetch.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout())
		defer cancel()
		return storage.ReadObject(fctx, s.client, s.storageCfg.Bucket, key, int64(s.maxBytes()))
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return JobView{}, ctx.Err()
	}
	if res.Err != nil {
		return JobView{}, res.Err
	}
	if res.Shared {
		s.logger.Debug("Shared object download", zap.String("object", key))
	}
	return s.start(string(res.Val.([]byte)), mode, key)
}

func (s *Service) start(text string, mode importer.Mode, source string) (JobView, error) {
	if !mode.IsValid() {
		return JobView{}, &importer.ModeError{Value: string(mode)}
	}

	id := uuid.NewString()
	l := logger.WithJob(s.logger, id)
	ctrl := importer.NewController(s.store, l, s.cfg, importer.WithObserver(s.observer))

	s.observer.JobStarted()
	if err := ctrl.StartCSV(s.base, text, mode); err != nil {
		l.Warn("Import rejected", zap.String("source", source), zap.Error(err))
		return JobView{}, err
	}

	j := &job{
		id:        id,
		source:    source,
		createdAt: time.Now(),
		ctrl:      ctrl,
		finalized: make(chan struct{}),
	}
	s.mu.Lock()
	s.jobs[id] = j
	s.mu.Unlock()

	s.wg.Add(1)
	go s.watch(j, l)

	return s.view(j, s.cfg.PreviewLimit()), nil
}

// watch waits for the run to end and uploads the error report.
func (s *Service) watch(j *job, l *zap.Logger) {
	defer s.wg.Done()
	defer close(j.finalized)

	<-j.ctrl.Done()
	snap := j.ctrl.Snapshot()
	l.Info("Import finished",
		zap.String("status", string(snap.Status)),
		zap.Int("processed", snap.Current),
		zap.Int("errors", snap.ErrorCount),
	)

	errs := j.ctrl.Errors()
	if s.client == nil || len(errs) == 0 {
		return
	}
	key, err := s.uploadReport(j.id, errs)
	if err != nil {
		l.Warn("Failed to upload error report", zap.Error(err))
		return
	}
	s.mu.Lock()
	j.reportKey = key
	s.mu.Unlock()
	l.Info("Error report uploaded", zap.String("object", key))
}

func (s *Service) uploadReport(id string, errs []importer.RowError) (string, error) {
	data, err := BuildReport(errs)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.base), reportTimeout)
	defer cancel()

	key := s.storageCfg.ReportKey(id)
	_, err = s.client.PutObject(ctx, s.storageCfg.Bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/csv"})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}

// Job returns a job with a capped error preview.
func (s *Service) Job(id string) (JobView, error) {
	j, err := s.get(id)
	if err != nil {
		return JobView{}, err
	}
	return s.view(j, s.cfg.PreviewLimit()), nil
}

// Jobs lists all jobs, oldest first, without error previews.
func (s *Service) Jobs() []JobView {
	s.mu.RLock()
	list := make([]*job, 0, len(s.jobs))
	for _, j := range s.jobs {
		list = append(list, j)
	}
	s.mu.RUnlock()

	sort.Slice(list, func(a, b int) bool {
		return list[a].createdAt.Before(list[b].createdAt)
	})
	views := make([]JobView, 0, len(list))
	for _, j := range list {
		views = append(views, s.view(j, 0))
	}
	return views
}

// Errors returns up to limit row errors of a job. A limit of zero or less returns all.
func (s *Service) Errors(id string, limit int) ([]importer.RowError, error) {
	j, err := s.get(id)
	if err != nil {
		return nil, err
	}
	errs := j.ctrl.Errors()
	if limit > 0 && len(errs) > limit {
		errs = errs[:limit]
	}
	return errs, nil
}

// Watch streams snapshots of a job until it finishes.
func (s *Service) Watch(id string) (<-chan importer.Snapshot, func(), error) {
	j, err := s.get(id)
	if err != nil {
		return nil, nil, err
	}
	ch, stop := j.ctrl.Subscribe()
	return ch, stop, nil
}

// Wait blocks until a job has finished and its report has been handled.
func (s *Service) Wait(ctx context.Context, id string) (JobView, error) {
	j, err := s.get(id)
	if err != nil {
		return JobView{}, err
	}
	select {
	case <-j.finalized:
		return s.view(j, s.cfg.PreviewLimit()), nil
	case <-ctx.Done():
		return s.view(j, s.cfg.PreviewLimit()), ctx.Err()
	}
}

// Pause suspends a processing job.
func (s *Service) Pause(id string) (JobView, error) {
	return s.control(id, (*importer.Controller).Pause)
}

// Resume continues a paused job.
func (s *Service) Resume(id string) (JobView, error) {
	return s.control(id, (*importer.Controller).Resume)
}

// Cancel stops a running job at its next row boundary.
func (s *Service) Cancel(id string) (JobView, error) {
	return s.control(id, (*importer.Controller).Cancel)
}

func (s *Service) control(id string, op func(*importer.Controller) error) (JobView, error) {
	j, err := s.get(id)
	if err != nil {
		return JobView{}, err
	}
	if err := op(j.ctrl); err != nil {
		return JobView{}, err
	}
	return s.view(j, s.cfg.PreviewLimit()), nil
}

// Discard removes a finished job and its error report.
func (s *Service) Discard(ctx context.Context, id string) error {
	j, err := s.get(id)
	if err != nil {
		return err
	}
	// Reset only after watch has read the errors and stored the report key.
	select {
	case <-j.finalized:
	case <-j.ctrl.Done():
		select {
		case <-j.finalized:
		case <-ctx.Done():
			return ctx.Err()
		}
	default:
		return fmt.Errorf("cannot discard job %s while %s: %w", id, j.ctrl.Snapshot().Status, importer.ErrInvalidState)
	}
	if err := j.ctrl.Reset(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.jobs, id)
	key := j.reportKey
	s.mu.Unlock()

	if key != "" && s.client != nil {
		if err := s.client.RemoveObject(ctx, s.storageCfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
			s.logger.Warn("Failed to remove error report", zap.String("object", key), zap.Error(err))
		}
	}
	return nil
}

// Item returns the items stored under a SKU.
func (s *Service) Item(ctx context.Context, sku string) ([]models.Item, error) {
	return s.store.FindBySKU(ctx, sku)
}

// Shutdown aborts running jobs and waits for them to settle or ctx to end.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) get(id string) (*job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return j, nil
}

func (s *Service) view(j *job, preview int) JobView {
	v := JobView{
		ID:        j.id,
		Source:    j.source,
		CreatedAt: j.createdAt,
		Snapshot:  j.ctrl.Snapshot(),
	}
	if preview > 0 {
		errs := j.ctrl.Errors()
		if len(errs) > preview {
			v.Errors = errs[:preview]
			v.ErrorsTruncated = true
		} else {
			v.Errors = errs
		}
	}

	s.mu.RLock()
	v.Report = j.reportKey
	s.mu.RUnlock()
	return v
}

func (s *Service) fetchTimeout() time.Duration {
	if s.storageCfg.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.storageCfg.TimeoutSeconds) * time.Second
}

func (s *Service) maxBytes() int {
	if s.cfg.MaxUploadBytes <= 0 {
		return 10 << 20
	}
	return s.cfg.MaxUploadBytes
}
