package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"dat-manager/core/database"
	"dat-manager/core/filter"
	"dat-manager/core/models"
	"dat-manager/core/reconcile"
	"dat-manager/core/storage"
	"dat-manager/core/store"
	"dat-manager/feature/datjson"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var (
	// ErrNoInputs is returned when a request resolves to no input objects.
	ErrNoInputs = errors.New("no input documents")
	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoDatabase is returned when an export is requested without a
	// database connection.
	ErrNoDatabase = errors.New("database export is not configured")
)

// Backends bundles the external systems a Service talks to. DB may be nil.
type Backends struct {
	Client    storage.Client
	Bucket    string
	Region    string
	DB        *gorm.DB
	BatchSize int
}

// Service processes catalog jobs.
type Service struct {
	cfg      Config
	backends Backends
	logger   *zap.Logger
	sf       singleflight.Group
	exports  *reconcile.Cache
}

// NewService creates a new catalog service.
func NewService(cfg Config, backends Backends, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Service{
		cfg:      cfg,
		backends: backends,
		logger:   logger,
		exports:  reconcile.NewCache(time.Duration(cfg.ExportCacheSeconds) * time.Second),
	}
}

// Process runs req. Identical requests in flight at the same time share
// one execution and its report.
func (s *Service) Process(ctx context.Context, req Request) (*Report, error) {
	key, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to key request: %w", err)
	}

	result, err, shared := s.sf.Do(string(key), func() (any, error) {
		return s.process(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("shared catalog run", zap.String("output", result.(*Report).Output))
	}
	return result.(*Report), nil
}

// job is a validated request.
type job struct {
	key         store.KeyType
	bestKey     bool
	dedupe      store.Dedupe
	keep        filter.Predicate
	regions     []string
	output      string
	name        string
	norename    bool
	splitGames  bool
	export      bool
	runID       string
	dryRun      bool
	inputs      []string
	inputPrefix string
}

func (s *Service) compile(req Request) (*job, error) {
	j := &job{
		key:         store.KeyMachine,
		regions:     req.Regions,
		output:      req.Output,
		name:        req.Name,
		norename:    !req.KeepSources,
		splitGames:  req.OneItemPerGame,
		export:      req.Export,
		runID:       req.RunID,
		dryRun:      req.DryRun,
		inputs:      req.Inputs,
		inputPrefix: req.Prefix,
	}

	switch k := strings.ToLower(strings.TrimSpace(req.Key)); k {
	case "":
	case "best":
		j.bestKey = true
	default:
		kt, ok := store.ParseKeyType(k)
		if !ok || kt == store.KeyNone {
			return nil, fmt.Errorf("%w: unknown bucket key %q", ErrInvalidRequest, req.Key)
		}
		j.key = kt
	}

	dedupe := req.Dedupe
	if dedupe == "" {
		dedupe = s.cfg.Dedupe
	}
	d, ok := store.ParseDedupe(dedupe)
	if !ok {
		return nil, fmt.Errorf("%w: unknown dedupe mode %q", ErrInvalidRequest, dedupe)
	}
	j.dedupe = d

	var preds []filter.Predicate
	if len(req.Types) > 0 {
		types := make([]models.ItemType, 0, len(req.Types))
		for _, name := range req.Types {
			t := models.ParseItemType(name)
			if t == models.TypeUnknown {
				return nil, fmt.Errorf("%w: unknown item type %q", ErrInvalidRequest, name)
			}
			types = append(types, t)
		}
		preds = append(preds, filter.ByType(types...))
	}
	if len(req.Statuses) > 0 {
		statuses := make([]models.Status, 0, len(req.Statuses))
		for _, name := range req.Statuses {
			st := models.ParseStatus(name)
			if st == models.StatusNone && !strings.EqualFold(name, "none") {
				return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, name)
			}
			statuses = append(statuses, st)
		}
		preds = append(preds, filter.ByStatus(statuses...))
	}
	if req.MachinePattern != "" {
		p, err := filter.ByMachineName(req.MachinePattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		preds = append(preds, p)
	}
	if len(preds) > 0 {
		j.keep = filter.All(preds...)
	}

	if len(j.regions) == 0 {
		j.regions = s.cfg.RegionList()
	}
	if j.inputPrefix == "" {
		j.inputPrefix = s.cfg.InputPrefix
	}
	if j.name == "" {
		j.name = "catalog"
	}
	if j.output == "" {
		j.output = path.Join(s.cfg.OutputPrefix, j.name+".json")
	}
	if (j.export || j.runID != "") && s.backends.DB == nil {
		return nil, ErrNoDatabase
	}
	return j, nil
}

func (s *Service) process(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()

	j, err := s.compile(req)
	if err != nil {
		return nil, err
	}

	inputs := j.inputs
	if len(inputs) == 0 {
		inputs, err = storage.ListKeys(ctx, s.backends.Client, s.backends.Bucket, j.inputPrefix)
		if err != nil {
			return nil, err
		}
	}
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}

	docs, err := s.loadDocuments(ctx, inputs)
	if err != nil {
		return nil, err
	}

	cat := store.New(s.logger, s.cfg.Workers)
	for i, doc := range docs {
		datjson.Load(doc, cat, models.Source{Index: i, Name: inputs[i]}, s.logger)
	}

	report := &Report{Inputs: inputs, Output: j.output, Before: cat.Stats()}

	key := j.key
	if j.bestKey {
		key = cat.BestAvailableKeyType()
	}
	cat.BucketBy(key, j.dedupe, s.cfg.Lowercase, j.norename)

	if j.keep != nil {
		report.Filtered = filter.Run(cat, j.keep)
	}
	if len(j.regions) > 0 {
		res := filter.OneGamePerRegion(cat, j.regions, s.logger)
		report.Families = res.Families
		report.RemovedMachines = res.RemovedMachines
		report.Removed += res.RemovedItems
	}
	if j.splitGames {
		cat.OneItemPerGame()
	}
	report.Removed += cat.ClearMarked()

	var buf bytes.Buffer
	if err := datjson.Write(&buf, cat, datjson.Header{Name: j.name}, s.logger); err != nil {
		return nil, err
	}
	if err := s.writeOutput(ctx, j.output, &buf); err != nil {
		return nil, err
	}

	report.After = cat.Stats()
	report.Buckets = cat.BucketCount()

	switch {
	case j.runID != "":
		plan, applied, err := reconcile.ReconcileAndApply(ctx, cat, s.backends.DB, s.exports, j.runID, reconcile.Options{
			DryRun:    j.dryRun,
			DoInsert:  true,
			DoPurge:   true,
			DoSync:    true,
			Confirmed: true,
		}, s.backends.BatchSize)
		if err != nil {
			return nil, err
		}
		report.RunID = j.runID
		report.Reconcile = &plan.Summary
		report.Applied = applied
	case j.export:
		runID := uuid.NewString()
		if _, err := database.ExportCatalog(ctx, s.backends.DB, cat, runID, s.backends.BatchSize); err != nil {
			return nil, err
		}
		report.RunID = runID
	}

	report.DurationMS = time.Since(start).Milliseconds()
	s.logger.Info("catalog processed",
		zap.Int("inputs", len(inputs)),
		zap.String("output", j.output),
		zap.Int64("items_before", report.Before.Total),
		zap.Int64("items_after", report.After.Total),
		zap.Int("removed", report.Removed),
		zap.Int64("duration_ms", report.DurationMS))
	return report, nil
}

// loadDocuments fetches and decodes every input concurrently. The result
// keeps input order.
func (s *Service) loadDocuments(ctx context.Context, inputs []string) ([]*datjson.Document, error) {
	docs := make([]*datjson.Document, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, key := range inputs {
		g.Go(func() error {
			obj, err := s.backends.Client.GetObject(gctx, s.backends.Bucket, key, minio.GetObjectOptions{})
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", key, err)
			}
			defer obj.Close()

			doc, err := datjson.Decode(obj)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", key, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *Service) writeOutput(ctx context.Context, key string, buf *bytes.Buffer) error {
	if err := storage.EnsureBucket(ctx, s.backends.Client, s.backends.Bucket, s.backends.Region); err != nil {
		return err
	}
	_, err := s.backends.Client.PutObject(ctx, s.backends.Bucket, key, buf, int64(buf.Len()),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Health reports whether the storage bucket is reachable.
func (s *Service) Health(ctx context.Context) error {
	if _, err := s.backends.Client.BucketExists(ctx, s.backends.Bucket); err != nil {
		return fmt.Errorf("storage unreachable: %w", err)
	}
	return nil
}
