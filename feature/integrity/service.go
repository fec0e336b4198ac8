package integrity

import (
	"context"
	"errors"

	"dat-manager/core/storage"
	"dat-manager/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoDatabase is returned by schema checks when no database is connected.
var ErrNoDatabase = errors.New("database is not configured")

// Options locates the data the checks inspect.
type Options struct {
	Bucket       string
	InputPrefix  string
	OutputPrefix string
	Workers      int
}

// Service handles integrity checks.
type Service struct {
	client storage.Client
	db     *gorm.DB
	opts   Options
	logger *zap.Logger
}

// NewService creates a new integrity service. db may be nil.
func NewService(client storage.Client, db *gorm.DB, opts Options, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		db:     db,
		opts:   opts,
		logger: logger,
	}
}

func (s *Service) folders() []string {
	var out []string
	for _, f := range []string{s.opts.InputPrefix, s.opts.OutputPrefix} {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// CheckStructure returns a list of missing folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.client, s.opts.Bucket, s.folders())
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.client, s.opts.Bucket, s.logger, missing)
}

// CheckDocuments decodes every input document.
func (s *Service) CheckDocuments(ctx context.Context) (*checks.DocumentReport, error) {
	return checks.CheckDocuments(ctx, s.client, s.opts.Bucket, s.opts.InputPrefix, s.opts.Workers)
}

// CheckSchema inspects the export tables.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	return checks.CheckExportSchema(s.db)
}

// SyncSchema migrates the export tables to the current models.
func (s *Service) SyncSchema() ([]string, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	return checks.SyncExportSchema(s.db, s.logger)
}
