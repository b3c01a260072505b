package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"kerneltest/internal/ingest"
	"kerneltest/internal/model"
	"kerneltest/internal/repository"
	"kerneltest/internal/storage"
)

var (
	ErrIDRequired  = errors.New("id is required")
	ErrInvalidID   = errors.New("id is not a valid uuid")
	ErrNotFound    = errors.New("test run not found")
	ErrLogNotFound = errors.New("raw log not found")
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

var tracer = otel.Tracer("kerneltest/internal/service")

// Submission is one upload handed over by the HTTP layer after shape validation.
type Submission struct {
	Entry    ingest.EntryPoint
	Username string
	Filename string
	Open     ingest.Opener
}

// ListFilter selects a page of runs. Empty Release/Kernel and a nil Fedora
// match everything. Fedora 0 selects rawhide.
type ListFilter struct {
	Limit   int
	Offset  int
	Fedora  *int
	Release string
	Kernel  string
}

// ResultListResult is the service-level DTO for paginated runs.
type ResultListResult struct {
	Items []model.TestRun `json:"data"`
	Total int             `json:"total"`
}

// ResultService defines the use cases around uploaded test runs.
type ResultService interface {
	// Ingest runs the validation pipeline and, on success, archives the raw log
	// and stores the parsed run. User-correctable rejections come back as an
	// Outcome with a nil error; a non-nil error is a server fault.
	Ingest(ctx context.Context, sub Submission) (ingest.Outcome, error)

	// List returns runs newest first using limit/offset and a total count.
	List(ctx context.Context, f ListFilter) (*ResultListResult, error)

	// Get returns a single run with its test cases.
	Get(ctx context.Context, id string) (*model.TestRun, error)

	// OpenLog streams the archived raw log of a run. The caller closes the reader.
	OpenLog(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error)

	// LogURL returns a presigned download link for the raw log and its lifetime.
	LogURL(ctx context.Context, id string) (string, time.Duration, error)

	// Reserved is the account name nobody may submit under.
	Reserved() string
}

// Options configure a ResultService.
type Options struct {
	ReservedUsername string
	MaxUploadBytes   int64
	LogURLExpiry     time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type resultService struct {
	store    storage.Storage
	repo     repository.ResultRepository
	pipeline *ingest.Pipeline
	expiry   time.Duration
	now      func() time.Time
}

// NewResultService constructs a ResultService.
func NewResultService(store storage.Storage, repo repository.ResultRepository, opts Options) ResultService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	expiry := opts.LogURLExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &resultService{
		store:    store,
		repo:     repo,
		pipeline: ingest.NewPipeline(opts.ReservedUsername, opts.MaxUploadBytes),
		expiry:   expiry,
		now:      now,
	}
}

func (s *resultService) Reserved() string { return s.pipeline.Reserved() }

func channelOf(e ingest.EntryPoint) model.Channel {
	switch e {
	case ingest.Interactive:
		return model.ChannelSession
	case ingest.Autotest:
		return model.ChannelAutotest
	default:
		return model.ChannelAnonymous
	}
}

func (s *resultService) Ingest(ctx context.Context, sub Submission) (ingest.Outcome, error) {
	ctx, span := tracer.Start(ctx, "ResultService.Ingest")
	defer span.End()
	span.SetAttributes(attribute.String("kerneltest.entry", sub.Entry.String()))

	username := sub.Username
	exempt := sub.Entry == ingest.Autotest
	if exempt {
		username = s.pipeline.Reserved()
	}

	checked, err := s.pipeline.Validate(ctx, username, exempt, sub.Open)
	if err != nil {
		if out, ok := ingest.Rejected(err, s.pipeline.Reserved()); ok {
			span.SetAttributes(attribute.String("kerneltest.outcome", out.Kind.String()))
			return out, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "validate upload")
		return ingest.Outcome{}, err
	}

	id := uuid.New().String()
	key := storage.LogKey(id)

	if _, err := s.store.Put(ctx, key, bytes.NewReader(checked.Raw), storage.PutObjectOptions{
		Size:        int64(len(checked.Raw)),
		ContentType: "text/plain; charset=utf-8",
		Metadata: map[string]string{
			"tester":            username,
			"original-filename": sub.Filename,
		},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "archive log")
		return ingest.Outcome{}, fmt.Errorf("upload to storage: %w", err)
	}

	run := &model.TestRun{
		ID:        id,
		Tester:    username,
		Channel:   channelOf(sub.Entry),
		ParsedLog: checked.Log,
		LogPath:   key,
		CreatedAt: s.now().UTC(),
	}
	stored, err := s.repo.Create(ctx, run)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save run")
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return ingest.Outcome{}, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return ingest.Outcome{}, fmt.Errorf("db save failed: %w", err)
	}

	span.SetAttributes(
		attribute.String("kerneltest.outcome", ingest.Success.String()),
		attribute.String("kerneltest.run_id", stored.ID),
	)
	return ingest.Accepted(stored), nil
}

func (s *resultService) List(ctx context.Context, f ListFilter) (*ResultListResult, error) {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{
		Limit:   f.Limit,
		Offset:  f.Offset,
		Fedora:  f.Fedora,
		Release: f.Release,
		Kernel:  f.Kernel,
	})
	if err != nil {
		return nil, err
	}
	return &ResultListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *resultService) Get(ctx context.Context, id string) (*model.TestRun, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	run, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

func (s *resultService) OpenLog(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	run, err := s.Get(ctx, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	rc, info, err := s.store.Get(ctx, run.LogPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectInfo{}, ErrLogNotFound
		}
		return nil, storage.ObjectInfo{}, fmt.Errorf("fetch log: %w", err)
	}
	return rc, info, nil
}

func (s *resultService) LogURL(ctx context.Context, id string) (string, time.Duration, error) {
	run, err := s.Get(ctx, id)
	if err != nil {
		return "", 0, err
	}
	u, err := s.store.PresignGet(ctx, run.LogPath, s.expiry)
	if err != nil {
		return "", 0, fmt.Errorf("presign log: %w", err)
	}
	return u, s.expiry, nil
}
