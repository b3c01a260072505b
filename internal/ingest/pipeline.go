package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"kerneltest/internal/logparser"
	"kerneltest/internal/model"
)

var (
	// ErrTooLarge is returned when the upload exceeds the configured size.
	ErrTooLarge = errors.New("upload exceeds size limit")
	// ErrNoFile is returned when the opener is missing.
	ErrNoFile = errors.New("no upload stream")
)

// Opener yields the upload stream. The pipeline calls it at most once, after
// the username check, and always closes what it returns.
type Opener func() (io.ReadCloser, error)

// Checked is what survives the guard and the parser.
type Checked struct {
	Log         model.ParsedLog
	Raw         []byte
	ContentType string
}

// Pipeline runs the validation stages in their fixed order:
// username policy, content guard, parser.
type Pipeline struct {
	policy   UsernamePolicy
	maxBytes int64
}

// NewPipeline builds a pipeline reserving reservedName. maxBytes <= 0 disables
// the size limit.
func NewPipeline(reservedName string, maxBytes int64) *Pipeline {
	return &Pipeline{policy: NewUsernamePolicy(reservedName), maxBytes: maxBytes}
}

// Reserved returns the reserved account name.
func (p *Pipeline) Reserved() string { return p.policy.Reserved() }

// Validate checks username, then reads the stream once and runs the guard and
// parser over it. exempt skips the username policy; only the autotest path sets it.
func (p *Pipeline) Validate(ctx context.Context, username string, exempt bool, open Opener) (*Checked, error) {
	span := trace.SpanFromContext(ctx)

	if !exempt {
		if err := p.policy.Check(username); err != nil {
			return nil, err
		}
	}
	span.AddEvent("username_checked")

	if open == nil {
		return nil, ErrNoFile
	}
	rc, err := open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	data, err := p.readAll(rc)
	if err != nil {
		return nil, err
	}

	contentType, err := CheckContentType(data)
	span.SetAttributes(attribute.String("kerneltest.upload.content_type", contentType))
	if err != nil {
		return nil, err
	}
	span.AddEvent("content_checked")

	parsed, err := logparser.Parse(data)
	if err != nil {
		return nil, err
	}
	span.AddEvent("parsed")

	return &Checked{Log: parsed, Raw: data, ContentType: contentType}, nil
}

func (p *Pipeline) readAll(r io.Reader) ([]byte, error) {
	if p.maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, p.maxBytes)
	}
	return data, nil
}
