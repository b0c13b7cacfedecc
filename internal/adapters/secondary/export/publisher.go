package export

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/time/rate"
)

// BatchSubmitter is the Google Slides API client the publisher drives.
// Implementations should return an *ExportError with Retryable set for
// quota (429) and transient server (5xx) failures.
type BatchSubmitter interface {
	// SubmitBatch sends one presentations.batchUpdate call
	SubmitBatch(ctx context.Context, batch SlidesBatch) error
	// SpeakerNotesObjectID looks up the notes shape of a created slide
	SpeakerNotesObjectID(ctx context.Context, slideObjectID string) (string, error)
}

// RetryConfig defines backoff for retryable submit failures
type RetryConfig struct {
	MaxRetries    int           `json:"max_retries"`
	InitialDelay  time.Duration `json:"initial_delay"`
	MaxDelay      time.Duration `json:"max_delay"`
	BackoffFactor float64       `json:"backoff_factor"`
}

// DefaultRetryConfig returns the publisher's default retry policy
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// delay returns the wait before retry number attempt (1-based)
func (c RetryConfig) delay(attempt int) time.Duration {
	d := float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt-1))
	if c.MaxDelay > 0 && d > float64(c.MaxDelay) {
		d = float64(c.MaxDelay)
	}
	return time.Duration(d)
}

// DefaultWritesPerMinute is the per-user write quota of the Slides API
const DefaultWritesPerMinute = 60

// PublishResult summarizes a publish run
type PublishResult struct {
	Batches      int `json:"batches"`
	Requests     int `json:"requests"`
	NotesWritten int `json:"notesWritten"`
	Retries      int `json:"retries"`
}

// Publisher submits a SlidesDocument under the write quota, retrying
// retryable failures with exponential backoff
type Publisher struct {
	submitter BatchSubmitter
	limiter   *rate.Limiter
	retry     RetryConfig
	batchSize int
	logger    *slog.Logger
}

// PublisherOption configures a Publisher
type PublisherOption func(*Publisher)

// WithWritesPerMinute spaces writes evenly under the given quota
func WithWritesPerMinute(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
		}
	}
}

// WithLimiter replaces the write limiter
func WithLimiter(l *rate.Limiter) PublisherOption {
	return func(p *Publisher) {
		if l != nil {
			p.limiter = l
		}
	}
}

// WithRetryConfig sets the retry policy
func WithRetryConfig(c RetryConfig) PublisherOption {
	return func(p *Publisher) {
		p.retry = c
	}
}

// WithNotesBatchSize caps notes requests per batch
func WithNotesBatchSize(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// NewPublisher creates a publisher for the given client
func NewPublisher(submitter BatchSubmitter, logger *slog.Logger, opts ...PublisherOption) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Publisher{
		submitter: submitter,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/DefaultWritesPerMinute), 1),
		retry:     DefaultRetryConfig(),
		batchSize: DefaultBatchSize,
		logger:    logger.With("component", "slides-publisher"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish submits every batch in order, then resolves the speaker notes
// shapes and writes the pending notes. It stops at the first batch that
// fails after its retries, since later batches may reference its objects.
func (p *Publisher) Publish(ctx context.Context, doc *SlidesDocument) (*PublishResult, error) {
	result := &PublishResult{}

	for i, batch := range doc.Batches {
		err := p.withRetry(ctx, result, fmt.Sprintf("batch %d", i+1), true, func(ctx context.Context) error {
			return p.submitter.SubmitBatch(ctx, batch)
		})
		if err != nil {
			return result, fmt.Errorf("submitting batch %d of %d: %w", i+1, len(doc.Batches), err)
		}
		result.Batches++
		result.Requests += len(batch.Requests)
	}

	var notes []SlidesRequest
	for _, note := range doc.PendingNotes {
		var objectID string
		err := p.withRetry(ctx, result, "notes lookup "+note.SlideObjectID, false, func(ctx context.Context) error {
			id, err := p.submitter.SpeakerNotesObjectID(ctx, note.SlideObjectID)
			objectID = id
			return err
		})
		if err != nil {
			return result, fmt.Errorf("resolving notes of slide %s: %w", note.SlideID, err)
		}
		notes = append(notes, SlidesRequest{InsertText: &InsertTextRequest{ObjectID: objectID, Text: note.Text}})
	}

	for start := 0; start < len(notes); start += p.batchSize {
		batch := SlidesBatch{Requests: notes[start:min(start+p.batchSize, len(notes))]}
		err := p.withRetry(ctx, result, "notes batch", true, func(ctx context.Context) error {
			return p.submitter.SubmitBatch(ctx, batch)
		})
		if err != nil {
			return result, fmt.Errorf("writing speaker notes: %w", err)
		}
		result.Batches++
		result.Requests += len(batch.Requests)
		result.NotesWritten += len(batch.Requests)
	}

	p.logger.Info("Published presentation",
		"title", doc.Title,
		"batches", result.Batches,
		"requests", result.Requests,
		"retries", result.Retries)
	return result, nil
}

// withRetry runs op, waiting on the limiter before every write attempt
func (p *Publisher) withRetry(ctx context.Context, result *PublishResult, what string, write bool, op func(context.Context) error) error {
	for attempt := 0; ; attempt++ {
		if write {
			if err := p.limiter.Wait(ctx); err != nil {
				return &ExportError{Type: ErrorTypeTimeout, Message: "waiting for write quota", Details: what, Cause: err}
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) || attempt >= p.retry.MaxRetries {
			return err
		}

		result.Retries++
		delay := p.retry.delay(attempt + 1)
		p.logger.Warn("Retrying after failure",
			"operation", what,
			"attempt", attempt+1,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return &ExportError{Type: ErrorTypeTimeout, Message: "publish cancelled during retry", Details: what, Cause: ctx.Err()}
		}
	}
}
