package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// OutboxFileName is the name of the pending-delivery queue in the base path.
const OutboxFileName = ".pdb_outbox.json"

// Delivery is an outbound message that could not be sent and waits for a
// retry.
type Delivery struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"` // e.g. "alerts"
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
	Attempts  int             `json:"attempts"`
}

// FlushResult contains the outcome of replaying queued deliveries.
type FlushResult struct {
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// DeliverFunc sends one queued delivery.
type DeliverFunc func(ctx context.Context, d Delivery) error

// Outbox persists failed deliveries so they can be replayed later.
type Outbox interface {
	Queue(kind string, payload any) error
	Pending() ([]Delivery, error)
	Flush(ctx context.Context, deliver DeliverFunc) (*FlushResult, error)
}

type fileOutbox struct {
	basePath   string
	mu         sync.Mutex
	maxRetries int
	backoff    func(attempt int) time.Duration
	now        func() time.Time
}

// NewOutbox creates an Outbox stored in .pdb_outbox.json under basePath.
func NewOutbox(basePath string) Outbox {
	return &fileOutbox{
		basePath:   basePath,
		maxRetries: 3,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * 100 * time.Millisecond
		},
		now: time.Now,
	}
}

func (o *fileOutbox) path() string {
	return filepath.Join(o.basePath, OutboxFileName)
}

// Queue appends a delivery with the JSON-encoded payload.
func (o *fileOutbox) Queue(kind string, payload any) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", kind, err)
	}
	queue, err := o.load()
	if err != nil {
		return fmt.Errorf("loading outbox: %w", err)
	}
	now := o.now().UTC()
	queue = append(queue, Delivery{
		ID:        fmt.Sprintf("%s-%d-%d", kind, now.Unix(), len(queue)+1),
		Kind:      kind,
		Payload:   raw,
		Timestamp: now,
	})
	return o.save(queue)
}

func (o *fileOutbox) Pending() ([]Delivery, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.load()
}

// Flush tries every queued delivery, retrying with exponential backoff.
// Deliveries that still fail stay queued with their attempt count raised.
func (o *fileOutbox) Flush(ctx context.Context, deliver DeliverFunc) (*FlushResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	queue, err := o.load()
	if err != nil {
		return nil, fmt.Errorf("loading outbox: %w", err)
	}

	result := &FlushResult{}
	var remaining []Delivery
	for _, d := range queue {
		if err := o.attempt(ctx, d, deliver); err != nil {
			d.Attempts++
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s (%s): %v", d.ID, d.Kind, err))
			remaining = append(remaining, d)
			continue
		}
		result.Sent++
	}

	if err := o.save(remaining); err != nil {
		return result, fmt.Errorf("saving outbox: %w", err)
	}
	return result, nil
}

func (o *fileOutbox) attempt(ctx context.Context, d Delivery, deliver DeliverFunc) error {
	var lastErr error
	for attempt := 0; attempt < o.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.backoff(attempt)):
			}
		}
		if lastErr = deliver(ctx, d); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

// load returns the queued deliveries, or nil when the file does not exist.
func (o *fileOutbox) load() ([]Delivery, error) {
	data, err := os.ReadFile(o.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var queue []Delivery
	if err := json.Unmarshal(data, &queue); err != nil {
		return nil, fmt.Errorf("parsing outbox: %w", err)
	}
	return queue, nil
}

// save writes the queue, removing the file when it is empty.
func (o *fileOutbox) save(queue []Delivery) error {
	if len(queue) == 0 {
		if err := os.Remove(o.path()); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	data, err := json.MarshalIndent(queue, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling outbox: %w", err)
	}
	return os.WriteFile(o.path(), data, 0o600)
}
