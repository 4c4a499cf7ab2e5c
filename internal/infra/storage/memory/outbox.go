package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "lendaround/internal/app/outbox"
	infraoutbox "lendaround/internal/infra/outbox"
)

// Outbox buffers event records in memory. It also serves the publishing
// worker's claim/ack protocol so memory-mode deployments can still ship
// events to the broker.
type Outbox struct {
	mu      sync.Mutex
	records []*storedRecord
}

type storedRecord struct {
	rec         appoutbox.EventRecord
	state       string
	attempts    int
	nextAttempt time.Time
	lastError   string
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, &storedRecord{rec: record, state: infraoutbox.StateNew, nextAttempt: time.Now().UTC()})
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	return nil
}

// Claim hands the oldest due record to a worker.
func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, sr := range o.records {
		if sr.state != infraoutbox.StateNew && sr.state != infraoutbox.StateFailed {
			continue
		}
		if sr.nextAttempt.After(now) {
			continue
		}
		sr.state = infraoutbox.StateClaimed
		sr.attempts++
		return &infraoutbox.EventDocument{
			ID:         sr.rec.ID,
			Name:       sr.rec.Name,
			Payload:    sr.rec.Payload,
			OccurredAt: sr.rec.OccurredAt,
			Aggregate:  sr.rec.Aggregate,
			Headers:    sr.rec.Headers,
			Attempts:   sr.attempts,
		}, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, sr := range o.records {
		if sr.rec.ID == id {
			sr.state = infraoutbox.StateSent
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, nextAttempt time.Time, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, sr := range o.records {
		if sr.rec.ID == id {
			sr.state = infraoutbox.StateFailed
			sr.nextAttempt = nextAttempt
			sr.lastError = reason
			return nil
		}
	}
	return nil
}

var _ appoutbox.Outbox = (*Outbox)(nil)
var _ infraoutbox.Store = (*Outbox)(nil)
