package event

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/taskreel/lifecycle/internal/logger"
)

// ResilientConfig configures the ResilientPublisher
type ResilientConfig struct {
	MaxRetries     int
	RetryDelay     time.Duration
	DeadLetterPath string
}

// DefaultResilientConfig returns the standard retry policy for
// best-effort lifecycle side effects.
func DefaultResilientConfig(deadLetterPath string) ResilientConfig {
	return ResilientConfig{
		MaxRetries:     5,
		RetryDelay:     2 * time.Second,
		DeadLetterPath: deadLetterPath,
	}
}

// ResilientPublisher wraps a Bus to add retry logic and dead-letter
// queuing. Publish never returns an error to the caller once the event
// is accepted: lifecycle instrumentation must not block the business
// operation it instruments.
type ResilientPublisher struct {
	inner  Bus
	config ResilientConfig
	mu     sync.Mutex // protects dead-letter file writes
	wg     sync.WaitGroup
}

// NewResilientPublisher creates a new ResilientPublisher
func NewResilientPublisher(inner Bus, config ResilientConfig) *ResilientPublisher {
	return &ResilientPublisher{
		inner:  inner,
		config: config,
	}
}

// Publish attempts to publish an event; on failure it detaches a retry
// loop and returns nil immediately.
func (p *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	err := p.inner.Publish(ctx, event)
	if err == nil {
		return nil
	}

	logger.FromContext(ctx).Warn("Failed to publish event, initiating async retry",
		"event_type", event.Type,
		"error", err,
		"retries", p.config.MaxRetries)

	p.wg.Add(1)
	go p.retryLoop(event)

	return nil
}

func (p *ResilientPublisher) retryLoop(event Event) {
	defer p.wg.Done()

	// Detached context: the original request context may be cancelled
	ctx := context.Background()
	log := logger.FromContext(ctx)

	for i := 1; i <= p.config.MaxRetries; i++ {
		time.Sleep(p.config.RetryDelay * time.Duration(i))

		if err := p.inner.Publish(ctx, event); err == nil {
			log.Info("Successfully published event after retry",
				"event_type", event.Type,
				"attempt", i)
			return
		} else {
			log.Warn("Event retry failed",
				"event_type", event.Type,
				"attempt", i,
				"error", err)
		}
	}

	p.writeToDeadLetter(event)
}

type deadLetterEntry struct {
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	Event         Event     `json:"event"`
}

func (p *ResilientPublisher) writeToDeadLetter(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	log := logger.FromContext(context.Background())

	f, err := os.OpenFile(p.config.DeadLetterPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Error("Failed to open dead letter file", "error", err, "path", p.config.DeadLetterPath)
		return
	}
	defer f.Close()

	entry := deadLetterEntry{
		SchemaVersion: EventSchemaVersion,
		Timestamp:     time.Now(),
		Event:         event,
	}

	if err := json.NewEncoder(f).Encode(entry); err != nil {
		log.Error("Failed to write to dead letter file", "error", err)
	} else {
		log.Info("Event written to dead letter queue", "event_type", event.Type)
	}
}

// Subscribe delegates to the inner bus
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.inner.Subscribe(eventType, handler)
}

// Drain waits for in-flight retry loops to finish, up to ctx deadline.
func (p *ResilientPublisher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
