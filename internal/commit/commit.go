// Package commit collects object changes to be reported to the remote
// server. Every change is keyed by an object reference token "<id>::<type>".
package commit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/splashsync/connector/internal/token"
)

// Errors returned by the commit manager
var (
	ErrInvalidReference = errors.New("invalid object reference")
	ErrInvalidAction    = errors.New("invalid commit action")
)

// Action is the kind of change committed for an object
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ParseAction validates an action name
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(s)); a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// Event is one pending change
type Event struct {
	EventID    string    `json:"event_id"`
	Token      string    `json:"token"`
	ObjectType string    `json:"object_type"`
	ObjectID   string    `json:"object_id"`
	Action     Action    `json:"action"`
	At         time.Time `json:"at"`
}

// Sink receives flushed events
type Sink interface {
	Publish(ctx context.Context, events []Event) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, events []Event) error

func (f SinkFunc) Publish(ctx context.Context, events []Event) error {
	return f(ctx, events)
}

// Manager de-duplicates pending changes per object and flushes them to a
// Sink. It is safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	pending map[string]Event
	// inflight maps a token to the EventID currently being published
	inflight map[string]string
	sink     Sink
	logger   *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewManager creates a manager flushing to sink
func NewManager(sink Sink, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		pending:  make(map[string]Event),
		inflight: make(map[string]string),
		sink:     sink,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Reference builds the token of one object, rejecting parts that would
// not survive a round trip through ParseReference.
func Reference(objectType, id string) (string, error) {
	if objectType == "" || strings.Contains(objectType, token.ListDelimiter) || strings.Contains(objectType, token.RefDelimiter) {
		return "", fmt.Errorf("%w: object type %q", ErrInvalidReference, objectType)
	}
	if id == "" || strings.Contains(id, token.RefDelimiter) {
		return "", fmt.Errorf("%w: object id %q", ErrInvalidReference, id)
	}
	return token.EncodeIDReference(id, objectType), nil
}

// ParseReference decodes an object reference token into type and id.
func ParseReference(tok string) (objectType, id string, err error) {
	parts, ok := token.IsIDReference(tok)
	if !ok || parts.ID == "" || parts.Type == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidReference, tok)
	}
	return parts.Type, parts.ID, nil
}

// Commit records action for each id of objectType. A create followed by
// an update stays a create; a create followed by a delete cancels out.
// Neither rule applies once the create is being published: the later
// action is then queued as is. Nothing is recorded when any reference is
// invalid.
func (m *Manager) Commit(objectType string, action Action, ids ...string) error {
	if _, err := ParseAction(string(action)); err != nil {
		return err
	}

	toks := make([]string, len(ids))
	for i, id := range ids {
		tok, err := Reference(objectType, id)
		if err != nil {
			return err
		}
		toks[i] = tok
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, tok := range toks {
		prev, exists := m.pending[tok]
		next := Event{
			EventID:    m.newID(),
			Token:      tok,
			ObjectType: objectType,
			ObjectID:   ids[i],
			Action:     action,
			At:         m.now(),
		}

		if exists && prev.Action == ActionCreate && m.inflight[tok] != prev.EventID {
			switch action {
			case ActionUpdate:
				next.Action = ActionCreate
			case ActionDelete:
				delete(m.pending, tok)
				m.logger.Debug("commit cancelled", zap.String("token", tok))
				continue
			}
		}

		m.pending[tok] = next
		m.logger.Debug("commit queued", zap.String("token", tok), zap.String("action", string(next.Action)))
	}
	return nil
}

// Pending returns a snapshot of pending events sorted by token
func (m *Manager) Pending() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Manager) snapshot() []Event {
	out := make([]Event, 0, len(m.pending))
	for _, e := range m.pending {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out
}

// Len returns the number of pending events
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Flush publishes pending events. Events are removed only once the sink
// accepts them, and only if they were not replaced while publishing.
func (m *Manager) Flush(ctx context.Context) (int, error) {
	m.mu.Lock()
	events := m.snapshot()
	if len(events) == 0 {
		m.mu.Unlock()
		return 0, nil
	}
	if m.sink == nil {
		m.mu.Unlock()
		return 0, errors.New("commit manager has no sink")
	}
	for _, e := range events {
		m.inflight[e.Token] = e.EventID
	}
	m.mu.Unlock()

	err := m.sink.Publish(ctx, events)

	m.mu.Lock()
	for _, e := range events {
		if m.inflight[e.Token] == e.EventID {
			delete(m.inflight, e.Token)
		}
		if err != nil {
			continue
		}
		if cur, ok := m.pending[e.Token]; ok && cur.EventID == e.EventID {
			delete(m.pending, e.Token)
		}
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("commit flush failed", zap.Int("events", len(events)), zap.Error(err))
		return 0, fmt.Errorf("failed to publish %d commits: %w", len(events), err)
	}

	m.logger.Info("commits flushed", zap.Int("events", len(events)))
	return len(events), nil
}

// Run flushes every interval until ctx is done, then flushes once more.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if _, err := m.Flush(flushCtx); err != nil {
				m.logger.Warn("final commit flush failed", zap.Error(err))
			}
			cancel()
			return
		case <-ticker.C:
			if _, err := m.Flush(ctx); err != nil {
				m.logger.Debug("periodic commit flush failed", zap.Error(err))
			}
		}
	}
}
