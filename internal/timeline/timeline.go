// Package timeline holds the ordered conversation log of a session.
package timeline

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrStatusInFlight is returned when a transient status is already shown.
	ErrStatusInFlight = errors.New("a transient status is already in flight")

	// ErrUnknownTag is returned for a status tag that is not webLookup or retrieval.
	ErrUnknownTag = errors.New("unknown status tag")
)

// Timeline is an append-only log of durable turns plus at most one
// transient status overlay, which is always positioned last.
type Timeline struct {
	mu      sync.Mutex
	turns   []Turn
	overlay *Turn
	seq     int
	now     func() time.Time
}

// New creates an empty timeline.
func New() *Timeline {
	return &Timeline{now: time.Now}
}

// AppendUser appends a durable user turn. If a status overlay is showing it
// stays last.
func (t *Timeline) AppendUser(text string) Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.appendDurable(text, SenderUser)
}

// BeginTransientStatus shows a status overlay for tag.
func (t *Timeline) BeginTransientStatus(tag StatusTag) (Turn, error) {
	if !tag.Valid() {
		return Turn{}, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.overlay != nil {
		return Turn{}, ErrStatusInFlight
	}
	t.seq++
	t.overlay = &Turn{
		Seq:       t.seq,
		Text:      StatusText(tag),
		Sender:    SenderBot,
		Kind:      KindTransientStatus,
		StatusTag: tag,
		Timestamp: t.now(),
	}
	return *t.overlay, nil
}

// ResolveTransientStatus drops the status overlay, if any, and appends the
// bot turn in one step.
func (t *Timeline) ResolveTransientStatus(botText string) Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.overlay = nil
	return t.appendDurable(botText, SenderBot)
}

func (t *Timeline) appendDurable(text string, sender Sender) Turn {
	t.seq++
	turn := Turn{
		Seq:       t.seq,
		Text:      text,
		Sender:    sender,
		Kind:      KindNormal,
		Timestamp: t.now(),
	}
	t.turns = append(t.turns, turn)
	return turn
}

// Snapshot returns a copy of every turn, overlay last.
func (t *Timeline) Snapshot() []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Turn, 0, len(t.turns)+1)
	out = append(out, t.turns...)
	if t.overlay != nil {
		out = append(out, *t.overlay)
	}
	return out
}

// Durable returns a copy of the durable turns only.
func (t *Timeline) Durable() []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Transient returns the status overlay if one is showing.
func (t *Timeline) Transient() (Turn, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.overlay == nil {
		return Turn{}, false
	}
	return *t.overlay, true
}

// Len returns the number of entries, overlay included.
func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.turns)
	if t.overlay != nil {
		n++
	}
	return n
}
