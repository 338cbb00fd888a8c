package browser

import (
	"context"
	"fmt"
)

type EventKind int

const (
	EventNext EventKind = iota
	EventPrevious
	EventThreshold
)

func (k EventKind) String() string {
	switch k {
	case EventNext:
		return "next"
	case EventPrevious:
		return "previous"
	case EventThreshold:
		return "threshold"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a user action from the display. Value carries the cutoff for
// EventThreshold and is ignored otherwise.
type Event struct {
	Kind  EventKind
	Value float64
}

func Next() Event               { return Event{Kind: EventNext} }
func Previous() Event           { return Event{Kind: EventPrevious} }
func Threshold(v float64) Event { return Event{Kind: EventThreshold, Value: v} }

type handlerFunc func(*Session, context.Context, Event) error

// Dispatch runs the handler registered for ev.Kind.
func (s *Session) Dispatch(ctx context.Context, ev Event) error {
	handler, ok := s.handlers[ev.Kind]
	if !ok {
		return fmt.Errorf("no handler for %s", ev.Kind)
	}

	s.logger.Debug("Session", "dispatching event", map[string]interface{}{
		"event": ev.Kind.String(),
		"value": ev.Value,
	})

	return handler(s, ctx, ev)
}

func (s *Session) handleNext(ctx context.Context, _ Event) error {
	moved, err := s.Next(ctx)
	if !moved {
		s.logger.Debug("Session", "already at last image", nil)
	}
	return err
}

func (s *Session) handlePrevious(ctx context.Context, _ Event) error {
	moved, err := s.Previous(ctx)
	if !moved {
		s.logger.Debug("Session", "already at first image", nil)
	}
	return err
}

func (s *Session) handleThreshold(_ context.Context, ev Event) error {
	return s.SetThreshold(ev.Value)
}
