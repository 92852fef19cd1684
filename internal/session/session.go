// Package session runs one interactive region selection: it feeds display
// events through the selection machine, redraws the overlay, and resolves the
// final crop.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/bryanchriswhite/regionshot/internal/capture"
	"github.com/bryanchriswhite/regionshot/internal/event"
	"github.com/bryanchriswhite/regionshot/internal/geometry"
	"github.com/bryanchriswhite/regionshot/internal/logger"
	"github.com/bryanchriswhite/regionshot/internal/monitor"
	"github.com/bryanchriswhite/regionshot/internal/selection"
	"github.com/rs/zerolog"
)

// ErrNoSelection is returned when cropping a session that ended without one
var ErrNoSelection = errors.New("session ended without a selection")

// EventSource delivers batches of display events
type EventSource interface {
	NextEvents(ctx context.Context) ([]event.Event, error)
}

// Renderer draws the current selection on every monitor
type Renderer interface {
	Render(sel geometry.Rect, active bool) error
}

// Session owns the monitor registry, scale factor and selection machine for
// one capture. It receives every event handler call.
type Session struct {
	registry  *monitor.Registry
	scale     float64
	composite image.Image
	machine   *selection.Machine
	log       *zerolog.Logger
	dirty     bool
}

// New creates a session over a populated registry and its composite image
func New(reg *monitor.Registry, composite image.Image, opts selection.Options) (*Session, error) {
	if composite == nil {
		return nil, monitor.ErrInvalidComposite
	}
	scale, err := reg.ScaleFactor(composite.Bounds().Dx())
	if err != nil {
		return nil, fmt.Errorf("failed to compute scale factor: %w", err)
	}

	return &Session{
		registry:  reg,
		scale:     scale,
		composite: composite,
		machine:   selection.NewMachine(opts),
		log:       logger.WithComponent("session"),
	}, nil
}

// Scale returns composite pixels per logical unit
func (s *Session) Scale() float64 {
	return s.scale
}

// Area returns the bounding box of all monitors
func (s *Session) Area() geometry.Area {
	return s.registry.Area()
}

// Machine returns the selection machine
func (s *Session) Machine() *selection.Machine {
	return s.machine
}

// Run processes events until the selection is finalized or cancelled.
// The overlay is redrawn at most once per batch.
func (s *Session) Run(ctx context.Context, src EventSource, r Renderer) (selection.ExitState, error) {
	if err := r.Render(geometry.Rect{}, false); err != nil {
		return s.machine.Exit(), fmt.Errorf("failed to render overlay: %w", err)
	}

	for !s.machine.Exit().Terminal() {
		batch, err := src.NextEvents(ctx)
		if err != nil {
			return s.machine.Exit(), fmt.Errorf("failed to read events: %w", err)
		}

		s.dirty = false
		for _, ev := range batch {
			if !event.Dispatch(s, ev) {
				s.log.Debug().Str("event", fmt.Sprint(ev)).Msg("Unhandled event")
			}
			if s.machine.Exit().Terminal() {
				break
			}
		}

		if s.dirty && !s.machine.Exit().Terminal() {
			sel, active := s.machine.Selection()
			if err := r.Render(sel, active); err != nil {
				return s.machine.Exit(), fmt.Errorf("failed to render overlay: %w", err)
			}
		}
	}

	exit := s.machine.Exit()
	s.log.Info().Str("exit", exit.String()).Msg("Selection finished")
	return exit, nil
}

// Crop resolves the finalized selection to an image
func (s *Session) Crop(exit selection.ExitState) (*capture.Result, error) {
	if exit.Kind != selection.ExitWithSelection {
		return nil, ErrNoSelection
	}
	return capture.Resolve(exit.Selection, s.registry, s.scale, s.composite)
}

// PointerDown anchors a drag at the pointer's global position
func (s *Session) PointerDown(e event.PointerDown) {
	p, ok := s.toGlobal(e.Output, e.Position)
	if !ok {
		return
	}
	s.mark(s.machine.Press(p))
}

// PointerMove stretches the selection
func (s *Session) PointerMove(e event.PointerMove) {
	p, ok := s.toGlobal(e.Output, e.Position)
	if !ok {
		return
	}
	s.mark(s.machine.Motion(p))
}

// PointerUp finalizes the drag
func (s *Session) PointerUp(event.PointerUp) {
	s.mark(s.machine.Release())
}

// Key cancels on a cancel key
func (s *Session) Key(e event.Key) {
	s.mark(s.machine.Key(e.Keysym))
}

// OutputGeometry arrives only if the layout changes mid-session. The registry
// is frozen, so the update is logged and dropped.
func (s *Session) OutputGeometry(e event.OutputGeometry) {
	s.log.Warn().
		Uint32("output_id", uint32(e.Info.ID)).
		Str("name", e.Info.Name).
		Msg("Ignoring output geometry change during selection")
}

func (s *Session) toGlobal(out monitor.OutputID, p geometry.Point) (geometry.Point, bool) {
	m, ok := s.registry.Get(out)
	if !ok {
		s.log.Debug().Uint32("output_id", uint32(out)).Msg("Event from unknown output")
		return geometry.Point{}, false
	}
	g := geometry.Rect{X: p.X, Y: p.Y}.ToGlobal(m.Rect)
	return g.Origin(), true
}

func (s *Session) mark(changed bool) {
	s.dirty = s.dirty || changed
}
