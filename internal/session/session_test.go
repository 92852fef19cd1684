package session

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/bryanchriswhite/regionshot/internal/capture"
	"github.com/bryanchriswhite/regionshot/internal/event"
	"github.com/bryanchriswhite/regionshot/internal/geometry"
	"github.com/bryanchriswhite/regionshot/internal/monitor"
	"github.com/bryanchriswhite/regionshot/internal/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const escape = 0xff1b

var errDrained = errors.New("no more events")

type fakeSource struct {
	batches [][]event.Event
	reads   int
}

func (f *fakeSource) NextEvents(ctx context.Context) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.reads >= len(f.batches) {
		return nil, errDrained
	}
	b := f.batches[f.reads]
	f.reads++
	return b, nil
}

type render struct {
	sel    geometry.Rect
	active bool
}

type fakeRenderer struct {
	calls []render
	err   error
}

func (f *fakeRenderer) Render(sel geometry.Rect, active bool) error {
	f.calls = append(f.calls, render{sel, active})
	return f.err
}

// dualHead is A at the origin and B to its right, both 1920x1080, with a
// composite at scale 2 and no per-monitor images
func dualHead(t *testing.T) *Session {
	t.Helper()
	a := geometry.Size{Width: 1920, Height: 1080}
	b := geometry.Size{Width: 1920, Height: 1080}
	reg, err := monitor.NewRegistry([]monitor.OutputInfo{
		{ID: 1, Name: "A", LogicalSize: &a, LogicalPosition: &geometry.Point{}},
		{ID: 2, Name: "B", LogicalSize: &b, LogicalPosition: &geometry.Point{X: 1920}},
	})
	require.NoError(t, err)

	s, err := New(reg, image.NewRGBA(image.Rect(0, 0, 7680, 2160)), selection.Options{
		CancelKeys: []uint32{escape},
	})
	require.NoError(t, err)
	return s
}

func TestNew_ScaleFactor(t *testing.T) {
	s := dualHead(t)
	assert.Equal(t, 2.0, s.Scale())
	assert.Equal(t, geometry.Rect{Width: 3840, Height: 1080}, s.Area().Rect)
}

func TestNew_RejectsMissingComposite(t *testing.T) {
	size := geometry.Size{Width: 10, Height: 10}
	reg, err := monitor.NewRegistry([]monitor.OutputInfo{
		{ID: 1, LogicalSize: &size, LogicalPosition: &geometry.Point{}},
	})
	require.NoError(t, err)

	_, err = New(reg, nil, selection.Options{})
	assert.ErrorIs(t, err, monitor.ErrInvalidComposite)

	_, err = New(reg, image.NewRGBA(image.Rectangle{}), selection.Options{})
	assert.ErrorIs(t, err, monitor.ErrInvalidComposite)
}

func TestRun_DragOnSecondMonitor(t *testing.T) {
	s := dualHead(t)
	src := &fakeSource{batches: [][]event.Event{
		{event.PointerDown{Output: 2, Position: geometry.Point{X: 300, Y: 300}}},
		{
			event.PointerMove{Output: 2, Position: geometry.Point{X: 200, Y: 200}},
			event.PointerMove{Output: 2, Position: geometry.Point{X: 100, Y: 100}},
		},
		{event.PointerUp{Output: 2}},
	}}
	r := &fakeRenderer{}

	exit, err := s.Run(context.Background(), src, r)
	require.NoError(t, err)

	assert.Equal(t, selection.ExitWithSelection, exit.Kind)
	assert.Equal(t, geometry.Rect{X: 2020, Y: 100, Width: 200, Height: 200}, exit.Selection)

	// Initial frame, the press, then one render for the two-move batch
	require.Len(t, r.calls, 3)
	assert.False(t, r.calls[0].active)
	assert.True(t, r.calls[2].active)
	assert.Equal(t, geometry.Rect{X: 2020, Y: 100, Width: 200, Height: 200}, r.calls[2].sel)
}

func TestRun_CrossMonitorDrag(t *testing.T) {
	s := dualHead(t)
	src := &fakeSource{batches: [][]event.Event{{
		event.PointerDown{Output: 1, Position: geometry.Point{X: 1800, Y: 100}},
		// Grabbed pointer keeps reporting relative to A past its right edge
		event.PointerMove{Output: 1, Position: geometry.Point{X: 2100, Y: 250}},
		event.PointerUp{Output: 1},
	}}}

	exit, err := s.Run(context.Background(), src, &fakeRenderer{})
	require.NoError(t, err)
	require.Equal(t, selection.ExitWithSelection, exit.Kind)
	assert.Equal(t, geometry.Rect{X: 1800, Y: 100, Width: 300, Height: 150}, exit.Selection)

	res, err := s.Crop(exit)
	require.NoError(t, err)
	assert.Equal(t, capture.SourceComposite, res.Source)
	assert.Equal(t, geometry.Rect{X: 3600, Y: 200, Width: 600, Height: 300}, res.Pixels)
	assert.Equal(t, image.Rect(0, 0, 600, 300), res.Image.Bounds())
}

func TestRun_EscapeMidDragCancels(t *testing.T) {
	s := dualHead(t)
	src := &fakeSource{batches: [][]event.Event{{
		event.PointerDown{Output: 1, Position: geometry.Point{X: 10, Y: 10}},
		event.PointerMove{Output: 1, Position: geometry.Point{X: 50, Y: 50}},
		event.Key{Output: 1, Keysym: escape},
		event.PointerUp{Output: 1},
	}}}
	r := &fakeRenderer{}

	exit, err := s.Run(context.Background(), src, r)
	require.NoError(t, err)
	assert.Equal(t, selection.ExitOnly, exit.Kind)
	assert.Len(t, r.calls, 1, "no render after the terminal state")

	_, err = s.Crop(exit)
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestRun_IgnoresUnknownOutputAndGeometryChanges(t *testing.T) {
	s := dualHead(t)
	size := geometry.Size{Width: 800, Height: 600}
	src := &fakeSource{batches: [][]event.Event{
		{
			event.PointerDown{Output: 9, Position: geometry.Point{X: 1, Y: 1}},
			event.OutputGeometry{Info: monitor.OutputInfo{ID: 1, LogicalSize: &size}},
		},
		{event.Key{Output: 1, Keysym: escape}},
	}}
	r := &fakeRenderer{}

	exit, err := s.Run(context.Background(), src, r)
	require.NoError(t, err)
	assert.Equal(t, selection.ExitOnly, exit.Kind)
	assert.Len(t, r.calls, 1)
	assert.Equal(t, geometry.Rect{Width: 3840, Height: 1080}, s.Area().Rect)
}

func TestRun_SourceError(t *testing.T) {
	s := dualHead(t)

	exit, err := s.Run(context.Background(), &fakeSource{}, &fakeRenderer{})
	assert.ErrorIs(t, err, errDrained)
	assert.Equal(t, selection.Pending, exit.Kind)
}

func TestRun_ContextCancelled(t *testing.T) {
	s := dualHead(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx, &fakeSource{}, &fakeRenderer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_RenderError(t *testing.T) {
	s := dualHead(t)
	boom := errors.New("boom")

	_, err := s.Run(context.Background(), &fakeSource{}, &fakeRenderer{err: boom})
	assert.ErrorIs(t, err, boom)
}
