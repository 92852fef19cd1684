package display

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/bryanchriswhite/regionshot/internal/event"
	"github.com/bryanchriswhite/regionshot/internal/geometry"
	"github.com/bryanchriswhite/regionshot/internal/logger"
	"github.com/bryanchriswhite/regionshot/internal/monitor"
	"github.com/bryanchriswhite/regionshot/internal/overlay"
)

// ErrClosed is returned once the overlay's event stream has ended
var ErrClosed = errors.New("overlay closed")

const (
	// XC_crosshair in the core cursor font
	crosshairGlyph = 34
	grabAttempts   = 20
	grabRetryDelay = 25 * time.Millisecond
	eventBuffer    = 256
)

type surface struct {
	window  xproto.Window
	gc      xproto.Gcontext
	monitor *monitor.Monitor
	frame   *image.RGBA
}

// Overlay covers every monitor with a borderless window showing its frozen
// image and grabs the pointer and keyboard until closed.
type Overlay struct {
	conn     *xgb.Conn
	screen   *xproto.ScreenInfo
	renderer *overlay.Renderer
	format   pixmapFormat
	maxReq   int
	cursor   xproto.Cursor

	mu       sync.Mutex
	surfaces []*surface
	byWindow map[xproto.Window]*surface

	tr        *translator
	events    chan event.Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewOverlay maps one overlay window per monitor in reg, grabs input and
// starts delivering events
func (d *Display) NewOverlay(reg *monitor.Registry, r *overlay.Renderer) (*Overlay, error) {
	log := logger.WithComponent("overlay")
	setup := xproto.Setup(d.conn)

	format, err := formatForDepth(setup, d.screen.RootDepth)
	if err != nil {
		return nil, err
	}

	keys, err := loadKeymap(d.conn)
	if err != nil {
		return nil, err
	}

	o := &Overlay{
		conn:     d.conn,
		screen:   d.screen,
		renderer: r,
		format:   format,
		maxReq:   int(setup.MaximumRequestLength) * 4,
		byWindow: make(map[xproto.Window]*surface),
		tr:       &translator{outputs: make(map[xproto.Window]monitor.OutputID), keys: keys},
		events:   make(chan event.Event, eventBuffer),
		done:     make(chan struct{}),
	}

	if o.cursor, err = o.crosshair(); err != nil {
		log.Warn().Err(err).Msg("Failed to create crosshair cursor")
	}

	for _, m := range reg.Monitors() {
		s, err := o.createSurface(m)
		if err != nil {
			o.Close()
			return nil, err
		}
		o.surfaces = append(o.surfaces, s)
		o.byWindow[s.window] = s
		o.tr.outputs[s.window] = m.ID
	}
	o.conn.Sync()

	if err := o.grab(); err != nil {
		o.Close()
		return nil, err
	}

	go o.pump()

	log.Info().Int("windows", len(o.surfaces)).Msg("Overlay mapped")
	return o, nil
}

func (o *Overlay) createSurface(m *monitor.Monitor) (*surface, error) {
	window, err := xproto.NewWindowId(o.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create window ID: %w", err)
	}

	mask := uint32(xproto.CwBackPixel | xproto.CwOverrideRedirect | xproto.CwEventMask | xproto.CwCursor)
	values := []uint32{
		0x000000,
		1,
		xproto.EventMaskExposure |
			xproto.EventMaskButtonPress |
			xproto.EventMaskButtonRelease |
			xproto.EventMaskPointerMotion |
			xproto.EventMaskKeyPress,
		uint32(o.cursor),
	}

	err = xproto.CreateWindowChecked(
		o.conn,
		o.screen.RootDepth,
		window,
		o.screen.Root,
		int16(m.Rect.X), int16(m.Rect.Y),
		uint16(m.Rect.Width), uint16(m.Rect.Height),
		0,
		xproto.WindowClassInputOutput,
		o.screen.RootVisual,
		mask,
		values,
	).Check()
	if err != nil {
		return nil, fmt.Errorf("failed to create overlay window for %s: %w", m.Name, err)
	}

	if err := o.setWindowClass(window, "regionshot", "Regionshot"); err != nil {
		logger.WithComponent("overlay").Warn().Err(err).Msg("Failed to set window class")
	}

	if err := xproto.MapWindowChecked(o.conn, window).Check(); err != nil {
		return nil, fmt.Errorf("failed to map window: %w", err)
	}

	gc, err := xproto.NewGcontextId(o.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create graphics context ID: %w", err)
	}
	if err := xproto.CreateGCChecked(o.conn, gc, xproto.Drawable(window), 0, nil).Check(); err != nil {
		return nil, fmt.Errorf("failed to create GC: %w", err)
	}

	return &surface{
		window:  window,
		gc:      gc,
		monitor: m,
		frame:   image.NewRGBA(image.Rect(0, 0, m.Rect.Width, m.Rect.Height)),
	}, nil
}

// grab takes the pointer and keyboard. Another client may hold a grab for a
// moment after launch, so failures are retried briefly.
func (o *Overlay) grab() error {
	if len(o.surfaces) == 0 {
		return fmt.Errorf("no overlay windows to grab")
	}
	window := o.surfaces[0].window
	pointerMask := uint16(xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease | xproto.EventMaskPointerMotion)

	var pointerOK, keyboardOK bool
	for i := 0; i < grabAttempts && !(pointerOK && keyboardOK); i++ {
		if i > 0 {
			time.Sleep(grabRetryDelay)
		}
		if !pointerOK {
			reply, err := xproto.GrabPointer(o.conn, true, window, pointerMask,
				xproto.GrabModeAsync, xproto.GrabModeAsync, xproto.WindowNone, o.cursor,
				xproto.TimeCurrentTime).Reply()
			pointerOK = err == nil && reply.Status == xproto.GrabStatusSuccess
		}
		if !keyboardOK {
			reply, err := xproto.GrabKeyboard(o.conn, true, window, xproto.TimeCurrentTime,
				xproto.GrabModeAsync, xproto.GrabModeAsync).Reply()
			keyboardOK = err == nil && reply.Status == xproto.GrabStatusSuccess
		}
	}

	if !pointerOK {
		return fmt.Errorf("failed to grab pointer")
	}
	if !keyboardOK {
		return fmt.Errorf("failed to grab keyboard")
	}
	return nil
}

func (o *Overlay) crosshair() (xproto.Cursor, error) {
	font, err := xproto.NewFontId(o.conn)
	if err != nil {
		return 0, err
	}
	name := "cursor"
	if err := xproto.OpenFontChecked(o.conn, font, uint16(len(name)), name).Check(); err != nil {
		return 0, err
	}
	defer xproto.CloseFont(o.conn, font)

	cursor, err := xproto.NewCursorId(o.conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateGlyphCursorChecked(o.conn, cursor, font, font,
		crosshairGlyph, crosshairGlyph+1,
		0, 0, 0,
		0xffff, 0xffff, 0xffff).Check()
	if err != nil {
		return 0, err
	}
	return cursor, nil
}

func (o *Overlay) pump() {
	log := logger.WithComponent("overlay")
	defer close(o.events)

	for {
		ev, xerr := o.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return
		}
		if xerr != nil {
			log.Debug().Str("error", xerr.Error()).Msg("X error")
			continue
		}

		if expose, ok := ev.(xproto.ExposeEvent); ok && expose.Count == 0 {
			if err := o.redraw(expose.Window); err != nil {
				log.Warn().Err(err).Msg("Failed to redraw exposed window")
			}
			continue
		}

		translated, ok := o.tr.translate(ev)
		if !ok {
			continue
		}
		select {
		case o.events <- translated:
		case <-o.done:
			return
		}
	}
}

// NextEvents blocks until at least one event is available and returns it
// together with any others already queued
func (o *Overlay) NextEvents(ctx context.Context) ([]event.Event, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-o.done:
		return nil, ErrClosed
	case ev, ok := <-o.events:
		if !ok {
			return nil, ErrClosed
		}
		batch := []event.Event{ev}
		for {
			select {
			case ev, ok := <-o.events:
				if !ok {
					return batch, nil
				}
				batch = append(batch, ev)
			default:
				return batch, nil
			}
		}
	}
}

// Render draws sel, in global logical coordinates, on every overlay window
func (o *Overlay) Render(sel geometry.Rect, active bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, s := range o.surfaces {
		o.renderer.RenderMonitor(s.frame, s.monitor, sel, active)
		if err := o.present(s); err != nil {
			return err
		}
	}
	o.conn.Sync()
	return nil
}

func (o *Overlay) redraw(window xproto.Window) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	s, ok := o.byWindow[window]
	if !ok {
		return nil
	}
	return o.present(s)
}

// present uploads a surface's frame in strips that fit the server's maximum
// request length
func (o *Overlay) present(s *surface) error {
	b := s.frame.Bounds()
	width, height := b.Dx(), b.Dy()
	rows := stripRows(o.maxReq, o.format.stride(width))

	for y := 0; y < height; y += rows {
		y1 := min(y+rows, height)
		data := o.format.encode(s.frame, y, y1)
		if y1 < height {
			xproto.PutImage(o.conn, xproto.ImageFormatZPixmap, xproto.Drawable(s.window), s.gc,
				uint16(width), uint16(y1-y), 0, int16(y), 0, o.format.depth, data)
			continue
		}
		err := xproto.PutImageChecked(o.conn, xproto.ImageFormatZPixmap, xproto.Drawable(s.window), s.gc,
			uint16(width), uint16(y1-y), 0, int16(y), 0, o.format.depth, data).Check()
		if err != nil {
			return fmt.Errorf("failed to put image: %w", err)
		}
	}
	return nil
}

// Close releases the grabs and destroys the overlay windows
func (o *Overlay) Close() {
	o.closeOnce.Do(func() {
		close(o.done)

		o.mu.Lock()
		defer o.mu.Unlock()

		xproto.UngrabPointer(o.conn, xproto.TimeCurrentTime)
		xproto.UngrabKeyboard(o.conn, xproto.TimeCurrentTime)
		for _, s := range o.surfaces {
			xproto.FreeGC(o.conn, s.gc)
			xproto.DestroyWindow(o.conn, s.window)
		}
		if o.cursor != 0 {
			xproto.FreeCursor(o.conn, o.cursor)
		}
		o.conn.Sync()

		logger.WithComponent("overlay").Info().Msg("Overlay closed")
	})
}

// setWindowClass sets WM_CLASS so compositors can match the overlay
func (o *Overlay) setWindowClass(window xproto.Window, instance, class string) error {
	classAtom, err := o.getAtom("WM_CLASS")
	if err != nil {
		return err
	}

	// WM_CLASS format: instance\0class\0
	classStr := instance + "\x00" + class + "\x00"

	return xproto.ChangePropertyChecked(
		o.conn,
		xproto.PropModeReplace,
		window,
		classAtom,
		xproto.AtomString,
		8,
		uint32(len(classStr)),
		[]byte(classStr),
	).Check()
}

func (o *Overlay) getAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(o.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}
