package capture

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/bryanchriswhite/regionshot/internal/logger"
	"github.com/bryanchriswhite/regionshot/internal/monitor"
)

// ErrNoBackend implies none of the requested capture backends could start
var ErrNoBackend = errors.New("no capture backends available")

// Backend names accepted by the router
const (
	BackendAuto       = "auto"
	BackendX11        = "x11"
	BackendScreenshot = "screenshot"
	BackendPortal     = "portal"
)

// Factory constructs a capturer
type Factory func() (Capturer, error)

type namedFactory struct {
	name    string
	factory Factory
}

// Router picks a capture backend and fills the monitor registry with images
type Router struct {
	backend   string
	factories []namedFactory
	active    Capturer
	mu        sync.RWMutex
}

// NewRouter creates a router with the built-in backends, tried in the order
// x11, screenshot, portal when backend is "auto".
func NewRouter(backend string, portalTimeout time.Duration) (*Router, error) {
	return newRouter(backend, []namedFactory{
		{BackendX11, func() (Capturer, error) { return NewX11Capturer() }},
		{BackendScreenshot, func() (Capturer, error) { return NewScreenshotCapturer() }},
		{BackendPortal, func() (Capturer, error) { return NewPortalCapturer(portalTimeout) }},
	})
}

func newRouter(backend string, factories []namedFactory) (*Router, error) {
	if backend == "" {
		backend = BackendAuto
	}
	if backend != BackendAuto {
		known := false
		for _, f := range factories {
			if f.name == backend {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown capture backend %q", backend)
		}
	}
	return &Router{backend: backend, factories: factories}, nil
}

// Start initializes the first usable capturer
func (r *Router) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return nil
	}

	log := logger.WithComponent("capture-router")

	var errs []error
	for _, f := range r.factories {
		if r.backend != BackendAuto && r.backend != f.name {
			continue
		}

		c, err := f.factory()
		if err != nil {
			log.Debug().Err(err).Str("backend", f.name).Msg("Capturer not available")
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
			continue
		}
		if !c.IsAvailable() {
			c.Stop()
			errs = append(errs, fmt.Errorf("%s: not available", f.name))
			continue
		}
		if err := c.Start(); err != nil {
			log.Debug().Err(err).Str("backend", f.name).Msg("Failed to start capturer")
			c.Stop()
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
			continue
		}

		r.active = c
		log.Info().Str("backend", c.Name()).Msg("Capturer initialized")
		return nil
	}

	return fmt.Errorf("%w: %w", ErrNoBackend, errors.Join(errs...))
}

// Stop stops the active capturer
func (r *Router) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		return nil
	}
	err := r.active.Stop()
	r.active = nil
	return err
}

// Active returns the running capturer, or nil before Start
func (r *Router) Active() Capturer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Populate captures every monitor into the registry and returns the composite
// covering the registry's area. Monitors the backend cannot grab individually
// keep a nil image.
func (r *Router) Populate(reg *monitor.Registry) (*image.RGBA, error) {
	c := r.Active()
	if c == nil {
		return nil, ErrNoBackend
	}

	log := logger.WithComponent("capture-router")
	area := reg.Area()

	composite, err := c.CaptureDesktop(area.Rect)
	if err != nil {
		return nil, fmt.Errorf("failed to capture desktop: %w", err)
	}

	for _, m := range reg.Monitors() {
		img, err := c.CaptureMonitor(m.Rect)
		if errors.Is(err, ErrMonitorUnsupported) {
			log.Debug().
				Str("backend", c.Name()).
				Str("monitor", m.Name).
				Msg("Per-monitor capture unsupported, composite will be used")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to capture monitor %s: %w", m.Name, err)
		}
		if err := reg.SetImage(m.ID, img); err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("backend", c.Name()).
		Int("monitors", reg.Len()).
		Int("composite_width", composite.Bounds().Dx()).
		Int("composite_height", composite.Bounds().Dy()).
		Msg("Desktop captured")

	return composite, nil
}
