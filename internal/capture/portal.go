package capture

import (
	"fmt"
	"image"
	_ "image/png"
	"net/url"
	"os"
	"time"

	"github.com/bryanchriswhite/regionshot/internal/geometry"
	"github.com/bryanchriswhite/regionshot/internal/logger"
	"github.com/godbus/dbus/v5"
	"golang.org/x/image/draw"
)

// Portal D-Bus constants
const (
	portalService    = "org.freedesktop.portal.Desktop"
	portalPath       = "/org/freedesktop/portal/desktop"
	screenshotIface  = "org.freedesktop.portal.Screenshot"
	requestIface     = "org.freedesktop.portal.Request"
	defaultPortalTTL = 30 * time.Second
)

// PortalCapturer takes a full-desktop screenshot through xdg-desktop-portal.
// It works on Wayland compositors but cannot grab single monitors.
type PortalCapturer struct {
	conn    *dbus.Conn
	timeout time.Duration
	// KeepFile leaves the portal's screenshot file on disk
	KeepFile bool
}

// NewPortalCapturer connects to the session bus
func NewPortalCapturer(timeout time.Duration) (*PortalCapturer, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultPortalTTL
	}
	return &PortalCapturer{conn: conn, timeout: timeout}, nil
}

// Start checks that the screenshot portal is exported
func (c *PortalCapturer) Start() error {
	obj := c.conn.Object(portalService, portalPath)
	v, err := obj.GetProperty(screenshotIface + ".version")
	if err != nil {
		return fmt.Errorf("screenshot portal unavailable: %w", err)
	}
	logger.WithComponent("portal").Debug().
		Interface("version", v.Value()).
		Msg("Screenshot portal found")
	return nil
}

// Stop closes the bus connection
func (c *PortalCapturer) Stop() error {
	return c.conn.Close()
}

// Name returns the capturer name
func (c *PortalCapturer) Name() string {
	return "portal"
}

// IsAvailable reports whether the bus connection is open
func (c *PortalCapturer) IsAvailable() bool {
	return c.conn != nil && c.conn.Connected()
}

// CaptureMonitor is not supported by the portal
func (c *PortalCapturer) CaptureMonitor(rect geometry.Rect) (*image.RGBA, error) {
	return nil, ErrMonitorUnsupported
}

// CaptureDesktop asks the portal for a non-interactive screenshot and loads it.
// The area is ignored; the portal always returns the whole desktop.
func (c *PortalCapturer) CaptureDesktop(area geometry.Rect) (*image.RGBA, error) {
	log := logger.WithComponent("portal")
	obj := c.conn.Object(portalService, portalPath)

	token := fmt.Sprintf("regionshot%d", os.Getpid())
	options := map[string]dbus.Variant{
		"handle_token": dbus.MakeVariant(token),
		"interactive":  dbus.MakeVariant(false),
	}

	// Set up response channel BEFORE making the call
	responseChan := make(chan *dbus.Signal, 10)
	matchRule := fmt.Sprintf("type='signal',interface='%s',member='Response'", requestIface)
	if err := c.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, matchRule).Err; err != nil {
		log.Warn().Err(err).Msg("Failed to add match rule")
	}
	c.conn.Signal(responseChan)
	defer c.conn.RemoveSignal(responseChan)

	var requestPath dbus.ObjectPath
	if err := obj.Call(screenshotIface+".Screenshot", 0, "", options).Store(&requestPath); err != nil {
		return nil, fmt.Errorf("Screenshot call failed: %w", err)
	}

	log.Debug().Str("request_path", string(requestPath)).Msg("Waiting for Screenshot response")

	uri, err := c.awaitURI(responseChan, requestPath)
	if err != nil {
		return nil, err
	}

	path, err := fileFromURI(uri)
	if err != nil {
		return nil, err
	}
	if !c.KeepFile {
		defer os.Remove(path)
	}

	img, err := loadRGBA(path)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("path", path).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("Portal screenshot captured")
	return img, nil
}

func (c *PortalCapturer) awaitURI(responses <-chan *dbus.Signal, requestPath dbus.ObjectPath) (string, error) {
	timeout := time.After(c.timeout)
	for {
		select {
		case <-timeout:
			return "", fmt.Errorf("timeout waiting for Screenshot response")
		case sig := <-responses:
			if sig.Path != requestPath || sig.Name != requestIface+".Response" {
				continue
			}
			if len(sig.Body) < 2 {
				return "", fmt.Errorf("invalid response")
			}

			response, _ := sig.Body[0].(uint32)
			results, _ := sig.Body[1].(map[string]dbus.Variant)
			if response != 0 {
				return "", fmt.Errorf("portal request denied (code %d)", response)
			}

			v, ok := results["uri"]
			if !ok {
				return "", fmt.Errorf("no uri in response")
			}
			uri, ok := v.Value().(string)
			if !ok {
				return "", fmt.Errorf("unexpected uri type: %T", v.Value())
			}
			return uri, nil
		}
	}
}

func fileFromURI(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse screenshot uri: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported screenshot uri scheme %q", u.Scheme)
	}
	return u.Path, nil
}

func loadRGBA(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open screenshot: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba, nil
}
