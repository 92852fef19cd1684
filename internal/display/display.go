// Package display talks to the X server: it enumerates outputs through RandR
// and hosts the fullscreen overlay windows a selection is drawn on.
package display

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/bryanchriswhite/regionshot/internal/geometry"
	"github.com/bryanchriswhite/regionshot/internal/logger"
	"github.com/bryanchriswhite/regionshot/internal/monitor"
)

// Display is a connection to the X server
type Display struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
}

// Open connects to the X server named by $DISPLAY and initializes RandR
func Open() (*Display, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	if err := randr.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize RandR: %w", err)
	}

	setup := xproto.Setup(conn)
	return &Display{
		conn:   conn,
		screen: setup.DefaultScreen(conn),
	}, nil
}

// Close disconnects from the X server
func (d *Display) Close() {
	d.conn.Close()
}

// Outputs lists connected outputs with an active CRTC, in server order.
// An output whose CRTC cannot be queried is reported without geometry.
func (d *Display) Outputs() ([]monitor.OutputInfo, error) {
	log := logger.WithComponent("display")

	res, err := randr.GetScreenResourcesCurrent(d.conn, d.screen.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var outputs []monitor.OutputInfo
	for _, id := range res.Outputs {
		info, err := randr.GetOutputInfo(d.conn, id, res.ConfigTimestamp).Reply()
		if err != nil {
			return nil, fmt.Errorf("failed to get output info for %d: %w", id, err)
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}

		out := monitor.OutputInfo{
			ID:   monitor.OutputID(id),
			Name: string(info.Name),
		}

		crtc, err := randr.GetCrtcInfo(d.conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			log.Warn().Err(err).Str("output", out.Name).Msg("Failed to get CRTC info")
		} else {
			out.LogicalPosition = &geometry.Point{X: int(crtc.X), Y: int(crtc.Y)}
			out.LogicalSize = &geometry.Size{Width: int(crtc.Width), Height: int(crtc.Height)}
		}

		outputs = append(outputs, out)
	}

	log.Debug().Int("outputs", len(outputs)).Msg("Enumerated RandR outputs")
	return outputs, nil
}
