package display

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/bryanchriswhite/regionshot/internal/event"
	"github.com/bryanchriswhite/regionshot/internal/geometry"
	"github.com/bryanchriswhite/regionshot/internal/monitor"
)

// translator maps X events on overlay windows to session events
type translator struct {
	outputs map[xproto.Window]monitor.OutputID
	keys    *keymap
}

// translate returns the session event for ev. Events on unknown windows and
// buttons other than the primary one are dropped.
func (t *translator) translate(ev xgb.Event) (event.Event, bool) {
	switch e := ev.(type) {
	case xproto.ButtonPressEvent:
		out, ok := t.outputs[e.Event]
		if !ok || e.Detail != xproto.ButtonIndex1 {
			return nil, false
		}
		return event.PointerDown{Output: out, Position: point(e.EventX, e.EventY)}, true

	case xproto.MotionNotifyEvent:
		out, ok := t.outputs[e.Event]
		if !ok {
			return nil, false
		}
		return event.PointerMove{Output: out, Position: point(e.EventX, e.EventY)}, true

	case xproto.ButtonReleaseEvent:
		out, ok := t.outputs[e.Event]
		if !ok || e.Detail != xproto.ButtonIndex1 {
			return nil, false
		}
		return event.PointerUp{Output: out}, true

	case xproto.KeyPressEvent:
		out, ok := t.outputs[e.Event]
		if !ok {
			return nil, false
		}
		return event.Key{Output: out, Keysym: t.keys.lookup(e.Detail)}, true
	}
	return nil, false
}

func point(x, y int16) geometry.Point {
	return geometry.Point{X: int(x), Y: int(y)}
}
