package selection

import (
	"fmt"

	"github.com/bryanchriswhite/regionshot/internal/geometry"
)

// State is the drag state of the machine
type State int

const (
	Idle State = iota
	Dragging
	Finalized
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Finalized:
		return "finalized"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ExitKind tags an ExitState
type ExitKind int

const (
	Pending ExitKind = iota
	ExitOnly
	ExitWithSelection
)

// ExitState tells the driver whether to keep looping, quit, or crop.
// Selection is only set for ExitWithSelection.
type ExitState struct {
	Kind      ExitKind
	Selection geometry.Rect
}

// Terminal reports whether the event loop should stop
func (e ExitState) Terminal() bool {
	return e.Kind != Pending
}

func (e ExitState) String() string {
	switch e.Kind {
	case Pending:
		return "pending"
	case ExitOnly:
		return "exit"
	case ExitWithSelection:
		return "exit-with-selection " + e.Selection.String()
	default:
		return fmt.Sprintf("exit(%d)", int(e.Kind))
	}
}

// ZeroAreaPolicy decides what a release without any dragged area means
type ZeroAreaPolicy string

const (
	// ZeroAreaCancel treats a zero-width or zero-height selection as cancellation
	ZeroAreaCancel ZeroAreaPolicy = "cancel"
	// ZeroAreaRetry discards the selection and waits for a new drag
	ZeroAreaRetry ZeroAreaPolicy = "retry"
)

// ParseZeroAreaPolicy validates a policy name; empty means cancel
func ParseZeroAreaPolicy(s string) (ZeroAreaPolicy, error) {
	switch ZeroAreaPolicy(s) {
	case "", ZeroAreaCancel:
		return ZeroAreaCancel, nil
	case ZeroAreaRetry:
		return ZeroAreaRetry, nil
	default:
		return "", fmt.Errorf("invalid zero_area policy %q (use cancel or retry)", s)
	}
}

// Options configures a Machine
type Options struct {
	ZeroArea   ZeroAreaPolicy
	CancelKeys []uint32
}

// Machine turns pointer and key input, in global logical coordinates, into a
// selection and an exit decision. It is not safe for concurrent use.
type Machine struct {
	state      State
	anchor     geometry.Point
	selection  geometry.Rect
	exit       ExitState
	zeroArea   ZeroAreaPolicy
	cancelKeys map[uint32]struct{}
}

// NewMachine creates an idle machine
func NewMachine(opts Options) *Machine {
	keys := make(map[uint32]struct{}, len(opts.CancelKeys))
	for _, k := range opts.CancelKeys {
		keys[k] = struct{}{}
	}

	zeroArea := opts.ZeroArea
	if zeroArea == "" {
		zeroArea = ZeroAreaCancel
	}

	return &Machine{
		zeroArea:   zeroArea,
		cancelKeys: keys,
	}
}

// State returns the current state
func (m *Machine) State() State {
	return m.state
}

// Exit returns the exit decision; Pending until a terminal transition
func (m *Machine) Exit() ExitState {
	return m.exit
}

// Selection returns the current selection and whether a drag is in progress
func (m *Machine) Selection() (geometry.Rect, bool) {
	return m.selection, m.state == Dragging
}

// Press anchors a new drag at p. Ignored unless idle.
func (m *Machine) Press(p geometry.Point) bool {
	if m.state != Idle {
		return false
	}
	m.state = Dragging
	m.anchor = p
	m.selection = geometry.Rect{X: p.X, Y: p.Y}
	return true
}

// Motion stretches the selection between the anchor and p
func (m *Machine) Motion(p geometry.Point) bool {
	if m.state != Dragging {
		return false
	}
	next := geometry.FromPoints(m.anchor, p)
	if next == m.selection {
		return false
	}
	m.selection = next
	return true
}

// Release finalizes the drag. A release without a prior press is a no-op.
func (m *Machine) Release() bool {
	if m.state != Dragging {
		return false
	}

	if m.selection.Empty() {
		switch m.zeroArea {
		case ZeroAreaRetry:
			m.state = Idle
			m.selection = geometry.Rect{}
			return true
		default:
			return m.Cancel()
		}
	}

	m.state = Finalized
	m.exit = ExitState{Kind: ExitWithSelection, Selection: m.selection}
	return true
}

// Cancel ends the session without a selection, overriding any drag
func (m *Machine) Cancel() bool {
	if m.exit.Terminal() {
		return false
	}
	m.state = Cancelled
	m.exit = ExitState{Kind: ExitOnly}
	return true
}

// Key cancels when keysym is one of the cancel keys
func (m *Machine) Key(keysym uint32) bool {
	if _, ok := m.cancelKeys[keysym]; !ok {
		return false
	}
	return m.Cancel()
}
