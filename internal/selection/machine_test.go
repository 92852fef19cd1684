package selection

import (
	"testing"

	"github.com/bryanchriswhite/regionshot/internal/geometry"
	"github.com/stretchr/testify/assert"
)

const escape = 0xff1b

func pt(x, y int) geometry.Point {
	return geometry.Point{X: x, Y: y}
}

func newMachine() *Machine {
	return NewMachine(Options{CancelKeys: []uint32{escape}})
}

func TestMachine_DragDownRight(t *testing.T) {
	m := newMachine()

	assert.True(t, m.Press(pt(100, 100)))
	sel, dragging := m.Selection()
	assert.True(t, dragging)
	assert.Equal(t, geometry.Rect{X: 100, Y: 100}, sel)

	assert.True(t, m.Motion(pt(300, 300)))
	assert.True(t, m.Release())

	assert.Equal(t, Finalized, m.State())
	assert.Equal(t, ExitState{Kind: ExitWithSelection, Selection: geometry.Rect{X: 100, Y: 100, Width: 200, Height: 200}}, m.Exit())
	assert.True(t, m.Exit().Terminal())
}

func TestMachine_DragUpLeftNormalizes(t *testing.T) {
	m := newMachine()

	m.Press(pt(300, 300))
	m.Motion(pt(200, 250))
	m.Motion(pt(100, 100))
	m.Release()

	assert.Equal(t, geometry.Rect{X: 100, Y: 100, Width: 200, Height: 200}, m.Exit().Selection)
}

func TestMachine_CancelMidDrag(t *testing.T) {
	m := newMachine()

	m.Press(pt(10, 10))
	m.Motion(pt(500, 400))
	assert.True(t, m.Key(escape))

	assert.Equal(t, Cancelled, m.State())
	assert.Equal(t, ExitState{Kind: ExitOnly}, m.Exit())

	// Nothing after the terminal state changes the outcome
	assert.False(t, m.Release())
	assert.False(t, m.Press(pt(0, 0)))
	assert.Equal(t, ExitOnly, m.Exit().Kind)
}

func TestMachine_CancelWhileIdle(t *testing.T) {
	m := newMachine()
	assert.True(t, m.Key(escape))
	assert.Equal(t, ExitOnly, m.Exit().Kind)
}

func TestMachine_OtherKeysIgnored(t *testing.T) {
	m := newMachine()
	m.Press(pt(1, 1))

	assert.False(t, m.Key(0x61))
	assert.Equal(t, Dragging, m.State())
	assert.False(t, m.Exit().Terminal())
}

func TestMachine_ReleaseWithoutPress(t *testing.T) {
	m := newMachine()

	assert.False(t, m.Release())
	assert.False(t, m.Motion(pt(50, 50)))
	assert.Equal(t, Idle, m.State())
	assert.Equal(t, Pending, m.Exit().Kind)
}

func TestMachine_PressWhileDraggingKeepsAnchor(t *testing.T) {
	m := newMachine()

	m.Press(pt(10, 10))
	assert.False(t, m.Press(pt(90, 90)))
	m.Motion(pt(20, 30))

	sel, _ := m.Selection()
	assert.Equal(t, geometry.Rect{X: 10, Y: 10, Width: 10, Height: 20}, sel)
}

func TestMachine_ZeroAreaCancelsByDefault(t *testing.T) {
	m := newMachine()

	m.Press(pt(40, 40))
	assert.True(t, m.Release())
	assert.Equal(t, ExitState{Kind: ExitOnly}, m.Exit())
}

func TestMachine_ZeroWidthCancels(t *testing.T) {
	m := newMachine()

	m.Press(pt(40, 40))
	m.Motion(pt(40, 200))
	m.Release()
	assert.Equal(t, ExitOnly, m.Exit().Kind)
}

func TestMachine_ZeroAreaRetry(t *testing.T) {
	m := NewMachine(Options{ZeroArea: ZeroAreaRetry})

	m.Press(pt(40, 40))
	assert.True(t, m.Release())
	assert.Equal(t, Idle, m.State())
	assert.False(t, m.Exit().Terminal())

	m.Press(pt(0, 0))
	m.Motion(pt(10, 10))
	m.Release()
	assert.Equal(t, geometry.Rect{Width: 10, Height: 10}, m.Exit().Selection)
}

func TestMachine_MotionReportsChange(t *testing.T) {
	m := newMachine()
	m.Press(pt(0, 0))

	assert.True(t, m.Motion(pt(5, 5)))
	assert.False(t, m.Motion(pt(5, 5)))
}

func TestParseZeroAreaPolicy(t *testing.T) {
	p, err := ParseZeroAreaPolicy("")
	assert.NoError(t, err)
	assert.Equal(t, ZeroAreaCancel, p)

	p, err = ParseZeroAreaPolicy("retry")
	assert.NoError(t, err)
	assert.Equal(t, ZeroAreaRetry, p)

	_, err = ParseZeroAreaPolicy("select")
	assert.Error(t, err)
}

func TestExitState_String(t *testing.T) {
	assert.Equal(t, "pending", ExitState{}.String())
	assert.Equal(t, "exit", ExitState{Kind: ExitOnly}.String())
	assert.Equal(t, "exit-with-selection 2x3+0+1", ExitState{Kind: ExitWithSelection, Selection: geometry.Rect{Y: 1, Width: 2, Height: 3}}.String())
}
