package display

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Keysyms for the keys that can be bound to cancel a selection
var keysyms = map[string]uint32{
	"escape":    0xff1b,
	"return":    0xff0d,
	"backspace": 0xff08,
	"tab":       0xff09,
	"space":     0x0020,
	"delete":    0xffff,
}

// KeysymFor returns the keysym for a key name such as "Escape" or "q"
func KeysymFor(name string) (uint32, bool) {
	if sym, ok := keysyms[strings.ToLower(name)]; ok {
		return sym, true
	}
	// Latin-1 keysyms equal their code point
	if len(name) == 1 && name[0] >= 0x20 && name[0] < 0x7f {
		return uint32(strings.ToLower(name)[0]), true
	}
	return 0, false
}

// KeysymsFor resolves key names, returning the names it did not recognize
func KeysymsFor(names []string) ([]uint32, []string) {
	var syms []uint32
	var unknown []string
	for _, n := range names {
		if sym, ok := KeysymFor(n); ok {
			syms = append(syms, sym)
		} else {
			unknown = append(unknown, n)
		}
	}
	return syms, unknown
}

// keymap is the server's keycode to keysym table
type keymap struct {
	min     xproto.Keycode
	perCode int
	syms    []xproto.Keysym
}

func loadKeymap(conn *xgb.Conn) (*keymap, error) {
	setup := xproto.Setup(conn)
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	reply, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode, count).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get keyboard mapping: %w", err)
	}
	return &keymap{
		min:     setup.MinKeycode,
		perCode: int(reply.KeysymsPerKeycode),
		syms:    reply.Keysyms,
	}, nil
}

// lookup returns the unshifted keysym for code, or 0
func (k *keymap) lookup(code xproto.Keycode) uint32 {
	if k == nil || k.perCode == 0 || code < k.min {
		return 0
	}
	i := int(code-k.min) * k.perCode
	if i >= len(k.syms) {
		return 0
	}
	return uint32(k.syms[i])
}
