// SPDX-License-Identifier: GPL-3.0-or-later

package objects

import "sync"

// ButtonState is a button's last reported press state.
type ButtonState string

const (
	ButtonUp   ButtonState = "up"
	ButtonDown ButtonState = "down"
)

// Button is a keypad or dry-contact button.
type Button struct {
	Object

	mu    sync.RWMutex
	state ButtonState
	known bool
}

func (b *Button) Base() *Object { return &b.Object }

// State returns the button's last known press state.
func (b *Button) State() (ButtonState, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state, b.known
}

func (b *Button) setState(s ButtonState) {
	b.mu.Lock()
	b.state, b.known = s, true
	b.mu.Unlock()
}

func init() {
	register(&VariantDef{
		Kind:       KindButton,
		WireTypes:  []string{"Button", "Vantage.Button"},
		Interfaces: []string{IfaceButton},
		New:        func(vid int) Variant { return &Button{Object: Object{VID: vid}} },
		States: []StateBinding{
			{Method: "Button.GetState", Decode: decodeButtonState},
		},
	})
}

func decodeButtonState(v Variant, args []string) error {
	b := v.(*Button)
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "1", "PRESS", "Down":
		b.setState(ButtonDown)
	default:
		b.setState(ButtonUp)
	}
	return nil
}
