// SPDX-License-Identifier: GPL-3.0-or-later

package objects

import (
	"strconv"
	"sync"
)

// Blind is a motorized shade or blind.
type Blind struct {
	Object

	mu            sync.RWMutex
	position      float64
	positionKnown bool
}

func (b *Blind) Base() *Object { return &b.Object }

// Position returns the last known 0..100 blind position, where 0 is
// fully open.
func (b *Blind) Position() (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.position, b.positionKnown
}

func (b *Blind) setPosition(pct float64) {
	b.mu.Lock()
	b.position, b.positionKnown = pct, true
	b.mu.Unlock()
}

func init() {
	register(&VariantDef{
		Kind:       KindBlind,
		WireTypes:  []string{"Blind", "Vantage.QISBlind"},
		Interfaces: []string{IfaceBlind},
		New:        func(vid int) Variant { return &Blind{Object: Object{VID: vid}} },
		States: []StateBinding{
			{Method: "Blind.GetPosition", Decode: decodeBlindPosition},
		},
	})
}

func decodeBlindPosition(v Variant, args []string) error {
	b := v.(*Blind)
	if len(args) == 0 {
		return nil
	}
	pct, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return err
	}
	b.setPosition(pct)
	return nil
}
