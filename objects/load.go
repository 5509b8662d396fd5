// SPDX-License-Identifier: GPL-3.0-or-later

package objects

import (
	"strconv"
	"sync"

	"github.com/go-vantage/vantage/internal/hc"
)

// Load is a dimmable or relay load: wire types "Load" and the concrete
// Vantage module type names that all declare the Load interface.
type Load struct {
	Object

	mu         sync.RWMutex
	level      float64
	levelKnown bool
}

func (l *Load) Base() *Object { return &l.Object }

// Level returns the last known 0..100 load level and whether it has
// ever been observed.
func (l *Load) Level() (float64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level, l.levelKnown
}

func (l *Load) setLevel(pct float64) {
	l.mu.Lock()
	l.level = pct
	l.levelKnown = true
	l.mu.Unlock()
}

// ApplySyncLevel records a level obtained by a direct, synchronous
// Load.GetLevel command response (already a 0..100 percent, not the
// millipercent integer state events carry). Controllers' state refresh
// does not call it: it records the same result through [ApplyState] with
// the "Load.GetLevel.Sync" key.
func (l *Load) ApplySyncLevel(pct float64) { l.setLevel(pct) }

// loadGetLevelStateBindings are the Load.GetLevel state bindings shared
// by Load and RGBLoad: "Load.GetLevel" is the ADDSTATUS wire key
// (millipercent integer, spec.md §4.E), "Load.GetLevel.Sync" is a
// library-internal key controllers use to record a direct fetch's
// already-percent result through the same ApplyState path.
func loadGetLevelStateBindings(access func(Variant) *Load) []StateBinding {
	return []StateBinding{
		{Method: "Load.GetLevel", Decode: func(v Variant, args []string) error {
			if len(args) == 0 {
				return nil
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			access(v).setLevel(hc.DecodeMillipercent(n))
			return nil
		}},
		{Method: "Load.GetLevel.Sync", Decode: func(v Variant, args []string) error {
			if len(args) == 0 {
				return nil
			}
			pct, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return err
			}
			access(v).setLevel(pct)
			return nil
		}},
	}
}

func init() {
	register(&VariantDef{
		Kind:       KindLoad,
		WireTypes:  []string{"Load", "Vantage.DimmerModule", "Vantage.RelayBlade"},
		Interfaces: []string{IfaceLoad},
		New:        func(vid int) Variant { return &Load{Object: Object{VID: vid}} },
		States:     loadGetLevelStateBindings(func(v Variant) *Load { return v.(*Load) }),
	})
}
