// SPDX-License-Identifier: GPL-3.0-or-later

package objects

import (
	"strconv"
	"sync"
)

// GMem is a global memory variable, typed string or integer per its
// declared ValueType config attribute.
type GMem struct {
	Object

	mu        sync.RWMutex
	valueType string
	strValue  string
	intValue  int
	known     bool
}

func (g *GMem) Base() *Object { return &g.Object }

// IsInteger reports whether this variable is declared integer-typed.
func (g *GMem) IsInteger() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.valueType == "Integer"
}

// StringValue returns the last known string value.
func (g *GMem) StringValue() (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.strValue, g.known
}

// IntValue returns the last known integer value.
func (g *GMem) IntValue() (int, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.intValue, g.known
}

func (g *GMem) setString(s string) {
	g.mu.Lock()
	g.strValue, g.known = s, true
	g.mu.Unlock()
}

func (g *GMem) setInt(n int) {
	g.mu.Lock()
	g.intValue, g.known = n, true
	g.mu.Unlock()
}

func init() {
	register(&VariantDef{
		Kind:       KindGMem,
		WireTypes:  []string{"GMem", "Vantage.GMem"},
		Interfaces: []string{IfaceGMem},
		New:        func(vid int) Variant { return &GMem{Object: Object{VID: vid}} },
		Fields: []FieldBinding{
			{[]string{"ValueType"}, func(v Variant, text string) { v.(*GMem).valueType = text }},
		},
		States: []StateBinding{
			{Method: "VariableVault.GetValue", Decode: decodeGMemValue},
		},
	})
}

func decodeGMemValue(v Variant, args []string) error {
	g := v.(*GMem)
	if len(args) == 0 {
		return nil
	}
	if g.IsInteger() {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		g.setInt(n)
		return nil
	}
	g.setString(args[0])
	return nil
}
