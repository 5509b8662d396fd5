// SPDX-License-Identifier: GPL-3.0-or-later

package objects

import "github.com/go-vantage/vantage/internal/aci"

// FieldBinding maps one config XML path, relative to the object's root
// element, to a setter applied to the freshly-decoded variant (spec.md
// §4.G "field-binding table").
type FieldBinding struct {
	Path []string
	Set  func(v Variant, text string)
}

// StateBinding maps one "Interface.Method" state event to a decoder
// applied to the variant (spec.md §4.G "state-binding table"). Decode
// receives the whitespace-split result/argument tokens that followed the
// method name on the wire.
type StateBinding struct {
	Method string
	Decode func(v Variant, args []string) error
}

// VariantDef is one kind's complete declaration: its wire type names,
// implemented interfaces, constructor, and binding tables.
type VariantDef struct {
	Kind       Kind
	WireTypes  []string
	Interfaces []string
	New        func(vid int) Variant
	Fields     []FieldBinding
	States     []StateBinding
}

var (
	registry      = map[Kind]*VariantDef{}
	wireTypeIndex = map[string]Kind{}
)

func register(def *VariantDef) {
	registry[def.Kind] = def
	for _, wt := range def.WireTypes {
		wireTypeIndex[wt] = def.Kind
	}
}

// LookupWireType returns the [Kind] registered for a wire <ObjectType>
// name, if any.
func LookupWireType(wireType string) (Kind, bool) {
	k, ok := wireTypeIndex[wireType]
	return k, ok
}

// DefinitionFor returns the registered [*VariantDef] for kind, if any.
func DefinitionFor(kind Kind) (*VariantDef, bool) {
	def, ok := registry[kind]
	return def, ok
}

// AllKinds returns every registered kind, in no particular order.
func AllKinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	return kinds
}

// WireTypesFor returns the wire <ObjectType> names registered for kind.
func WireTypesFor(kind Kind) []string {
	def, ok := registry[kind]
	if !ok {
		return nil
	}
	return def.WireTypes
}

func findPath(root *aci.Element, path []string) *aci.Element {
	cur := root
	for _, name := range path {
		child, ok := cur.Child(name)
		if !ok {
			return nil
		}
		cur = child
	}
	return cur
}
