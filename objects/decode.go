// SPDX-License-Identifier: GPL-3.0-or-later

package objects

import (
	"fmt"
	"strconv"

	"github.com/go-vantage/vantage/internal/aci"
)

// commonFields are the config XML paths shared by every kind, applied
// before a variant's own field bindings.
var commonFields = []struct {
	path []string
	set  func(o *Object, text string)
}{
	{[]string{"Name"}, func(o *Object, text string) { o.Name = text }},
	{[]string{"DName"}, func(o *Object, text string) { o.DisplayName = text }},
	{[]string{"Model"}, func(o *Object, text string) { o.Model = text }},
	{[]string{"Area"}, func(o *Object, text string) { o.AreaVID, _ = strconv.Atoi(text) }},
	{[]string{"Parent"}, func(o *Object, text string) { o.ParentVID, _ = strconv.Atoi(text) }},
	{[]string{"Master"}, func(o *Object, text string) { o.MasterVID, _ = strconv.Atoi(text) }},
}

// Decode interprets raw using the field-binding table registered for its
// wire <ObjectType>. An unrecognized wire type is reported as an error
// rather than silently ignored: the caller (controllers) decides whether
// to log and skip.
func Decode(raw aci.RawObject) (Variant, error) {
	kind, ok := LookupWireType(raw.ObjectType)
	if !ok {
		return nil, fmt.Errorf("objects: unrecognized wire type %q", raw.ObjectType)
	}
	def := registry[kind]
	v := def.New(raw.VID)
	base := v.Base()
	base.VID = raw.VID
	base.Kind = kind

	for _, cf := range commonFields {
		if el := findPath(&raw.Body, cf.path); el != nil {
			cf.set(base, el.Text)
		}
	}
	for _, fb := range def.Fields {
		if el := findPath(&raw.Body, fb.Path); el != nil {
			fb.Set(v, el.Text)
		}
	}
	return v, nil
}
