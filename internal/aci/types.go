// SPDX-License-Identifier: GPL-3.0-or-later

package aci

import "encoding/xml"

// Element is a generic XML element tree used to represent object records
// and method results whose shape is not known until a kind's field-binding
// table (package objects) interprets it.
//
// This mirrors the standard library's documented pattern for decoding XML
// of unknown structure (a recursive element with attributes, text, and
// children) rather than a bespoke tree type: no third-party XML library in
// the corpus offers a generic-document mode, and the whole point of this
// layer is to stay structure-agnostic until package objects applies its
// binding tables.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []Element  `xml:",any"`
}

// Child returns the first direct child named local, if any.
func (e *Element) Child(local string) (*Element, bool) {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == local {
			return &e.Children[i], true
		}
	}
	return nil, false
}

// Attr returns the value of the attribute named local, if present.
func (e *Element) Attr(local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// RawObject is one object record returned by filter enumeration or direct
// lookup, tagged by its declared wire type. Package objects decodes this
// into a typed variant using a declarative field-binding table.
type RawObject struct {
	// VID is the object's Vantage ID.
	VID int

	// ObjectType is the wire <ObjectType> tag (e.g. "Load", "Vantage.DimmerModule").
	ObjectType string

	// Body is the full decoded XML element for this object, including its
	// VID/ObjectType attributes, for field-binding lookups.
	Body Element
}

// Version reports controller firmware components (spec.md §4.C).
type Version struct {
	Kernel string
	RootFS string
	App    string
}

// FilterHandle is the opaque handle returned by open_filter.
type FilterHandle string
