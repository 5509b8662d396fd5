// SPDX-License-Identifier: GPL-3.0-or-later

package objects

// Object holds the configuration attributes common to every kind
// (spec.md §3): identity, naming, and weak back-references. Area/parent/
// master are stored as VIDs, never as owning references; a dangling
// reference is tolerated and surfaced as a failed lookup by whatever
// resolves it (controllers).
type Object struct {
	VID         int
	Kind        Kind
	Name        string
	DisplayName string
	Model       string
	AreaVID     int
	ParentVID   int
	MasterVID   int
}

// Variant is implemented by every concrete object type (Load, Button,
// ...). Base returns the shared configuration record so generic code
// (registry dispatch, controllers) can operate without a kind switch.
type Variant interface {
	Base() *Object
}
