// SPDX-License-Identifier: GPL-3.0-or-later

package objects

import "sync"

// Task is a Vantage automation task, triggerable by event name
// (spec.md §4.E's Task.trigger enumeration).
type Task struct {
	Object

	mu        sync.RWMutex
	lastEvent string
}

func (t *Task) Base() *Object { return &t.Object }

// LastEvent returns the last event name observed for this task, or ""
// if none has been observed.
func (t *Task) LastEvent() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastEvent
}

func (t *Task) setLastEvent(event string) {
	t.mu.Lock()
	t.lastEvent = event
	t.mu.Unlock()
}

func init() {
	register(&VariantDef{
		Kind:       KindTask,
		WireTypes:  []string{"Task", "Vantage.Task"},
		Interfaces: []string{IfaceTask},
		New:        func(vid int) Variant { return &Task{Object: Object{VID: vid}} },
		States: []StateBinding{
			{Method: "Task.GetLastEvent", Decode: decodeTaskEvent},
		},
	})
}

func decodeTaskEvent(v Variant, args []string) error {
	t := v.(*Task)
	if len(args) == 0 {
		return nil
	}
	t.setLastEvent(args[0])
	return nil
}
