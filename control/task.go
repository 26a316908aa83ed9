// Package control runs control tasks once per fixed-period cycle.
//
// Tasks run one after another in registration order and never overlap, so
// tasks that share the field registry need no locking. Background
// transports run as Runnables beside the loop and only hand complete buffers
// to tasks.
package control

// Task is one unit of per-cycle work.
type Task interface {
	Name() string
	// Execute runs the task for the given cycle. A returned error is logged
	// by the loop; it does not stop the loop.
	Execute(cycle uint32) error
}

type funcTask struct {
	name string
	fn   func(cycle uint32) error
}

func (t *funcTask) Name() string               { return t.name }
func (t *funcTask) Execute(cycle uint32) error { return t.fn(cycle) }

// Func adapts fn to a Task called name.
func Func(name string, fn func(cycle uint32) error) Task {
	return &funcTask{name: name, fn: fn}
}
