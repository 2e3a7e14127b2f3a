package domain

import "fmt"

// StoreError wraps any network or validation failure talking to the task
// store. It aborts the whole scheduler/worker invocation: without a working
// store no task state can be trusted.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// DispatchError marks a task whose type has no handler. Caught per task, the
// task is failed and the batch goes on.
type DispatchError struct {
	Type string
}

func (e *DispatchError) Error() string { return fmt.Sprintf("unknown task type: %q", e.Type) }

// CommandError is a handler command that exited non-zero or ran out of time.
type CommandError struct {
	ExitCode int
	TimedOut bool
	Output   string
}

func (e *CommandError) Error() string {
	if e.TimedOut {
		return "command timed out"
	}
	return fmt.Sprintf("command exited with code %d", e.ExitCode)
}

// NotifyError is a failed notification delivery. Logged by callers, never
// escalated.
type NotifyError struct {
	Err error
}

func (e *NotifyError) Error() string { return fmt.Sprintf("notify: %v", e.Err) }
func (e *NotifyError) Unwrap() error { return e.Err }
