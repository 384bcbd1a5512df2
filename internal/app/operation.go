package app

import "time"

// Operation tracks the CLI command being run. Its ID tags every log line.
type Operation struct {
	Command   string
	StartedAt time.Time
	Status    string // "success" or "error"
}

// NewOperation creates an Operation for command started at now.
func NewOperation(command string, now time.Time) *Operation {
	return &Operation{
		Command:   command,
		StartedAt: now,
		Status:    "success",
	}
}

// ID returns "<command>-<UTC start time>".
func (op *Operation) ID() string {
	return op.Command + "-" + op.StartedAt.UTC().Format("20060102T150405Z")
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = "error"
}
