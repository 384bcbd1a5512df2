package app

import (
	"testing"
	"time"
)

func TestOperation(t *testing.T) {
	started := time.Date(2024, 6, 15, 16, 30, 45, 0, time.FixedZone("CEST", 2*60*60))
	op := NewOperation("send", started)

	if op.Status != "success" {
		t.Errorf("Status = %q, want %q", op.Status, "success")
	}
	if got, want := op.ID(), "send-20240615T143045Z"; got != want {
		t.Errorf("ID() = %q, want %q", got, want)
	}

	op.Fail()
	if op.Status != "error" {
		t.Errorf("Status after Fail() = %q, want %q", op.Status, "error")
	}
}
