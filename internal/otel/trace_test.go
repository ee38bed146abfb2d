package otel

import "testing"

func TestSetTrace(t *testing.T) {
	prev := SetTrace(true)
	defer SetTrace(prev)

	if !TraceEnabled() {
		t.Fatal("tracing should be on")
	}
	if was := SetTrace(false); !was {
		t.Error("SetTrace should return the previous value")
	}
	if TraceEnabled() {
		t.Error("tracing should be off")
	}
}
