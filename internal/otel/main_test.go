package otel

import (
	"testing"

	"go.uber.org/goleak"
)

// Every Logger created by a test must be closed; a leftover drain goroutine fails the run.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
