package state

import (
	"testing"

	"go.uber.org/goleak"
)

// The genai SDK pulls in opencensus, whose view worker starts in init and never stops.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}
