package migrate

import (
	"testing"
	"time"

	"github.com/johnwards/hubsync/internal/hubspot"
	"github.com/johnwards/hubsync/internal/hubtest"
)

// newPortals starts a seeded-empty source and destination portal pair and
// returns clients for both.
func newPortals(t *testing.T) (src, dst *hubtest.Portal, source, dest *hubspot.Client) {
	t.Helper()
	src = hubtest.NewPortal(t)
	dst = hubtest.NewPortal(t)
	return src, dst, src.Client(), dst.Client()
}

// testOptions disables all pacing sleeps.
func testOptions() Options {
	return Options{Sleep: func(time.Duration) {}}
}
