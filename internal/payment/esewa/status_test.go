package esewa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatusTotal(t *testing.T) {
	known := map[string]Status{
		"COMPLETE":       StatusComplete,
		"PENDING":        StatusPending,
		"FULL_REFUND":    StatusFullRefund,
		"PARTIAL_REFUND": StatusPartialRefund,
		"AMBIGUOUS":      StatusAmbiguous,
		"NOT_FOUND":      StatusNotFound,
		"CANCELED":       StatusCanceled,
	}
	for raw, want := range known {
		assert.Equal(t, want, ParseStatus(raw), raw)
	}

	// Everything outside the lattice collapses to AMBIGUOUS.
	for _, raw := range []string{"", "complete", "Completed", "SUCCESS", "REFUNDED", "garbage", "COMPLETE "} {
		assert.Equal(t, StatusAmbiguous, ParseStatus(raw), "raw=%q", raw)
	}
}

func TestReconcileSuccessGating(t *testing.T) {
	all := []Status{
		StatusComplete, StatusPending, StatusFullRefund, StatusPartialRefund,
		StatusAmbiguous, StatusNotFound, StatusCanceled,
	}

	for _, status := range all {
		out := Reconcile(status)
		assert.Equal(t, string(status), out.Status)
		assert.NotEmpty(t, out.Message)

		// is_success holds exactly for COMPLETE, and
		// should_provide_service tracks it for every status.
		assert.Equal(t, status == StatusComplete, out.IsSuccess, string(status))
		assert.Equal(t, out.IsSuccess, out.ShouldProvideService, string(status))
	}
}
