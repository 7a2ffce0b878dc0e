package app

import (
	"errors"

	"github.com/hyperifyio/statscrape/internal/announce"
	"github.com/hyperifyio/statscrape/internal/sales"
)

var (
	// ErrPartialResult is returned when extraction resolved fewer than all
	// six fields and partial export was not allowed.
	ErrPartialResult = errors.New("partial result")
	// ErrFetch marks failures that happened before extraction could run.
	ErrFetch = errors.New("fetch failed")
)

// ExitCode maps a task error to the process exit status: 0 on success, 2 when
// the task ran but found nothing usable, 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrPartialResult),
		errors.Is(err, announce.ErrNoAnnouncement),
		errors.Is(err, sales.ErrNoDomesticBlock):
		return 2
	default:
		return 1
	}
}
