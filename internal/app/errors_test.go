package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hyperifyio/statscrape/internal/announce"
	"github.com/hyperifyio/statscrape/internal/sales"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{fmt.Errorf("%w: found 3 of 6 values", ErrPartialResult), 2},
		{announce.ErrNoAnnouncement, 2},
		{fmt.Errorf("parse: %w", sales.ErrNoDomesticBlock), 2},
		{sales.ErrNoPDF, 1},
		{fmt.Errorf("%w: boom", ErrFetch), 1},
		{errors.New("other"), 1},
	}
	for _, c := range cases {
		if got := ExitCode(c.err); got != c.want {
			t.Fatalf("ExitCode(%v)=%d, want %d", c.err, got, c.want)
		}
	}
}
