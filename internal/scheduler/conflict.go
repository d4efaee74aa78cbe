// Package scheduler decides whether reservation candidates collide with
// committed reservations.
package scheduler

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/example/room-reservation/internal/booking"
)

// Result is the outcome of checking one candidate against a snapshot.
type Result struct {
	HasConflict bool
	Conflicts   []booking.Existing
}

// Detect compares the candidate with every active reservation on the same
// resource. Cancelled reservations are ignored. Intervals are compared as full
// instants, so reservations on other dates never conflict.
func Detect(candidate booking.Candidate, snapshot []booking.Existing) Result {
	var result Result
	for _, existing := range snapshot {
		if existing.Cancelled {
			continue
		}
		if candidate.Interval.Overlaps(existing.Interval) {
			result.Conflicts = append(result.Conflicts, existing)
		}
	}
	result.HasConflict = len(result.Conflicts) > 0
	return result
}

// Detector fans conflict checks out across candidates. The snapshot is only
// read, so candidates can be evaluated concurrently.
type Detector struct {
	parallelism int
}

// NewDetector creates a Detector. A non-positive parallelism uses GOMAXPROCS.
func NewDetector(parallelism int) *Detector {
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	return &Detector{parallelism: parallelism}
}

// Partition splits candidates into valid ones and conflicts, preserving input
// order within each list and setting each candidate's Status. Candidates of
// the same batch are not checked against each other.
func (d *Detector) Partition(ctx context.Context, candidates []booking.Candidate, snapshot []booking.Existing) ([]booking.Candidate, []booking.Conflict, error) {
	results := make([]Result, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.parallelism)
	for i := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Detect(candidates[i], snapshot)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		valid     []booking.Candidate
		conflicts []booking.Conflict
	)
	for i, candidate := range candidates {
		c := candidate.Clone()
		if results[i].HasConflict {
			c.Status = booking.StatusConflicting
			conflicts = append(conflicts, booking.Conflict{Candidate: c, With: results[i].Conflicts})
			continue
		}
		c.Status = booking.StatusValid
		valid = append(valid, c)
	}
	return valid, conflicts, nil
}
