package switcher

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/systune-dev/systune/internal/resolve"
)

// maxVerifyReads bounds concurrent live-value reads during verification.
const maxVerifyReads = 8

// Mismatch is one setting whose live value differs from what the active
// profile prescribes.
type Mismatch struct {
	Key      string `json:"key"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Origin   string `json:"origin"`
}

// VerifyReport is the outcome of comparing live values against the active
// profile's effective settings.
type VerifyReport struct {
	Profile    string     `json:"profile"`
	Checked    int        `json:"checked"`
	Skipped    []string   `json:"skipped,omitempty"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

// OK reports whether every checked setting matches.
func (r *VerifyReport) OK() bool {
	return len(r.Mismatches) == 0
}

// Verify re-resolves the active profile and compares each supported
// setting's live value against the value the profile prescribes. Reads run
// concurrently; verification never writes. With no profile active the
// report is trivially clean.
func (c *Controller) Verify(ctx context.Context) (*VerifyReport, error) {
	rec, err := c.tracker.Load()
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{Profile: rec.Profile}
	if rec.IsNone() {
		return report, nil
	}

	effective, err := c.resolver.Resolve(rec.Profile)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxVerifyReads)

	for _, st := range effective.Settings() {
		if !c.applier.Supports(st.Key) {
			mu.Lock()
			report.Skipped = append(report.Skipped, st.Key)
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			actual, err := c.applier.Read(gctx, st.Key)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			report.Checked++
			if actual != st.Value.String() {
				report.Mismatches = append(report.Mismatches, Mismatch{
					Key:      st.Key,
					Expected: st.Value.String(),
					Actual:   actual,
					Origin:   st.Origin,
				})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortMismatches(report.Mismatches, effective)
	return report, nil
}

// sortMismatches orders mismatches by their apply position so output is
// deterministic despite concurrent reads.
func sortMismatches(mismatches []Mismatch, effective *resolve.EffectiveSettings) {
	position := make(map[string]int, effective.Len())
	for i, key := range effective.Keys() {
		position[key] = i
	}
	sort.Slice(mismatches, func(i, j int) bool {
		return position[mismatches[i].Key] < position[mismatches[j].Key]
	})
}

// joinRestoreErrors aggregates best-effort restore failures into one error.
func joinRestoreErrors(errs []error) error {
	return errors.Join(errs...)
}
