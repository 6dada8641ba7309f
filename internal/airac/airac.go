// Package airac computes AIRAC cycle dates and the upstream release tags
// derived from them. Controller pack releases are tagged per 28-day AIRAC
// cycle in "yyyy/mm" form.
package airac

import (
	"fmt"
	"time"

	"github.com/packsync/packsync/internal/logging"
)

// baseDate is the first AIRAC effective date following the last cycle length
// change. All cycle arithmetic is anchored here.
var baseDate = time.Date(2019, time.January, 2, 0, 0, 0, 0, time.UTC)

// cycleDays is the length of one AIRAC cycle.
const cycleDays = 28

// Calendar answers AIRAC cycle questions for arbitrary dates.
type Calendar struct {
	now func() time.Time
}

// New returns a Calendar using the system clock.
func New() *Calendar {
	return &Calendar{now: time.Now}
}

// NewAt returns a Calendar with a fixed clock, for tests.
func NewAt(now func() time.Time) *Calendar {
	return &Calendar{now: now}
}

// CyclesSince returns the number of whole AIRAC cycles between the base date
// and t.
func (c *Calendar) CyclesSince(t time.Time) int {
	days := int(t.UTC().Truncate(24*time.Hour).Sub(baseDate).Hours() / 24)
	n := days / cycleDays
	if days < 0 && days%cycleDays != 0 {
		n--
	}
	logging.Debug("computed elapsed AIRAC cycles",
		logging.Count(n),
	)
	return n
}

// Cycle returns the effective date of the AIRAC cycle containing t.
func (c *Calendar) Cycle(t time.Time) time.Time {
	n := c.CyclesSince(t)
	return baseDate.AddDate(0, 0, n*cycleDays+1)
}

// NextCycle returns the effective date of the AIRAC cycle after the one
// containing t.
func (c *Calendar) NextCycle(t time.Time) time.Time {
	n := c.CyclesSince(t)
	return baseDate.AddDate(0, 0, (n+1)*cycleDays+1)
}

// CurrentCycle returns the effective date of the cycle in force now.
func (c *Calendar) CurrentCycle() time.Time {
	return c.Cycle(c.now())
}

// Tag returns the upstream release tag for the cycle containing t, in
// "yyyy/mm" form.
func (c *Calendar) Tag(t time.Time) string {
	cycle := c.Cycle(t)
	return fmt.Sprintf("%04d/%02d", cycle.Year(), int(cycle.Month()))
}

// CurrentTag returns the release tag for the cycle in force now.
func (c *Calendar) CurrentTag() string {
	return c.Tag(c.now())
}
