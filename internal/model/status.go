package model

import "time"

// CompetitionStatus enumerates the lifecycle states of a competition.
// Transitions only ever move forward: upcoming → active → ended.
type CompetitionStatus string

const (
	StatusUpcoming CompetitionStatus = "upcoming"
	StatusActive   CompetitionStatus = "active"
	StatusEnded    CompetitionStatus = "ended"
)

// ResolveStatus derives the status for a scheduled competition. Pure function:
// for a fixed (availableFrom, endAt) it is monotonic in now.
func ResolveStatus(now, availableFrom, endAt time.Time) CompetitionStatus {
	switch {
	case now.Before(availableFrom):
		return StatusUpcoming
	case now.After(endAt):
		return StatusEnded
	default:
		return StatusActive
	}
}

// Resolve recomputes the cached status from the clock and the stored schedule,
// and reports whether any field changed and needs persisting.
//
// A competition without an AvailableFrom has no timing to resolve from and is
// left untouched (not-yet-scheduled drafts). EndAt is computed once from
// AvailableFrom + duration and cached on the entity so later resolutions do
// not recompute it from a possibly-edited duration.
func (c *Competition) Resolve(now time.Time) bool {
	if c.AvailableFrom == nil {
		return false
	}

	changed := false
	if c.EndAt == nil {
		d := c.DurationMinutes
		if d <= 0 {
			d = DefaultDurationMinutes
		}
		end := c.AvailableFrom.Add(time.Duration(d) * time.Minute)
		c.EndAt = &end
		changed = true
	}

	next := ResolveStatus(now, *c.AvailableFrom, *c.EndAt)
	if next != c.Status {
		c.Status = next
		changed = true
	}

	if next == StatusEnded && c.archiveOnEnd() {
		changed = true
	}
	return changed
}

// archiveOnEnd applies the end-of-life transition: an ended live competition
// is no longer actionable by students and must drop out of active/upcoming
// listings, so is_live flips off and the archive flag goes up.
func (c *Competition) archiveOnEnd() bool {
	if !c.IsLive {
		return false
	}
	c.IsLive = false
	c.Archived = true
	return true
}
