// Package layout arranges one day's appointments into non-overlapping
// display columns for the practice calendar. The algorithm is pure and
// deterministic so the API and any rendering client agree on geometry.
package layout

import "sort"

// Entry is one appointment interval, in minutes relative to the displayed
// window's start hour.
type Entry struct {
	ID           string
	StartMinutes int
	EndMinutes   int
}

// Positioned is an Entry with its computed calendar geometry. Left and Width
// are percentages of the day column; Top and Height are percentages of the
// displayed window.
type Positioned struct {
	Entry
	Column  int     `json:"column"`
	Columns int     `json:"columns"`
	Left    float64 `json:"left"`
	Width   float64 `json:"width"`
	Top     float64 `json:"top"`
	Height  float64 `json:"height"`
}

// overlaps reports whether two half-open intervals [aStart,aEnd) and
// [bStart,bEnd) share any time.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Day partitions entries into transitive overlap clusters, assigns columns
// greedily within each cluster, and derives geometry over the window
// [windowStart, windowEnd) (minutes). Entries sharing any overlap never
// share a column; an entry overlapping nothing spans the full width.
// Geometry is clamped to the window, so an entry starting before windowStart
// renders at the top edge rather than above it.
func Day(entries []Entry, windowStart, windowEnd int) []Positioned {
	if len(entries) == 0 || windowEnd <= windowStart {
		return nil
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartMinutes != sorted[j].StartMinutes {
			return sorted[i].StartMinutes < sorted[j].StartMinutes
		}
		return sorted[i].ID < sorted[j].ID
	})

	// Clustering is transitive: an entry joins the first cluster containing
	// any member it overlaps, so A-B-C chain into one cluster even when A
	// and C are disjoint.
	var clusters [][]Entry
	for _, e := range sorted {
		placed := false
		for ci := range clusters {
			for _, member := range clusters[ci] {
				if overlaps(e.StartMinutes, e.EndMinutes, member.StartMinutes, member.EndMinutes) {
					clusters[ci] = append(clusters[ci], e)
					placed = true
					break
				}
			}
			if placed {
				break
			}
		}
		if !placed {
			clusters = append(clusters, []Entry{e})
		}
	}

	window := float64(windowEnd - windowStart)
	var out []Positioned
	for _, cluster := range clusters {
		// Greedy column scan: reuse the first column whose last entry has
		// ended by this entry's start.
		columnEnds := []int{}
		columns := make([]int, len(cluster))
		for i, e := range cluster {
			assigned := -1
			for ci, end := range columnEnds {
				if end <= e.StartMinutes {
					assigned = ci
					break
				}
			}
			if assigned == -1 {
				columnEnds = append(columnEnds, e.EndMinutes)
				assigned = len(columnEnds) - 1
			} else {
				columnEnds[assigned] = e.EndMinutes
			}
			columns[i] = assigned
		}

		n := len(columnEnds)
		for i, e := range cluster {
			top := clamp(e.StartMinutes, windowStart, windowEnd)
			bottom := clamp(e.EndMinutes, windowStart, windowEnd)
			out = append(out, Positioned{
				Entry:   e,
				Column:  columns[i],
				Columns: n,
				Left:    float64(columns[i]) / float64(n) * 100,
				Width:   100 / float64(n),
				Top:     float64(top-windowStart) / window * 100,
				Height:  float64(bottom-top) / window * 100,
			})
		}
	}
	return out
}
