package tracking

import (
	"time"

	"backend-stridelog/internal/shared/geo"
)

// Coordinate is a single timestamped GPS fix.
type Coordinate struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	CapturedAt time.Time `json:"captured_at"`
}

// Segment is one continuous tracked interval between a resume and the next
// pause or stop. A zero EndedAt means the segment is still open. Values are
// treated as immutable: mutations return a fresh Segment.
type Segment struct {
	StartedAt   time.Time    `json:"started_at"`
	EndedAt     time.Time    `json:"ended_at,omitempty"`
	Coordinates []Coordinate `json:"coordinates"`
}

// Open reports whether the segment is still collecting fixes.
func (s Segment) Open() bool {
	return s.EndedAt.IsZero()
}

// Duration is EndedAt-StartedAt for a closed segment, and grows with the
// clock while the segment is open.
func (s Segment) Duration() time.Duration {
	if s.Open() {
		return time.Since(s.StartedAt)
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// DistanceM is the geodesic length of the segment's coordinate path.
func (s Segment) DistanceM() float64 {
	return geo.PathDistanceM(s.points())
}

func (s Segment) points() []geo.Point {
	points := make([]geo.Point, len(s.Coordinates))
	for i, c := range s.Coordinates {
		points[i] = geo.Point{Lat: c.Lat, Lng: c.Lng}
	}
	return points
}

func (s Segment) withCoordinate(c Coordinate) Segment {
	coords := make([]Coordinate, len(s.Coordinates), len(s.Coordinates)+1)
	copy(coords, s.Coordinates)
	s.Coordinates = append(coords, c)
	return s
}

func (s Segment) closed(at time.Time) Segment {
	s.EndedAt = at
	return s
}

// LiveSession is the in-progress workout: an ordered run of segments, at
// most one of which is open. Mutation is by replacement so published
// snapshots stay safe for concurrent readers.
type LiveSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
	Segments  []Segment `json:"segments"`
}

// DistanceM sums the geodesic distance of every segment.
func (ls LiveSession) DistanceM() float64 {
	var total float64
	for _, seg := range ls.Segments {
		total += seg.DistanceM()
	}
	return total
}

// ActiveDuration is the time spent actually tracking, paused gaps excluded.
func (ls LiveSession) ActiveDuration() time.Duration {
	var total time.Duration
	for _, seg := range ls.Segments {
		total += seg.Duration()
	}
	return total
}

// Coordinates concatenates every segment's fixes in recording order.
func (ls LiveSession) Coordinates() []Coordinate {
	var all []Coordinate
	for _, seg := range ls.Segments {
		all = append(all, seg.Coordinates...)
	}
	return all
}

// PaceWindow is the trailing window used for the instant pace estimate.
const PaceWindow = 30 * time.Second

// InstantPaceMps estimates current speed from the fixes of the open segment
// that fall inside the trailing pace window. Returns 0 while paused or when
// the window holds fewer than two fixes.
func (ls LiveSession) InstantPaceMps(now time.Time) float64 {
	if len(ls.Segments) == 0 {
		return 0
	}
	last := ls.Segments[len(ls.Segments)-1]
	if !last.Open() {
		return 0
	}

	cutoff := now.Add(-PaceWindow)
	var recent []geo.Point
	var first, lastAt time.Time
	for _, c := range last.Coordinates {
		if c.CapturedAt.Before(cutoff) {
			continue
		}
		if len(recent) == 0 {
			first = c.CapturedAt
		}
		lastAt = c.CapturedAt
		recent = append(recent, geo.Point{Lat: c.Lat, Lng: c.Lng})
	}
	if len(recent) < 2 {
		return 0
	}
	elapsed := lastAt.Sub(first).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return geo.PathDistanceM(recent) / elapsed
}

func (ls LiveSession) withSegment(seg Segment) LiveSession {
	segs := make([]Segment, len(ls.Segments), len(ls.Segments)+1)
	copy(segs, ls.Segments)
	ls.Segments = append(segs, seg)
	return ls
}

func (ls LiveSession) withLastSegment(seg Segment) LiveSession {
	segs := make([]Segment, len(ls.Segments))
	copy(segs, ls.Segments)
	segs[len(segs)-1] = seg
	ls.Segments = segs
	return ls
}

func (ls LiveSession) lastSegment() (Segment, bool) {
	if len(ls.Segments) == 0 {
		return Segment{}, false
	}
	return ls.Segments[len(ls.Segments)-1], true
}
