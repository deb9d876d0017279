package layout

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// MaxConnections is the maximum number of tracks meeting at a single point.
const MaxConnections = 2

type TrackID int

// Track is a straight piece of track or a switch.
// A plain track has a start point and one endpoint, which is always switched to.
// A switch has a start point and two endpoints; only one of them is usable at a time, and
// none is until the switch is first set.
type Track struct {
	ID     TrackID
	points []Point

	switchedTo Point
	switchSet  bool

	// occupant is the ID of the train on this track. Only valid if occupied is true.
	occupant int
	occupied bool
}

func newTrack(id TrackID, points []Point) *Track {
	t := &Track{ID: id, points: slices.Clone(points)}
	if len(points) == 2 {
		t.switchedTo = points[1]
		t.switchSet = true
	}
	return t
}

func (t *Track) Start() Point {
	return t.points[0]
}

func (t *Track) EndPoints() []Point {
	return slices.Clone(t.points[1:])
}

// Points returns the start point followed by the endpoints.
func (t *Track) Points() []Point {
	return slices.Clone(t.points)
}

func (t *Track) IsSwitch() bool {
	return len(t.points) == 3
}

// SwitchedTo returns the endpoint currently in use.
func (t *Track) SwitchedTo() (Point, bool) {
	return t.switchedTo, t.switchSet
}

// Length returns the length of the segment currently in use.
func (t *Track) Length() (int64, bool) {
	if !t.switchSet {
		return 0, false
	}
	return t.points[0].DistanceTo(t.switchedTo), true
}

// Occupant returns the ID of the train occupying this track.
func (t *Track) Occupant() (train int, ok bool) {
	return t.occupant, t.occupied
}

// IsPassable reports whether p lies on the segment from the start point to the switched-to endpoint.
func (t *Track) IsPassable(p Point) bool {
	if !t.switchSet {
		return false
	}
	s, e := t.points[0], t.switchedTo
	if p == s || p == e {
		return true
	}
	if s.X == e.X && p.X == s.X {
		return between(p.Y, s.Y, e.Y)
	}
	if s.Y == e.Y && p.Y == s.Y {
		return between(p.X, s.X, e.X)
	}
	return false
}

// DrivingDirection returns the unit vector along the segment in use that points towards p.
// p must be the start point or the switched-to endpoint.
func (t *Track) DrivingDirection(p Point) (Point, error) {
	if !t.switchSet {
		return Point{}, RoutingErrorf("position of switch %d not set", t.ID)
	}
	d := t.points[0].VectorTo(t.switchedTo).Normalise()
	if p == t.switchedTo {
		return d, nil
	}
	return d.Negate(), nil
}

// PassedPoint returns the end of the segment in use that lies behind a train heading in dir.
func (t *Track) PassedPoint(dir Point) (Point, error) {
	if !t.switchSet {
		return Point{}, RoutingErrorf("position of switch %d not set", t.ID)
	}
	v := t.points[0].VectorTo(t.switchedTo).Normalise()
	switch dir {
	case v:
		return t.points[0], nil
	case v.Negate():
		return t.switchedTo, nil
	}
	return Point{}, RoutingErrorf("direction %s does not run along track %d", dir, t.ID)
}

func (t *Track) String() string {
	b := new(strings.Builder)
	if t.IsSwitch() {
		b.WriteString("s ")
	} else {
		b.WriteString("t ")
	}
	fmt.Fprintf(b, "%d %s -> ", t.ID, t.points[0])
	for i, p := range t.points[1:] {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.String())
	}
	if length, ok := t.Length(); ok {
		fmt.Fprintf(b, " %d", length)
	}
	return b.String()
}
