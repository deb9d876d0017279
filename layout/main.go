package layout

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Network is a planar layout of tracks joined at shared points.
// At most MaxConnections tracks meet at any point, and every track is reachable from every
// other track.
type Network struct {
	tracks map[TrackID]*Track
	// points has the IDs of all tracks starting or ending at a point.
	// Points without any track are removed.
	points map[Point][]TrackID
	spans  *spanIndex
}

func NewNetwork() (*Network, error) {
	spans, err := newSpanIndex()
	if err != nil {
		return nil, fmt.Errorf("open span index: %w", err)
	}
	return &Network{
		tracks: map[TrackID]*Track{},
		points: map[Point][]TrackID{},
		spans:  spans,
	}, nil
}

func (n *Network) Close() error {
	return n.spans.close()
}

func (n *Network) hasConnections(p Point) bool {
	return len(n.points[p]) > 0
}

// AddTrack adds a plain track (start and one endpoint) or a switch (start and two endpoints).
func (n *Network) AddTrack(id TrackID, points ...Point) error {
	if len(points) != 2 && len(points) != 3 {
		return TopologyErrorf("a track needs a startpoint and one or two endpoints, got %d points", len(points))
	}
	if _, ok := n.tracks[id]; ok {
		return TopologyErrorf("track with ID %d already exists", id)
	}
	start, ends := points[0], points[1:]
	if slices.Contains(ends, start) {
		return TopologyErrorf("startpoint cannot be equal to an endpoint")
	}
	if len(ends) == 2 && ends[0] == ends[1] {
		return TopologyErrorf("endpoints of a switch must differ")
	}
	if len(n.tracks) > 0 && !slices.ContainsFunc(points, n.hasConnections) {
		return TopologyErrorf("track not connected to other track")
	}
	for _, e := range ends {
		if e.X != start.X && e.Y != start.Y {
			return TopologyErrorf("creation not possible, track %s -> %s is neither horizontal nor vertical", start, e)
		}
	}
	for _, p := range points {
		if len(n.points[p]) >= MaxConnections {
			return TopologyErrorf("point %s must not be connected to more than %d tracks", p, MaxConnections)
		}
	}
	if err := n.spans.insert(id, points); err != nil {
		return fmt.Errorf("index track %d: %w", id, err)
	}
	t := newTrack(id, points)
	for _, p := range points {
		n.points[p] = append(n.points[p], id)
	}
	n.tracks[id] = t
	zap.S().Debugw("added track", "track", t.String())
	return nil
}

// RemoveTrack removes a track. Occupied tracks, and tracks whose removal would split the
// network, cannot be removed.
func (n *Network) RemoveTrack(id TrackID) error {
	t, ok := n.tracks[id]
	if !ok {
		return TopologyErrorf("track with ID %d not existent", id)
	}
	if train, ok := t.Occupant(); ok {
		return TopologyErrorf("there is currently train with ID %d on this track", train)
	}
	if n.isBridge(t) {
		return TopologyErrorf("removal of track with ID %d not possible, this would lead to a disconnected rail network", id)
	}
	if err := n.spans.remove(id); err != nil {
		return fmt.Errorf("unindex track %d: %w", id, err)
	}
	for _, p := range t.points {
		ids := n.points[p]
		i := slices.Index(ids, id)
		if i == -1 {
			panic("unreachable")
		}
		ids = slices.Delete(ids, i, i+1)
		if len(ids) == 0 {
			delete(n.points, p)
		} else {
			n.points[p] = ids
		}
	}
	delete(n.tracks, id)
	zap.S().Debugw("removed track", "track", id)
	return nil
}

// isBridge reports whether removing t would leave some point unreachable from the others.
func (n *Network) isBridge(t *Track) bool {
	notVisited := map[Point]struct{}{}
	for p, ids := range n.points {
		if slices.ContainsFunc(ids, func(id TrackID) bool { return id != t.ID }) {
			notVisited[p] = struct{}{}
		}
	}
	var stack []Point
	for p := range notVisited {
		stack = append(stack, p)
		break
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := notVisited[p]; !ok {
			continue
		}
		delete(notVisited, p)
		for _, id := range n.points[p] {
			if id == t.ID {
				continue
			}
			for _, q := range n.tracks[id].points {
				if _, ok := notVisited[q]; ok {
					stack = append(stack, q)
				}
			}
		}
	}
	return len(notVisited) > 0
}

// SetSwitch selects which endpoint of a switch is in use.
func (n *Network) SetSwitch(id TrackID, p Point) error {
	t, ok := n.tracks[id]
	if !ok {
		return TopologyErrorf("track with ID %d not existent", id)
	}
	if !t.IsSwitch() {
		return TopologyErrorf("track with ID %d is not a switch", id)
	}
	if !slices.Contains(t.points[1:], p) {
		return TopologyErrorf("%s is not an endpoint of switch %d", p, id)
	}
	t.switchedTo = p
	t.switchSet = true
	zap.S().Debugw("set switch", "track", id, "position", p.String())
	return nil
}

func (n *Network) Track(id TrackID) (*Track, bool) {
	t, ok := n.tracks[id]
	return t, ok
}

// Tracks returns all tracks ordered by ID.
func (n *Network) Tracks() []*Track {
	ids := maps.Keys(n.tracks)
	slices.Sort(ids)
	res := make([]*Track, len(ids))
	for i, id := range ids {
		res[i] = n.tracks[id]
	}
	return res
}

// TracksAt returns the tracks starting or ending at p.
func (n *Network) TracksAt(p Point) []*Track {
	ids := n.points[p]
	res := make([]*Track, len(ids))
	for i, id := range ids {
		res[i] = n.tracks[id]
	}
	return res
}

// UnsetSwitches returns the IDs of switches that were never set, ordered by ID.
func (n *Network) UnsetSwitches() []TrackID {
	var res []TrackID
	for id, t := range n.tracks {
		if !t.switchSet {
			res = append(res, id)
		}
	}
	slices.Sort(res)
	return res
}

// NextTrackID returns the lowest positive ID not used by any track.
func (n *Network) NextTrackID() TrackID {
	id := TrackID(1)
	for {
		if _, ok := n.tracks[id]; !ok {
			return id
		}
		id++
	}
}

// Occupy marks tracks as occupied by a train.
func (n *Network) Occupy(train int, tracks []*Track) {
	for _, t := range tracks {
		t.occupant = train
		t.occupied = true
	}
}

// Vacate clears every track occupied by train.
func (n *Network) Vacate(train int) {
	for _, t := range n.tracks {
		if t.occupied && t.occupant == train {
			t.occupant = 0
			t.occupied = false
		}
	}
}

func (n *Network) ClearOccupancy() {
	for _, t := range n.tracks {
		t.occupant = 0
		t.occupied = false
	}
}

// Occupancy returns the occupant of every occupied track.
func (n *Network) Occupancy() map[TrackID]int {
	res := map[TrackID]int{}
	for id, t := range n.tracks {
		if t.occupied {
			res[id] = t.occupant
		}
	}
	return res
}

// RestoreOccupancy replaces the occupancy of all tracks with o (as returned by Occupancy).
func (n *Network) RestoreOccupancy(o map[TrackID]int) {
	n.ClearOccupancy()
	for id, train := range o {
		if t, ok := n.tracks[id]; ok {
			t.occupant = train
			t.occupied = true
		}
	}
}
