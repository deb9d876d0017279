package layout

import (
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// FindTrack returns the track a train at p heading in dir is on.
// Where tracks meet, the track the train arrives from (passable at p-dir) is preferred, then
// the track it is about to enter (passable at p+dir), then any track at p.
func (n *Network) FindTrack(p, dir Point) (*Track, bool) {
	if ids, ok := n.points[p]; ok {
		back := p.Add(dir.Negate())
		for _, id := range ids {
			if t := n.tracks[id]; t.IsPassable(back) {
				return t, true
			}
		}
		ahead := p.Add(dir)
		for _, id := range ids {
			if t := n.tracks[id]; t.IsPassable(ahead) {
				return t, true
			}
		}
		return n.tracks[ids[0]], true
	}
	ids, err := n.spans.candidates(p)
	if err != nil {
		zap.S().Warnw("span index lookup failed, scanning all tracks", "point", p.String(), "err", err)
		ids = maps.Keys(n.tracks)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if t, ok := n.tracks[id]; ok && t.IsPassable(p) {
			return t, true
		}
	}
	return nil, false
}

// Connection returns the track other than t that continues from p.
func (n *Network) Connection(p Point, t *Track) (*Track, bool) {
	for _, id := range n.points[p] {
		if t != nil && id == t.ID {
			continue
		}
		if o := n.tracks[id]; o.IsPassable(p) {
			return o, true
		}
	}
	return nil, false
}

// RequiredTracks returns the tracks covered by a train whose head is at head on start,
// heading in dir, with the given length. The body is followed backwards from the head.
// If includeBoundaries is set, the track beyond the head and (if the tail ends exactly on a
// boundary) the track beyond the tail are included as well.
func (n *Network) RequiredTracks(start *Track, head, dir Point, length int64, includeBoundaries bool) ([]*Track, error) {
	if start == nil {
		return nil, RoutingErrorf("train cannot be positioned at %s", head)
	}
	var required []*Track
	if includeBoundaries {
		if c, ok := n.Connection(head, start); ok {
			required = append(required, c)
		}
	}
	current, pos, d := start, head, dir
	for length > 0 {
		required = append(required, current)
		passed, err := current.PassedPoint(d)
		if err != nil {
			return nil, err
		}
		length -= pos.DistanceTo(passed)
		switch {
		case length > 0:
			next, ok := n.Connection(passed, current)
			if !ok {
				return nil, RoutingErrorf("not enough connected tracks found behind %s", passed)
			}
			d, err = next.DrivingDirection(passed)
			if err != nil {
				return nil, err
			}
			current, pos = next, passed
		case length == 0 && includeBoundaries:
			if c, ok := n.Connection(passed, current); ok {
				required = append(required, c)
			}
		}
	}
	return required, nil
}
