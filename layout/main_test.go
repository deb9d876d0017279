package layout

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type trackDef struct {
	id     TrackID
	points []Point
}

func mustNetwork(t *testing.T, defs ...trackDef) *Network {
	t.Helper()
	n, err := NewNetwork()
	if err != nil {
		t.Fatalf("NewNetwork: %s", err)
	}
	t.Cleanup(func() { n.Close() })
	for _, d := range defs {
		if err := n.AddTrack(d.id, d.points...); err != nil {
			t.Fatalf("AddTrack %d %s: %s", d.id, d.points, err)
		}
	}
	return n
}

// square is a loop of four tracks around (0,0)-(10,10).
func square() []trackDef {
	return []trackDef{
		{1, []Point{Pt(0, 0), Pt(10, 0)}},
		{2, []Point{Pt(10, 0), Pt(10, 10)}},
		{3, []Point{Pt(10, 10), Pt(0, 10)}},
		{4, []Point{Pt(0, 10), Pt(0, 0)}},
	}
}

func trackIDs(ts []*Track) []TrackID {
	res := make([]TrackID, len(ts))
	for i, t := range ts {
		res[i] = t.ID
	}
	return res
}

// connected reports whether every point of n is reachable from every other point.
func connected(n *Network) bool {
	var start Point
	for p := range n.points {
		start = p
		break
	}
	seen := map[Point]bool{start: true}
	queue := []Point{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, t := range n.TracksAt(p) {
			for _, q := range t.points {
				if !seen[q] {
					seen[q] = true
					queue = append(queue, q)
				}
			}
		}
	}
	return len(seen) == len(n.points)
}

func TestPoint(t *testing.T) {
	p := Pt(3, -4)
	if got := p.Normalise(); got != Pt(1, -1) {
		t.Fatalf("Normalise: got %s", got)
	}
	if got := Pt(0, 0).DistanceTo(p); got != 5 {
		t.Fatalf("DistanceTo: got %d", got)
	}
	if got := Pt(0, 0).DistanceTo(Pt(1, 1)); got != 1 {
		t.Fatalf("DistanceTo should round down: got %d", got)
	}
	if got := Pt(1, 1).VectorTo(Pt(4, 1)); got != Pt(3, 0) {
		t.Fatalf("VectorTo: got %s", got)
	}
	if got := p.Add(p.Negate()); !got.IsZero() {
		t.Fatalf("Add/Negate: got %s", got)
	}
	if p.AxisAligned() || !Pt(0, -7).AxisAligned() {
		t.Fatalf("AxisAligned wrong")
	}
	if p.String() != "(3,-4)" {
		t.Fatalf("String: got %s", p)
	}
}

func TestAddTrack(t *testing.T) {
	type setup struct {
		name   string
		points []Point
		ok     bool
	}
	setups := []setup{
		{"connected", []Point{Pt(10, 0), Pt(20, 0)}, true},
		{"connectedByEndpoint", []Point{Pt(0, -5), Pt(0, 0)}, true},
		{"switch", []Point{Pt(10, 0), Pt(20, 0), Pt(10, 5)}, true},
		{"disconnected", []Point{Pt(50, 50), Pt(60, 50)}, false},
		{"diagonal", []Point{Pt(10, 0), Pt(20, 5)}, false},
		{"diagonalSwitchArm", []Point{Pt(10, 0), Pt(20, 0), Pt(15, 5)}, false},
		{"startIsEnd", []Point{Pt(10, 0), Pt(10, 0)}, false},
		{"switchSameEnds", []Point{Pt(10, 0), Pt(20, 0), Pt(20, 0)}, false},
		{"tooFewPoints", []Point{Pt(10, 0)}, false},
		{"tooManyPoints", []Point{Pt(10, 0), Pt(20, 0), Pt(10, 5), Pt(0, 0)}, false},
	}
	for _, s := range setups {
		t.Run(s.name, func(t *testing.T) {
			n := mustNetwork(t, trackDef{1, []Point{Pt(0, 0), Pt(10, 0)}})
			err := n.AddTrack(2, s.points...)
			if s.ok && err != nil {
				t.Fatalf("expected success, got %s", err)
			}
			if !s.ok {
				if !errors.Is(err, ErrTopology) {
					t.Fatalf("expected topology error, got %v", err)
				}
				if len(n.Tracks()) != 1 || len(n.points) != 2 {
					t.Fatalf("failed AddTrack changed the network")
				}
			}
		})
	}
}

func TestAddTrackDegree(t *testing.T) {
	n := mustNetwork(t,
		trackDef{1, []Point{Pt(0, 0), Pt(10, 0)}},
		trackDef{2, []Point{Pt(10, 0), Pt(20, 0)}},
	)
	err := n.AddTrack(3, Pt(10, 0), Pt(10, 10))
	if !errors.Is(err, ErrTopology) {
		t.Fatalf("third track at a point: expected topology error, got %v", err)
	}
	err = n.AddTrack(2, Pt(20, 0), Pt(30, 0))
	if !errors.Is(err, ErrTopology) {
		t.Fatalf("duplicate ID: expected topology error, got %v", err)
	}
}

func TestRemoveTrack(t *testing.T) {
	t.Run("bridge", func(t *testing.T) {
		n := mustNetwork(t,
			trackDef{1, []Point{Pt(0, 0), Pt(10, 0)}},
			trackDef{2, []Point{Pt(10, 0), Pt(20, 0)}},
			trackDef{3, []Point{Pt(20, 0), Pt(30, 0)}},
		)
		if err := n.RemoveTrack(2); !errors.Is(err, ErrTopology) {
			t.Fatalf("expected topology error, got %v", err)
		}
		if _, ok := n.Track(2); !ok {
			t.Fatalf("bridge was removed")
		}
		if err := n.RemoveTrack(3); err != nil {
			t.Fatalf("end track: %s", err)
		}
		if _, ok := n.points[Pt(30, 0)]; ok {
			t.Fatalf("point without tracks not pruned")
		}
		if !connected(n) {
			t.Fatalf("network disconnected")
		}
	})
	t.Run("cycle", func(t *testing.T) {
		n := mustNetwork(t, square()...)
		if err := n.RemoveTrack(3); err != nil {
			t.Fatalf("track on a cycle: %s", err)
		}
		if !connected(n) {
			t.Fatalf("network disconnected")
		}
		// the loop is now a chain, so its middle track is a bridge.
		if err := n.RemoveTrack(1); !errors.Is(err, ErrTopology) {
			t.Fatalf("expected topology error, got %v", err)
		}
		if diff := cmp.Diff([]TrackID{1, 2, 4}, trackIDs(n.Tracks())); diff != "" {
			t.Fatalf("tracks: %s", diff)
		}
	})
	t.Run("switchBranch", func(t *testing.T) {
		n := mustNetwork(t,
			trackDef{1, []Point{Pt(0, 0), Pt(10, 0)}},
			trackDef{2, []Point{Pt(10, 0), Pt(20, 0), Pt(10, 10)}},
			trackDef{3, []Point{Pt(20, 0), Pt(30, 0)}},
			trackDef{4, []Point{Pt(10, 10), Pt(10, 20)}},
		)
		if err := n.RemoveTrack(2); !errors.Is(err, ErrTopology) {
			t.Fatalf("expected topology error, got %v", err)
		}
		for _, id := range []TrackID{4, 3, 2} {
			if err := n.RemoveTrack(id); err != nil {
				t.Fatalf("remove %d: %s", id, err)
			}
			if !connected(n) {
				t.Fatalf("network disconnected after removing %d", id)
			}
		}
		if err := n.RemoveTrack(1); err != nil {
			t.Fatalf("last track: %s", err)
		}
		if len(n.points) != 0 {
			t.Fatalf("points left: %v", n.points)
		}
		// an empty network accepts any track again
		if err := n.AddTrack(1, Pt(100, 100), Pt(100, 110)); err != nil {
			t.Fatalf("AddTrack on emptied network: %s", err)
		}
	})
	t.Run("occupied", func(t *testing.T) {
		n := mustNetwork(t, square()...)
		tr, _ := n.Track(1)
		n.Occupy(7, []*Track{tr})
		if err := n.RemoveTrack(1); !errors.Is(err, ErrTopology) {
			t.Fatalf("expected topology error, got %v", err)
		}
	})
	t.Run("unknown", func(t *testing.T) {
		n := mustNetwork(t, square()...)
		if err := n.RemoveTrack(9); !errors.Is(err, ErrTopology) {
			t.Fatalf("expected topology error, got %v", err)
		}
	})
}

func TestSetSwitch(t *testing.T) {
	n := mustNetwork(t,
		trackDef{1, []Point{Pt(0, 0), Pt(5, 0), Pt(0, 5)}},
		trackDef{2, []Point{Pt(5, 0), Pt(10, 0)}},
	)
	if diff := cmp.Diff([]TrackID{1}, n.UnsetSwitches()); diff != "" {
		t.Fatalf("UnsetSwitches: %s", diff)
	}
	for _, p := range []Point{Pt(0, 0), Pt(3, 0), Pt(10, 0)} {
		if err := n.SetSwitch(1, p); !errors.Is(err, ErrTopology) {
			t.Fatalf("SetSwitch %s: expected topology error, got %v", p, err)
		}
	}
	if err := n.SetSwitch(2, Pt(10, 0)); !errors.Is(err, ErrTopology) {
		t.Fatalf("plain track: expected topology error, got %v", err)
	}
	if err := n.SetSwitch(1, Pt(0, 5)); err != nil {
		t.Fatalf("SetSwitch: %s", err)
	}
	if got, ok := n.tracks[1].SwitchedTo(); !ok || got != Pt(0, 5) {
		t.Fatalf("SwitchedTo: got %s %t", got, ok)
	}
	if len(n.UnsetSwitches()) != 0 {
		t.Fatalf("switch still unset")
	}
}

func TestNextTrackID(t *testing.T) {
	n := mustNetwork(t, square()...)
	if got := n.NextTrackID(); got != 5 {
		t.Fatalf("got %d", got)
	}
	if err := n.RemoveTrack(2); err != nil {
		t.Fatal(err)
	}
	if got := n.NextTrackID(); got != 2 {
		t.Fatalf("got %d", got)
	}
}

func TestOccupancy(t *testing.T) {
	n := mustNetwork(t, square()...)
	n.Occupy(1, n.Tracks()[:2])
	saved := n.Occupancy()
	n.ClearOccupancy()
	n.Occupy(2, n.Tracks()[3:])
	n.RestoreOccupancy(saved)
	if diff := cmp.Diff(map[TrackID]int{1: 1, 2: 1}, n.Occupancy()); diff != "" {
		t.Fatalf("occupancy: %s", diff)
	}
}
