package tal

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"nyiyui.ca/hato/senro/layout"
	"nyiyui.ca/hato/senro/notify"
)

// Simulator moves the trains placed on a network in lock-step.
type Simulator struct {
	net     *layout.Network
	placed  map[int]*Train
	events  *notify.Multiplexer[Event]
	eventsS *notify.MultiplexerSender[Event]
}

func NewSimulator(net *layout.Network) *Simulator {
	s := &Simulator{
		net:    net,
		placed: map[int]*Train{},
	}
	s.eventsS, s.events = notify.NewMultiplexerSender[Event]("simulator")
	return s
}

func (s *Simulator) Events() *notify.Multiplexer[Event] {
	return s.events
}

type Event interface {
	fmt.Stringer
}

type EventPlaced struct {
	Train     int
	Placement Placement
}

func (e EventPlaced) String() string {
	return fmt.Sprintf("train %d placed at %s facing %s", e.Train, e.Placement.Position, e.Placement.Direction)
}

// EventRemoved is sent when a train is taken off the network other than by a crash or by
// leaving the network.
type EventRemoved struct {
	Train int
}

func (e EventRemoved) String() string {
	return fmt.Sprintf("train %d removed", e.Train)
}

type EventCrash struct {
	Trains []int
}

func (e EventCrash) String() string {
	return fmt.Sprintf("crash of trains %v", e.Trains)
}

type EventExit struct {
	Train int
}

func (e EventExit) String() string {
	return fmt.Sprintf("train %d left the network", e.Train)
}

type Position struct {
	Train int
	Point layout.Point
}

// StepReport is the outcome of a Step.
type StepReport struct {
	// Crashes has the IDs of crashed trains, ascending within each group, groups ordered by
	// their smallest ID.
	Crashes [][]int
	// Exits has the IDs of trains that left the network completely, ascending.
	Exits []int
	// Positions has the head position of every train still on the network, by ascending ID.
	Positions []Position
}

func (s *Simulator) checkSwitches() error {
	if unset := s.net.UnsetSwitches(); len(unset) > 0 {
		return layout.RoutingErrorf("position of switches not set")
	}
	return nil
}

// Placed reports whether the train is on the network.
func (s *Simulator) Placed(id int) bool {
	_, ok := s.placed[id]
	return ok
}

func (s *Simulator) placedIDs() []int {
	ids := maps.Keys(s.placed)
	slices.Sort(ids)
	return ids
}

// PutTrain places t with its head at p, facing dir. The body trails behind the head.
func (s *Simulator) PutTrain(t *Train, p, dir layout.Point) error {
	if err := s.checkSwitches(); err != nil {
		return err
	}
	if _, ok := s.placed[t.ID]; ok {
		return layout.RoutingErrorf("train with ID %d is already on tracks", t.ID)
	}
	if !t.Valid() {
		return layout.RoutingErrorf("there must always be at least one engine/train-set at the beginning or end of a valid train")
	}
	if dir.IsZero() {
		return layout.RoutingErrorf("the direction vector cannot be 0,0")
	}
	if !dir.AxisAligned() {
		return layout.RoutingErrorf("invalid direction vector, one value must be 0 because tracks can only be vertical or horizontal")
	}
	dir = dir.Normalise()
	track, ok := s.net.FindTrack(p, dir)
	if !ok || !track.IsPassable(p) {
		return layout.RoutingErrorf("point %s is not passable", p)
	}
	required, err := s.net.RequiredTracks(track, p, dir, t.Length(), true)
	if err != nil {
		return err
	}
	for _, r := range required {
		if _, ok := r.Occupant(); ok {
			return layout.RoutingErrorf("required tracks are not free of trains")
		}
	}
	pl := Placement{Position: p, Direction: dir}
	t.setPlacement(pl)
	s.placed[t.ID] = t
	s.net.Occupy(t.ID, required)
	zap.S().Debugw("put train", "train", t.ID, "position", p.String(), "direction", dir.String(), "tracks", len(required))
	s.eventsS.Send(EventPlaced{Train: t.ID, Placement: pl})
	return nil
}

// Remove takes a train off the network. It is a no-op for trains that are not placed.
func (s *Simulator) Remove(id int) {
	t, ok := s.placed[id]
	if !ok {
		return
	}
	s.takeOff(t)
	s.net.Vacate(id)
	s.eventsS.Send(EventRemoved{Train: id})
}

// TrainsOn returns the IDs of placed trains whose body covers the track, ascending.
// Tracks merely bordering a train are not included.
func (s *Simulator) TrainsOn(track layout.TrackID) ([]int, error) {
	var res []int
	for _, id := range s.placedIDs() {
		body, err := s.body(s.placed[id], false)
		if err != nil {
			return nil, fmt.Errorf("train %d: %w", id, err)
		}
		if slices.ContainsFunc(body, func(t *layout.Track) bool { return t.ID == track }) {
			res = append(res, id)
		}
	}
	return res, nil
}

// Reoccupy recomputes the occupancy of every track from the placed trains.
func (s *Simulator) Reoccupy() error {
	saved := s.net.Occupancy()
	s.net.ClearOccupancy()
	for _, id := range s.placedIDs() {
		body, err := s.body(s.placed[id], true)
		if err != nil {
			s.net.RestoreOccupancy(saved)
			return fmt.Errorf("train %d: %w", id, err)
		}
		s.net.Occupy(id, body)
	}
	return nil
}

// body returns the tracks covered by a placed train.
func (s *Simulator) body(t *Train, includeBoundaries bool) ([]*layout.Track, error) {
	p, ok := t.Placement()
	if !ok {
		panic("unreachable")
	}
	return s.bodyAt(p, t.Length(), includeBoundaries)
}

func (s *Simulator) bodyAt(p Placement, length int64, includeBoundaries bool) ([]*layout.Track, error) {
	if length == 0 {
		return nil, nil
	}
	start, _ := s.net.FindTrack(p.Position, p.Direction)
	return s.net.RequiredTracks(start, p.Position, p.Direction, length, includeBoundaries)
}

// headMove moves the head of a train by one unit, crossing into the connected track if the
// current one ends.
func (s *Simulator) headMove(p Placement, backwards bool) (Placement, bool) {
	track, ok := s.net.FindTrack(p.Position, p.Direction)
	if !ok {
		return Placement{}, false
	}
	var next Placement
	if backwards {
		next = p.MoveBackwards(p.Direction)
	} else {
		next = p.Move(p.Direction)
	}
	if track.IsPassable(next.Position) {
		return next, true
	}
	conn, ok := s.net.Connection(p.Position, track)
	if !ok {
		return Placement{}, false
	}
	d, err := conn.DrivingDirection(p.Position)
	if err != nil {
		return Placement{}, false
	}
	if backwards {
		return p.MoveBackwards(d), true
	}
	return p.Move(d.Negate()), true
}

// candidate returns where a train would be after one unit of movement. A move whose body
// does not fit on the network yields no candidate.
func (s *Simulator) candidate(t *Train, backwards bool) (Placement, []*layout.Track, bool) {
	p, _ := t.Placement()
	next, ok := s.headMove(p, backwards)
	if !ok {
		return Placement{}, nil, false
	}
	body, err := s.bodyAt(next, t.Length(), false)
	if err != nil {
		return Placement{}, nil, false
	}
	return next, body, true
}

type snapshot struct {
	trains     map[int]*Train
	placements map[int]*Placement
	lengths    map[int]int64
	occupancy  map[layout.TrackID]int
}

func (s *Simulator) snapshot() snapshot {
	snap := snapshot{
		trains:     map[int]*Train{},
		placements: map[int]*Placement{},
		lengths:    map[int]int64{},
		occupancy:  s.net.Occupancy(),
	}
	for id, t := range s.placed {
		snap.trains[id] = t
		snap.placements[id] = t.placement
		snap.lengths[id] = t.length
	}
	return snap
}

func (s *Simulator) restore(snap snapshot) {
	s.placed = map[int]*Train{}
	for id, t := range snap.trains {
		t.placement = snap.placements[id]
		t.length = snap.lengths[id]
		s.placed[id] = t
	}
	s.net.RestoreOccupancy(snap.occupancy)
}

// Step moves every placed train by |speed| units, forwards if speed is positive.
// On error, nothing is changed.
func (s *Simulator) Step(speed int) (StepReport, error) {
	if err := s.checkSwitches(); err != nil {
		return StepReport{}, err
	}
	if len(s.placed) == 0 {
		return StepReport{}, nil
	}
	snap := s.snapshot()
	crashes := newCrashSet()
	var exits []int
	backwards := speed < 0
	for i := 0; i < abs(speed); i++ {
		exited, err := s.subStep(i, backwards, crashes)
		if err != nil {
			s.restore(snap)
			return StepReport{}, err
		}
		exits = append(exits, exited...)
	}
	slices.Sort(exits)
	report := StepReport{
		Crashes: crashes.groups(),
		Exits:   exits,
	}
	for _, id := range s.placedIDs() {
		p, _ := s.placed[id].Placement()
		report.Positions = append(report.Positions, Position{Train: id, Point: p.Position})
	}
	for _, g := range report.Crashes {
		s.eventsS.Send(EventCrash{Trains: g})
	}
	for _, id := range report.Exits {
		s.eventsS.Send(EventExit{Train: id})
	}
	return report, nil
}

// subStep moves every placed train by one unit. A train that cannot move runs off the
// network: its body, one unit shorter and left where it is, still takes part in collision
// detection, and it is taken off the network in the same sub-step.
func (s *Simulator) subStep(stepI int, backwards bool, crashes *crashSet) (exited []int, err error) {
	ids := s.placedIDs()
	next := map[int]Placement{}
	bodies := map[int][]*layout.Track{}
	fallen := map[int]bool{}
	for _, id := range ids {
		t := s.placed[id]
		p, body, ok := s.candidate(t, backwards)
		if ok {
			next[id] = p
			bodies[id] = body
			continue
		}
		t.shorten()
		body, err := s.body(t, false)
		if err != nil {
			return nil, fmt.Errorf("train %d running off the network: %w", id, err)
		}
		bodies[id] = body
		fallen[id] = true
	}

	occupants := map[layout.TrackID][]int{}
	for _, id := range ids {
		for _, t := range bodies[id] {
			o := occupants[t.ID]
			if len(o) > 0 && o[len(o)-1] == id {
				continue
			}
			occupants[t.ID] = append(o, id)
		}
	}
	collided := map[int]bool{}
	for _, o := range occupants {
		if len(o) < 2 {
			continue
		}
		for _, id := range o {
			collided[id] = true
			crashes.union(o[0], id)
		}
	}

	s.net.ClearOccupancy()
	for _, id := range ids {
		t := s.placed[id]
		switch {
		case collided[id]:
			zap.S().Debugw("train crashed", "step", stepI, "train", id)
			s.takeOff(t)
		case fallen[id]:
			zap.S().Debugw("train left network", "step", stepI, "train", id)
			s.takeOff(t)
			exited = append(exited, id)
		default:
			t.setPlacement(next[id])
		}
	}
	for _, id := range s.placedIDs() {
		body, err := s.body(s.placed[id], true)
		if err != nil {
			return nil, fmt.Errorf("train %d: %w", id, err)
		}
		s.net.Occupy(id, body)
	}
	zap.S().Debugw("sub-step", "step", stepI, "backwards", backwards, "placed", len(s.placed), "crashed", len(collided), "exited", len(exited))
	return exited, nil
}

func (s *Simulator) takeOff(t *Train) {
	delete(s.placed, t.ID)
	t.placement = nil
	t.resetLength()
}
