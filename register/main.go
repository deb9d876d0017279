// Package register owns a network, its simulator, the rolling stock and the trains, and hands
// out the identifiers a user refers to them by.
package register

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"nyiyui.ca/hato/senro/cars"
	"nyiyui.ca/hato/senro/layout"
	"nyiyui.ca/hato/senro/tal"
)

type Register struct {
	// lock serialises every operation.
	lock     sync.Mutex
	net      *layout.Network
	sim      *tal.Simulator
	trains   map[int]*tal.Train
	coaches  map[int]*cars.Stock
	engines  map[string]*cars.Stock
	sets     map[string]*cars.Stock
	eventsID int
}

func New() (*Register, error) {
	net, err := layout.NewNetwork()
	if err != nil {
		return nil, err
	}
	r := &Register{
		net:     net,
		sim:     tal.NewSimulator(net),
		trains:  map[int]*tal.Train{},
		coaches: map[int]*cars.Stock{},
		engines: map[string]*cars.Stock{},
		sets:    map[string]*cars.Stock{},
	}
	r.eventsID = r.sim.Events().Subscribe("register", func(e tal.Event) {
		zap.S().Infof("new event: %s", e)
	})
	return r, nil
}

func (r *Register) Close() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.sim.Events().Unsubscribe(r.eventsID)
	return r.net.Close()
}

// nextID returns the lowest positive integer not in ids.
func nextID[V any](ids map[int]V) int {
	id := 1
	for {
		if _, ok := ids[id]; !ok {
			return id
		}
		id++
	}
}

func (r *Register) AddTrack(start, end layout.Point) (layout.TrackID, error) {
	return r.addTrack(start, end)
}

func (r *Register) AddSwitch(start, end1, end2 layout.Point) (layout.TrackID, error) {
	return r.addTrack(start, end1, end2)
}

func (r *Register) addTrack(points ...layout.Point) (layout.TrackID, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	id := r.net.NextTrackID()
	if err := r.net.AddTrack(id, points...); err != nil {
		return 0, err
	}
	// a train ending at one of the new track's points now borders it
	if err := r.sim.Reoccupy(); err != nil {
		if err2 := r.net.RemoveTrack(id); err2 != nil {
			panic(fmt.Sprintf("remove track %d just added: %s", id, err2))
		}
		return 0, fmt.Errorf("reoccupy after adding track %d: %w", id, err)
	}
	zap.S().Infof("added track %d", id)
	return id, nil
}

func (r *Register) DeleteTrack(id layout.TrackID) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if err := r.net.RemoveTrack(id); err != nil {
		return err
	}
	zap.S().Infof("deleted track %d", id)
	return nil
}

func (r *Register) Tracks() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	tracks := r.net.Tracks()
	res := make([]string, len(tracks))
	for i, t := range tracks {
		res[i] = t.String()
	}
	return res
}

// SetSwitch sets the position of a switch. Trains on the switch are derailed (taken off the
// network).
func (r *Register) SetSwitch(id layout.TrackID, p layout.Point) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	on, err := r.sim.TrainsOn(id)
	if err != nil {
		return err
	}
	if err := r.net.SetSwitch(id, p); err != nil {
		return err
	}
	for _, train := range on {
		zap.S().Infof("train %d derailed by switch %d", train, id)
		r.sim.Remove(train)
	}
	return nil
}

func (r *Register) checkStock(length int64, front, back bool) error {
	if length <= 0 {
		return errorf(ErrInvalid, "length must be a natural number excluding zero")
	}
	if !front && !back {
		return errorf(ErrInvalid, "there must be at least one but not more than two couplings")
	}
	return nil
}

func (r *Register) checkSeriesName(series, name string) error {
	if series == "W" {
		return errorf(ErrInvalid, "the series must not consist of the character string 'W'")
	}
	id := series + "-" + name
	if _, ok := r.engines[id]; ok {
		return errorf(ErrConflict, "engine with ID %s already exists", id)
	}
	if _, ok := r.sets[id]; ok {
		return errorf(ErrConflict, "train-set with ID %s already exists", id)
	}
	return nil
}

func (r *Register) CreateEngine(t cars.Type, series, name string, length int64, front, back bool) (*cars.Stock, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if t.Class() != cars.ClassEngine {
		return nil, errorf(ErrInvalid, "%s is not an engine type", t)
	}
	if err := r.checkStock(length, front, back); err != nil {
		return nil, err
	}
	if err := r.checkSeriesName(series, name); err != nil {
		return nil, err
	}
	s := cars.NewEngine(t, series, name, length, front, back)
	r.engines[s.ID()] = s
	zap.S().Infof("created %s %s", s.Description(), s.ID())
	return s, nil
}

func (r *Register) CreateTrainSet(series, name string, length int64, front, back bool) (*cars.Stock, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if err := r.checkStock(length, front, back); err != nil {
		return nil, err
	}
	if err := r.checkSeriesName(series, name); err != nil {
		return nil, err
	}
	s := cars.NewTrainSet(series, name, length, front, back)
	r.sets[s.ID()] = s
	zap.S().Infof("created train-set %s", s.ID())
	return s, nil
}

func (r *Register) CreateCoach(t cars.Type, length int64, front, back bool) (*cars.Stock, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if t.Class() != cars.ClassCoach {
		return nil, errorf(ErrInvalid, "%s is not a coach type", t)
	}
	if err := r.checkStock(length, front, back); err != nil {
		return nil, err
	}
	s := cars.NewCoach(t, nextID(r.coaches), length, front, back)
	r.coaches[s.Number] = s
	zap.S().Infof("created %s %s", s.Description(), s.ID())
	return s, nil
}

// stock looks up a unit by the ID shown to users.
func (r *Register) stock(id string) (*cars.Stock, error) {
	if strings.Contains(id, "-") {
		if s, ok := r.engines[id]; ok {
			return s, nil
		}
		if s, ok := r.sets[id]; ok {
			return s, nil
		}
		return nil, errorf(ErrNotFound, "there is no train-set or engine with ID %s", id)
	}
	if !strings.HasPrefix(id, "W") {
		return nil, errorf(ErrInvalid, "%s is not a rolling stock ID", id)
	}
	n, err := strconv.ParseInt(id[1:], 10, 32)
	if err != nil {
		return nil, errorf(ErrInvalid, "coach ID must be a 32-bit integer")
	}
	s, ok := r.coaches[int(n)]
	if !ok {
		return nil, errorf(ErrNotFound, "coach with ID %d not existent", n)
	}
	return s, nil
}

// trainWith returns the train the unit is part of.
func (r *Register) trainWith(s *cars.Stock) (*tal.Train, bool) {
	for _, t := range r.trains {
		if t.Contains(s) {
			return t, true
		}
	}
	return nil, false
}

func (r *Register) DeleteRollingStock(id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	s, err := r.stock(id)
	if err != nil {
		return err
	}
	if _, ok := r.trainWith(s); ok {
		return errorf(ErrConflict, "rolling stock is being used in a train and therefore cannot be deleted")
	}
	switch s.Class() {
	case cars.ClassEngine:
		delete(r.engines, s.ID())
	case cars.ClassTrainSet:
		delete(r.sets, s.ID())
	case cars.ClassCoach:
		delete(r.coaches, s.Number)
	}
	zap.S().Infof("deleted rolling stock %s", id)
	return nil
}

// StockInfo is a unit and the train it is part of (Train is 0 if none).
type StockInfo struct {
	Stock *cars.Stock
	Train int
}

func (r *Register) infos(units []*cars.Stock) []StockInfo {
	res := make([]StockInfo, len(units))
	for i, s := range units {
		res[i].Stock = s
		if t, ok := r.trainWith(s); ok {
			res[i].Train = t.ID
		}
	}
	return res
}

func byID(a, b *cars.Stock) int {
	return strings.Compare(a.ID(), b.ID())
}

// Engines returns all engines ordered by ID.
func (r *Register) Engines() []StockInfo {
	r.lock.Lock()
	defer r.lock.Unlock()
	units := maps.Values(r.engines)
	slices.SortFunc(units, byID)
	return r.infos(units)
}

// TrainSets returns all train-sets ordered by ID.
func (r *Register) TrainSets() []StockInfo {
	r.lock.Lock()
	defer r.lock.Unlock()
	units := maps.Values(r.sets)
	slices.SortFunc(units, byID)
	return r.infos(units)
}

// Coaches returns all coaches ordered by number.
func (r *Register) Coaches() []StockInfo {
	r.lock.Lock()
	defer r.lock.Unlock()
	units := maps.Values(r.coaches)
	slices.SortFunc(units, func(a, b *cars.Stock) int { return a.Number - b.Number })
	return r.infos(units)
}

// AddTrain appends a unit to a train, creating the train if trainID is the next free ID.
func (r *Register) AddTrain(trainID int, stockID string) (*cars.Stock, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	s, err := r.stock(stockID)
	if err != nil {
		return nil, err
	}
	if t, ok := r.trainWith(s); ok {
		return nil, errorf(ErrConflict, "rolling stock with ID %s is already being used in train %d", s.ID(), t.ID)
	}
	if t, ok := r.trains[trainID]; ok {
		if r.sim.Placed(trainID) {
			return nil, errorf(ErrConflict, "the train has already been put on a track")
		}
		if err := t.Append(s); err != nil {
			return nil, err
		}
	} else {
		if next := nextID(r.trains); trainID != next {
			return nil, errorf(ErrInvalid, "train ID must match the next available ID which is %d", next)
		}
		t := tal.NewTrain(trainID)
		if err := t.Append(s); err != nil {
			return nil, err
		}
		r.trains[trainID] = t
	}
	zap.S().Infof("%s %s added to train %d", s.Description(), s.ID(), trainID)
	return s, nil
}

func (r *Register) DeleteTrain(id int) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.trains[id]; !ok {
		return errorf(ErrNotFound, "train with ID %d does not exist", id)
	}
	r.sim.Remove(id)
	delete(r.trains, id)
	zap.S().Infof("deleted train %d", id)
	return nil
}

// Trains returns the listing line of every train ordered by ID.
func (r *Register) Trains() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	ids := maps.Keys(r.trains)
	slices.Sort(ids)
	res := make([]string, len(ids))
	for i, id := range ids {
		res[i] = r.trains[id].String()
	}
	return res
}

func (r *Register) ShowTrain(id int) (string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	t, ok := r.trains[id]
	if !ok {
		return "", errorf(ErrNotFound, "train with ID %d does not exist", id)
	}
	return t.Show(), nil
}

func (r *Register) PutTrain(id int, p, dir layout.Point) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	t, ok := r.trains[id]
	if !ok {
		return errorf(ErrNotFound, "train with ID %d not existent", id)
	}
	return r.sim.PutTrain(t, p, dir)
}

func (r *Register) Step(speed int) (tal.StepReport, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.sim.Step(speed)
}
