package cars

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrCoupling is returned when two units cannot be coupled.
var ErrCoupling = errors.New("invalid coupling")

// Class is the broad category of a unit; IDs are unique per class (engines and train-sets
// share one namespace).
type Class int

const (
	ClassEngine Class = iota + 1
	ClassCoach
	ClassTrainSet
)

func (c Class) String() string {
	switch c {
	case ClassEngine:
		return "engine"
	case ClassCoach:
		return "coach"
	case ClassTrainSet:
		return "train-set"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

type Type int

const (
	Electrical Type = iota + 1
	Steam
	Diesel
	Passenger
	Freight
	Special
	TrainSet
)

var typeNames = map[Type]string{
	Electrical: "electrical",
	Steam:      "steam",
	Diesel:     "diesel",
	Passenger:  "passenger",
	Freight:    "freight",
	Special:    "special",
	TrainSet:   "train-set",
}

// EngineTypes and CoachTypes map the names used on the command line to types.
var (
	EngineTypes = map[string]Type{"electrical": Electrical, "steam": Steam, "diesel": Diesel}
	CoachTypes  = map[string]Type{"passenger": Passenger, "freight": Freight, "special": Special}
)

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

func (t Type) Class() Class {
	switch t {
	case Electrical, Steam, Diesel:
		return ClassEngine
	case Passenger, Freight, Special:
		return ClassCoach
	case TrainSet:
		return ClassTrainSet
	}
	panic(fmt.Sprintf("unknown type %d", int(t)))
}

// letter is the leading letter of the listing format.
func (t Type) letter() string {
	switch t {
	case Electrical:
		return "e"
	case Steam, Special:
		return "s"
	case Diesel:
		return "d"
	case Passenger:
		return "p"
	case Freight:
		return "f"
	}
	return ""
}

// Stock is a single unit of rolling stock.
type Stock struct {
	Type Type
	// Series and Name identify engines and train-sets.
	Series string
	Name   string
	// Number identifies coaches.
	Number int
	// Length in track units; always positive.
	Length int64
	Front  bool
	Back   bool
}

func NewEngine(t Type, series, name string, length int64, front, back bool) *Stock {
	if t.Class() != ClassEngine {
		panic(fmt.Sprintf("%s is not an engine type", t))
	}
	return &Stock{Type: t, Series: series, Name: name, Length: length, Front: front, Back: back}
}

func NewCoach(t Type, number int, length int64, front, back bool) *Stock {
	if t.Class() != ClassCoach {
		panic(fmt.Sprintf("%s is not a coach type", t))
	}
	return &Stock{Type: t, Number: number, Length: length, Front: front, Back: back}
}

func NewTrainSet(series, name string, length int64, front, back bool) *Stock {
	return &Stock{Type: TrainSet, Series: series, Name: name, Length: length, Front: front, Back: back}
}

func (s *Stock) Class() Class { return s.Type.Class() }

// ID returns "<series>-<name>" for engines and train-sets, and "W<number>" for coaches.
func (s *Stock) ID() string {
	if s.Class() == ClassCoach {
		return "W" + strconv.Itoa(s.Number)
	}
	return s.Series + "-" + s.Name
}

// Description is the human-readable kind, e.g. "steam engine" or "freight coach".
func (s *Stock) Description() string {
	if s.Type == TrainSet {
		return "train-set"
	}
	return s.Type.String() + " " + s.Class().String()
}

// Useful reports whether the unit can lead or end a train by itself.
func (s *Stock) Useful() bool {
	return s.Class() != ClassCoach
}

// CanCoupleTo reports whether s accepts being coupled to o. Only train-sets are picky:
// they couple to train-sets of the same series only.
func (s *Stock) CanCoupleTo(o *Stock) error {
	if s.Type != TrainSet {
		return nil
	}
	if o.Type != TrainSet {
		return fmt.Errorf("%w: a train-set can only be composed with a train consisting of train-sets", ErrCoupling)
	}
	if o.Series != s.Series {
		return fmt.Errorf("%w: train-set series do not match", ErrCoupling)
	}
	return nil
}

// Couple checks whether next can be coupled behind last.
func Couple(last, next *Stock) error {
	if err := next.CanCoupleTo(last); err != nil {
		return err
	}
	if err := last.CanCoupleTo(next); err != nil {
		return err
	}
	if !last.Back || !next.Front {
		return ErrCoupling
	}
	return nil
}

// String returns the listing format, e.g. "e 103 118 3 true true" or "p 1 true true".
func (s *Stock) String() string {
	tail := fmt.Sprintf("%d %t %t", s.Length, s.Front, s.Back)
	switch s.Class() {
	case ClassEngine:
		return fmt.Sprintf("%s %s %s %s", s.Type.letter(), s.Series, s.Name, tail)
	case ClassCoach:
		return s.Type.letter() + " " + tail
	default:
		return fmt.Sprintf("%s %s %s", s.Series, s.Name, tail)
	}
}
