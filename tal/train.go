package tal

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
	"nyiyui.ca/hato/senro/cars"
	"nyiyui.ca/hato/senro/layout"
)

// Placement is the position of a train's head and the direction it is facing.
type Placement struct {
	Position  layout.Point
	Direction layout.Point
}

func (p Placement) Move(d layout.Point) Placement {
	return Placement{Position: p.Position.Add(d), Direction: d}
}

func (p Placement) MoveBackwards(d layout.Point) Placement {
	return Placement{Position: p.Position.Add(d.Negate()), Direction: d}
}

type Train struct {
	ID    int
	units []*cars.Stock
	// length is the current length; it only differs from the sum of the units' lengths while
	// the train is running off the network during a sub-step.
	length    int64
	placement *Placement
}

func NewTrain(id int) *Train {
	return &Train{ID: id}
}

// Append couples s to the back of the train.
func (t *Train) Append(s *cars.Stock) error {
	if len(t.units) > 0 {
		if err := cars.Couple(t.units[len(t.units)-1], s); err != nil {
			return err
		}
	}
	t.units = append(t.units, s)
	t.length += s.Length
	return nil
}

func (t *Train) Units() []*cars.Stock {
	return slices.Clone(t.units)
}

func (t *Train) Contains(s *cars.Stock) bool {
	return slices.Contains(t.units, s)
}

// Valid reports whether there is an engine or train-set at the front or the back.
func (t *Train) Valid() bool {
	if len(t.units) == 0 {
		return false
	}
	return t.units[0].Useful() || t.units[len(t.units)-1].Useful()
}

func (t *Train) Length() int64 {
	return t.length
}

func (t *Train) NominalLength() int64 {
	var l int64
	for _, u := range t.units {
		l += u.Length
	}
	return l
}

func (t *Train) shorten() {
	t.length--
}

func (t *Train) resetLength() {
	t.length = t.NominalLength()
}

func (t *Train) Placement() (Placement, bool) {
	if t.placement == nil {
		return Placement{}, false
	}
	return *t.placement, true
}

func (t *Train) setPlacement(p Placement) {
	t.placement = &p
}

// Show renders the train as ASCII art.
func (t *Train) Show() string {
	return cars.Render(t.units)
}

// String returns the train ID followed by the IDs of its units.
func (t *Train) String() string {
	b := new(strings.Builder)
	b.WriteString(strconv.Itoa(t.ID))
	for _, u := range t.units {
		b.WriteByte(' ')
		b.WriteString(u.ID())
	}
	return b.String()
}
