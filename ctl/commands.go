package ctl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
	"nyiyui.ca/hato/senro/cars"
	"nyiyui.ca/hato/senro/layout"
	"nyiyui.ca/hato/senro/register"
	"nyiyui.ca/hato/senro/tal"
)

type command struct {
	name  string
	nArgs int
	usage string
	run   func(s *Shell, args []string) error
}

var commands = []command{
	{"add track", 3, "add track <startpoint> -> <endpoint>", addTrack},
	{"add switch", 3, "add switch <startpoint> -> <endpoint1>,<endpoint2>", addSwitch},
	{"delete track", 1, "delete track <trackID>", deleteTrack},
	{"list tracks", 0, "list tracks", listTracks},
	{"set switch", 3, "set switch <trackID> position <point>", setSwitch},
	{"create engine", 6, "create engine <engineType> <class> <name> <length> <couplingFront> <couplingBack>", createEngine},
	{"list engines", 0, "list engines", listEngines},
	{"create coach", 4, "create coach <coachType> <length> <couplingFront> <couplingBack>", createCoach},
	{"list coaches", 0, "list coaches", listCoaches},
	{"create train-set", 5, "create train-set <class> <name> <length> <couplingFront> <couplingBack>", createTrainSet},
	{"list train-sets", 0, "list train-sets", listTrainSets},
	{"delete rolling stock", 1, "delete rolling stock <id>", deleteRollingStock},
	{"add train", 2, "add train <trainID> <rollingStockID>", addTrain},
	{"delete train", 1, "delete train <id>", deleteTrain},
	{"list trains", 0, "list trains", listTrains},
	{"show train", 1, "show train <trainID>", showTrain},
	{"put train", 6, "put train <trainID> at <point> in direction <x>,<y>", putTrain},
	{"step", 1, "step <speed>", step},
	{"exit", 0, "exit", exit},
}

func expectWord(args []string, i int, word string) error {
	if args[i] != word {
		return fmt.Errorf("%s argument must be '%s'. Instead you typed: %s", ordinals[i], word, args[i])
	}
	return nil
}

var ordinals = []string{"first", "second", "third", "fourth", "fifth", "sixth"}

func addTrack(s *Shell, args []string) error {
	start, err := parsePoint(args[0])
	if err != nil {
		return err
	}
	if err := expectWord(args, 1, "->"); err != nil {
		return err
	}
	end, err := parsePoint(args[2])
	if err != nil {
		return err
	}
	id, err := s.reg.AddTrack(start, end)
	if err != nil {
		return err
	}
	s.println(id)
	return nil
}

func addSwitch(s *Shell, args []string) error {
	start, err := parsePoint(args[0])
	if err != nil {
		return err
	}
	if err := expectWord(args, 1, "->"); err != nil {
		return err
	}
	end1, end2, err := parseTwoPoints(args[2])
	if err != nil {
		return err
	}
	id, err := s.reg.AddSwitch(start, end1, end2)
	if err != nil {
		return err
	}
	s.println(id)
	return nil
}

func deleteTrack(s *Shell, args []string) error {
	id, err := parseID(args[0], "track ID")
	if err != nil {
		return err
	}
	if err := s.reg.DeleteTrack(layout.TrackID(id)); err != nil {
		return err
	}
	s.println("OK")
	return nil
}

func listTracks(s *Shell, _ []string) error {
	return s.printList(s.reg.Tracks(), "No track exists")
}

func setSwitch(s *Shell, args []string) error {
	id, err := parseID(args[0], "track ID")
	if err != nil {
		return err
	}
	if err := expectWord(args, 1, "position"); err != nil {
		return err
	}
	p, err := parsePoint(args[2])
	if err != nil {
		return err
	}
	if err := s.reg.SetSwitch(layout.TrackID(id), p); err != nil {
		return err
	}
	s.println("OK")
	return nil
}

func createEngine(s *Shell, args []string) error {
	series, err := parseSeries(args[1])
	if err != nil {
		return err
	}
	name, err := parseName(args[2])
	if err != nil {
		return err
	}
	sa, err := parseStockArgs(args[3], args[4], args[5])
	if err != nil {
		return err
	}
	t, ok := cars.EngineTypes[args[0]]
	if !ok {
		return errors.New("invalid engine type. Either use 'electrical', 'steam' or 'diesel'")
	}
	e, err := s.reg.CreateEngine(t, series, name, sa.length, sa.front, sa.back)
	if err != nil {
		return err
	}
	s.println(e.ID())
	return nil
}

func createCoach(s *Shell, args []string) error {
	sa, err := parseStockArgs(args[1], args[2], args[3])
	if err != nil {
		return err
	}
	t, ok := cars.CoachTypes[args[0]]
	if !ok {
		return errors.New("invalid coach type. Either use 'passenger', 'freight' or 'special'")
	}
	c, err := s.reg.CreateCoach(t, sa.length, sa.front, sa.back)
	if err != nil {
		return err
	}
	s.println(c.Number)
	return nil
}

func createTrainSet(s *Shell, args []string) error {
	series, err := parseSeries(args[0])
	if err != nil {
		return err
	}
	name, err := parseName(args[1])
	if err != nil {
		return err
	}
	sa, err := parseStockArgs(args[2], args[3], args[4])
	if err != nil {
		return err
	}
	ts, err := s.reg.CreateTrainSet(series, name, sa.length, sa.front, sa.back)
	if err != nil {
		return err
	}
	s.println(ts.ID())
	return nil
}

func stockLines(infos []register.StockInfo, withNumber bool) []string {
	res := make([]string, len(infos))
	for i, info := range infos {
		train := "none"
		if info.Train != 0 {
			train = strconv.Itoa(info.Train)
		}
		res[i] = train + " " + info.Stock.String()
		if withNumber {
			res[i] = strconv.Itoa(info.Stock.Number) + " " + res[i]
		}
	}
	return res
}

func listEngines(s *Shell, _ []string) error {
	return s.printList(stockLines(s.reg.Engines(), false), "No engine exists")
}

func listCoaches(s *Shell, _ []string) error {
	return s.printList(stockLines(s.reg.Coaches(), true), "No coach exists")
}

func listTrainSets(s *Shell, _ []string) error {
	return s.printList(stockLines(s.reg.TrainSets(), false), "No train-set exists")
}

func deleteRollingStock(s *Shell, args []string) error {
	if err := s.reg.DeleteRollingStock(args[0]); err != nil {
		return err
	}
	s.println("OK")
	return nil
}

func addTrain(s *Shell, args []string) error {
	id, err := parseID(args[0], "train ID")
	if err != nil {
		return err
	}
	u, err := s.reg.AddTrain(id, args[1])
	if err != nil {
		return err
	}
	s.println(fmt.Sprintf("%s %s added to train %d", u.Description(), u.ID(), id))
	return nil
}

func deleteTrain(s *Shell, args []string) error {
	id, err := parseID(args[0], "train ID")
	if err != nil {
		return err
	}
	if err := s.reg.DeleteTrain(id); err != nil {
		return err
	}
	s.println("OK")
	return nil
}

func listTrains(s *Shell, _ []string) error {
	return s.printList(s.reg.Trains(), "No train exists")
}

func showTrain(s *Shell, args []string) error {
	id, err := parseID(args[0], "train ID")
	if err != nil {
		return err
	}
	pic, err := s.reg.ShowTrain(id)
	if err != nil {
		return err
	}
	s.println(pic)
	return nil
}

func putTrain(s *Shell, args []string) error {
	id, err := parseID(args[0], "train ID")
	if err != nil {
		return err
	}
	if err := expectWord(args, 1, "at"); err != nil {
		return err
	}
	p, err := parsePoint(args[2])
	if err != nil {
		return err
	}
	if err := expectWord(args, 3, "in"); err != nil {
		return err
	}
	if err := expectWord(args, 4, "direction"); err != nil {
		return err
	}
	dir, err := parseVector(args[5])
	if err != nil {
		return err
	}
	if err := s.reg.PutTrain(id, p, dir); err != nil {
		return err
	}
	s.println("OK")
	return nil
}

func step(s *Shell, args []string) error {
	speed, err := parseSpeed(args[0])
	if err != nil {
		return err
	}
	report, err := s.reg.Step(speed)
	if err != nil {
		return err
	}
	for _, line := range reportLines(report) {
		s.println(line)
	}
	return nil
}

// reportLines formats a step: crashes (trains that left the network count as crashes of
// their own) ordered by their smallest train ID, then the position of every remaining train.
// A step without trains on the network is just "OK".
func reportLines(r tal.StepReport) []string {
	if len(r.Crashes) == 0 && len(r.Exits) == 0 && len(r.Positions) == 0 {
		return []string{"OK"}
	}
	groups := slices.Clone(r.Crashes)
	for _, id := range r.Exits {
		groups = append(groups, []int{id})
	}
	slices.SortFunc(groups, func(a, b []int) int { return a[0] - b[0] })
	var res []string
	for _, g := range groups {
		ids := make([]string, len(g))
		for i, id := range g {
			ids[i] = strconv.Itoa(id)
		}
		res = append(res, "Crash of train "+strings.Join(ids, ","))
	}
	for _, p := range r.Positions {
		res = append(res, fmt.Sprintf("Train %d at %s", p.Train, p.Point))
	}
	return res
}

func exit(s *Shell, _ []string) error {
	s.done = true
	return nil
}
