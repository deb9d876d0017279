package ctl

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"nyiyui.ca/hato/senro/layout"
)

var (
	pointRe     = regexp.MustCompile(`^\(([+-]?[0-9]+),([+-]?[0-9]+)\)$`)
	twoPointsRe = regexp.MustCompile(`^\(([+-]?[0-9]+),([+-]?[0-9]+)\),\(([+-]?[0-9]+),([+-]?[0-9]+)\)$`)
	vectorRe    = regexp.MustCompile(`^([+-]?[0-9]+),([+-]?[0-9]+)$`)
	nameRe      = regexp.MustCompile(`^[\p{L}0-9]+$`)
	numberRe    = regexp.MustCompile(`^[+]?[0-9]*[1-9][0-9]*$`)
)

// coords parses 32-bit coordinate pairs out of regexp submatches.
func coords(groups []string, what string) ([]layout.Point, error) {
	res := make([]layout.Point, 0, len(groups)/2)
	for i := 0; i+1 < len(groups); i += 2 {
		x, err := strconv.ParseInt(groups[i], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("coordinates of %s must be 32-bit integers", what)
		}
		y, err := strconv.ParseInt(groups[i+1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("coordinates of %s must be 32-bit integers", what)
		}
		res = append(res, layout.Pt(x, y))
	}
	return res, nil
}

func parsePoint(s string) (layout.Point, error) {
	m := pointRe.FindStringSubmatch(s)
	if m == nil {
		return layout.Point{}, errors.New("a point must be entered as follows '(<x-coordinate>,<y-coordinate>)'")
	}
	ps, err := coords(m[1:], "a point")
	if err != nil {
		return layout.Point{}, err
	}
	return ps[0], nil
}

func parseTwoPoints(s string) (layout.Point, layout.Point, error) {
	m := twoPointsRe.FindStringSubmatch(s)
	if m == nil {
		return layout.Point{}, layout.Point{}, errors.New("two endpoints must be entered as follows '(<x-coordinate>,<y-coordinate>),(<x-coordinate>,<y-coordinate>)'")
	}
	ps, err := coords(m[1:], "a point")
	if err != nil {
		return layout.Point{}, layout.Point{}, err
	}
	return ps[0], ps[1], nil
}

func parseVector(s string) (layout.Point, error) {
	m := vectorRe.FindStringSubmatch(s)
	if m == nil {
		return layout.Point{}, fmt.Errorf("%s is not a valid direction vector. Expect input of the form '<x-coordinate>,<y-coordinate>'", s)
	}
	ps, err := coords(m[1:], "the direction vector")
	if err != nil {
		return layout.Point{}, err
	}
	return ps[0], nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%s is not a valid boolean. Either use 'true' or 'false'", s)
}

// parseNumber parses a positive 32-bit integer.
func parseNumber(s, what string) (int, error) {
	if !numberRe.MatchString(s) {
		return 0, fmt.Errorf("%s must be a natural number excluding zero", what)
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a 32-bit integer", what)
	}
	return int(n), nil
}

// parseID parses any 32-bit integer; range checks are left to the register.
func parseID(s, what string) (int, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a 32-bit integer", what)
	}
	return int(n), nil
}

func parseSeries(s string) (string, error) {
	if !nameRe.MatchString(s) {
		return "", errors.New("the series must consist of letters and numbers")
	}
	if s == "W" {
		return "", errors.New("the series must not consist of the character string 'W'")
	}
	return s, nil
}

func parseName(s string) (string, error) {
	if !nameRe.MatchString(s) {
		return "", errors.New("the name must consist of letters and numbers")
	}
	return s, nil
}

func parseSpeed(s string) (int, error) {
	n, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return 0, errors.New("speed has to be a 16-bit integer")
	}
	return int(n), nil
}

// stockArgs is the tail shared by every create command.
type stockArgs struct {
	length      int64
	front, back bool
}

func parseStockArgs(length, front, back string) (stockArgs, error) {
	l, err := parseNumber(length, "length")
	if err != nil {
		return stockArgs{}, err
	}
	f, err := parseBool(front)
	if err != nil {
		return stockArgs{}, err
	}
	b, err := parseBool(back)
	if err != nil {
		return stockArgs{}, err
	}
	if !f && !b {
		return stockArgs{}, errors.New("there must be at least one but not more than two couplings")
	}
	return stockArgs{length: int64(l), front: f, back: b}, nil
}
