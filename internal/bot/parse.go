package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"grantbot/internal/annotation"
)

// ParsePosition extracts a 1-based list position from a command argument.
func ParsePosition(args string) (int, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return 0, errors.New("grant number is required")
	}
	pos, err := strconv.Atoi(fields[0])
	if err != nil || pos < 1 {
		return 0, fmt.Errorf("invalid grant number %q", fields[0])
	}
	return pos, nil
}

// ParseRateArgs extracts a list position and a 0-5 rating.
func ParseRateArgs(args string) (int, int, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return 0, 0, errors.New("usage: /rate <number> <0-5>")
	}
	pos, err := ParsePosition(fields[0])
	if err != nil {
		return 0, 0, err
	}
	stars, err := strconv.Atoi(fields[1])
	if err != nil || stars < 0 || stars > annotation.MaxRating {
		return 0, 0, fmt.Errorf("rating must be between 0 and %d", annotation.MaxRating)
	}
	return pos, stars, nil
}

// callback is parsed inline button data of the form "action:arg[:arg...]".
type callback struct {
	action string
	args   []string
}

func parseCallback(data string) (callback, bool) {
	action, rest, ok := strings.Cut(data, ":")
	if !ok || action == "" {
		return callback{}, false
	}
	if action == cbState || action == cbType {
		return callback{action: action, args: []string{rest}}, true
	}
	return callback{action: action, args: strings.Split(rest, ":")}, true
}

// grantRef parses "<generation>:<index>" and an optional trailing star count.
func (c callback) grantRef(withStars bool) (gen uint64, idx, stars int, err error) {
	want := 2
	if withStars {
		want = 3
	}
	if len(c.args) != want {
		return 0, 0, 0, fmt.Errorf("callback %s: want %d args, got %d", c.action, want, len(c.args))
	}
	if gen, err = strconv.ParseUint(c.args[0], 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("callback %s: parse generation: %w", c.action, err)
	}
	if idx, err = strconv.Atoi(c.args[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("callback %s: parse index: %w", c.action, err)
	}
	if withStars {
		if stars, err = strconv.Atoi(c.args[2]); err != nil {
			return 0, 0, 0, fmt.Errorf("callback %s: parse stars: %w", c.action, err)
		}
	}
	return gen, idx, stars, nil
}

func (c callback) intArg() (int, error) {
	if len(c.args) != 1 {
		return 0, fmt.Errorf("callback %s: want 1 arg, got %d", c.action, len(c.args))
	}
	return strconv.Atoi(c.args[0])
}
