package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/merchstudio/internal/domain/merch/override"
)

// overrideFlags collects --pin and --hide values shared by compile and preview.
type overrideFlags struct {
	Query string
	Pins  []string // "objectID=position" or "objectID" (appended)
	Hides []string
}

type parsedPin struct {
	id  string
	pos int
}

// store builds an override store. Pins are ordered by position; ties keep flag order.
func (f overrideFlags) store() (override.Store, error) {
	pins := make([]parsedPin, 0, len(f.Pins))
	for _, raw := range f.Pins {
		p, err := parsePin(raw)
		if err != nil {
			return override.Store{}, err
		}
		pins = append(pins, p)
	}
	sort.SliceStable(pins, func(i, j int) bool { return pins[i].pos < pins[j].pos })

	s := override.New()
	for _, p := range pins {
		s = s.Pin(p.id, s.Len())
	}
	for _, id := range f.Hides {
		if id == "" {
			return override.Store{}, fmt.Errorf("--hide needs an object id")
		}
		s = s.Hide(id)
	}
	return s, nil
}

// parsePin splits on the last "=", so object ids may contain ":" freely. An id containing "="
// needs an explicit position.
func parsePin(raw string) (parsedPin, error) {
	i := strings.LastIndex(raw, "=")
	if i < 0 {
		if raw == "" {
			return parsedPin{}, fmt.Errorf("--pin needs an object id")
		}
		return parsedPin{id: raw, pos: int(^uint(0) >> 1)}, nil
	}
	id, posText := raw[:i], raw[i+1:]
	if id == "" {
		return parsedPin{}, fmt.Errorf("--pin %q: missing object id", raw)
	}
	pos, err := strconv.Atoi(posText)
	if err != nil || pos < 0 {
		return parsedPin{}, fmt.Errorf("--pin %q: position must be a non-negative integer", raw)
	}
	return parsedPin{id: id, pos: pos}, nil
}
