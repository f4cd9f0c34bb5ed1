// Package tides derives the coarse tide state of a moment from a list of
// predicted high and low water extremes.
package tides

import (
	"math"
	"sort"
	"time"

	"beachscore/internal/types"
)

// DefaultSlackBand is the fraction of the tidal cycle treated as slack water
// and as the high/low shoulders.
const DefaultSlackBand = 0.15

// Event is one predicted extreme. Kind is TideHigh or TideLow.
type Event struct {
	Time   time.Time      `json:"time"`
	Kind   types.TideType `json:"kind"`
	Height float64        `json:"height_ft"`
}

// Classifier maps a moment to a TideType by cosine interpolation between the
// two extremes that bracket it.
type Classifier struct {
	// SlackBand is in (0, 0.5). Rates of change below this fraction of the
	// peak rate are slack; heights within this fraction of an extreme are
	// high or low.
	SlackBand float64
}

// NewClassifier creates a Classifier, substituting DefaultSlackBand for an
// out-of-range band.
func NewClassifier(band float64) Classifier {
	if band <= 0 || band >= 0.5 || math.IsNaN(band) {
		band = DefaultSlackBand
	}
	return Classifier{SlackBand: band}
}

// Classify returns the tide state at t. It returns "" when t is not bracketed
// by two events; the scorer treats that as unrecognised.
func (c Classifier) Classify(events []Event, t time.Time) types.TideType {
	sorted := sortedEvents(events)
	return c.classifySorted(sorted, t)
}

// Annotate sets TideType on every snapshot from one event list.
func (c Classifier) Annotate(snaps []types.ConditionSnapshot, events []Event) {
	sorted := sortedEvents(events)
	for i := range snaps {
		snaps[i].TideType = c.classifySorted(sorted, snaps[i].Timestamp)
	}
}

func (c Classifier) classifySorted(events []Event, t time.Time) types.TideType {
	// First event strictly after t; the bracket is [i-1, i].
	i := sort.Search(len(events), func(i int) bool { return events[i].Time.After(t) })
	if i == 0 || i == len(events) {
		return ""
	}
	prev, next := events[i-1], events[i]

	span := next.Time.Sub(prev.Time)
	if span <= 0 {
		return ""
	}
	phase := float64(t.Sub(prev.Time)) / float64(span)

	// Normalised rate of change of the cosine curve peaks at 1 mid-cycle.
	if math.Sin(math.Pi*phase) < c.SlackBand {
		return types.TideSlack
	}

	delta := next.Height - prev.Height
	if delta == 0 {
		return types.TideSlack
	}
	height := prev.Height + delta*(1-math.Cos(math.Pi*phase))/2
	low := math.Min(prev.Height, next.Height)
	frac := (height - low) / math.Abs(delta)

	switch {
	case frac >= 1-c.SlackBand:
		return types.TideHigh
	case frac <= c.SlackBand:
		return types.TideLow
	case delta > 0:
		return types.TideRising
	default:
		return types.TideFalling
	}
}

func sortedEvents(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
