package demo

import (
	"fmt"
	"time"
)

// Scenario starts the flight plan at an offset so a phase can be shown
// without waiting for it.
type Scenario struct {
	Name        string
	Description string
	Offset      time.Duration
}

var scenarios = []Scenario{
	{Name: "race", Description: "Full race from the standing start", Offset: 0},
	{Name: "safety-car", Description: "Safety car deployment and restart", Offset: 30 * time.Second},
	{Name: "pit-stop", Description: "Pit window with a tyre change", Offset: 70 * time.Second},
	{Name: "finish", Description: "Final push to the chequered flag", Offset: 90 * time.Second},
}

// Scenarios lists the named scenarios in plan order.
func Scenarios() []Scenario {
	return append([]Scenario(nil), scenarios...)
}

// Lookup finds a scenario by name.
func Lookup(name string) (Scenario, error) {
	for _, s := range scenarios {
		if s.Name == name {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("scenario %q: %w", name, ErrUnknownScenario)
}
