// Package domain contains the pure business types for the injection-molding
// monthly planner — it depends on nothing outside the standard library and
// is the innermost ring the core (internal/core/...) and every adapter
// (internal/api, internal/cli, internal/infra/...) builds on.
package domain

// Group is the physical class a Machine or Mold belongs to. A mold can only
// be mounted on a machine sharing its group.
type Group string

const (
	GroupSmall  Group = "small"
	GroupMedium Group = "medium"
	GroupLarge  Group = "large"
)

// Machine is one injection-molding press in the fleet.
type Machine struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Group   Group `json:"group"`
	Tonnage int   `json:"tonnage"`

	// HoursPerDay is usable press hours per calendar day. Defaults to 21.0
	// when zero (see DefaultHoursPerDay).
	HoursPerDay float64 `json:"hours_per_day"`
	// Efficiency is a [0,1] derating applied to HoursPerDay. Defaults to
	// 0.85 when zero (see DefaultEfficiency).
	Efficiency float64 `json:"efficiency"`
}

const (
	DefaultHoursPerDay = 21.0
	DefaultEfficiency  = 0.85
)

// Normalized returns m with its zero-valued tunables replaced by defaults.
func (m Machine) Normalized() Machine {
	if m.HoursPerDay == 0 {
		m.HoursPerDay = DefaultHoursPerDay
	}
	if m.Efficiency == 0 {
		m.Efficiency = DefaultEfficiency
	}
	return m
}

// DailyCapacityHours is the effective daily capacity: hours × efficiency.
func (m Machine) DailyCapacityHours() float64 {
	n := m.Normalized()
	return n.HoursPerDay * n.Efficiency
}

// Mold is a tool that can be mounted on a Machine sharing its Group,
// provided the mold's tonnage does not exceed the machine's.
type Mold struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Group   Group  `json:"group"`
	Tonnage int    `json:"tonnage"`
}

// Mountable reports whether mold may be mounted on machine.
func (m Mold) Mountable(machine Machine) bool {
	return m.Group == machine.Group && m.Tonnage <= machine.Tonnage
}
