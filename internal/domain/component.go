package domain

// Component is a single demand line: a requested quantity of a molded part,
// due by a given day of the planning month.
type Component struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Quantity      int      `json:"quantity"`       // pieces requested
	CycleTimeSec  float64  `json:"cycle_time_sec"` // seconds per piece
	MoldID        string   `json:"mold_id"`        // required mold
	Color         string   `json:"color"`          // color/material tag
	DueDay        int      `json:"due_day"`        // 1..month_days
	LeadTimeDays  *int     `json:"lead_time_days,omitempty"` // nil means DefaultLeadTimeDays; explicit 0 is honored
	Prerequisites []string `json:"prerequisites,omitempty"`

	// Status is informational only — the decoder never reads it.
	Status string `json:"status,omitempty"`
}

const DefaultLeadTimeDays = 2

// EffectiveLeadTimeDays returns LeadTimeDays if the caller set it (including
// an explicit 0), or DefaultLeadTimeDays if it was left nil.
func (c Component) EffectiveLeadTimeDays() int {
	if c.LeadTimeDays != nil {
		return *c.LeadTimeDays
	}
	return DefaultLeadTimeDays
}

// PieceHours converts CycleTimeSec into hours of press time per piece.
func (c Component) PieceHours() float64 {
	return c.CycleTimeSec / 3600.0
}

// LatestStart is the latest day production may first start and still meet
// DueDay given EffectiveLeadTimeDays, floored at day 1.
func (c Component) LatestStart() int {
	ls := c.DueDay - c.EffectiveLeadTimeDays()
	if ls < 1 {
		ls = 1
	}
	return ls
}
