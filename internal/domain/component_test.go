package domain

import "testing"

func TestComponent_LatestStart(t *testing.T) {
	tests := []struct {
		name string
		c    Component
		want int
	}{
		{"default lead time", Component{DueDay: 10}, 8},
		{"explicit lead time", Component{DueDay: 10, LeadTimeDays: Ptr(5)}, 5},
		{"explicit zero lead time is honored", Component{DueDay: 10, LeadTimeDays: Ptr(0)}, 10},
		{"floored at day 1", Component{DueDay: 1, LeadTimeDays: Ptr(1)}, 1},
		{"floored when lead exceeds due", Component{DueDay: 2, LeadTimeDays: Ptr(10)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.LatestStart(); got != tt.want {
				t.Errorf("LatestStart() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComponent_PieceHours(t *testing.T) {
	c := Component{CycleTimeSec: 3600}
	if got := c.PieceHours(); got != 1.0 {
		t.Errorf("PieceHours() = %v, want 1.0", got)
	}
}
