package pipeline

import (
	"testing"
	"time"
)

func TestDealWindowTime(t *testing.T) {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	entered := time.Date(2025, 4, 2, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		deal Deal
		want time.Time
	}{
		{
			name: "stage entry wins when present",
			deal: Deal{CreatedAt: created, StageEnteredAt: &entered},
			want: entered,
		},
		{
			name: "falls back to created",
			deal: Deal{CreatedAt: created},
			want: created,
		},
		{
			name: "zero stage entry falls back to created",
			deal: Deal{CreatedAt: created, StageEnteredAt: &time.Time{}},
			want: created,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.deal.WindowTime(); !got.Equal(tt.want) {
				t.Errorf("WindowTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeWindowContains(t *testing.T) {
	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	w := TimeWindow{From: from, To: to}

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{name: "inside", t: time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC), want: true},
		{name: "at lower bound", t: from, want: true},
		{name: "at upper bound excluded", t: to, want: false},
		{name: "before", t: from.Add(-time.Second), want: false},
		{name: "after", t: to.Add(time.Hour), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.t); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}

	// The zero window admits everything
	var unbounded TimeWindow
	if !unbounded.IsZero() {
		t.Error("zero TimeWindow IsZero() = false, want true")
	}
	if !unbounded.Contains(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("zero TimeWindow should contain any timestamp")
	}
}

func TestMonthWindow(t *testing.T) {
	w := MonthWindow(2025, time.April)

	wantFrom := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	if !w.From.Equal(wantFrom) {
		t.Errorf("MonthWindow From = %v, want %v", w.From, wantFrom)
	}
	if !w.To.Equal(wantTo) {
		t.Errorf("MonthWindow To = %v, want %v", w.To, wantTo)
	}

	// December rolls into January of the next year
	dec := MonthWindow(2025, time.December)
	if !dec.To.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("December window To = %v, want 2026-01-01", dec.To)
	}
}

func TestMonthWindows(t *testing.T) {
	from := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)

	windows := MonthWindows(from, to)
	if len(windows) != 4 {
		t.Fatalf("MonthWindows(Nov 2025, Feb 2026) returned %d windows, want 4", len(windows))
	}

	wantStarts := []time.Time{
		time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, want := range wantStarts {
		if !windows[i].From.Equal(want) {
			t.Errorf("window %d From = %v, want %v", i, windows[i].From, want)
		}
	}

	if got := MonthWindows(to, from); got != nil {
		t.Errorf("MonthWindows with reversed range = %v, want nil", got)
	}
}
