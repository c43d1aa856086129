package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateOnly(t *testing.T) {
	t.Run("strips time of day", func(t *testing.T) {
		got := DateOnly(time.Date(2024, 3, 15, 23, 59, 59, 999, time.UTC))
		if !got.Equal(date(2024, 3, 15)) {
			t.Errorf("expected 2024-03-15, got %v", got)
		}
	})

	t.Run("normalizes timezone to UTC", func(t *testing.T) {
		loc := time.FixedZone("UTC-8", -8*3600)
		// 2024-03-15 20:00 UTC-8 is 2024-03-16 04:00 UTC
		got := DateOnly(time.Date(2024, 3, 15, 20, 0, 0, 0, loc))
		if !got.Equal(date(2024, 3, 16)) {
			t.Errorf("expected 2024-03-16, got %v", got)
		}
	})
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"plain month", date(2024, 1, 15), 1, date(2024, 2, 15)},
		{"jan 31 to leap feb", date(2024, 1, 31), 1, date(2024, 2, 29)},
		{"jan 31 to non-leap feb", date(2023, 1, 31), 1, date(2023, 2, 28)},
		{"jan 31 two months keeps day", date(2024, 1, 31), 2, date(2024, 3, 31)},
		{"jan 31 to april clamps to 30", date(2024, 1, 31), 3, date(2024, 4, 30)},
		{"aug 31 to september", date(2024, 8, 31), 1, date(2024, 9, 30)},
		{"crosses year boundary", date(2024, 11, 30), 3, date(2025, 2, 28)},
		{"zero months", date(2024, 1, 31), 0, date(2024, 1, 31)},
		{"twelve months", date(2024, 2, 29), 12, date(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonths(tt.start, tt.n)
			if !got.Equal(tt.want) {
				t.Errorf("AddMonths(%v, %d) = %v, want %v", tt.start, tt.n, got, tt.want)
			}
		})
	}
}

func TestAddYears(t *testing.T) {
	t.Run("leap day clamps in non-leap year", func(t *testing.T) {
		got := AddYears(date(2024, 2, 29), 1)
		if !got.Equal(date(2025, 2, 28)) {
			t.Errorf("expected 2025-02-28, got %v", got)
		}
	})

	t.Run("leap day survives to next leap year", func(t *testing.T) {
		got := AddYears(date(2024, 2, 29), 4)
		if !got.Equal(date(2028, 2, 29)) {
			t.Errorf("expected 2028-02-29, got %v", got)
		}
	})
}

func TestAddDaysAndWeeks(t *testing.T) {
	t.Run("days cross month boundary", func(t *testing.T) {
		got := AddDays(date(2024, 2, 28), 2)
		if !got.Equal(date(2024, 3, 1)) {
			t.Errorf("expected 2024-03-01, got %v", got)
		}
	})

	t.Run("weeks are seven days", func(t *testing.T) {
		got := AddWeeks(date(2024, 1, 1), 2)
		if !got.Equal(date(2024, 1, 15)) {
			t.Errorf("expected 2024-01-15, got %v", got)
		}
	})
}

func TestComparisons(t *testing.T) {
	morning := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 15, 22, 0, 0, 0, time.UTC)
	nextDay := date(2024, 3, 16)

	if Before(evening, morning) || Before(morning, evening) {
		t.Error("times on the same day must not be Before each other")
	}
	if !SameDay(morning, evening) {
		t.Error("expected SameDay for times on the same date")
	}
	if !OnOrBefore(evening, morning) {
		t.Error("expected OnOrBefore for times on the same date")
	}
	if !OnOrBefore(morning, nextDay) {
		t.Error("expected OnOrBefore for earlier date")
	}
	if OnOrBefore(nextDay, morning) {
		t.Error("did not expect OnOrBefore for later date")
	}
}
