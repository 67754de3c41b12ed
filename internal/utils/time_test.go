package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty is local", timezone: ""},
		{name: "explicit local", timezone: "Local"},
		{name: "bogota", timezone: "America/Bogota"},
		{name: "invalid", timezone: "Not/AZone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadLocation(%q) error = %v, wantErr %v", tt.timezone, err, tt.wantErr)
			}
			if !tt.wantErr && loc == nil {
				t.Error("expected a location")
			}
		})
	}
}

func TestTodayIn(t *testing.T) {
	// 03:00 UTC is still the previous day in Bogota (UTC-5).
	now := time.Date(2025, 6, 10, 3, 0, 0, 0, time.UTC)
	loc := time.FixedZone("COT", -5*3600)
	if got := TodayIn(now, loc); got != "2025-06-09" {
		t.Errorf("TodayIn = %s, want 2025-06-09", got)
	}
}

func TestParseAndFormatMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"09:30", 570},
		{"16:30", 990},
		{"23:59", 1439},
	}
	for _, tt := range tests {
		got, err := ParseTimeToMinutes(tt.in)
		if err != nil {
			t.Fatalf("ParseTimeToMinutes(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseTimeToMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
		if back := FormatMinutes(got); back != tt.in {
			t.Errorf("FormatMinutes(%d) = %q, want %q", got, back, tt.in)
		}
	}

	if _, err := ParseTimeToMinutes("25:00"); err == nil {
		t.Error("expected error for 25:00")
	}
}

func TestCombineDateAndTime(t *testing.T) {
	loc := time.FixedZone("COT", -5*3600)
	got, err := CombineDateAndTime("2025-01-15", "14:30", loc)
	if err != nil {
		t.Fatalf("CombineDateAndTime failed: %v", err)
	}
	want := time.Date(2025, 1, 15, 14, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := CombineDateAndTime("15/01/2025", "14:30", loc); err == nil {
		t.Error("expected error for bad date")
	}
	if _, err := CombineDateAndTime("2025-01-15", "2pm", loc); err == nil {
		t.Error("expected error for bad time")
	}
}

func TestUpcomingDates(t *testing.T) {
	from := time.Date(2025, 12, 30, 17, 45, 0, 0, time.UTC)
	got := UpcomingDates(from, 3)
	want := []string{"2025-12-30", "2025-12-31", "2026-01-01"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if !ValidateTimeFormat("09:00") || ValidateTimeFormat("9am") {
		t.Error("ValidateTimeFormat gave unexpected results")
	}
	if !ValidateDateFormat("2025-02-28") || ValidateDateFormat("2025-02-30") {
		t.Error("ValidateDateFormat gave unexpected results")
	}
	if !ValidateTimezone("Local") || ValidateTimezone("Mars/Olympus") {
		t.Error("ValidateTimezone gave unexpected results")
	}
}
