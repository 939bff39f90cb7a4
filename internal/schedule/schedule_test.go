package schedule

import "testing"

func TestIsOpen(t *testing.T) {
	s := Default()

	tests := []struct {
		name    string
		weekday int
		hour    int
		want    bool
	}{
		{"monday opening hour", 0, 6, true},
		{"monday before opening", 0, 5, false},
		{"monday last slot", 0, 22, true},
		{"monday after last slot", 0, 23, false},
		{"friday midday", 4, 12, true},
		{"saturday opening hour", 5, 8, true},
		{"saturday before opening", 5, 7, false},
		{"saturday last slot", 5, 19, true},
		{"saturday after last slot", 5, 20, false},
		{"sunday weekday-only hour", 6, 6, false},
		{"sunday midday", 6, 12, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IsOpen(tt.weekday, tt.hour); got != tt.want {
				t.Errorf("IsOpen(%d, %d) = %v, want %v", tt.weekday, tt.hour, got, tt.want)
			}
		})
	}
}

func TestExpectedHours(t *testing.T) {
	s := Default()

	weekdayHours := s.ExpectedHours(2)
	if len(weekdayHours) != 17 {
		t.Errorf("ExpectedHours(2) returned %d hours, want 17", len(weekdayHours))
	}
	if weekdayHours[0] != 6 || weekdayHours[len(weekdayHours)-1] != 22 {
		t.Errorf("ExpectedHours(2) range = [%d, %d], want [6, 22]", weekdayHours[0], weekdayHours[len(weekdayHours)-1])
	}

	weekendHours := s.ExpectedHours(Sunday)
	if len(weekendHours) != 12 {
		t.Errorf("ExpectedHours(Sunday) returned %d hours, want 12", len(weekendHours))
	}
	if weekendHours[0] != 8 || weekendHours[len(weekendHours)-1] != 19 {
		t.Errorf("ExpectedHours(Sunday) range = [%d, %d], want [8, 19]", weekendHours[0], weekendHours[len(weekendHours)-1])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Schedule
		wantErr bool
	}{
		{"default schedule", Default(), false},
		{"first after last", Schedule{Weekday: HourRange{10, 8}, Weekend: HourRange{8, 19}}, true},
		{"last past 23", Schedule{Weekday: HourRange{6, 24}, Weekend: HourRange{8, 19}}, true},
		{"negative first", Schedule{Weekday: HourRange{6, 22}, Weekend: HourRange{-1, 19}}, true},
		{"single-hour range", Schedule{Weekday: HourRange{6, 6}, Weekend: HourRange{8, 8}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
