package date

import (
	"testing"
)

func TestParseClock(t *testing.T) {
	var parseTests = []struct {
		in      string
		out     int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{" 12:00 ", 720, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"-1:00", 0, true},
		{"1200", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}

	for _, tt := range parseTests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q) expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.out {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.out)
		}
	}
}

func TestFormatClock(t *testing.T) {
	var formatTests = []struct {
		in    int
		out24 string
		out12 string
	}{
		{0, "00:00", "12:00 AM"},
		{540, "09:00", "9:00 AM"},
		{570, "09:30", "9:30 AM"},
		{720, "12:00", "12:00 PM"},
		{870, "14:30", "2:30 PM"},
		{1439, "23:59", "11:59 PM"},
		{1470, "00:30", "12:30 AM"},
	}

	for _, tt := range formatTests {
		if got := FormatClock(tt.in); got != tt.out24 {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.in, got, tt.out24)
		}
		if got := FormatClock12(tt.in); got != tt.out12 {
			t.Errorf("FormatClock12(%d) = %q, want %q", tt.in, got, tt.out12)
		}
	}
}

func TestCombineDuration(t *testing.T) {
	if got := CombineDuration(1, 30); got != 90 {
		t.Errorf("CombineDuration(1, 30) = %d, want 90", got)
	}
	if got := CombineDuration(0, 0); got != 0 {
		t.Errorf("CombineDuration(0, 0) = %d, want 0", got)
	}
}

func TestFormatDuration(t *testing.T) {
	var durationTests = []struct {
		in  int
		out string
	}{
		{0, "0m"},
		{-15, "0m"},
		{45, "45m"},
		{60, "1h"},
		{90, "1h 30m"},
		{150, "2h 30m"},
	}

	for _, tt := range durationTests {
		if got := FormatDuration(tt.in); got != tt.out {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.in, got, tt.out)
		}
	}
}

func TestInterval_Overlaps(t *testing.T) {
	var overlapTests = []struct {
		a   Interval
		b   Interval
		out bool
	}{
		// identical intervals
		{Interval{540, 570}, Interval{540, 570}, true},
		// partial overlap
		{Interval{540, 600}, Interval{570, 630}, true},
		// containment
		{Interval{540, 720}, Interval{570, 600}, true},
		// exactly back-to-back
		{Interval{540, 570}, Interval{570, 630}, false},
		// disjoint
		{Interval{540, 570}, Interval{600, 630}, false},
		// zero-length candidate can never overlap
		{Interval{540, 540}, Interval{500, 600}, false},
	}

	for _, tt := range overlapTests {
		if got := tt.a.Overlaps(tt.b); got != tt.out {
			t.Errorf("%v.Overlaps(%v) = %t, want %t", tt.a, tt.b, got, tt.out)
		}
		// the predicate is symmetric
		if got := tt.b.Overlaps(tt.a); got != tt.out {
			t.Errorf("%v.Overlaps(%v) = %t, want %t", tt.b, tt.a, got, tt.out)
		}
	}
}

func TestInterval_Duration(t *testing.T) {
	interval := NewInterval(630, 90)
	if interval.Start != 630 || interval.End != 720 {
		t.Errorf("NewInterval(630, 90) = %v, want {630 720}", interval)
	}
	if got := interval.Duration(); got != 90 {
		t.Errorf("Duration() = %d, want 90", got)
	}
}

func TestInterval_Contains(t *testing.T) {
	interval := Interval{540, 570}

	if !interval.Contains(540) {
		t.Error("interval should contain its start minute")
	}
	if interval.Contains(570) {
		t.Error("half-open interval should not contain its end minute")
	}
	if interval.Contains(600) {
		t.Error("interval should not contain a minute past its end")
	}
}
