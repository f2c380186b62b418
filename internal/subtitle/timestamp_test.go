package subtitle

import (
	"errors"
	"math"
	"testing"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"zero", 0, "00:00:00,000"},
		{"half second", 2.5, "00:00:02,500"},
		{"eighth", 0.125, "00:00:00,125"},
		{"minute boundary", 60, "00:01:00,000"},
		{"just under hour", 3599.5, "00:59:59,500"},
		{"hour minute second", 3661.5, "01:01:01,500"},
		{"hours beyond two digits", 360000.25, "100:00:00,250"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatTimestamp(tt.seconds)
			if err != nil {
				t.Fatalf("FormatTimestamp(%v) error = %v", tt.seconds, err)
			}
			if got != tt.want {
				t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestNewTimestampTruncates(t *testing.T) {
	ts, err := NewTimestamp(1.9999)
	if err != nil {
		t.Fatal(err)
	}
	if ts.Seconds != 1 || ts.Milliseconds != 999 {
		t.Errorf("NewTimestamp(1.9999) = %+v, want 1s 999ms", ts)
	}
}

func TestNewTimestampInvalid(t *testing.T) {
	for _, v := range []float64{-1.0, -0.001, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := NewTimestamp(v); !errors.Is(err, ErrInvalidTimestamp) {
			t.Errorf("NewTimestamp(%v) error = %v, want ErrInvalidTimestamp", v, err)
		}
	}
	if _, err := FormatTimestamp(-1.0); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("FormatTimestamp(-1.0) error = %v, want ErrInvalidTimestamp", err)
	}
}

func TestTimestampFieldsMatchFlooredMillis(t *testing.T) {
	for i := 0; i < 200000; i++ {
		s := float64(i)*0.0371 + float64(i%7)*0.0001
		ts, err := NewTimestamp(s)
		if err != nil {
			t.Fatalf("NewTimestamp(%v) error = %v", s, err)
		}
		if ts.Minutes < 0 || ts.Minutes >= 60 || ts.Seconds < 0 || ts.Seconds >= 60 ||
			ts.Milliseconds < 0 || ts.Milliseconds >= 1000 || ts.Hours < 0 {
			t.Fatalf("NewTimestamp(%v) fields out of range: %+v", s, ts)
		}
		if want := int64(math.Floor(s * 1000)); ts.TotalMilliseconds() != want {
			t.Fatalf("NewTimestamp(%v).TotalMilliseconds() = %d, want %d", s, ts.TotalMilliseconds(), want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"00:00:02,500", 2500, false},
		{"01:01:01.500", 3661500, false},
		{" 100:00:00,250 ", 360000250, false},
		{"00:61:00,000", 0, true},
		{"00:00:00", 0, true},
		{"aa:00:00,000", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimestamp(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got.TotalMilliseconds() != tt.want {
				t.Errorf("ParseTimestamp(%q) = %d ms, want %d", tt.in, got.TotalMilliseconds(), tt.want)
			}
		})
	}
}
