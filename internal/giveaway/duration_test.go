package giveaway

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"30s", 30 * time.Second, true},
		{"5m", 5 * time.Minute, true},
		{"2h", 2 * time.Hour, true},
		{"1d", 24 * time.Hour, true},
		{"1w", 7 * 24 * time.Hour, true},
		{"1h30m", 90 * time.Minute, true},
		{" 10M ", 10 * time.Minute, true},
		{"", 0, false},
		{"0s", 0, false},
		{"10", 0, false},
		{"m5", 0, false},
		{"5x", 0, false},
		{"-5m", 0, false},
		{"1.5h", 0, false},
		{"99999999999999999999d", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDuration(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseDuration(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseDuration(%q) expected error, got %v", tc.in, got)
		}
	}
}
