package domain

import "testing"

func TestGridCell(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     string
	}{
		{15.2963, 74.1245, "15.29:74.12"},
		{15.2999, 74.1299, "15.29:74.12"},
		{15.3000, 74.1300, "15.30:74.13"},
		{0, 0, "0.00:0.00"},
		{-6.2088, 106.8456, "-6.21:106.84"},
	}
	for _, tt := range tests {
		if got := GridCell(tt.lat, tt.lon); got != tt.want {
			t.Errorf("GridCell(%v, %v) = %q, want %q", tt.lat, tt.lon, got, tt.want)
		}
	}
}
