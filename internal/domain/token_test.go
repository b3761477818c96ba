package domain

import "testing"

func TestTokenRecordPrice(t *testing.T) {
	cases := []struct {
		name      string
		sol       float64
		token     float64
		wantPrice float64
		wantOK    bool
	}{
		{"normal", 30_000_000_000, 1_000_000_000_000, 0.03, true},
		{"zero sol reserves", 0, 1_000_000_000_000, 0, false},
		{"zero token reserves", 30_000_000_000, 0, 0, false},
		{"negative reserves", -1, 1_000_000_000_000, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &TokenRecord{
				VirtualSolReserves:   tc.sol,
				VirtualTokenReserves: tc.token,
			}
			price, ok := rec.Price()
			if ok != tc.wantOK {
				t.Fatalf("Price() ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && price != tc.wantPrice {
				t.Errorf("Price() = %v, want %v", price, tc.wantPrice)
			}
		})
	}
}
