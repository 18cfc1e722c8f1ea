package main

import "testing"

func TestScanLimit(t *testing.T) {
	tests := []struct {
		name string
		p    profile
		want int
	}{
		{"free default", profile{}, freeScanLimit},
		{"custom limit", profile{DailyScanLimit: 12}, 12},
		{"pro ignores stored limit", profile{IsPro: true, DailyScanLimit: 5}, proScanLimit},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := scanLimit(tc.p); got != tc.want {
				t.Errorf("scanLimit() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRefreshScans(t *testing.T) {
	p := profile{DailyScanLimit: freeScanLimit, ScansRemainingToday: 0, ScansResetDate: "2026-10-17"}

	if !refreshScans(&p, "2026-10-18") {
		t.Fatal("refreshScans on a new day reported no change")
	}
	if p.ScansRemainingToday != freeScanLimit || p.ScansResetDate != "2026-10-18" {
		t.Errorf("after refresh: remaining=%d reset=%s", p.ScansRemainingToday, p.ScansResetDate)
	}

	p.ScansRemainingToday = 2
	if refreshScans(&p, "2026-10-18") {
		t.Error("refreshScans on the same day reported a change")
	}
	if p.ScansRemainingToday != 2 {
		t.Errorf("same-day refresh reset remaining to %d", p.ScansRemainingToday)
	}
}

func TestConsumeScan(t *testing.T) {
	p := profile{DailyScanLimit: 2}
	today := "2026-10-18"

	for i := 0; i < 2; i++ {
		if !consumeScan(&p, today) {
			t.Fatalf("scan %d refused", i+1)
		}
	}
	if consumeScan(&p, today) {
		t.Error("third scan allowed with a limit of 2")
	}
	if p.ScansRemainingToday != 0 || p.LifetimeLogs != 2 {
		t.Errorf("remaining=%d lifetime=%d, want 0/2", p.ScansRemainingToday, p.LifetimeLogs)
	}

	if !consumeScan(&p, "2026-10-19") {
		t.Error("scan refused on the next day")
	}
	if p.LifetimeLogs != 3 {
		t.Errorf("lifetime = %d, want 3", p.LifetimeLogs)
	}
}
