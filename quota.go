package main

import "errors"

// errScanLimit aborts a profile update whose scan could not be charged.
var errScanLimit = errors.New("daily scan limit reached")

// Daily AI scan allowance. Pro profiles are effectively unlimited.
const (
	freeScanLimit = 5
	proScanLimit  = 9999
)

// scanLimit is the allowance a profile gets each morning.
func scanLimit(p profile) int {
	if p.IsPro {
		return proScanLimit
	}
	if p.DailyScanLimit <= 0 {
		return freeScanLimit
	}
	return p.DailyScanLimit
}

// refreshScans restores the daily allowance the first time it is touched on a
// new day. Reports whether anything changed.
func refreshScans(p *profile, today string) bool {
	if p.ScansResetDate == today {
		return false
	}
	p.ScansRemainingToday = scanLimit(*p)
	p.ScansResetDate = today
	return true
}

// consumeScan spends one scan. Returns false, leaving p untouched apart from
// the daily refresh, when the allowance is exhausted.
func consumeScan(p *profile, today string) bool {
	refreshScans(p, today)
	if p.ScansRemainingToday <= 0 {
		return false
	}
	p.ScansRemainingToday--
	p.LifetimeLogs++
	return true
}
