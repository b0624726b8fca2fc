//nolint:revive // types is a standard Go package name pattern
package types

// YearlyStat holds the vote counts for one calendar year.
type YearlyStat struct {
	Total    int `json:"total"`
	Approved int `json:"aprobados"`
	Rejected int `json:"rechazados"`
}

// ApprovalRate returns Approved/Total as a percentage, 0 when Total is 0.
func (s YearlyStat) ApprovalRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Approved) * 100 / float64(s.Total)
}

// RejectionRate returns Rejected/Total as a percentage, 0 when Total is 0.
func (s YearlyStat) RejectionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Rejected) * 100 / float64(s.Total)
}

// Period is the date range covered by a vote collection. Both ends are nil
// when no record carries a usable date.
type Period struct {
	Start *string `json:"inicio"`
	End   *string `json:"fin"`
}
