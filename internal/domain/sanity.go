package domain

import (
	"fmt"
	"math"
)

// Violation describes a balance record that failed a sanity check.
type Violation struct {
	Key     string
	Message string
}

func (v Violation) String() string {
	return v.Key + ": " + v.Message
}

// CheckConsistency flags records whose computed discharge depth differs from
// the supplied specific discharge by more than tol mm.
func CheckConsistency(records []BalanceRecord, tol float64) []Violation {
	var out []Violation
	for _, r := range records {
		if math.Abs(r.Diff) > tol {
			out = append(out, Violation{
				Key:     r.Key(),
				Message: fmt.Sprintf("discharge_spec %.2f mm vs computed %.2f mm (diff %.3f > %.3f)", r.DischargeSpec, r.DischargeComputed, r.Diff, tol),
			})
		}
	}
	return out
}

// CheckNonNegative flags records with negative precipitation or discharge sums.
func CheckNonNegative(records []BalanceRecord) []Violation {
	var out []Violation
	for _, r := range records {
		if r.Precipitation < 0 {
			out = append(out, Violation{Key: r.Key(), Message: fmt.Sprintf("negative precipitation %.2f mm", r.Precipitation)})
		}
		if r.DischargeComputed < 0 {
			out = append(out, Violation{Key: r.Key(), Message: fmt.Sprintf("negative discharge %.2f mm", r.DischargeComputed)})
		}
	}
	return out
}

// CheckRunoffRatio returns an error when ratio falls outside [lo, hi].
func CheckRunoffRatio(ratio, lo, hi float64) error {
	if math.IsNaN(ratio) || ratio < lo || ratio > hi {
		return fmt.Errorf("runoff ratio %.3f outside [%.2f, %.2f]", ratio, lo, hi)
	}
	return nil
}
