// Package split computes per-member owed amounts for a shared expense.
// It is a pure calculation layer; persistence and authorization live in the
// service and store layers.
package split

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/splitz-app/splitz-backend/types"
)

// Tolerance is the maximum allowed absolute difference between the sum of
// member amounts and the expense total, in currency units.
var Tolerance = decimal.NewFromFloat(0.01)

var hundred = decimal.NewFromInt(100)

// Member is one split participant with an optional raw split value whose
// meaning depends on the split type.
type Member struct {
	UserID     string
	SplitValue *float64
}

// Result is the computed owed amount for one member. Amounts are kept
// unrounded so the validity check sees exactly what was computed; rounding to
// cents happens at presentation.
type Result struct {
	UserID     string
	AmountOwed float64
}

// Calculate produces per-member owed amounts for the given total and mode.
//
//	equal:      total / count for every member, split values ignored
//	percentage: total * value / 100
//	custom:     value taken as an absolute amount
//	shares:     total * value / sum(values); all zero when the sum is zero
//
// Missing split values default to 0 for non-equal modes. Calculate does not
// enforce the sum tolerance; call Validate with the returned results before
// persisting.
func Calculate(totalAmount float64, splitType types.SplitType, members []Member) ([]Result, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("split requires at least one member")
	}
	if !splitType.Valid() {
		return nil, fmt.Errorf("unknown split type %q", splitType)
	}

	total := decimal.NewFromFloat(totalAmount)
	results := make([]Result, len(members))

	switch splitType {
	case types.SplitTypeEqual:
		each := total.Div(decimal.NewFromInt(int64(len(members))))
		for i, m := range members {
			results[i] = Result{UserID: m.UserID, AmountOwed: toFloat(each)}
		}

	case types.SplitTypePercentage:
		for i, m := range members {
			pct := decimal.NewFromFloat(value(m))
			amount := total.Mul(pct).Div(hundred)
			results[i] = Result{UserID: m.UserID, AmountOwed: toFloat(amount)}
		}

	case types.SplitTypeCustom:
		for i, m := range members {
			results[i] = Result{UserID: m.UserID, AmountOwed: toFloat(decimal.NewFromFloat(value(m)))}
		}

	case types.SplitTypeShares:
		sum := decimal.Zero
		for _, m := range members {
			sum = sum.Add(decimal.NewFromFloat(value(m)))
		}
		if sum.IsZero() {
			// Zero total shares yields all-zero amounts rather than an error.
			for i, m := range members {
				results[i] = Result{UserID: m.UserID, AmountOwed: 0}
			}
			break
		}
		for i, m := range members {
			shares := decimal.NewFromFloat(value(m))
			amount := total.Mul(shares).Div(sum)
			results[i] = Result{UserID: m.UserID, AmountOwed: toFloat(amount)}
		}
	}

	return results, nil
}

// Validate checks that the computed amounts sum to the expense total within
// Tolerance. Shares splits whose values all summed to zero are exempt: they
// legitimately produce all-zero amounts.
func Validate(totalAmount float64, splitType types.SplitType, results []Result) error {
	if splitType == types.SplitTypeShares && allZero(results) {
		return nil
	}

	sum := decimal.Zero
	for _, r := range results {
		sum = sum.Add(decimal.NewFromFloat(r.AmountOwed))
	}

	total := decimal.NewFromFloat(totalAmount)
	diff := sum.Sub(total).Abs()
	if diff.GreaterThan(Tolerance) {
		return fmt.Errorf("split amounts sum to %s but expense total is %s",
			sum.StringFixed(2), total.StringFixed(2))
	}
	return nil
}

// DefaultValues returns per-member split value defaults for a mode, matching
// how a client initializes a new split: 100/count percent each, total/count
// currency each, or one share each. Equal mode needs no values and returns nil.
func DefaultValues(totalAmount float64, splitType types.SplitType, memberCount int) []float64 {
	if memberCount == 0 || splitType == types.SplitTypeEqual {
		return nil
	}

	values := make([]float64, memberCount)
	count := decimal.NewFromInt(int64(memberCount))
	switch splitType {
	case types.SplitTypePercentage:
		each, _ := hundred.Div(count).Float64()
		for i := range values {
			values[i] = each
		}
	case types.SplitTypeCustom:
		each, _ := decimal.NewFromFloat(totalAmount).Div(count).Float64()
		for i := range values {
			values[i] = each
		}
	case types.SplitTypeShares:
		for i := range values {
			values[i] = 1
		}
	}
	return values
}

func value(m Member) float64 {
	if m.SplitValue == nil {
		return 0
	}
	return *m.SplitValue
}

func allZero(results []Result) bool {
	for _, r := range results {
		if r.AmountOwed != 0 {
			return false
		}
	}
	return true
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// RoundCents rounds an amount to two decimal places for display and storage.
func RoundCents(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return f
}
