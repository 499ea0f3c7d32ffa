package split

import "github.com/splitz-app/splitz-backend/types"

// noise is the floor below which debt edges are dropped as rounding residue.
const noise = 0.01

// ExpenseForBalance carries the minimal expense data needed for balance
// aggregation. Settled member rows are excluded by the caller.
type ExpenseForBalance struct {
	PaidBy  string
	Members []types.ExpenseMember
}

// GroupBalances aggregates who paid what and who owes what across a group's
// expenses, returning per-member net balances and a simplified debt list.
//
// For each expense the payer is credited the sum of unsettled member amounts
// and each member owes their share. Debts are then reduced with a greedy
// debtor/creditor matching so members settle with as few transfers as
// possible.
func GroupBalances(expenses []ExpenseForBalance) ([]types.MemberBalance, []types.DebtEdge) {
	balances := make(map[string]*types.MemberBalance)

	ensure := func(userID string) *types.MemberBalance {
		if b, ok := balances[userID]; ok {
			return b
		}
		b := &types.MemberBalance{UserID: userID}
		balances[userID] = b
		return b
	}

	var order []string
	track := func(userID string) {
		if _, ok := balances[userID]; !ok {
			order = append(order, userID)
		}
		ensure(userID)
	}

	for _, e := range expenses {
		if e.PaidBy == "" {
			continue
		}
		track(e.PaidBy)
		for _, m := range e.Members {
			if m.IsSettled {
				continue
			}
			track(m.UserID)
			balances[m.UserID].TotalOwed += m.AmountOwed
			balances[e.PaidBy].TotalPaid += m.AmountOwed
		}
	}

	result := make([]types.MemberBalance, 0, len(order))
	for _, userID := range order {
		b := balances[userID]
		b.NetBalance = RoundCents(b.TotalPaid - b.TotalOwed)
		b.TotalPaid = RoundCents(b.TotalPaid)
		b.TotalOwed = RoundCents(b.TotalOwed)
		result = append(result, *b)
	}

	return result, simplifyDebts(result)
}

// simplifyDebts matches debtors against creditors greedily, emitting one edge
// per pairing until every balance is exhausted.
func simplifyDebts(balances []types.MemberBalance) []types.DebtEdge {
	var debtors, creditors []types.MemberBalance
	for _, b := range balances {
		if b.NetBalance < -noise {
			debtors = append(debtors, b)
		} else if b.NetBalance > noise {
			creditors = append(creditors, b)
		}
	}

	owed := make(map[string]float64, len(debtors))
	due := make(map[string]float64, len(creditors))
	for _, d := range debtors {
		owed[d.UserID] = -d.NetBalance
	}
	for _, c := range creditors {
		due[c.UserID] = c.NetBalance
	}

	var edges []types.DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].UserID
		creditor := creditors[j].UserID

		amount := owed[debtor]
		if due[creditor] < amount {
			amount = due[creditor]
		}

		if amount > noise {
			edges = append(edges, types.DebtEdge{
				FromUserID: debtor,
				ToUserID:   creditor,
				Amount:     RoundCents(amount),
			})
		}

		owed[debtor] -= amount
		due[creditor] -= amount

		if owed[debtor] < noise {
			i++
		}
		if due[creditor] < noise {
			j++
		}
	}

	return edges
}
