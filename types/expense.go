package types

import "time"

// SplitType determines how an expense total is divided among its members.
type SplitType string

const (
	SplitTypeEqual      SplitType = "equal"
	SplitTypePercentage SplitType = "percentage"
	SplitTypeCustom     SplitType = "custom"
	SplitTypeShares     SplitType = "shares"
)

// Valid reports whether s is a known split type.
func (s SplitType) Valid() bool {
	switch s {
	case SplitTypeEqual, SplitTypePercentage, SplitTypeCustom, SplitTypeShares:
		return true
	}
	return false
}

// Expense represents a shared expense within an expense group.
type Expense struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"groupId"`
	Name        string    `json:"name"`
	TotalAmount float64   `json:"totalAmount"`
	PaidBy      string    `json:"paidBy"`
	Category    string    `json:"category,omitempty"`
	SplitType   SplitType `json:"splitType"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ExpenseMember is one participant's share of an expense. SplitValue holds
// the raw input (percentage points, share count or fixed amount) depending on
// the parent expense's split type; it is nil for equal splits.
type ExpenseMember struct {
	ID         string   `json:"id"`
	ExpenseID  string   `json:"expenseId"`
	UserID     string   `json:"userId"`
	AmountOwed float64  `json:"amountOwed"`
	SplitValue *float64 `json:"splitValue,omitempty"`
	IsSettled  bool     `json:"isSettled"`
}

// ExpenseWithMembers bundles an expense with its member rows.
type ExpenseWithMembers struct {
	Expense Expense         `json:"expense"`
	Members []ExpenseMember `json:"members"`
}

// MemberSplitInput is the caller-supplied split for one participant.
type MemberSplitInput struct {
	UserID     string   `json:"userId" binding:"required"`
	SplitValue *float64 `json:"splitValue,omitempty"`
}

// CreateExpenseRequest is the payload for creating an expense with its splits.
type CreateExpenseRequest struct {
	Name      string             `json:"name" binding:"required"`
	Amount    float64            `json:"amount" binding:"required"`
	PaidBy    string             `json:"paidBy" binding:"required"`
	Category  string             `json:"category,omitempty"`
	SplitType SplitType          `json:"splitType" binding:"required"`
	Members   []MemberSplitInput `json:"members" binding:"required"`
}

// UpdateExpenseRequest carries optional field updates for an expense.
type UpdateExpenseRequest struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
}

// SettleMemberRequest toggles one member's settlement flag.
type SettleMemberRequest struct {
	IsSettled bool `json:"isSettled"`
}

// MemberBalance is one member's aggregate position within a group.
type MemberBalance struct {
	UserID     string  `json:"userId"`
	TotalPaid  float64 `json:"totalPaid"`
	TotalOwed  float64 `json:"totalOwed"`
	NetBalance float64 `json:"netBalance"`
}

// DebtEdge is one simplified debt between two group members.
type DebtEdge struct {
	FromUserID string  `json:"fromUserId"`
	ToUserID   string  `json:"toUserId"`
	Amount     float64 `json:"amount"`
}

// GroupBalanceReport is the balance view returned for an expense group.
type GroupBalanceReport struct {
	GroupID  string          `json:"groupId"`
	Balances []MemberBalance `json:"balances"`
	Debts    []DebtEdge      `json:"debts"`
}
