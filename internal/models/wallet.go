package models

import "time"

type AddCreditsRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type WalletBalanceResponse struct {
	UserID  string `json:"userId"`
	Balance int64  `json:"balance"`
}

type TransactionHistoryResponse struct {
	UserID       string                `json:"userId"`
	Transactions []CreditTransactionTO `json:"transactions"`
}

type CreditTransactionTO struct {
	ID        string     `json:"id"`
	Operation string     `json:"operation"`
	Direction string     `json:"direction"`
	Amount    int64      `json:"amount"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	SettledAt *time.Time `json:"settledAt,omitempty"`
}

// Database models
type Wallet struct {
	UserID    string    `db:"user_id"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type CreditTransaction struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Operation string     `db:"operation"`
	Direction string     `db:"direction"`
	Amount    int64      `db:"amount"`
	Status    string     `db:"status"` // PENDING, SETTLED, FAILED
	CreatedAt time.Time  `db:"created_at"`
	SettledAt *time.Time `db:"settled_at"`
	Error     *string    `db:"error"`
}

type WeeklyUsage struct {
	UserID       string    `db:"user_id"`
	WeekStart    time.Time `db:"week_start"`
	CreditsSpent int64     `db:"credits_spent"`
	CreditsAdded int64     `db:"credits_added"`
	Operations   int64     `db:"operations"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// UsageEvent is published to Kafka after every settled-at-source wallet
// mutation and consumed by the settlement worker.
type UsageEvent struct {
	EntryID   string `json:"entry_id"`
	UserID    string `json:"user_id"`
	Operation string `json:"operation"`
	Direction string `json:"direction"`
	Amount    int64  `json:"amount"`
}

// Direction constants
const (
	DirectionDebit  = "DEBIT"
	DirectionCredit = "CREDIT"
)

// Ledger entry status constants
const (
	EntryStatusPending = "PENDING"
	EntryStatusSettled = "SETTLED"
	EntryStatusFailed  = "FAILED"
)

// Operation kind constants
const (
	OperationDiagnosis      = "diagnosis"
	OperationAdvancedPlan   = "advanced_plan"
	OperationWeeklyAnalysis = "weekly_analysis"
	OperationAdCreative     = "ad_creative"
	OperationChatTurn       = "chat_turn"
	OperationSectionDetail  = "section_detail"
	OperationTopUp          = "top_up"
	OperationRefund         = "refund"
)
