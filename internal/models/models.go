package models

import "time"

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Tier         int       `db:"tier" json:"tier"`
	Status       string    `db:"status" json:"status"`
	ReferralCode string    `db:"referral_code" json:"referral_code"`
	ReferredBy   *string   `db:"referred_by" json:"referred_by,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Wallet struct {
	UserID           string    `db:"user_id" json:"user_id"`
	AvailableBalance int64     `db:"available_balance" json:"available_balance"`
	PendingBalance   int64     `db:"pending_balance" json:"pending_balance"`
	LifetimeEarned   int64     `db:"lifetime_earned" json:"lifetime_earned"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

type Transaction struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	Kind           string     `db:"kind" json:"kind"`
	Amount         int64      `db:"amount" json:"amount"`
	Status         string     `db:"status" json:"status"`
	Category       string     `db:"category" json:"category"`
	ReferenceType  *string    `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID    *string    `db:"reference_id" json:"reference_id,omitempty"`
	Network        *string    `db:"network" json:"network,omitempty"`
	Destination    *string    `db:"destination" json:"destination,omitempty"`
	Fee            int64      `db:"fee" json:"fee"`
	ConversionRate *string    `db:"conversion_rate" json:"conversion_rate,omitempty"`
	RiskFlagged    bool       `db:"risk_flagged" json:"risk_flagged"`
	Metadata       string     `db:"metadata" json:"metadata"`
	ProcessedBy    *string    `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedAt    *time.Time `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// RewardAmount is the real value snapshotted at submission time. It is
// never serialized to API responses; users only ever see display rewards.
type TaskSubmission struct {
	ID           string     `db:"id" json:"id"`
	TaskID       string     `db:"task_id" json:"task_id"`
	UserID       string     `db:"user_id" json:"user_id"`
	RewardAmount int64      `db:"reward_amount" json:"-"`
	Status       string     `db:"status" json:"status"`
	ReviewedBy   *string    `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	Notes        string     `db:"notes" json:"notes"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

type Offer struct {
	ID        string    `db:"id" json:"id"`
	TaskID    string    `db:"task_id" json:"task_id"`
	Title     string    `db:"title" json:"title"`
	RealValue int64     `db:"real_value" json:"-"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type LevelPlan struct {
	Level int    `db:"level" json:"level"`
	Name  string `db:"name" json:"name"`
	Price int64  `db:"price" json:"price"`
}

type LevelUpgradeRequest struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	FromLevel      int        `db:"from_level" json:"from_level"`
	ToLevel        int        `db:"to_level" json:"to_level"`
	Price          int64      `db:"price" json:"price"`
	PaymentProof   string     `db:"payment_proof" json:"payment_proof"`
	PaymentAddress string     `db:"payment_address" json:"payment_address"`
	Status         string     `db:"status" json:"status"`
	ReviewedBy     *string    `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	Notes          string     `db:"notes" json:"notes"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

type ReferralEdge struct {
	ReferrerID string    `db:"referrer_id" json:"referrer_id"`
	ReferredID string    `db:"referred_id" json:"referred_id"`
	Depth      int       `db:"depth" json:"depth"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
