package models

import "errors"

// Closed enumerations for everything the engine persists. Unknown values
// are rejected at the boundary before they can reach storage.

const (
	KindEarning      = "earning"
	KindBonus        = "bonus"
	KindWithdrawal   = "withdrawal"
	KindDeposit      = "deposit"
	KindLevelUpgrade = "level_upgrade"
	KindAdjustment   = "adjustment"
)

const (
	TxPending    = "pending"
	TxProcessing = "processing"
	TxHold       = "hold"
	TxCompleted  = "completed"
	TxFailed     = "failed"
)

const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

const (
	UpgradePending  = "pending"
	UpgradeVerified = "verified"
	UpgradeRejected = "rejected"
)

const (
	UserActive    = "active"
	UserSuspended = "suspended"
)

var (
	ErrUnknownKind   = errors.New("unknown transaction kind")
	ErrUnknownStatus = errors.New("unknown status")
	ErrUnknownReason = errors.New("unknown rejection reason")
)

var kinds = map[string]struct{}{
	KindEarning:      {},
	KindBonus:        {},
	KindWithdrawal:   {},
	KindDeposit:      {},
	KindLevelUpgrade: {},
	KindAdjustment:   {},
}

var txStatuses = map[string]struct{}{
	TxPending:    {},
	TxProcessing: {},
	TxHold:       {},
	TxCompleted:  {},
	TxFailed:     {},
}

// Withdrawal rejections must cite one of these.
var rejectReasons = map[string]struct{}{
	"invalid_address":   {},
	"suspected_fraud":   {},
	"limit_exceeded":    {},
	"duplicate_request": {},
	"user_request":      {},
	"other":             {},
}

func ValidKind(kind string) error {
	if _, ok := kinds[kind]; !ok {
		return ErrUnknownKind
	}
	return nil
}

func ValidTxStatus(status string) error {
	if _, ok := txStatuses[status]; !ok {
		return ErrUnknownStatus
	}
	return nil
}

func ValidRejectReason(reason string) error {
	if _, ok := rejectReasons[reason]; !ok {
		return ErrUnknownReason
	}
	return nil
}

// TerminalTxStatus reports whether no further transition is permitted.
func TerminalTxStatus(status string) bool {
	return status == TxCompleted || status == TxFailed
}
