package services

import (
	"context"
	"fmt"

	"taskrewards/internal/models"
	"taskrewards/internal/money"
	"taskrewards/internal/store"
)

type ReferralStore interface {
	InsertEdge(ctx context.Context, tx store.Execer, referrerID, referredID string, depth int) error
	Ancestors(ctx context.Context, userID string, maxDepth int) ([]models.ReferralEdge, error)
}

// ReferralService cascades a cut of each earning up the referral chain.
// Depth and percentages are configurable; the observed production values
// (depth 3, 10/5/2 percent) are the defaults.
type ReferralService struct {
	referrals ReferralStore
	txStore   TransactionStore
	wallets   *WalletService
	maxDepth  int
	cuts      []int64 // basis points, index 0 = depth 1
}

func NewReferralService(referrals ReferralStore, txStore TransactionStore, wallets *WalletService, maxDepth int, cuts []int64) *ReferralService {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	if len(cuts) == 0 {
		cuts = []int64{1000, 500, 200}
	}
	return &ReferralService{
		referrals: referrals,
		txStore:   txStore,
		wallets:   wallets,
		maxDepth:  maxDepth,
		cuts:      cuts,
	}
}

const referralReference = "referral_bonus"

// PropagateInTx credits referral bonuses for a completed earning, inside
// the same database transaction that produced it. Propagation is keyed by
// the source transaction id so it can never run twice for the same
// earning; non-earning and non-completed sources are ignored.
func (s *ReferralService) PropagateInTx(ctx context.Context, tx store.Tx, sourceTxID, earnerID string, amountMinor int64, kind, status string) error {
	if kind != models.KindEarning || status != models.TxCompleted || amountMinor <= 0 {
		return nil
	}
	done, err := s.txStore.ExistsByReference(ctx, referralReference, depthReference(sourceTxID, 1))
	if err != nil {
		return err
	}
	if done {
		return nil
	}
	ancestors, err := s.referrals.Ancestors(ctx, earnerID, s.maxDepth)
	if err != nil {
		return err
	}
	for _, edge := range ancestors {
		if edge.Depth < 1 || edge.Depth > len(s.cuts) {
			continue
		}
		bonus := money.PercentOf(amountMinor, s.cuts[edge.Depth-1])
		if bonus <= 0 {
			continue
		}
		if _, _, err := s.wallets.adjustInTx(ctx, tx, AdjustRequest{
			ActorID:       "system",
			UserID:        edge.ReferrerID,
			AmountMinor:   bonus,
			Direction:     DirectionAdd,
			Kind:          models.KindBonus,
			Category:      "referral",
			Note:          fmt.Sprintf("referral bonus depth %d", edge.Depth),
			ReferenceType: stringPtr(referralReference),
			ReferenceID:   stringPtr(depthReference(sourceTxID, edge.Depth)),
		}); err != nil {
			return err
		}
	}
	return nil
}

// LinkReferralChain records edges from a new user up to their inviter's
// ancestors, capped at the configured depth.
func (s *ReferralService) LinkReferralChain(ctx context.Context, tx store.Tx, newUserID, inviterID string) error {
	if err := s.referrals.InsertEdge(ctx, tx, inviterID, newUserID, 1); err != nil {
		return err
	}
	ancestors, err := s.referrals.Ancestors(ctx, inviterID, s.maxDepth-1)
	if err != nil {
		return err
	}
	for _, edge := range ancestors {
		depth := edge.Depth + 1
		if depth > s.maxDepth {
			continue
		}
		if err := s.referrals.InsertEdge(ctx, tx, edge.ReferrerID, newUserID, depth); err != nil {
			return err
		}
	}
	return nil
}

func depthReference(sourceTxID string, depth int) string {
	return fmt.Sprintf("%s:%d", sourceTxID, depth)
}
