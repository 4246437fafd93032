package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"taskrewards/internal/config"
	"taskrewards/internal/models"
	"taskrewards/internal/store"
)

// Valid sample addresses per network grammar.
const (
	trc20Addr = "TJRabPrwbZy45sbavfcjinPJC18kjpRTv8"
	erc20Addr = "0x52908400098527886E0F7030069857D2E4169EE7"
	solAddr   = "4Nd1mY6h6sVkqzeZvZvRxJrzzzsV1kLaBswdGVpW1Wt"
)

func testLimits() config.Config {
	return config.Config{
		TierLimits: map[int]config.TierLimit{
			0: {MinWithdrawal: 500, MaxWithdrawal: 10000, DailyCap: 10000, MonthlyCap: 50000, AnnualCap: 200000},
		},
	}
}

func newWithdrawalService(cfg config.Config, users stubUserStore, wallets stubWalletStore, txStore stubTransactionStore) *WithdrawalService {
	walletSvc := NewWalletService(fakeTxRunner{}, wallets, txStore, &recordingAudit{}, &stubHub{})
	return NewWithdrawalService(fakeTxRunner{}, cfg, users, walletSvc, txStore, &recordingAudit{}, &stubNotifier{})
}

func oldAccount() stubUserStore {
	return stubUserStore{
		getByIDFn: func(_ context.Context, userID string) (models.User, error) {
			return models.User{ID: userID, Tier: 0, CreatedAt: time.Now().Add(-90 * 24 * time.Hour)}, nil
		},
	}
}

func TestRequestUnknownNetwork(t *testing.T) {
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{}, stubTransactionStore{})
	_, err := service.Request(context.Background(), WithdrawalRequest{
		UserID: "user-1", AmountMinor: 1000, Network: "BTC", Destination: trc20Addr,
	})
	if err != ErrUnknownNetwork {
		t.Fatalf("expected ErrUnknownNetwork, got %v", err)
	}
}

func TestRequestAddressGrammarPerNetwork(t *testing.T) {
	cases := []struct {
		network string
		good    string
		bad     string
	}{
		{"TRC20", trc20Addr, erc20Addr},
		{"ERC20", erc20Addr, trc20Addr},
		{"SOL", solAddr, "0xshort"},
	}
	for _, tc := range cases {
		network, ok := LookupNetwork(tc.network)
		if !ok {
			t.Fatalf("network %s should exist", tc.network)
		}
		if !network.pattern.MatchString(tc.good) {
			t.Errorf("%s should accept %s", tc.network, tc.good)
		}
		if network.pattern.MatchString(tc.bad) {
			t.Errorf("%s should reject %s", tc.network, tc.bad)
		}
	}
}

func TestRequestInvalidAddress(t *testing.T) {
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{}, stubTransactionStore{})
	_, err := service.Request(context.Background(), WithdrawalRequest{
		UserID: "user-1", AmountMinor: 1000, Network: "TRC20", Destination: "not-an-address",
	})
	if err != ErrInvalidAddress {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestRequestBelowMinimum(t *testing.T) {
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{}, stubTransactionStore{})
	_, err := service.Request(context.Background(), WithdrawalRequest{
		UserID: "user-1", AmountMinor: 499, Network: "TRC20", Destination: trc20Addr,
	})
	if err != ErrBelowMinimum {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}
}

func TestRequestAboveMaximum(t *testing.T) {
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{}, stubTransactionStore{})
	_, err := service.Request(context.Background(), WithdrawalRequest{
		UserID: "user-1", AmountMinor: 10001, Network: "TRC20", Destination: trc20Addr,
	})
	if err != ErrAboveMaximum {
		t.Fatalf("expected ErrAboveMaximum, got %v", err)
	}
}

func TestRequestRollingCapExceeded(t *testing.T) {
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{}, stubTransactionStore{
		sumWithdrawalsFn: func(context.Context, string, time.Time) (int64, error) {
			return 9500, nil
		},
	})
	_, err := service.Request(context.Background(), WithdrawalRequest{
		UserID: "user-1", AmountMinor: 1000, Network: "TRC20", Destination: trc20Addr,
	})
	if err != ErrLimitExceeded {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
}

func TestRequestInsufficientFunds(t *testing.T) {
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (models.Wallet, error) {
			return models.Wallet{UserID: "user-1", AvailableBalance: 900}, nil
		},
	}, stubTransactionStore{})
	_, err := service.Request(context.Background(), WithdrawalRequest{
		UserID: "user-1", AmountMinor: 1000, Network: "TRC20", Destination: trc20Addr,
	})
	if err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestRequestCreatesPendingWithoutDebit(t *testing.T) {
	var created store.TransactionInput
	var updated []int64
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (models.Wallet, error) {
			return models.Wallet{UserID: "user-1", AvailableBalance: 20000, LifetimeEarned: 100000}, nil
		},
		updateBalancesFn: func(_ context.Context, _ store.Execer, _ string, available, pending, lifetime int64) error {
			updated = []int64{available, pending, lifetime}
			return nil
		},
	}, stubTransactionStore{
		createFn: func(_ context.Context, _ store.Execer, input store.TransactionInput) error {
			created = input
			return nil
		},
		pendingTotalFn: func(context.Context, store.Getter, string) (int64, error) {
			return 10000, nil
		},
	})

	_, err := service.Request(context.Background(), WithdrawalRequest{
		UserID: "user-1", AmountMinor: 10000, Network: "TRC20", Destination: trc20Addr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Amount != -10000 || created.Status != models.TxPending || created.Fee != 100 {
		t.Fatalf("unexpected transaction: %#v", created)
	}
	if created.Network == nil || *created.Network != "TRC20" {
		t.Fatalf("expected network TRC20, got %#v", created.Network)
	}
	// available untouched, pending mirrors the open request total
	if updated[0] != 20000 || updated[1] != 10000 {
		t.Fatalf("unexpected balances: %#v", updated)
	}
}

func TestRequestFlagsYoungAccounts(t *testing.T) {
	var created store.TransactionInput
	young := stubUserStore{
		getByIDFn: func(_ context.Context, userID string) (models.User, error) {
			return models.User{ID: userID, Tier: 0, CreatedAt: time.Now().Add(-24 * time.Hour)}, nil
		},
	}
	service := newWithdrawalService(testLimits(), young, stubWalletStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (models.Wallet, error) {
			return models.Wallet{UserID: "user-1", AvailableBalance: 20000}, nil
		},
	}, stubTransactionStore{
		createFn: func(_ context.Context, _ store.Execer, input store.TransactionInput) error {
			created = input
			return nil
		},
	})
	_, err := service.Request(context.Background(), WithdrawalRequest{
		UserID: "user-1", AmountMinor: 1000, Network: "TRC20", Destination: trc20Addr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created.RiskFlagged {
		t.Fatalf("expected risk flag on a week-old account")
	}
}

func pendingWithdrawal(status string) stubTransactionStore {
	return stubTransactionStore{
		getByIDFn: func(_ context.Context, id string) (models.Transaction, error) {
			return models.Transaction{
				ID: id, UserID: "user-1", Kind: models.KindWithdrawal,
				Amount: -10000, Fee: 100, Status: status,
			}, nil
		},
	}
}

func TestProcessMovesToProcessing(t *testing.T) {
	txStore := pendingWithdrawal(models.TxPending)
	var from, to string
	txStore.transitionFn = func(_ context.Context, _ store.Execer, _, fromStatus, toStatus, _ string) (int64, error) {
		from, to = fromStatus, toStatus
		return 1, nil
	}
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{}, txStore)
	_, err := service.Process(context.Background(), "admin-1", "tx-1", ActionProcess, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if from != models.TxPending || to != models.TxProcessing {
		t.Fatalf("unexpected transition %s -> %s", from, to)
	}
}

func TestProcessHoldAndRelease(t *testing.T) {
	txStore := pendingWithdrawal(models.TxPending)
	var transitions [][2]string
	txStore.transitionFn = func(_ context.Context, _ store.Execer, _, fromStatus, toStatus, _ string) (int64, error) {
		transitions = append(transitions, [2]string{fromStatus, toStatus})
		return 1, nil
	}
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{}, txStore)
	if _, err := service.Process(context.Background(), "admin-1", "tx-1", ActionHold, ""); err != nil {
		t.Fatalf("hold failed: %v", err)
	}

	txStore = pendingWithdrawal(models.TxHold)
	txStore.transitionFn = func(_ context.Context, _ store.Execer, _, fromStatus, toStatus, _ string) (int64, error) {
		transitions = append(transitions, [2]string{fromStatus, toStatus})
		return 1, nil
	}
	service = newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{}, txStore)
	if _, err := service.Process(context.Background(), "admin-1", "tx-1", ActionRelease, ""); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	want := [][2]string{{models.TxPending, models.TxHold}, {models.TxHold, models.TxPending}}
	for i, transition := range want {
		if transitions[i] != transition {
			t.Fatalf("unexpected transitions: %#v", transitions)
		}
	}
}

func TestProcessWrongStateTransition(t *testing.T) {
	txStore := pendingWithdrawal(models.TxProcessing)
	txStore.transitionFn = func(context.Context, store.Execer, string, string, string, string) (int64, error) {
		return 0, nil
	}
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{}, txStore)
	_, err := service.Process(context.Background(), "admin-1", "tx-1", ActionHold, "")
	if err != ErrWrongState {
		t.Fatalf("expected ErrWrongState, got %v", err)
	}
}

func TestApproveRequiresProof(t *testing.T) {
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{}, pendingWithdrawal(models.TxProcessing))
	_, err := service.Process(context.Background(), "admin-1", "tx-1", ActionApprove, "")
	if err != ErrMissingProof {
		t.Fatalf("expected ErrMissingProof, got %v", err)
	}
}

func TestApproveDebitsAndRecordsPayout(t *testing.T) {
	txStore := pendingWithdrawal(models.TxProcessing)
	var metadata string
	txStore.updateMetadataFn = func(_ context.Context, _ store.Execer, _, raw string) error {
		metadata = raw
		return nil
	}
	var updated []int64
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (models.Wallet, error) {
			return models.Wallet{UserID: "user-1", AvailableBalance: 25000, PendingBalance: 10000}, nil
		},
		updateBalancesFn: func(_ context.Context, _ store.Execer, _ string, available, pending, lifetime int64) error {
			updated = []int64{available, pending, lifetime}
			return nil
		},
	}, txStore)

	_, err := service.Process(context.Background(), "admin-1", "tx-1", ActionApprove, "chain-ref-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated[0] != 15000 || updated[1] != 0 {
		t.Fatalf("unexpected balances: %#v", updated)
	}
	var decoded map[string]string
	if err := json.Unmarshal([]byte(metadata), &decoded); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	// $100.00 request minus the $1.00 TRC20 fee
	if decoded["payout"] != "99.00" || decoded["proof"] != "chain-ref-1" {
		t.Fatalf("unexpected metadata: %#v", decoded)
	}
}

func TestApproveFromPendingIsRejected(t *testing.T) {
	txStore := pendingWithdrawal(models.TxPending)
	txStore.transitionFn = func(_ context.Context, _ store.Execer, _, fromStatus, _, _ string) (int64, error) {
		if fromStatus != models.TxProcessing {
			return 0, nil
		}
		return 1, nil
	}
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{}, txStore)
	_, err := service.Process(context.Background(), "admin-1", "tx-1", ActionApprove, "chain-ref-1")
	if err != ErrWrongState {
		t.Fatalf("expected ErrWrongState, got %v", err)
	}
}

func TestApproveInsufficientFundsRollsBack(t *testing.T) {
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (models.Wallet, error) {
			return models.Wallet{UserID: "user-1", AvailableBalance: 5000}, nil
		},
		updateBalancesFn: func(context.Context, store.Execer, string, int64, int64, int64) error {
			t.Fatalf("balance must not move when funds are short")
			return nil
		},
	}, pendingWithdrawal(models.TxProcessing))
	_, err := service.Process(context.Background(), "admin-1", "tx-1", ActionApprove, "chain-ref-1")
	if err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestRejectRequiresClosedReason(t *testing.T) {
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{}, pendingWithdrawal(models.TxPending))
	if _, err := service.Process(context.Background(), "admin-1", "tx-1", ActionReject, ""); err != ErrMissingReason {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}
	if _, err := service.Process(context.Background(), "admin-1", "tx-1", ActionReject, "felt wrong"); err != models.ErrUnknownReason {
		t.Fatalf("expected ErrUnknownReason, got %v", err)
	}
}

func TestRejectRestoresPendingLeavesBalance(t *testing.T) {
	var updated []int64
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (models.Wallet, error) {
			return models.Wallet{UserID: "user-1", AvailableBalance: 25000, PendingBalance: 10000}, nil
		},
		updateBalancesFn: func(_ context.Context, _ store.Execer, _ string, available, pending, lifetime int64) error {
			updated = []int64{available, pending, lifetime}
			return nil
		},
	}, pendingWithdrawal(models.TxPending))

	_, err := service.Process(context.Background(), "admin-1", "tx-1", ActionReject, "suspected_fraud")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated[0] != 25000 || updated[1] != 0 {
		t.Fatalf("rejection must keep the balance and clear the open amount: %#v", updated)
	}
}

func TestProcessTerminalState(t *testing.T) {
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{}, pendingWithdrawal(models.TxCompleted))
	_, err := service.Process(context.Background(), "admin-1", "tx-1", ActionReject, "other")
	if err != ErrAlreadyProcessed {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
}

func TestProcessNotAWithdrawal(t *testing.T) {
	txStore := stubTransactionStore{
		getByIDFn: func(_ context.Context, id string) (models.Transaction, error) {
			return models.Transaction{ID: id, Kind: models.KindDeposit, Status: models.TxPending}, nil
		},
	}
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{}, txStore)
	_, err := service.Process(context.Background(), "admin-1", "tx-1", ActionApprove, "ref")
	if err != ErrNotWithdrawal {
		t.Fatalf("expected ErrNotWithdrawal, got %v", err)
	}
}

func TestBulkProcessReportsPerItem(t *testing.T) {
	txStore := stubTransactionStore{
		getByIDFn: func(_ context.Context, id string) (models.Transaction, error) {
			status := models.TxPending
			if id == "tx-done" {
				status = models.TxCompleted
			}
			return models.Transaction{ID: id, UserID: "user-1", Kind: models.KindWithdrawal, Amount: -1000, Status: status}, nil
		},
	}
	service := newWithdrawalService(testLimits(), oldAccount(), stubWalletStore{}, txStore)
	results := service.BulkProcess(context.Background(), "admin-1", []string{"tx-1", "tx-done"}, ActionProcess, "")
	if len(results) != 2 || !results[0].OK || results[1].OK {
		t.Fatalf("unexpected results: %#v", results)
	}
}
