package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestUserCreateStartsAtTierZero(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "0, 'active'") {
				t.Fatalf("new users must start at tier 0, active: %s", query)
			}
			if args[0] != "user-1" || args[4] != "ABCD1234" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewUserStore(stubDB{})
	err := store.Create(ctx, execer, UserInput{
		ID: "user-1", Username: "worker1", Email: "worker1@example.com",
		PasswordHash: "hash", ReferralCode: "ABCD1234",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUserUpdateTier(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "UPDATE users SET tier") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != 2 || args[1] != "user-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewUserStore(stubDB{})
	if err := store.UpdateTier(ctx, execer, "user-1", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetByReferralCode(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(stubDB{
		getFn: func(_ context.Context, _ any, query string, args ...any) error {
			if !strings.Contains(query, "WHERE referral_code = $1") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != "ABCD1234" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	})
	if _, err := store.GetByReferralCode(ctx, "ABCD1234"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
