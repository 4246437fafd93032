package services

import (
	"context"
	"log"
)

// Notifier delivers user-facing events (submission approved, withdrawal
// paid, and so on). Delivery is best effort: callers log failures and move
// on, an approval never fails because an email could not be sent.
type Notifier interface {
	Notify(ctx context.Context, userID, event string, payload map[string]string) error
}

type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, userID, event string, payload map[string]string) error {
	log.Printf("notify user=%s event=%s payload=%v", userID, event, payload)
	return nil
}

func notify(n Notifier, ctx context.Context, userID, event string, payload map[string]string) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, userID, event, payload); err != nil {
		log.Printf("notification %s for user %s failed: %v", event, userID, err)
	}
}
