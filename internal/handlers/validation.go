package handlers

import (
	"errors"
	"strconv"

	"taskrewards/internal/money"
)

var errInvalidAmount = errors.New("invalid amount")

// parseAmountMinor accepts decimal-string amounts ("12.50") and rejects
// anything non-positive before a service ever sees it.
func parseAmountMinor(raw string) (int64, error) {
	amount, err := money.ParseMinor(raw)
	if err != nil || amount <= 0 {
		return 0, errInvalidAmount
	}
	return amount, nil
}

func atoiPositive(raw string) (int, error) {
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0, errInvalidAmount
	}
	return parsed, nil
}
