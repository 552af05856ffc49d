package admin

import (
	"encoding/json"
	"strings"

	"github.com/fleetora/admin-gateway/internal"
)

const (
	maxDepositComment  = 500
	maxDepositDecimals = 8
	maxDepositWhole    = "1000000"
)

// DepositDTO is the one admin payload the gateway validates itself rather
// than passing through opaquely: a bad deposit is cheaper to reject here
// than to round-trip.
type DepositDTO struct {
	UserID  int64       `json:"user_id"`
	Amount  json.Number `json:"amount"`
	Comment string      `json:"comment,omitempty"`
}

func (d DepositDTO) Validate() *internal.AppError {
	if d.UserID <= 0 {
		return internal.NewValidationError("user_id must be positive", internal.ErrCodeInvalidID)
	}
	if appErr := validateDepositAmount(d.Amount.String()); appErr != nil {
		return appErr
	}
	if len(d.Comment) > maxDepositComment {
		return internal.NewValidationError("comment must not exceed 500 characters", internal.ErrCodeCommentTooLong)
	}
	return nil
}

// validateDepositAmount checks the amount textually so decimal precision
// is judged on what the client actually sent, never on a float round-trip.
// Rules: strictly positive, at most 8 decimal digits, at most 1,000,000.
func validateDepositAmount(raw string) *internal.AppError {
	s := strings.TrimSpace(raw)
	if s == "" {
		return internal.NewValidationError("amount is required", internal.ErrCodeInvalidAmount)
	}
	if strings.HasPrefix(s, "-") {
		return internal.NewValidationError("amount must be positive", internal.ErrCodeInvalidAmount)
	}
	if strings.ContainsAny(s, "eE+") {
		return internal.NewValidationError("amount must be a plain decimal", internal.ErrCodeInvalidAmount)
	}

	whole, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		whole, frac = s[:dot], s[dot+1:]
	}
	if whole == "" || !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return internal.NewValidationError("amount must be a plain decimal", internal.ErrCodeInvalidAmount)
	}

	if len(frac) > maxDepositDecimals {
		return internal.NewValidationError("amount must have at most 8 decimal digits", internal.ErrCodeInvalidAmount)
	}

	if isZero(whole) && isZero(frac) {
		return internal.NewValidationError("amount must be positive", internal.ErrCodeInvalidAmount)
	}

	if exceedsWholeLimit(whole, frac) {
		return internal.NewValidationError("amount must not exceed 1,000,000", internal.ErrCodeAmountTooHigh)
	}

	return nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

func isZero(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' {
			return false
		}
	}
	return true
}

// exceedsWholeLimit reports whether whole.frac > 1,000,000.
func exceedsWholeLimit(whole, frac string) bool {
	trimmed := strings.TrimLeft(whole, "0")
	if trimmed == "" {
		return false
	}
	if len(trimmed) > len(maxDepositWhole) {
		return true
	}
	if len(trimmed) < len(maxDepositWhole) {
		return false
	}
	if trimmed > maxDepositWhole {
		return true
	}
	// exactly at the cap: any non-zero fraction tips it over
	return trimmed == maxDepositWhole && !isZero(frac)
}
