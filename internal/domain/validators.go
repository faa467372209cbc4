package domain

import (
	"fmt"
	"regexp"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateCurrency checks if a currency code is ISO 4217.
func ValidateCurrency(currency string) error {
	if !currencyRegex.MatchString(currency) {
		return fmt.Errorf("invalid currency code: %s", currency)
	}
	return nil
}

// ValidateNonNegativeAmount checks that a monetary amount (in cents) is not negative.
func ValidateNonNegativeAmount(field string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%s must not be negative, got %d", field, amount)
	}
	return nil
}

// ValidatePayment checks the data-source contract the metrics engine relies on.
func ValidatePayment(p Payment) error {
	if err := ValidateNonNegativeAmount("amount", p.Amount); err != nil {
		return err
	}
	if err := ValidateNonNegativeAmount("commission_amount", p.CommissionAmount); err != nil {
		return err
	}
	if !p.Status.Valid() {
		return fmt.Errorf("unknown payment status: %q", p.Status)
	}
	return ValidateCurrency(p.Currency)
}
