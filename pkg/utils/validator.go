package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Sentinel validation errors, compared with errors.Is by callers that only
// care about the failure category.
var (
	ErrInvalidAsset    = fmt.Errorf("invalid asset symbol")
	ErrInvalidQuantity = fmt.Errorf("invalid quantity")
	ErrInvalidPrice    = fmt.Errorf("invalid price")
	ErrInvalidEmail    = fmt.Errorf("invalid email")
	ErrInvalidURL      = fmt.Errorf("invalid webhook url")
)

var assetPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{2,32}$`)

// ValidateAsset checks the asset symbol format used throughout the matching
// engine (order.Asset, ConfirmationKey.Asset, negotiation state keys).
func ValidateAsset(asset string) error {
	if !assetPattern.MatchString(asset) {
		return fmt.Errorf("%w: %q must be 2-32 chars of letters, digits, '_' or '-'", ErrInvalidAsset, asset)
	}
	return nil
}

// NormalizeAsset upper-cases an asset symbol, the canonical form stored and
// compared against.
func NormalizeAsset(asset string) string {
	return strings.ToUpper(strings.TrimSpace(asset))
}

// ValidateQuantity checks a lot-count amount (Order.OriginalAmount/Remaining,
// Trade.Amount): must be a positive, whole number of lots within a sane
// ceiling.
func ValidateQuantity(qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: %d must be > 0", ErrInvalidQuantity, qty)
	}
	if qty > 1_000_000_000 {
		return fmt.Errorf("%w: %d exceeds maximum lot count", ErrInvalidQuantity, qty)
	}
	return nil
}

// ValidatePrice checks a monetary price: must be positive and expressible
// with at most 2 decimal places, matching the engine's fixed-point
// convention (spec §3).
func ValidatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return fmt.Errorf("%w: %s must be > 0", ErrInvalidPrice, price.String())
	}
	if !price.Equal(price.Round(2)) {
		return fmt.Errorf("%w: %s has more than 2 decimal places", ErrInvalidPrice, price.String())
	}
	return nil
}

// ValidateSpreadPct checks a percentage value in [0, 100], used for the
// competitive-bidding advisory threshold (spec §4.7).
func ValidateSpreadPct(pct float64) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("spread percentage %v must be within [0, 100]", pct)
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail checks a basic RFC-5322-ish email shape; good enough to
// reject obviously malformed addresses, not a full grammar.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) || strings.Contains(email, "@@") {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}

// ValidateWebhookURL checks the secondary-channel address is an absolute
// http(s) URL, since internal/notify.WebhookChannel posts directly to it.
func ValidateWebhookURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q must use http or https", ErrInvalidURL, raw)
	}
	return nil
}

// OrderSubmission bundles the fields a new-order intake surface would
// validate together before handing the order to the store (spec §1 treats
// order creation as out of scope for the engine itself, but any intake
// surface built on top of it needs this).
type OrderSubmission struct {
	Asset    string
	Side     string
	Price    decimal.Decimal
	Quantity int64
}

// ValidateOrderSubmission runs every per-field check and additionally
// rejects an unrecognized Side.
func ValidateOrderSubmission(o OrderSubmission) error {
	if err := ValidateAsset(o.Asset); err != nil {
		return err
	}
	if o.Side != "BID" && o.Side != "OFFER" {
		return fmt.Errorf("side must be BID or OFFER, got %q", o.Side)
	}
	if err := ValidatePrice(o.Price); err != nil {
		return err
	}
	if err := ValidateQuantity(o.Quantity); err != nil {
		return err
	}
	return nil
}

// ValidationErrors accumulates multiple field errors so a caller can report
// every problem in a submission at once instead of stopping at the first.
type ValidationErrors []ValidationError

// ValidationError is one field's failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Add appends a field/message pair unconditionally.
func (errs *ValidationErrors) Add(field, message string) {
	*errs = append(*errs, ValidationError{Field: field, Message: message})
}

// AddError appends err's message under field, doing nothing if err is nil.
func (errs *ValidationErrors) AddError(field string, err error) {
	if err == nil {
		return
	}
	*errs = append(*errs, ValidationError{Field: field, Message: err.Error()})
}

// HasErrors reports whether any error has been accumulated.
func (errs ValidationErrors) HasErrors() bool {
	return len(errs) > 0
}

// Error renders every accumulated error, semicolon-joined.
func (errs ValidationErrors) Error() string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// IsValidAsset reports validity without exposing the error detail.
func IsValidAsset(asset string) bool { return ValidateAsset(asset) == nil }

// IsValidEmail reports validity without exposing the error detail.
func IsValidEmail(email string) bool { return ValidateEmail(email) == nil }

// IsValidWebhookURL reports validity without exposing the error detail.
func IsValidWebhookURL(raw string) bool { return ValidateWebhookURL(raw) == nil }
