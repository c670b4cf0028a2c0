package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAsset(t *testing.T) {
	tests := []struct {
		name    string
		asset   string
		wantErr bool
	}{
		{"valid simple", "ACME", false},
		{"valid lowercase", "acme", false},
		{"valid with hyphen", "ACME-1", false},
		{"valid with underscore", "ACME_1", false},
		{"valid short", "XY", false},

		{"empty", "", true},
		{"single char", "B", true},
		{"too long", "ACMEACMEACMEACMEACMEACMEACMEACMEACME", true},
		{"special chars", "ACME@1", true},
		{"spaces", "ACM E", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAsset(tt.asset)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAsset(%q) error = %v, wantErr %v", tt.asset, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeAsset(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "acme", "ACME"},
		{"already normalized", "ACME", "ACME"},
		{"with surrounding spaces", "  acme  ", "ACME"},
		{"mixed case", "AcMe", "ACME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeAsset(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeAsset(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidateQuantity(t *testing.T) {
	tests := []struct {
		name    string
		qty     int64
		wantErr bool
	}{
		{"valid small", 1, false},
		{"valid normal", 100, false},
		{"valid large", 1_000_000, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"too large", 2_000_000_000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuantity(tt.qty)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateQuantity(%v) error = %v, wantErr %v", tt.qty, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePrice(t *testing.T) {
	tests := []struct {
		name    string
		price   string
		wantErr bool
	}{
		{"valid whole", "100", false},
		{"valid one decimal", "100.5", false},
		{"valid two decimals", "100.55", false},
		{"zero", "0", true},
		{"negative", "-1.00", true},
		{"three decimals", "100.555", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePrice(decimal.RequireFromString(tt.price))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePrice(%v) error = %v, wantErr %v", tt.price, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSpreadPct(t *testing.T) {
	tests := []struct {
		name    string
		pct     float64
		wantErr bool
	}{
		{"valid zero", 0, false},
		{"valid normal", 20.0, false},
		{"valid max", 100.0, false},
		{"negative", -1.0, true},
		{"too large", 101.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSpreadPct(tt.pct)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSpreadPct(%v) error = %v, wantErr %v", tt.pct, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid simple", "user@example.com", false},
		{"valid with subdomain", "user@mail.example.com", false},
		{"valid with plus", "user+tag@example.com", false},
		{"valid with dots", "first.last@example.com", false},
		{"empty", "", true},
		{"no at", "userexample.com", true},
		{"no domain", "user@", true},
		{"no user", "@example.com", true},
		{"double at", "user@@example.com", true},
		{"no tld", "user@example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWebhookURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https", "https://example.com/hook", false},
		{"valid http", "http://localhost:8080/hook", false},
		{"empty", "", true},
		{"no scheme", "example.com/hook", true},
		{"bad scheme", "ftp://example.com/hook", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWebhookURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWebhookURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOrderSubmission(t *testing.T) {
	tests := []struct {
		name    string
		order   OrderSubmission
		wantErr bool
	}{
		{
			name: "valid bid",
			order: OrderSubmission{
				Asset: "ACME", Side: "BID",
				Price: decimal.RequireFromString("100.00"), Quantity: 5,
			},
			wantErr: false,
		},
		{
			name: "invalid asset",
			order: OrderSubmission{
				Asset: "", Side: "BID",
				Price: decimal.RequireFromString("100.00"), Quantity: 5,
			},
			wantErr: true,
		},
		{
			name: "invalid side",
			order: OrderSubmission{
				Asset: "ACME", Side: "BUY",
				Price: decimal.RequireFromString("100.00"), Quantity: 5,
			},
			wantErr: true,
		},
		{
			name: "invalid price",
			order: OrderSubmission{
				Asset: "ACME", Side: "OFFER",
				Price: decimal.RequireFromString("-1.00"), Quantity: 5,
			},
			wantErr: true,
		},
		{
			name: "invalid quantity",
			order: OrderSubmission{
				Asset: "ACME", Side: "OFFER",
				Price: decimal.RequireFromString("100.00"), Quantity: 0,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrderSubmission(tt.order)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOrderSubmission() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors

	errs.Add("field1", "error1")
	errs.Add("field2", "error2")

	if !errs.HasErrors() {
		t.Error("ValidationErrors.HasErrors() = false, want true")
	}

	if errs.Error() == "" {
		t.Error("ValidationErrors.Error() should not be empty")
	}

	if len(errs) != 2 {
		t.Errorf("ValidationErrors length = %d, want 2", len(errs))
	}
}

func TestValidationErrorsAddError(t *testing.T) {
	var errs ValidationErrors

	errs.AddError("field1", nil)
	if errs.HasErrors() {
		t.Error("ValidationErrors.AddError(nil) should not add error")
	}

	errs.AddError("field2", ErrInvalidAsset)
	if !errs.HasErrors() {
		t.Error("ValidationErrors.AddError(err) should add error")
	}
}

func TestIsValidAsset(t *testing.T) {
	if !IsValidAsset("ACME") {
		t.Error("IsValidAsset(ACME) = false, want true")
	}
	if IsValidAsset("") {
		t.Error("IsValidAsset('') = true, want false")
	}
}

func TestIsValidEmail(t *testing.T) {
	if !IsValidEmail("user@example.com") {
		t.Error("IsValidEmail(user@example.com) = false, want true")
	}
	if IsValidEmail("invalid") {
		t.Error("IsValidEmail(invalid) = true, want false")
	}
}

func TestIsValidWebhookURL(t *testing.T) {
	if !IsValidWebhookURL("https://example.com/hook") {
		t.Error("IsValidWebhookURL(https://example.com/hook) = false, want true")
	}
	if IsValidWebhookURL("not-a-url") {
		t.Error("IsValidWebhookURL(not-a-url) = true, want false")
	}
}

func BenchmarkValidateAsset(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ValidateAsset("ACME")
	}
}

func BenchmarkValidatePrice(b *testing.B) {
	p := decimal.RequireFromString("100.00")
	for i := 0; i < b.N; i++ {
		ValidatePrice(p)
	}
}

func BenchmarkValidateEmail(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ValidateEmail("user@example.com")
	}
}
