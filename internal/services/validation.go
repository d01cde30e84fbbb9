package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/fountain/fountain-api/internal/client/xrpl"
	"github.com/fountain/fountain-api/internal/constants"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/shopspring/decimal"
)

var (
	standardCurrencyCode = regexp.MustCompile(`^[A-Z0-9]{3}$`)
	hexCurrencyCode      = regexp.MustCompile(`^[0-9A-F]{40}$`)
)

// ValidateCurrencyCode accepts a three character code other than XRP, or a
// 40 character hex code
func ValidateCurrencyCode(code string) error {
	switch {
	case standardCurrencyCode.MatchString(code) && code != "XRP":
		return nil
	case hexCurrencyCode.MatchString(code) && !strings.HasPrefix(code, "00"):
		return nil
	default:
		return business.ErrCurrencyCodeInvalid
	}
}

func validateAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return business.NewValidationError(field, "must be greater than zero")
	}
	return nil
}

// normalizeDepositType defaults to XRP and rejects collateral that is not
// reconciled on the ledger. RLUSD names the same collection wallet flow in
// older clients and is stored as XRP.
func normalizeDepositType(depositType string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(depositType)) {
	case "", constants.DepositTypeXRP, constants.DepositTypeRLUSD:
		return constants.DepositTypeXRP, nil
	case constants.DepositTypePIX:
		return "", fmt.Errorf("%w: %s (use %s)", business.ErrUnsupportedDeposit, depositType, constants.DepositTypeXRP)
	default:
		return "", business.NewValidationError("deposit_type", "unknown deposit type")
	}
}

func validateWallet(field, address string) error {
	if !xrpl.IsValidClassicAddress(address) {
		return business.NewValidationError(field, "must be a classic ledger address")
	}
	return nil
}

func validateWebhookURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return business.NewValidationError("webhook_url", "must be an absolute http(s) URL")
	}
	return nil
}
