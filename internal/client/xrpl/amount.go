package xrpl

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// NativeCurrency is the ledger's settlement asset
const NativeCurrency = "XRP"

var dropsPerXRP = decimal.NewFromInt(1_000_000)

// Amount is either native XRP (serialised as a drops string) or an issued
// currency amount (serialised as {currency, issuer, value}).
type Amount struct {
	Currency string
	Issuer   string
	Value    decimal.Decimal
}

// XRP builds a native amount
func XRP(value decimal.Decimal) Amount {
	return Amount{Currency: NativeCurrency, Value: value}
}

// Issued builds an issued currency amount
func Issued(currency, issuer string, value decimal.Decimal) Amount {
	return Amount{Currency: currency, Issuer: issuer, Value: value}
}

// IsNative reports whether the amount is in XRP
func (a Amount) IsNative() bool {
	return a.Currency == "" || a.Currency == NativeCurrency
}

// Drops converts a native amount into whole drops, truncating sub-drop precision
func (a Amount) Drops() string {
	return a.Value.Mul(dropsPerXRP).Truncate(0).String()
}

// DropsToXRP converts a drops string into XRP
func DropsToXRP(drops string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(drops)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid drops value %q: %w", drops, err)
	}
	return d.Div(dropsPerXRP), nil
}

type issuedAmountJSON struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer,omitempty"`
	Value    string `json:"value"`
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a.IsNative() {
		return json.Marshal(a.Drops())
	}
	return json.Marshal(issuedAmountJSON{
		Currency: a.Currency,
		Issuer:   a.Issuer,
		Value:    a.Value.String(),
	})
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	var drops string
	if err := json.Unmarshal(b, &drops); err == nil {
		v, err := DropsToXRP(drops)
		if err != nil {
			return err
		}
		*a = XRP(v)
		return nil
	}

	var issued issuedAmountJSON
	if err := json.Unmarshal(b, &issued); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	v, err := decimal.NewFromString(issued.Value)
	if err != nil {
		return fmt.Errorf("invalid issued amount value %q: %w", issued.Value, err)
	}
	*a = Issued(issued.Currency, issued.Issuer, v)
	return nil
}
