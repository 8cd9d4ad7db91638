package enums

import "fmt"

// WalletTransactionType categorizes wallet credit/debit entries.
type WalletTransactionType string

const (
	WalletTransactionTypeCommission WalletTransactionType = "commission"
	WalletTransactionTypeAdjustment WalletTransactionType = "adjustment"
	WalletTransactionTypeWithdrawal WalletTransactionType = "withdrawal"
)

var validWalletTransactionTypes = []WalletTransactionType{
	WalletTransactionTypeCommission,
	WalletTransactionTypeAdjustment,
	WalletTransactionTypeWithdrawal,
}

// String implements fmt.Stringer.
func (w WalletTransactionType) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WalletTransactionType.
func (w WalletTransactionType) IsValid() bool {
	for _, candidate := range validWalletTransactionTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWalletTransactionType converts raw input into a WalletTransactionType.
func ParseWalletTransactionType(value string) (WalletTransactionType, error) {
	for _, candidate := range validWalletTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet transaction type %q", value)
}
