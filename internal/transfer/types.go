package transfer

import (
	"github.com/shopspring/decimal"
)

// Params is a transfer request in human units. Amount accepts a JSON
// string or number.
type Params struct {
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
	Symbol    string          `json:"symbol,omitempty"`
	Index     *int            `json:"index,omitempty"`
}

// Result is the outcome of one transfer attempt. TxOrder is set only on
// success and Error only on failure.
type Result struct {
	Success bool   `json:"success"`
	TxOrder string `json:"txOrder,omitempty"`
	Error   string `json:"error,omitempty"`
}

func failure(msg string) Result {
	return Result{Success: false, Error: msg}
}
