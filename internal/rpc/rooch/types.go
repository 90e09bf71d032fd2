package rooch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Cursor is an indexer pagination cursor, passed back to the node verbatim.
type Cursor = json.RawMessage

// HasCursor reports whether c carries a cursor value (absent and null do not).
func HasCursor(c Cursor) bool {
	trimmed := bytes.TrimSpace(c)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

type UTXOFilter struct {
	Owner string `json:"owner"`
}

type PaginatedUTXOs struct {
	Data        []UTXOStateView `json:"data"`
	HasNextPage bool            `json:"has_next_page"`
	NextCursor  Cursor          `json:"next_cursor,omitempty"`
}

type UTXOStateView struct {
	ID    *string   `json:"id,omitempty"`
	Owner string    `json:"owner,omitempty"`
	Value *UTXOView `json:"value,omitempty"`
}

type UTXOView struct {
	Value *string `json:"value,omitempty"`
	Txid  string  `json:"bitcoin_txid,omitempty"`
	Vout  uint32  `json:"vout,omitempty"`
}

// Sats returns the UTXO amount or nil when the node omitted it.
func (u UTXOStateView) Sats() *string {
	if u.Value == nil {
		return nil
	}
	return u.Value.Value
}

type PaginatedBalances struct {
	Data        []BalanceInfoView `json:"data"`
	HasNextPage bool              `json:"has_next_page"`
	NextCursor  Cursor            `json:"next_cursor,omitempty"`
}

type BalanceInfoView struct {
	CoinType *string `json:"coin_type,omitempty"`
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Decimals int     `json:"decimals"`
	Supply   string  `json:"supply,omitempty"`
	Balance  *string `json:"balance,omitempty"`
}

type ViewFunctionCall struct {
	FunctionID string   `json:"function_id"`
	TyArgs     []string `json:"ty_args"`
	Args       []string `json:"args"`
}

type ViewFunctionResult struct {
	VMStatus     json.RawMessage      `json:"vm_status"`
	ReturnValues []AnnotatedMoveValue `json:"return_values"`
}

type AnnotatedMoveValue struct {
	Value        json.RawMessage `json:"value"`
	DecodedValue json.RawMessage `json:"decoded_value"`
}

// Executed reports whether the view call finished with vm_status "Executed".
func (r *ViewFunctionResult) Executed() bool {
	var status string
	if err := json.Unmarshal(r.VMStatus, &status); err != nil {
		return false
	}
	return status == "Executed"
}

type ExecuteTransactionResponse struct {
	SequenceInfo  SequenceInfo    `json:"sequence_info"`
	ExecutionInfo ExecutionInfo   `json:"execution_info"`
	Output        json.RawMessage `json:"output,omitempty"`
}

type SequenceInfo struct {
	TxOrder           StrView `json:"tx_order"`
	TxOrderSignature  string  `json:"tx_order_signature,omitempty"`
	TxAccumulatorRoot string  `json:"tx_accumulator_root,omitempty"`
	TxTimestamp       StrView `json:"tx_timestamp,omitempty"`
}

type ExecutionInfo struct {
	TxHash    string          `json:"tx_hash"`
	StateRoot string          `json:"state_root,omitempty"`
	GasUsed   StrView         `json:"gas_used,omitempty"`
	Status    ExecutionStatus `json:"status"`
}

type ExecutionStatus struct {
	Type string `json:"type"`
}

// StrView holds a u64-like value the node may send as a string or a number.
type StrView string

func (s *StrView) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = StrView(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", raw)
	}
	*s = StrView(n.String())
	return nil
}

func (s StrView) String() string {
	return string(s)
}

type executeOptions struct {
	WithOutput bool `json:"withOutput"`
}

// parseUint accepts a JSON number or a quoted decimal/0x-hex string.
func parseUint(raw json.RawMessage) (uint64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, fmt.Errorf("empty numeric value")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}
