package rooch

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fystack/rooch-wallet-plugin/internal/rpc"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/constant"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/logger"
	"github.com/fystack/rooch-wallet-plugin/pkg/ratelimiter"
)

const MethodExecuteRawTransaction = "rooch_executeRawTransaction"

// Client implements RoochAPI on top of any JSON-RPC transport
type Client struct {
	rpc.NetworkClient
	maxGasAmount uint64
}

type Option func(*Client)

// WithMaxGasAmount overrides the gas budget of submitted transactions.
func WithMaxGasAmount(amount uint64) Option {
	return func(c *Client) {
		if amount > 0 {
			c.maxGasAmount = amount
		}
	}
}

// NewClient wraps an existing transport.
func NewClient(transport rpc.NetworkClient, opts ...Option) *Client {
	c := &Client{
		NetworkClient: transport,
		maxGasAmount:  constant.DefaultMaxGasAmount,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRoochClient creates a Rooch client speaking JSON-RPC over HTTP.
func NewRoochClient(
	url string,
	headers map[string]string,
	timeout time.Duration,
	rateLimiter *ratelimiter.RateLimiter,
	opts ...Option,
) *Client {
	return NewClient(rpc.NewBaseClient(url, headers, timeout, rateLimiter), opts...)
}

// NewFailoverRoochClient routes calls over urls in priority order, moving
// to the next node after transport failures. Calls are never retried.
func NewFailoverRoochClient(
	urls []string,
	headers map[string]string,
	timeout time.Duration,
	rateLimiter *ratelimiter.RateLimiter,
	opts ...Option,
) (*Client, error) {
	providers := make([]*rpc.Provider, 0, len(urls))
	for i, url := range urls {
		name := fmt.Sprintf("rooch-%d", i)
		providers = append(providers, rpc.NewProvider(name, rpc.NewBaseClient(url, headers, timeout, rateLimiter)))
	}

	transport, err := rpc.NewFailoverClient(nil, providers...)
	if err != nil {
		return nil, err
	}
	return NewClient(transport, opts...), nil
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	resp, err := c.CallRPC(ctx, method, params)
	if err != nil {
		return fmt.Errorf("%s failed: %w", method, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
	}
	return nil
}

// QueryUTXOs returns one page of Bitcoin UTXOs owned by owner
func (c *Client) QueryUTXOs(ctx context.Context, owner string, cursor Cursor, limit int) (*PaginatedUTXOs, error) {
	params := []any{
		UTXOFilter{Owner: owner},
		cursorParam(cursor),
		strconv.Itoa(limit),
		false, // descending order
	}

	var page PaginatedUTXOs
	if err := c.call(ctx, "btc_queryUTXOs", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetBalances returns one page of coin balances held by owner
func (c *Client) GetBalances(ctx context.Context, owner string, cursor Cursor, limit int) (*PaginatedBalances, error) {
	params := []any{owner, cursorParam(cursor), strconv.Itoa(limit)}

	var page PaginatedBalances
	if err := c.call(ctx, "rooch_getBalances", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetChainID returns the chain id of the connected network
func (c *Client) GetChainID(ctx context.Context) (uint64, error) {
	var raw json.RawMessage
	if err := c.call(ctx, "rooch_getChainID", []any{}, &raw); err != nil {
		return 0, err
	}
	id, err := parseUint(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %s: %w", string(raw), err)
	}
	return id, nil
}

// ExecuteViewFunction runs a read-only Move function
func (c *Client) ExecuteViewFunction(ctx context.Context, call ViewFunctionCall) (*ViewFunctionResult, error) {
	if call.TyArgs == nil {
		call.TyArgs = []string{}
	}
	if call.Args == nil {
		call.Args = []string{}
	}

	var result ViewFunctionResult
	if err := c.call(ctx, "rooch_executeViewFunction", []any{call}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SequenceNumber returns the next transaction sequence number of address
func (c *Client) SequenceNumber(ctx context.Context, address Address) (uint64, error) {
	functionID, err := NormalizeFunctionID(SequenceNumberFunction)
	if err != nil {
		return 0, err
	}

	result, err := c.ExecuteViewFunction(ctx, ViewFunctionCall{
		FunctionID: functionID,
		Args:       []string{"0x" + hex.EncodeToString(address[:])},
	})
	if err != nil {
		return 0, err
	}
	if !result.Executed() {
		return 0, fmt.Errorf("sequence_number view call failed: vm_status %s", result.VMStatus)
	}
	if len(result.ReturnValues) == 0 {
		return 0, errors.New("sequence_number returned no value")
	}

	seq, err := parseUint(result.ReturnValues[0].DecodedValue)
	if err != nil {
		return 0, fmt.Errorf("invalid sequence number: %w", err)
	}
	return seq, nil
}

// ExecuteRawTransaction submits a BCS encoded, signed transaction
func (c *Client) ExecuteRawTransaction(ctx context.Context, txBytes []byte) (*ExecuteTransactionResponse, error) {
	params := []any{"0x" + hex.EncodeToString(txBytes), executeOptions{WithOutput: false}}

	var resp ExecuteTransactionResponse
	if err := c.call(ctx, MethodExecuteRawTransaction, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transfer builds, signs and submits a transfer_coin transaction.
// It makes exactly one submission attempt.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) (*ExecuteTransactionResponse, error) {
	if req.Signer == nil {
		return nil, errors.New("signer is required")
	}
	if req.Amount == nil {
		return nil, errors.New("amount is required")
	}

	to, err := ParseAddress(req.Recipient)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	call, err := NewTransferCoinCall(to, req.Amount, req.CoinType)
	if err != nil {
		return nil, err
	}

	sender := req.Signer.RoochAddress()
	chainID, err := c.GetChainID(ctx)
	if err != nil {
		return nil, err
	}
	seq, err := c.SequenceNumber(ctx, sender)
	if err != nil {
		return nil, err
	}

	data := TransactionData{
		Sender:         sender,
		SequenceNumber: seq,
		ChainID:        chainID,
		MaxGasAmount:   c.maxGasAmount,
		Action:         call,
	}
	txBytes, err := SignTransaction(data, req.Signer)
	if err != nil {
		return nil, err
	}

	logger.Debug("Submitting transfer",
		"sender", sender.Hex(),
		"recipient", to.Hex(),
		"function", call.String(),
		"coin_type", req.CoinType,
		"amount", req.Amount.String(),
		"sequence_number", seq,
		"chain_id", chainID,
	)
	return c.ExecuteRawTransaction(ctx, txBytes)
}

func cursorParam(c Cursor) any {
	if !HasCursor(c) {
		return nil
	}
	return c
}
