package transfer

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/fystack/rooch-wallet-plugin/internal/assets"
	"github.com/fystack/rooch-wallet-plugin/internal/keys"
	"github.com/fystack/rooch-wallet-plugin/internal/rpc/rooch"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/constant"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/enum"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/logger"
)

var ErrInvalidParams = errors.New("Invalid transfer parameters")

// SnapshotFetcher loads the current holdings of an address.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, address string) (*assets.Snapshot, error)
}

// Submitter signs and submits a transfer transaction.
type Submitter interface {
	Transfer(ctx context.Context, req rooch.TransferRequest) (*rooch.ExecuteTransactionResponse, error)
}

// Service moves coins out of the wallet configured in settings.
type Service struct {
	assets   SnapshotFetcher
	client   Submitter
	settings keys.Settings
}

func NewService(fetcher SnapshotFetcher, client Submitter, settings keys.Settings) *Service {
	return &Service{assets: fetcher, client: client, settings: settings}
}

// Transfer runs validate, resolve coin, compute amount, check balance,
// submit and map status, in that order. It never returns an error: every
// failure is reported through Result. At most one transaction is submitted.
func (s *Service) Transfer(ctx context.Context, params Params) Result {
	result, err := s.transfer(ctx, params)
	if err != nil {
		if errors.Is(err, ErrInvalidParams) {
			return failure(ErrInvalidParams.Error())
		}
		logger.Error("Transfer failed", "recipient", params.Recipient, "symbol", params.Symbol, "error", err)
		return failure("Transfer failed: " + rootCause(err).Error())
	}
	return result
}

func (s *Service) transfer(ctx context.Context, params Params) (Result, error) {
	snapshot, err := s.ValidateTransfer(ctx, params)
	if err != nil {
		return Result{}, err
	}

	symbol := params.Symbol
	if symbol == "" {
		symbol = constant.GasCoinSymbol
	}
	coin, ok := GetCoinInfo(snapshot, symbol, params.Index)
	if !ok {
		if params.Index != nil && *params.Index != 0 {
			return failure(fmt.Sprintf("Coin %s at index %d not found", symbol, *params.Index)), nil
		}
		return failure(fmt.Sprintf("Coin %s not found", symbol)), nil
	}

	amount := ComputeAmount(params.Amount, coin.Decimals)
	// Covers negative input and amounts that floor to zero base units.
	if amount.Sign() <= 0 {
		return failure("Transfer amount must be greater than zero"), nil
	}
	balance, err := coinBalance(coin)
	if err != nil {
		return Result{}, err
	}
	if balance.Cmp(amount) < 0 {
		return failure(fmt.Sprintf("Insufficient %s balance", symbol)), nil
	}

	coinType := lo.FromPtr(coin.CoinType)
	if coinType == "" {
		return Result{}, fmt.Errorf("coin %s has no coin type", symbol)
	}

	signer, err := keys.FromSettings(s.settings)
	if err != nil {
		return Result{}, err
	}

	logger.Info("Submitting transfer",
		"recipient", params.Recipient,
		"symbol", symbol,
		"coin_type", coinType,
		"amount", amount.String(),
	)
	resp, err := s.client.Transfer(ctx, rooch.TransferRequest{
		Signer:    signer,
		Recipient: params.Recipient,
		Amount:    amount,
		CoinType:  coinType,
	})
	if err != nil {
		return Result{}, err
	}
	return MapExecution(resp), nil
}

// ValidateTransfer checks the recipient and loads a fresh snapshot of the
// configured wallet for this transfer.
func (s *Service) ValidateTransfer(ctx context.Context, params Params) (*assets.Snapshot, error) {
	if !rooch.IsValidAddress(params.Recipient) {
		return nil, ErrInvalidParams
	}

	owner, err := keys.ParseBitcoinAddress(s.settings)
	if err != nil {
		return nil, err
	}
	return s.assets.FetchSnapshot(ctx, owner.String())
}

// GetCoinInfo picks the coin with the given symbol. index is 1-based over
// the matches; without it the first match in provider order wins.
func GetCoinInfo(snapshot *assets.Snapshot, symbol string, index *int) (*assets.Coin, bool) {
	matches := lo.Filter(snapshot.Coins, func(c assets.Coin, _ int) bool {
		return c.Symbol == symbol
	})
	if len(matches) == 0 {
		return nil, false
	}
	if index == nil {
		return &matches[0], true
	}
	i := *index - 1
	if i < 0 || i >= len(matches) {
		return nil, false
	}
	return &matches[i], true
}

// ComputeAmount converts a human amount to base units, flooring any
// fraction below one base unit.
func ComputeAmount(amount decimal.Decimal, decimals int) *big.Int {
	return amount.Shift(int32(decimals)).Floor().BigInt()
}

// MapExecution turns a node response into a Result. Only the "executed"
// status counts as success.
func MapExecution(resp *rooch.ExecuteTransactionResponse) Result {
	status := resp.ExecutionInfo.Status.Type
	if enum.ExecutionStatus(status) != enum.ExecutionStatusExecuted {
		return failure("Transfer failed: " + status)
	}
	return Result{Success: true, TxOrder: resp.SequenceInfo.TxOrder.String()}
}

func coinBalance(coin *assets.Coin) (*big.Int, error) {
	if coin.Balance == nil {
		return new(big.Int), nil
	}
	balance, ok := new(big.Int).SetString(*coin.Balance, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s balance %q", coin.Symbol, *coin.Balance)
	}
	return balance, nil
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
