package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fystack/rooch-wallet-plugin/internal/assets"
	"github.com/fystack/rooch-wallet-plugin/internal/rpc/rooch"
)

const (
	testWIF       = "KzJhi6kxdDjxeUecy16s4nppDUpzLDGdtWqZCyDKezFqJ9YJgphv"
	testOwner     = "bc1py56am5pyc7wucc6x3e4w96cfpw4jqdy342kuaj6q3sm65438zcgqc3gp6p"
	testRoochAddr = "0xbb7290a43c38b07f05151fd9713f1295aa8219ae73db9be720a04b2bb4e9cc76"
	testRecipient = "0x123"
)

type mapSettings map[string]string

func (m mapSettings) GetSetting(name string) string { return m[name] }

type fakeFetcher struct {
	snapshot *assets.Snapshot
	err      error
	owners   []string
}

func (f *fakeFetcher) FetchSnapshot(_ context.Context, address string) (*assets.Snapshot, error) {
	f.owners = append(f.owners, address)
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

type fakeSubmitter struct {
	resp     *rooch.ExecuteTransactionResponse
	err      error
	requests []rooch.TransferRequest
}

func (f *fakeSubmitter) Transfer(_ context.Context, req rooch.TransferRequest) (*rooch.ExecuteTransactionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func executed(status string, txOrder string) *rooch.ExecuteTransactionResponse {
	resp := &rooch.ExecuteTransactionResponse{}
	resp.ExecutionInfo.Status.Type = status
	resp.SequenceInfo.TxOrder = rooch.StrView(txOrder)
	return resp
}

func coin(symbol, balance, coinType string, decimals int) assets.Coin {
	return assets.Coin{
		Symbol:   symbol,
		Name:     symbol + " coin",
		Balance:  lo.ToPtr(balance),
		Decimals: decimals,
		CoinType: lo.ToPtr(coinType),
	}
}

func defaultSnapshot() *assets.Snapshot {
	return &assets.Snapshot{Coins: []assets.Coin{
		coin("RGAS", "1000000000", "0x3::gas_coin::RGAS", 8),
	}}
}

func newTestService(snapshot *assets.Snapshot, submitter *fakeSubmitter) (*Service, *fakeFetcher) {
	fetcher := &fakeFetcher{snapshot: snapshot}
	return NewService(fetcher, submitter, mapSettings{"BITCOIN_PRIVATE_KEY": testWIF, "ROOCH_NETWORK": "mainnet"}), fetcher
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTransfer_Success(t *testing.T) {
	submitter := &fakeSubmitter{resp: executed("executed", "1")}
	svc, fetcher := newTestService(defaultSnapshot(), submitter)

	result := svc.Transfer(context.Background(), Params{Recipient: testRecipient, Amount: amount("1")})

	assert.Equal(t, Result{Success: true, TxOrder: "1"}, result)
	assert.Equal(t, []string{testOwner}, fetcher.owners)

	require.Len(t, submitter.requests, 1)
	req := submitter.requests[0]
	assert.Equal(t, testRecipient, req.Recipient)
	assert.Equal(t, "0x3::gas_coin::RGAS", req.CoinType)
	assert.Equal(t, "100000000", req.Amount.String())
	require.NotNil(t, req.Signer)
	assert.Equal(t, testRoochAddr, req.Signer.RoochAddress().Hex())
}

func TestTransfer_InvalidRecipient(t *testing.T) {
	submitter := &fakeSubmitter{resp: executed("executed", "1")}
	svc, fetcher := newTestService(defaultSnapshot(), submitter)

	result := svc.Transfer(context.Background(), Params{Recipient: "invalid-address", Amount: amount("1")})

	assert.Equal(t, Result{Success: false, Error: "Invalid transfer parameters"}, result)
	assert.Empty(t, fetcher.owners)
	assert.Empty(t, submitter.requests)
}

func TestTransfer_KeyErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr string
	}{
		{name: "missing key", key: "", wantErr: "Transfer failed: BITCOIN_PRIVATE_KEY is not set"},
		{name: "bad key", key: "not-a-wif", wantErr: "Transfer failed: Invalid Bitcoin WIF private key"},
		{name: "zero secret", key: "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73Nd2Mcv1", wantErr: "Transfer failed: Invalid Bitcoin WIF private key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := &fakeSubmitter{}
			svc := NewService(&fakeFetcher{snapshot: defaultSnapshot()}, submitter, mapSettings{"BITCOIN_PRIVATE_KEY": tt.key})

			result := svc.Transfer(context.Background(), Params{Recipient: testRecipient, Amount: amount("1")})
			assert.False(t, result.Success)
			assert.Equal(t, tt.wantErr, result.Error)
			assert.Empty(t, submitter.requests)
		})
	}
}

func TestTransfer_SnapshotFetchError(t *testing.T) {
	submitter := &fakeSubmitter{}
	fetcher := &fakeFetcher{err: fmt.Errorf("fetch UTXOs page 1: %w", errors.New("Network error"))}
	svc := NewService(fetcher, submitter, mapSettings{"BITCOIN_PRIVATE_KEY": testWIF})

	result := svc.Transfer(context.Background(), Params{Recipient: testRecipient, Amount: amount("1")})

	assert.Equal(t, Result{Success: false, Error: "Transfer failed: Network error"}, result)
	assert.Empty(t, submitter.requests)
}

func TestTransfer_CoinResolution(t *testing.T) {
	snapshot := &assets.Snapshot{Coins: []assets.Coin{
		coin("RGAS", "1000000000", "0x3::gas_coin::RGAS", 8),
		coin("USDC", "5000000", "0x9::usdc::USDC", 6),
		coin("RGAS", "1000000000", "0x7::fake::RGAS", 8),
	}}

	tests := []struct {
		name         string
		symbol       string
		index        *int
		wantCoinType string
		wantErr      string
	}{
		{name: "default symbol", wantCoinType: "0x3::gas_coin::RGAS"},
		{name: "no index takes first match", symbol: "RGAS", wantCoinType: "0x3::gas_coin::RGAS"},
		{name: "index 1", symbol: "RGAS", index: lo.ToPtr(1), wantCoinType: "0x3::gas_coin::RGAS"},
		{name: "index 2", symbol: "RGAS", index: lo.ToPtr(2), wantCoinType: "0x7::fake::RGAS"},
		{name: "index out of range", symbol: "RGAS", index: lo.ToPtr(3), wantErr: "Coin RGAS at index 3 not found"},
		{name: "index zero", symbol: "RGAS", index: lo.ToPtr(0), wantErr: "Coin RGAS not found"},
		{name: "unknown symbol", symbol: "FOO", wantErr: "Coin FOO not found"},
		{name: "symbol match is exact", symbol: "rgas", wantErr: "Coin rgas not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := &fakeSubmitter{resp: executed("executed", "7")}
			svc, _ := newTestService(snapshot, submitter)

			result := svc.Transfer(context.Background(), Params{
				Recipient: testRecipient,
				Amount:    amount("0.5"),
				Symbol:    tt.symbol,
				Index:     tt.index,
			})

			if tt.wantErr != "" {
				assert.Equal(t, Result{Success: false, Error: tt.wantErr}, result)
				assert.Empty(t, submitter.requests)
				return
			}
			assert.True(t, result.Success)
			require.Len(t, submitter.requests, 1)
			assert.Equal(t, tt.wantCoinType, submitter.requests[0].CoinType)
		})
	}
}

func TestTransfer_BalanceCheck(t *testing.T) {
	tests := []struct {
		name        string
		balance     string
		wantSuccess bool
	}{
		{name: "equal balance passes", balance: "150", wantSuccess: true},
		{name: "one unit short fails", balance: "149", wantSuccess: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := &assets.Snapshot{Coins: []assets.Coin{coin("RGAS", tt.balance, "0x3::gas_coin::RGAS", 2)}}
			submitter := &fakeSubmitter{resp: executed("executed", "3")}
			svc, _ := newTestService(snapshot, submitter)

			result := svc.Transfer(context.Background(), Params{Recipient: testRecipient, Amount: amount("1.5")})

			if tt.wantSuccess {
				assert.Equal(t, Result{Success: true, TxOrder: "3"}, result)
				require.Len(t, submitter.requests, 1)
				assert.Equal(t, "150", submitter.requests[0].Amount.String())
				return
			}
			assert.Equal(t, Result{Success: false, Error: "Insufficient RGAS balance"}, result)
			assert.Empty(t, submitter.requests)
		})
	}
}

func TestTransfer_NonPositiveAmount(t *testing.T) {
	for _, a := range []string{"0", "-5", "0.000000001"} {
		t.Run(a, func(t *testing.T) {
			submitter := &fakeSubmitter{resp: executed("executed", "1")}
			svc, _ := newTestService(defaultSnapshot(), submitter)

			result := svc.Transfer(context.Background(), Params{Recipient: testRecipient, Amount: amount(a)})

			assert.Equal(t, Result{Success: false, Error: "Transfer amount must be greater than zero"}, result)
			assert.Empty(t, submitter.requests)
		})
	}
}

func TestTransfer_AbsentBalanceIsInsufficient(t *testing.T) {
	snapshot := &assets.Snapshot{Coins: []assets.Coin{{Symbol: "RGAS", Decimals: 8, CoinType: lo.ToPtr("0x3::gas_coin::RGAS")}}}
	submitter := &fakeSubmitter{}
	svc, _ := newTestService(snapshot, submitter)

	result := svc.Transfer(context.Background(), Params{Recipient: testRecipient, Amount: amount("1")})
	assert.Equal(t, "Insufficient RGAS balance", result.Error)
}

func TestTransfer_MissingCoinType(t *testing.T) {
	snapshot := &assets.Snapshot{Coins: []assets.Coin{{Symbol: "RGAS", Decimals: 8, Balance: lo.ToPtr("100000000")}}}
	submitter := &fakeSubmitter{}
	svc, _ := newTestService(snapshot, submitter)

	result := svc.Transfer(context.Background(), Params{Recipient: testRecipient, Amount: amount("1")})
	assert.Equal(t, "Transfer failed: coin RGAS has no coin type", result.Error)
	assert.Empty(t, submitter.requests)
}

func TestTransfer_ExecutionMapping(t *testing.T) {
	tests := []struct {
		name      string
		submitter *fakeSubmitter
		want      Result
	}{
		{
			name:      "executed",
			submitter: &fakeSubmitter{resp: executed("executed", "1")},
			want:      Result{Success: true, TxOrder: "1"},
		},
		{
			name:      "failed status",
			submitter: &fakeSubmitter{resp: executed("failed", "1")},
			want:      Result{Success: false, Error: "Transfer failed: failed"},
		},
		{
			name:      "move abort",
			submitter: &fakeSubmitter{resp: executed("moveabort", "2")},
			want:      Result{Success: false, Error: "Transfer failed: moveabort"},
		},
		{
			name:      "transport error",
			submitter: &fakeSubmitter{err: errors.New("Network error")},
			want:      Result{Success: false, Error: "Transfer failed: Network error"},
		},
		{
			name:      "wrapped transport error",
			submitter: &fakeSubmitter{err: fmt.Errorf("rooch_executeRawTransaction failed: %w", errors.New("Network error"))},
			want:      Result{Success: false, Error: "Transfer failed: Network error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(defaultSnapshot(), tt.submitter)
			result := svc.Transfer(context.Background(), Params{Recipient: testRecipient, Amount: amount("1")})
			assert.Equal(t, tt.want, result)
			assert.Len(t, tt.submitter.requests, 1, "exactly one submission attempt")
		})
	}
}

func TestComputeAmount(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int
		want     string
	}{
		{amount: "1.999999999", decimals: 2, want: "199"},
		{amount: "1", decimals: 8, want: "100000000"},
		{amount: "0.000000001", decimals: 8, want: "0"},
		{amount: "123456789012345678901234567890", decimals: 18, want: "123456789012345678901234567890000000000000000000"},
		{amount: "-1.5", decimals: 0, want: "-2"},
	}

	for _, tt := range tests {
		got := ComputeAmount(amount(tt.amount), tt.decimals)
		assert.Equal(t, tt.want, got.String(), "%s * 10^%d", tt.amount, tt.decimals)
	}
}

func TestParams_AmountFromJSON(t *testing.T) {
	var fromString, fromNumber Params
	require.NoError(t, json.Unmarshal([]byte(`{"recipient":"0x1","amount":"1.5","symbol":"RGAS","index":2}`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`{"recipient":"0x1","amount":1.5}`), &fromNumber))

	assert.True(t, fromString.Amount.Equal(fromNumber.Amount))
	assert.Equal(t, "RGAS", fromString.Symbol)
	require.NotNil(t, fromString.Index)
	assert.Equal(t, 2, *fromString.Index)
	assert.Nil(t, fromNumber.Index)
}

func TestGetCoinInfo(t *testing.T) {
	snapshot := &assets.Snapshot{Coins: []assets.Coin{
		coin("RGAS", "1", "0x3::gas_coin::RGAS", 8),
		coin("RGAS", "2", "0x7::fake::RGAS", 8),
	}}

	first, ok := GetCoinInfo(snapshot, "RGAS", nil)
	require.True(t, ok)
	assert.Equal(t, "1", *first.Balance)

	second, ok := GetCoinInfo(snapshot, "RGAS", lo.ToPtr(2))
	require.True(t, ok)
	assert.Equal(t, "2", *second.Balance)

	_, ok = GetCoinInfo(snapshot, "RGAS", lo.ToPtr(-1))
	assert.False(t, ok)
	_, ok = GetCoinInfo(&assets.Snapshot{}, "RGAS", nil)
	assert.False(t, ok)
}

func TestValidateTransfer_AlwaysRefetches(t *testing.T) {
	svc, fetcher := newTestService(defaultSnapshot(), &fakeSubmitter{})

	_, err := svc.ValidateTransfer(context.Background(), Params{Recipient: testRecipient})
	require.NoError(t, err)
	_, err = svc.ValidateTransfer(context.Background(), Params{Recipient: testRecipient})
	require.NoError(t, err)
	assert.Len(t, fetcher.owners, 2)

	_, err = svc.ValidateTransfer(context.Background(), Params{Recipient: ""})
	assert.ErrorIs(t, err, ErrInvalidParams)
}
