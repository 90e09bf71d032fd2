package assets

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/fystack/rooch-wallet-plugin/internal/keys"
	"github.com/fystack/rooch-wallet-plugin/internal/rpc/rooch"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/constant"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/logger"
)

const FallbackReport = "Unable to fetch wallet information. Please try again later."

// IndexerAPI is the part of the Rooch API the reader pages through.
type IndexerAPI interface {
	QueryUTXOs(ctx context.Context, owner string, cursor rooch.Cursor, limit int) (*rooch.PaginatedUTXOs, error)
	GetBalances(ctx context.Context, owner string, cursor rooch.Cursor, limit int) (*rooch.PaginatedBalances, error)
}

type UTXO struct {
	ID   *string `json:"id,omitempty"`
	Sats *string `json:"sats,omitempty"`
}

type Coin struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Balance  *string `json:"balance,omitempty"`
	Decimals int     `json:"decimals"`
	CoinType *string `json:"coinType,omitempty"`
}

// Snapshot is the holdings of one address at fetch time.
type Snapshot struct {
	UTXOs []UTXO `json:"utxos"`
	Coins []Coin `json:"coins"`
}

type Reader struct {
	client    IndexerAPI
	pageLimit int
}

func NewReader(client IndexerAPI) *Reader {
	return &Reader{client: client, pageLimit: constant.PageLimit}
}

// FetchUTXOs returns every UTXO owned by address, in provider order.
func (r *Reader) FetchUTXOs(ctx context.Context, address string) ([]UTXO, error) {
	var (
		cursor rooch.Cursor
		all    []UTXO
	)
	for page := 1; ; page++ {
		resp, err := r.client.QueryUTXOs(ctx, address, cursor, r.pageLimit)
		if err != nil {
			return nil, fmt.Errorf("fetch UTXOs page %d: %w", page, err)
		}

		all = append(all, lo.Map(resp.Data, func(u rooch.UTXOStateView, _ int) UTXO {
			return UTXO{ID: u.ID, Sats: u.Sats()}
		})...)
		logger.Debug("Fetched UTXO page", "address", address, "page", page, "count", len(resp.Data))

		if !resp.HasNextPage || !rooch.HasCursor(resp.NextCursor) {
			return all, nil
		}
		cursor = resp.NextCursor
	}
}

// FetchCoins returns every coin balance held by address, in provider order.
func (r *Reader) FetchCoins(ctx context.Context, address string) ([]Coin, error) {
	var (
		cursor rooch.Cursor
		all    []Coin
	)
	for page := 1; ; page++ {
		resp, err := r.client.GetBalances(ctx, address, cursor, r.pageLimit)
		if err != nil {
			return nil, fmt.Errorf("fetch coins page %d: %w", page, err)
		}

		all = append(all, lo.Map(resp.Data, func(b rooch.BalanceInfoView, _ int) Coin {
			return Coin{
				Symbol:   b.Symbol,
				Name:     b.Name,
				Balance:  b.Balance,
				Decimals: b.Decimals,
				CoinType: b.CoinType,
			}
		})...)
		logger.Debug("Fetched balance page", "address", address, "page", page, "count", len(resp.Data))

		if !resp.HasNextPage || !rooch.HasCursor(resp.NextCursor) {
			return all, nil
		}
		cursor = resp.NextCursor
	}
}

// FetchSnapshot fetches UTXOs then coins. Any error discards the whole snapshot.
func (r *Reader) FetchSnapshot(ctx context.Context, address string) (*Snapshot, error) {
	utxos, err := r.FetchUTXOs(ctx, address)
	if err != nil {
		return nil, err
	}
	coins, err := r.FetchCoins(ctx, address)
	if err != nil {
		return nil, err
	}
	return &Snapshot{UTXOs: utxos, Coins: coins}, nil
}

// Report fetches and formats the holdings of address, returning
// FallbackReport if anything fails.
func (r *Reader) Report(ctx context.Context, identity, address string) string {
	snapshot, err := r.FetchSnapshot(ctx, address)
	if err != nil {
		logger.Error("Error generating assets report", "address", address, "error", err)
		return FallbackReport
	}
	return Format(identity, address, snapshot)
}

// AbsentAmount marks a balance or sats value the indexer did not report.
const AbsentAmount = "-"

// Format renders a snapshot as agent-readable text. Amounts are shown with
// exactly two fractional digits.
func Format(identity, address string, snapshot *Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", identity)
	fmt.Fprintf(&b, "Assets(%s): \n", address)

	b.WriteString("Rooch network coin assets:\n")
	for _, coin := range snapshot.Coins {
		fmt.Fprintf(&b, "%s(%s) Balance:%s\n", coin.Symbol, coin.Name, FormatAmount(coin.Balance, coin.Decimals))
	}

	b.WriteString("BTC assets:\n")
	for _, utxo := range snapshot.UTXOs {
		fmt.Fprintf(&b, "UTXO(%s) %s Sats\n", keys.ShortAddress(lo.FromPtr(utxo.ID), 6, 4), FormatAmount(utxo.Sats, 0))
	}
	return b.String()
}

// FormatAmount divides a base-unit integer string by 10^decimals and fixes
// the result to two decimal places. Absent amounts render as AbsentAmount
// so they stay distinguishable from a real zero.
func FormatAmount(amount *string, decimals int) string {
	if amount == nil {
		return AbsentAmount
	}
	d, err := decimal.NewFromString(*amount)
	if err != nil {
		return *amount
	}
	return d.Shift(-int32(decimals)).StringFixed(2)
}
