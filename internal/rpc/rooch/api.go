package rooch

import (
	"context"
	"math/big"

	"github.com/fystack/rooch-wallet-plugin/internal/rpc"
)

// RoochAPI defines the Rooch JSON-RPC interface used by the plugin
type RoochAPI interface {
	rpc.NetworkClient

	// Indexer queries, paginated with an opaque cursor
	QueryUTXOs(ctx context.Context, owner string, cursor Cursor, limit int) (*PaginatedUTXOs, error)
	GetBalances(ctx context.Context, owner string, cursor Cursor, limit int) (*PaginatedBalances, error)

	// Chain state
	GetChainID(ctx context.Context) (uint64, error)
	ExecuteViewFunction(ctx context.Context, call ViewFunctionCall) (*ViewFunctionResult, error)
	SequenceNumber(ctx context.Context, address Address) (uint64, error)

	// Transaction submission
	ExecuteRawTransaction(ctx context.Context, txBytes []byte) (*ExecuteTransactionResponse, error)
	Transfer(ctx context.Context, req TransferRequest) (*ExecuteTransactionResponse, error)
}

// Signer authorizes Rooch transactions with a Bitcoin secp256k1 key.
type Signer interface {
	RoochAddress() Address
	// BitcoinAddressString returns the encoded Bitcoin address of the key.
	BitcoinAddressString() (string, error)
	// PublicKey returns the 33-byte compressed public key.
	PublicKey() []byte
	// Sign returns a 64-byte compact r||s signature over sha256(msg).
	Sign(msg []byte) ([]byte, error)
}

// TransferRequest moves Amount base units of CoinType to Recipient.
type TransferRequest struct {
	Signer    Signer
	Recipient string
	Amount    *big.Int
	CoinType  string
}
