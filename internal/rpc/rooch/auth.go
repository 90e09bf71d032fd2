package rooch

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/wire"
)

const (
	// BitcoinMessagePrefix is the length-prefixed magic of Bitcoin signed messages.
	BitcoinMessagePrefix = "\x18Bitcoin Signed Message:\n"
	// TransactionMessagePrefix starts the message info of every signed transaction.
	TransactionMessagePrefix = "Rooch Transaction:\n"

	authValidatorBitcoin uint64 = 1
)

type Authenticator struct {
	AuthValidatorID uint64
	Payload         []byte
}

func (a Authenticator) encode(e *Encoder) {
	e.WriteU64(a.AuthValidatorID)
	e.WriteBytes(a.Payload)
}

// BitcoinSignMessage wraps a transaction hash in the Bitcoin signed-message
// format so a wallet key can authorize it.
type BitcoinSignMessage struct {
	MessageInfo string
	TxHash      [32]byte
}

// NewBitcoinSignMessage normalizes info to start with TransactionMessagePrefix
// and end with a newline.
func NewBitcoinSignMessage(txHash [32]byte, info string) BitcoinSignMessage {
	if !strings.HasPrefix(info, TransactionMessagePrefix) {
		info = TransactionMessagePrefix + info
	}
	if !strings.HasSuffix(info, "\n") {
		info += "\n"
	}
	return BitcoinSignMessage{MessageInfo: info, TxHash: txHash}
}

// Raw is the human-readable text the wallet signs: info then the hex tx hash.
func (m BitcoinSignMessage) Raw() string {
	return m.MessageInfo + hex.EncodeToString(m.TxHash[:])
}

// Prefix returns BitcoinMessagePrefix followed by the varint length of Raw.
func (m BitcoinSignMessage) Prefix() []byte {
	var buf bytes.Buffer
	buf.WriteString(BitcoinMessagePrefix)
	// bytes.Buffer writes never fail.
	_ = wire.WriteVarInt(&buf, 0, uint64(len(m.Raw())))
	return buf.Bytes()
}

func (m BitcoinSignMessage) Encode() []byte {
	return append(m.Prefix(), m.Raw()...)
}

// Hash is sha256 of Encode. Signer.Sign hashes once more, giving the
// double-sha256 digest Bitcoin message signatures commit to.
func (m BitcoinSignMessage) Hash() [32]byte {
	return sha256.Sum256(m.Encode())
}

// BitcoinAuthenticator signs msg with signer and builds the Bitcoin
// authenticator payload: signature, message prefix, message info, public key
// and the signer's Bitcoin address.
func BitcoinAuthenticator(msg BitcoinSignMessage, signer Signer) (Authenticator, error) {
	hash := msg.Hash()
	sig, err := signer.Sign(hash[:])
	if err != nil {
		return Authenticator{}, fmt.Errorf("sign transaction: %w", err)
	}
	from, err := signer.BitcoinAddressString()
	if err != nil {
		return Authenticator{}, fmt.Errorf("signer bitcoin address: %w", err)
	}

	var e Encoder
	e.WriteBytes(sig)
	e.WriteBytes(msg.Prefix())
	e.WriteString(msg.MessageInfo)
	e.WriteBytes(signer.PublicKey())
	e.WriteString(from)
	return Authenticator{AuthValidatorID: authValidatorBitcoin, Payload: e.Bytes()}, nil
}
