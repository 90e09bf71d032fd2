package rooch

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

type stubSigner struct {
	addr   Address
	pub    []byte
	err    error
	signed [][]byte
}

func newStubSigner() *stubSigner {
	var addr Address
	addr[31] = 0x42
	pub := append([]byte{0x02}, bytes.Repeat([]byte{0x11}, 32)...)
	return &stubSigner{addr: addr, pub: pub}
}

func (s *stubSigner) RoochAddress() Address { return s.addr }
func (s *stubSigner) PublicKey() []byte     { return s.pub }

func (s *stubSigner) BitcoinAddressString() (string, error) {
	return "bc1pstub", nil
}

func (s *stubSigner) Sign(msg []byte) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.signed = append(s.signed, msg)
	return bytes.Repeat([]byte{0xee}, 64), nil
}

func TestParseTypeTag(t *testing.T) {
	tag, err := ParseTypeTag("0x3::gas_coin::RGAS")
	require.NoError(t, err)
	assert.Equal(t, typeTagStruct, tag.Kind)
	require.NotNil(t, tag.Struct)
	assert.Equal(t, "0x3", ShortAddress(tag.Struct.Address))
	assert.Equal(t, "gas_coin", tag.Struct.Module)
	assert.Equal(t, "RGAS", tag.Struct.Name)
	assert.Empty(t, tag.Struct.TypeParams)

	vec, err := ParseTypeTag("vector<u8>")
	require.NoError(t, err)
	assert.Equal(t, typeTagVector, vec.Kind)
	assert.Equal(t, typeTagU8, vec.Vector.Kind)
}

func TestParseTypeTag_Generics(t *testing.T) {
	tag, err := ParseTypeTag("0x3::coin_store::CoinStore<0x3::coin::Coin<0x3::gas_coin::RGAS>, u256>")
	require.NoError(t, err)
	require.NotNil(t, tag.Struct)
	require.Len(t, tag.Struct.TypeParams, 2)

	inner := tag.Struct.TypeParams[0]
	require.NotNil(t, inner.Struct)
	assert.Equal(t, "Coin", inner.Struct.Name)
	require.Len(t, inner.Struct.TypeParams, 1)
	assert.Equal(t, "RGAS", inner.Struct.TypeParams[0].Struct.Name)
	assert.Equal(t, typeTagU256, tag.Struct.TypeParams[1].Kind)
}

func TestParseTypeTag_Invalid(t *testing.T) {
	for _, input := range []string{"", "RGAS", "0x3::gas_coin", "3::gas_coin::RGAS", "0x3::coin::Coin<u8"} {
		_, err := ParseTypeTag(input)
		assert.Error(t, err, input)
	}
}

func TestTypeTagEncoding(t *testing.T) {
	tag, err := ParseTypeTag("0x3::gas_coin::RGAS")
	require.NoError(t, err)

	var e Encoder
	tag.encode(&e)

	want := "07" + strings.Repeat("00", 31) + "03" +
		"08" + hex.EncodeToString([]byte("gas_coin")) +
		"04" + hex.EncodeToString([]byte("RGAS")) +
		"00"
	assert.Equal(t, want, hex.EncodeToString(e.Bytes()))
}

func TestNormalizeFunctionID(t *testing.T) {
	id, err := NormalizeFunctionID(SequenceNumberFunction)
	require.NoError(t, err)
	assert.Equal(t, "0x"+strings.Repeat("0", 63)+"2::account::sequence_number", id)

	_, err = NormalizeFunctionID("0x2::account")
	assert.Error(t, err)
}

func TestNewTransferCoinCall(t *testing.T) {
	to, err := ParseHexAddress("0x123")
	require.NoError(t, err)

	call, err := NewTransferCoinCall(to, big.NewInt(199), "0x3::gas_coin::RGAS")
	require.NoError(t, err)

	assert.Equal(t, "0x3", ShortAddress(call.Module))
	assert.Equal(t, "0x3::transfer::transfer_coin", call.String())
	assert.Equal(t, "transfer", call.ModuleID)
	assert.Equal(t, "transfer_coin", call.Function)
	require.Len(t, call.TyArgs, 1)
	assert.Equal(t, "RGAS", call.TyArgs[0].Struct.Name)
	require.Len(t, call.Args, 2)
	assert.Equal(t, to[:], call.Args[0])
	assert.Equal(t, "c7"+strings.Repeat("00", 31), hex.EncodeToString(call.Args[1]))
}

func TestNewTransferCoinCall_Errors(t *testing.T) {
	_, err := NewTransferCoinCall(Address{}, big.NewInt(1), "")
	assert.Error(t, err)

	_, err = NewTransferCoinCall(Address{}, big.NewInt(-5), "0x3::gas_coin::RGAS")
	assert.Error(t, err)
}

func TestTransactionData_Encode(t *testing.T) {
	sender := newStubSigner().RoochAddress()
	call, err := NewTransferCoinCall(sender, big.NewInt(1), "0x3::gas_coin::RGAS")
	require.NoError(t, err)

	data := TransactionData{
		Sender:         sender,
		SequenceNumber: 7,
		ChainID:        2,
		MaxGasAmount:   50_000_000,
		Action:         call,
	}
	encoded := data.Encode()

	require.Greater(t, len(encoded), 32+8+8+8+1)
	assert.Equal(t, sender[:], encoded[:32])
	assert.Equal(t, "0700000000000000", hex.EncodeToString(encoded[32:40]))
	assert.Equal(t, "0200000000000000", hex.EncodeToString(encoded[40:48]))
	assert.Equal(t, "80f0fa0200000000", hex.EncodeToString(encoded[48:56]))
	assert.Equal(t, byte(moveActionFunction), encoded[56])

	hash := data.Hash()
	assert.Equal(t, sha3.Sum256(encoded), hash)
}

// readVector consumes one BCS vector<u8> with a single-byte length.
func readVector(t *testing.T, b []byte) ([]byte, []byte) {
	t.Helper()
	require.NotEmpty(t, b)
	n := int(b[0])
	require.Less(t, n, 0x80)
	require.GreaterOrEqual(t, len(b), 1+n)
	return b[1 : 1+n], b[1+n:]
}

func TestSignTransaction(t *testing.T) {
	signer := newStubSigner()
	call, err := NewTransferCoinCall(signer.RoochAddress(), big.NewInt(10), "0x3::gas_coin::RGAS")
	require.NoError(t, err)

	data := TransactionData{Sender: signer.RoochAddress(), SequenceNumber: 1, ChainID: 2, MaxGasAmount: 1000, Action: call}
	raw, err := SignTransaction(data, signer)
	require.NoError(t, err)

	msg := NewBitcoinSignMessage(data.Hash(), "")
	msgHash := msg.Hash()
	require.Len(t, signer.signed, 1)
	assert.Equal(t, msgHash[:], signer.signed[0])

	encoded := data.Encode()
	require.True(t, bytes.HasPrefix(raw, encoded))

	rest := raw[len(encoded):]
	assert.Equal(t, "0100000000000000", hex.EncodeToString(rest[:8]), "bitcoin validator id")
	payload, tail := readVector(t, rest[8:])
	assert.Empty(t, tail)

	sig, payload := readVector(t, payload)
	assert.Equal(t, bytes.Repeat([]byte{0xee}, 64), sig)
	prefix, payload := readVector(t, payload)
	assert.Equal(t, append([]byte("\x18Bitcoin Signed Message:\n"), 19+64), prefix)
	info, payload := readVector(t, payload)
	assert.Equal(t, "Rooch Transaction:\n", string(info))
	pub, payload := readVector(t, payload)
	assert.Equal(t, signer.PublicKey(), pub)
	from, payload := readVector(t, payload)
	assert.Equal(t, "bc1pstub", string(from))
	assert.Empty(t, payload)
}

func TestBitcoinSignMessage(t *testing.T) {
	msg := NewBitcoinSignMessage([32]byte{}, "")
	assert.Equal(t, "Rooch Transaction:\n", msg.MessageInfo)
	assert.Equal(t, "Rooch Transaction:\n"+strings.Repeat("0", 64), msg.Raw())
	assert.Equal(t, append(msg.Prefix(), msg.Raw()...), msg.Encode())

	hash := msg.Hash()
	assert.Equal(t, "56b7a15cca434c40e12fc224625f94c823de094ccd5cde4fb0350f1ee7a6f603", hex.EncodeToString(hash[:]))

	custom := NewBitcoinSignMessage([32]byte{}, "transfer 1 RGAS")
	assert.Equal(t, "Rooch Transaction:\ntransfer 1 RGAS\n", custom.MessageInfo)

	kept := NewBitcoinSignMessage([32]byte{}, "Rooch Transaction:\nnote\n")
	assert.Equal(t, "Rooch Transaction:\nnote\n", kept.MessageInfo)
}

func TestSignTransaction_SignerError(t *testing.T) {
	signer := newStubSigner()
	signer.err = errors.New("hsm offline")

	_, err := SignTransaction(TransactionData{}, signer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hsm offline")
}

func TestSignDigest(t *testing.T) {
	digest := SignDigest([]byte("abc"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hex.EncodeToString(digest[:]))
}
