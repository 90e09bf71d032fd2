package rooch

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	TransferCoinFunction   = "0x3::transfer::transfer_coin"
	SequenceNumberFunction = "0x2::account::sequence_number"

	// BCS variant index of MoveAction::Function.
	moveActionFunction = 1
)

// Move TypeTag BCS variant indexes.
const (
	typeTagBool uint64 = iota
	typeTagU8
	typeTagU64
	typeTagU128
	typeTagAddress
	typeTagSigner
	typeTagVector
	typeTagStruct
	typeTagU16
	typeTagU32
	typeTagU256
)

var primitiveTypeTags = map[string]uint64{
	"bool":    typeTagBool,
	"u8":      typeTagU8,
	"u16":     typeTagU16,
	"u32":     typeTagU32,
	"u64":     typeTagU64,
	"u128":    typeTagU128,
	"u256":    typeTagU256,
	"address": typeTagAddress,
	"signer":  typeTagSigner,
}

// TypeTag is a parsed Move type such as 0x3::gas_coin::RGAS or vector<u8>.
type TypeTag struct {
	Kind   uint64
	Vector *TypeTag
	Struct *StructTag
}

type StructTag struct {
	Address    Address
	Module     string
	Name       string
	TypeParams []TypeTag
}

// ParseTypeTag parses a Move type string.
func ParseTypeTag(s string) (TypeTag, error) {
	s = strings.TrimSpace(s)
	if kind, ok := primitiveTypeTags[s]; ok {
		return TypeTag{Kind: kind}, nil
	}
	if strings.HasPrefix(s, "vector<") && strings.HasSuffix(s, ">") {
		inner, err := ParseTypeTag(s[len("vector<") : len(s)-1])
		if err != nil {
			return TypeTag{}, err
		}
		return TypeTag{Kind: typeTagVector, Vector: &inner}, nil
	}
	st, err := ParseStructTag(s)
	if err != nil {
		return TypeTag{}, err
	}
	return TypeTag{Kind: typeTagStruct, Struct: &st}, nil
}

// ParseStructTag parses address::module::Name with optional <type params>.
func ParseStructTag(s string) (StructTag, error) {
	s = strings.TrimSpace(s)
	var params []TypeTag
	if open := strings.Index(s, "<"); open != -1 {
		if !strings.HasSuffix(s, ">") {
			return StructTag{}, fmt.Errorf("invalid type %q: unbalanced type parameters", s)
		}
		for _, p := range splitTypeParams(s[open+1 : len(s)-1]) {
			tag, err := ParseTypeTag(p)
			if err != nil {
				return StructTag{}, err
			}
			params = append(params, tag)
		}
		s = s[:open]
	}

	parts := strings.Split(s, "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return StructTag{}, fmt.Errorf("invalid struct type %q: expected address::module::name", s)
	}
	addr, err := ParseHexAddress(parts[0])
	if err != nil {
		return StructTag{}, fmt.Errorf("invalid struct type %q: %w", s, err)
	}
	return StructTag{Address: addr, Module: parts[1], Name: parts[2], TypeParams: params}, nil
}

// splitTypeParams splits on commas that are not nested inside <...>.
func splitTypeParams(s string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" {
		out = append(out, last)
	}
	return out
}

func (t TypeTag) encode(e *Encoder) {
	e.WriteUleb128(t.Kind)
	switch t.Kind {
	case typeTagVector:
		t.Vector.encode(e)
	case typeTagStruct:
		t.Struct.encode(e)
	}
}

func (s StructTag) encode(e *Encoder) {
	e.WriteAddress(s.Address)
	e.WriteString(s.Module)
	e.WriteString(s.Name)
	e.WriteUleb128(uint64(len(s.TypeParams)))
	for _, p := range s.TypeParams {
		p.encode(e)
	}
}

// FunctionCall is a MoveAction::Function payload.
type FunctionCall struct {
	Module   Address
	ModuleID string
	Function string
	TyArgs   []TypeTag
	Args     [][]byte
}

// ParseFunctionID splits address::module::function.
func ParseFunctionID(id string) (Address, string, string, error) {
	parts := strings.Split(strings.TrimSpace(id), "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return Address{}, "", "", fmt.Errorf("invalid function id %q", id)
	}
	addr, err := ParseHexAddress(parts[0])
	if err != nil {
		return Address{}, "", "", fmt.Errorf("invalid function id %q: %w", id, err)
	}
	return addr, parts[1], parts[2], nil
}

// NormalizeFunctionID expands the address part to its full hex form.
func NormalizeFunctionID(id string) (string, error) {
	addr, module, fn, err := ParseFunctionID(id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s::%s::%s", addr.Hex(), module, fn), nil
}

// String renders the call target, e.g. 0x3::transfer::transfer_coin.
func (f FunctionCall) String() string {
	return fmt.Sprintf("%s::%s::%s", ShortAddress(f.Module), f.ModuleID, f.Function)
}

func (f FunctionCall) encode(e *Encoder) {
	e.WriteAddress(f.Module)
	e.WriteString(f.ModuleID)
	e.WriteString(f.Function)
	e.WriteUleb128(uint64(len(f.TyArgs)))
	for _, t := range f.TyArgs {
		t.encode(e)
	}
	e.WriteUleb128(uint64(len(f.Args)))
	for _, a := range f.Args {
		e.WriteBytes(a)
	}
}

// NewTransferCoinCall builds 0x3::transfer::transfer_coin<CoinType>(to, amount).
func NewTransferCoinCall(to Address, amount *big.Int, coinType string) (FunctionCall, error) {
	if coinType == "" {
		return FunctionCall{}, errors.New("coin type is required")
	}
	tag, err := ParseTypeTag(coinType)
	if err != nil {
		return FunctionCall{}, err
	}

	var amountArg Encoder
	if err := amountArg.WriteU256(amount); err != nil {
		return FunctionCall{}, err
	}

	module, moduleID, fn, err := ParseFunctionID(TransferCoinFunction)
	if err != nil {
		return FunctionCall{}, err
	}
	return FunctionCall{
		Module:   module,
		ModuleID: moduleID,
		Function: fn,
		TyArgs:   []TypeTag{tag},
		Args:     [][]byte{to[:], amountArg.Bytes()},
	}, nil
}

// TransactionData is the signed part of a Rooch transaction.
type TransactionData struct {
	Sender         Address
	SequenceNumber uint64
	ChainID        uint64
	MaxGasAmount   uint64
	Action         FunctionCall
}

func (d TransactionData) Encode() []byte {
	var e Encoder
	e.WriteAddress(d.Sender)
	e.WriteU64(d.SequenceNumber)
	e.WriteU64(d.ChainID)
	e.WriteU64(d.MaxGasAmount)
	e.WriteUleb128(moveActionFunction)
	d.Action.encode(&e)
	return e.Bytes()
}

// Hash is the SHA3-256 digest of the BCS encoded data.
func (d TransactionData) Hash() [32]byte {
	return sha3.Sum256(d.Encode())
}

// SignTransaction authorizes data with a Bitcoin authenticator from signer
// and returns the BCS encoded RoochTransaction ready for
// rooch_executeRawTransaction.
func SignTransaction(data TransactionData, signer Signer) ([]byte, error) {
	auth, err := BitcoinAuthenticator(NewBitcoinSignMessage(data.Hash(), ""), signer)
	if err != nil {
		return nil, err
	}

	var e Encoder
	e.WriteFixed(data.Encode())
	auth.encode(&e)
	return e.Bytes(), nil
}

// SignDigest is the digest Signer.Sign commits to.
func SignDigest(msg []byte) [32]byte {
	return sha256.Sum256(msg)
}
