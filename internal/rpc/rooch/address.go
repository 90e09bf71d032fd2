package rooch

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"
	"golang.org/x/crypto/blake2b"
)

const (
	AddressLength = 32
	Bech32HRP     = "rooch"
)

// Payload type prefixes of the Rooch encoding of a Bitcoin address.
const (
	bitcoinPayloadPubKeyHash     byte = 0
	bitcoinPayloadScriptHash     byte = 1
	bitcoinPayloadWitnessProgram byte = 2
)

var bitcoinNetParams = []*chaincfg.Params{
	&chaincfg.MainNetParams,
	&chaincfg.TestNet3Params,
	&chaincfg.RegressionNetParams,
	&chaincfg.SigNetParams,
}

// Address is a 32-byte Rooch account address.
type Address [AddressLength]byte

func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) String() string {
	return a.Hex()
}

// Bech32 returns the rooch1... form of the address.
func (a Address) Bech32() (string, error) {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.EncodeM(Bech32HRP, conv)
}

// NormalizeAddress lowercases a hex address and left-pads it to 64 hex chars.
func NormalizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	addr = strings.TrimPrefix(addr, "0x")
	if len(addr) < 2*AddressLength {
		addr = strings.Repeat("0", 2*AddressLength-len(addr)) + addr
	}
	return "0x" + addr
}

// ParseHexAddress parses a 0x-prefixed hex address, short forms such as 0x3 included.
func ParseHexAddress(s string) (Address, error) {
	var a Address
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return a, fmt.Errorf("hex address %q must start with 0x", s)
	}
	if len(s) == 2 {
		return a, fmt.Errorf("empty hex address")
	}
	normalized := NormalizeAddress(s)
	if len(normalized) != 2+2*AddressLength {
		return a, fmt.Errorf("invalid address length: expected at most 64 hex chars, got %d", len(normalized)-2)
	}
	b, err := hex.DecodeString(normalized[2:])
	if err != nil {
		return a, fmt.Errorf("invalid hex address: %w", err)
	}
	copy(a[:], b)
	return a, nil
}

// ParseBech32Address parses a rooch1... bech32m address.
func ParseBech32Address(s string) (Address, error) {
	var a Address
	hrp, data, version, err := bech32.DecodeGeneric(strings.TrimSpace(s))
	if err != nil {
		return a, fmt.Errorf("invalid bech32 address: %w", err)
	}
	if hrp != Bech32HRP {
		return a, fmt.Errorf("unexpected bech32 prefix %q", hrp)
	}
	if version != bech32.VersionM {
		return a, errors.New("rooch addresses must use bech32m")
	}
	b, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return a, fmt.Errorf("invalid bech32 payload: %w", err)
	}
	if len(b) != AddressLength {
		return a, fmt.Errorf("invalid address length: expected %d bytes, got %d", AddressLength, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// DecodeBitcoinAddress decodes a Bitcoin address of any supported network.
func DecodeBitcoinAddress(s string) (btcutil.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty address")
	}
	var lastErr error
	for _, params := range bitcoinNetParams {
		addr, err := btcutil.DecodeAddress(s, params)
		if err == nil && addr.IsForNet(params) {
			return addr, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("unknown network")
	}
	return nil, fmt.Errorf("invalid bitcoin address: %w", lastErr)
}

// BitcoinAddressBytes returns the Rooch byte encoding of a Bitcoin address:
// a payload type byte followed by the hash, or by version and witness program.
func BitcoinAddressBytes(addr btcutil.Address) ([]byte, error) {
	switch a := addr.(type) {
	case *btcutil.AddressPubKeyHash:
		return append([]byte{bitcoinPayloadPubKeyHash}, a.ScriptAddress()...), nil
	case *btcutil.AddressScriptHash:
		return append([]byte{bitcoinPayloadScriptHash}, a.ScriptAddress()...), nil
	case *btcutil.AddressWitnessPubKeyHash:
		return append([]byte{bitcoinPayloadWitnessProgram, a.WitnessVersion()}, a.WitnessProgram()...), nil
	case *btcutil.AddressWitnessScriptHash:
		return append([]byte{bitcoinPayloadWitnessProgram, a.WitnessVersion()}, a.WitnessProgram()...), nil
	case *btcutil.AddressTaproot:
		return append([]byte{bitcoinPayloadWitnessProgram, a.WitnessVersion()}, a.WitnessProgram()...), nil
	default:
		return nil, fmt.Errorf("unsupported bitcoin address type %T", addr)
	}
}

// FromBitcoinAddress derives the Rooch address mapped to a Bitcoin address:
// blake2b-256 over its Rooch byte encoding.
func FromBitcoinAddress(addr btcutil.Address) (Address, error) {
	b, err := BitcoinAddressBytes(addr)
	if err != nil {
		return Address{}, err
	}
	return Address(blake2b.Sum256(b)), nil
}

// ParseAddress accepts a hex Rooch address, a rooch1... address or a
// Bitcoin address, and returns the Rooch account address it refers to.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Address{}, errors.New("empty address")
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		return ParseHexAddress(s)
	case strings.HasPrefix(strings.ToLower(s), Bech32HRP+"1"):
		return ParseBech32Address(s)
	default:
		btcAddr, err := DecodeBitcoinAddress(s)
		if err != nil {
			return Address{}, err
		}
		return FromBitcoinAddress(btcAddr)
	}
}

// IsValidAddress reports whether s is a Rooch or Bitcoin address.
func IsValidAddress(s string) bool {
	_, err := ParseAddress(s)
	return err == nil
}

// ShortAddress returns the canonical short hex form, e.g. 0x3 for the framework address.
func ShortAddress(a Address) string {
	trimmed := strings.TrimLeft(hex.EncodeToString(a[:]), "0")
	if trimmed == "" {
		return "0x0"
	}
	return "0x" + trimmed
}
