package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/fystack/rooch-wallet-plugin/pkg/common/constant"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/enum"
)

const (
	SecretKeyLength = 32

	wifVersionMainnet  byte = 0x80
	wifVersionTestnet  byte = 0xef
	wifCompressionFlag byte = 0x01
)

var (
	ErrPrivateKeyNotSet = errors.New("BITCOIN_PRIVATE_KEY is not set")
	ErrInvalidWIF       = errors.New("Invalid Bitcoin WIF private key")
)

// Settings is the key-value lookup the agent runtime exposes.
type Settings interface {
	GetSetting(name string) string
}

// ParsedKeypair is raw signing material decoded from a WIF string.
type ParsedKeypair struct {
	Schema    enum.KeySchema
	SecretKey [SecretKeyLength]byte
}

// ParseKeypair decodes the BITCOIN_PRIVATE_KEY setting.
func ParseKeypair(settings Settings) (*ParsedKeypair, error) {
	wif := strings.TrimSpace(settings.GetSetting(constant.SettingPrivateKey))
	if wif == "" {
		return nil, ErrPrivateKeyNotSet
	}
	return DecodeWIF(wif)
}

// DecodeWIF strips the version byte and the optional compression flag from
// a Base58Check WIF string. Every decode failure maps to ErrInvalidWIF.
func DecodeWIF(wif string) (*ParsedKeypair, error) {
	payload, version, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, ErrInvalidWIF
	}
	if version != wifVersionMainnet && version != wifVersionTestnet {
		return nil, ErrInvalidWIF
	}

	switch {
	case len(payload) == SecretKeyLength:
	case len(payload) == SecretKeyLength+1 && payload[SecretKeyLength] == wifCompressionFlag:
	default:
		return nil, ErrInvalidWIF
	}

	// The secret must be a valid scalar in [1, n-1].
	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(payload[:SecretKeyLength]); overflow || scalar.IsZero() {
		return nil, ErrInvalidWIF
	}

	parsed := &ParsedKeypair{Schema: enum.KeySchemaSecp256k1}
	copy(parsed.SecretKey[:], payload[:SecretKeyLength])
	return parsed, nil
}

// GeneratedKey is a freshly generated wallet key.
type GeneratedKey struct {
	WIF       string
	PublicKey string
}

// GenerateWIF creates a random secp256k1 key and encodes it as WIF.
func GenerateWIF(compressed bool, network enum.NetworkType) (*GeneratedKey, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}

	wif, err := btcutil.NewWIF(priv, NetParams(network), compressed)
	if err != nil {
		return nil, fmt.Errorf("encode WIF: %w", err)
	}

	pub := priv.PubKey().SerializeUncompressed()
	if compressed {
		pub = priv.PubKey().SerializeCompressed()
	}
	return &GeneratedKey{WIF: wif.String(), PublicKey: hex.EncodeToString(pub)}, nil
}
