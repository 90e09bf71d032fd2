package keys

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/fystack/rooch-wallet-plugin/internal/rpc/rooch"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/constant"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/enum"
)

// Keypair signs Rooch transactions with a secp256k1 key and knows the
// Bitcoin and Rooch addresses it controls.
type Keypair struct {
	priv    *btcec.PrivateKey
	network enum.NetworkType
}

var _ rooch.Signer = (*Keypair)(nil)

func NewKeypair(parsed *ParsedKeypair, network enum.NetworkType) *Keypair {
	priv, _ := btcec.PrivKeyFromBytes(parsed.SecretKey[:])
	return &Keypair{priv: priv, network: network}
}

// FromSettings builds the wallet keypair from BITCOIN_PRIVATE_KEY and ROOCH_NETWORK.
func FromSettings(settings Settings) (*Keypair, error) {
	parsed, err := ParseKeypair(settings)
	if err != nil {
		return nil, err
	}
	return NewKeypair(parsed, NetworkFromSettings(settings)), nil
}

// NetworkFromSettings reads ROOCH_NETWORK, defaulting to mainnet.
func NetworkFromSettings(settings Settings) enum.NetworkType {
	network := enum.NetworkType(strings.ToLower(strings.TrimSpace(settings.GetSetting(constant.SettingNetwork))))
	if !network.IsValid() {
		return enum.NetworkMainnet
	}
	return network
}

// NetParams maps a Rooch network to the Bitcoin network its addresses use.
func NetParams(network enum.NetworkType) *chaincfg.Params {
	if network == enum.NetworkTestnet {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}

// PublicKey returns the 33-byte compressed public key.
func (k *Keypair) PublicKey() []byte {
	return k.priv.PubKey().SerializeCompressed()
}

// Sign returns the 64-byte r||s signature over sha256(msg), normalized to low S.
func (k *Keypair) Sign(msg []byte) ([]byte, error) {
	digest := rooch.SignDigest(msg)
	sig := ecdsa.SignCompact(k.priv, digest[:], true)
	// Drop the recovery header byte.
	return sig[1:], nil
}

// BitcoinAddress returns the BIP-86 key-path taproot address of the key.
func (k *Keypair) BitcoinAddress() (*btcutil.AddressTaproot, error) {
	outputKey := txscript.ComputeTaprootKeyNoScript(k.priv.PubKey())
	addr, err := btcutil.NewAddressTaproot(schnorr.SerializePubKey(outputKey), NetParams(k.network))
	if err != nil {
		return nil, fmt.Errorf("derive taproot address: %w", err)
	}
	return addr, nil
}

// BitcoinAddressString returns the encoded taproot address of the key.
func (k *Keypair) BitcoinAddressString() (string, error) {
	addr, err := k.BitcoinAddress()
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

// RoochAddress returns the Rooch account mapped to the key's Bitcoin address.
func (k *Keypair) RoochAddress() rooch.Address {
	addr, err := k.BitcoinAddress()
	if err != nil {
		return rooch.Address{}
	}
	roochAddr, err := rooch.FromBitcoinAddress(addr)
	if err != nil {
		return rooch.Address{}
	}
	return roochAddr
}

// ParseBitcoinAddress derives the wallet's Bitcoin address from runtime settings.
func ParseBitcoinAddress(settings Settings) (*btcutil.AddressTaproot, error) {
	kp, err := FromSettings(settings)
	if err != nil {
		return nil, err
	}
	return kp.BitcoinAddress()
}

// ShortAddress abbreviates s as its first start and last end characters.
func ShortAddress(s string, start, end int) string {
	if s == "" {
		return ""
	}
	if start < 0 || end < 0 || len(s) <= start+end {
		return s
	}
	return s[:start] + "..." + s[len(s)-end:]
}
