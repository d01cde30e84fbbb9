package xrpl

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // account ids are defined over RIPEMD-160
)

const (
	alphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

	accountIDPrefix  byte = 0x00
	familySeedPrefix byte = 0x21
	seedEntropySize       = 16
	accountIDSize         = 20
)

var (
	ErrInvalidSeed     = errors.New("invalid family seed")
	ErrInvalidAddress  = errors.New("invalid classic address")
	ErrInvalidChecksum = errors.New("base58 checksum mismatch")

	bigRadix = big.NewInt(58)
	bigZero  = big.NewInt(0)
)

// Wallet is a secp256k1 ledger keypair identified by its classic address
type Wallet struct {
	Address   string
	Seed      string
	PublicKey string
}

// GenerateWallet creates a wallet from fresh random seed entropy
func GenerateWallet() (*Wallet, error) {
	entropy := make([]byte, seedEntropySize)
	if _, err := io.ReadFull(rand.Reader, entropy); err != nil {
		return nil, fmt.Errorf("failed to read seed entropy: %w", err)
	}
	return walletFromEntropy(entropy)
}

// WalletFromSeed restores a wallet from an encoded family seed (s...)
func WalletFromSeed(seed string) (*Wallet, error) {
	payload, err := decodeCheck(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if len(payload) != 1+seedEntropySize || payload[0] != familySeedPrefix {
		return nil, ErrInvalidSeed
	}
	return walletFromEntropy(payload[1:])
}

func walletFromEntropy(entropy []byte) (*Wallet, error) {
	priv, err := deriveAccountKey(entropy)
	if err != nil {
		return nil, err
	}
	pub := priv.PubKey().SerializeCompressed()

	return &Wallet{
		Address:   encodeCheck(accountIDPrefix, accountID(pub)),
		Seed:      encodeCheck(familySeedPrefix, entropy),
		PublicKey: strings.ToUpper(hex.EncodeToString(pub)),
	}, nil
}

// deriveAccountKey walks the secp256k1 family generator for account 0
func deriveAccountKey(entropy []byte) (*secp256k1.PrivateKey, error) {
	root, err := firstValidScalar(entropy)
	if err != nil {
		return nil, err
	}
	rootPub := secp256k1.NewPrivateKey(root).PubKey().SerializeCompressed()

	prefix := make([]byte, 0, len(rootPub)+4)
	prefix = append(prefix, rootPub...)
	prefix = binary.BigEndian.AppendUint32(prefix, 0)
	tweak, err := firstValidScalar(prefix)
	if err != nil {
		return nil, err
	}

	var key secp256k1.ModNScalar
	key.Add2(root, tweak)
	if key.IsZero() {
		return nil, errors.New("derived zero private key")
	}
	return secp256k1.NewPrivateKey(&key), nil
}

func firstValidScalar(prefix []byte) (*secp256k1.ModNScalar, error) {
	buf := make([]byte, len(prefix)+4)
	copy(buf, prefix)
	for seq := uint32(0); seq < 0xffffffff; seq++ {
		binary.BigEndian.PutUint32(buf[len(prefix):], seq)
		half := sha512Half(buf)

		var s secp256k1.ModNScalar
		if overflow := s.SetByteSlice(half); overflow || s.IsZero() {
			continue
		}
		return &s, nil
	}
	return nil, errors.New("no valid scalar for seed")
}

func sha512Half(b []byte) []byte {
	sum := sha512.Sum512(b)
	return sum[:32]
}

func accountID(pub []byte) []byte {
	sha := sha256.Sum256(pub)
	h := ripemd160.New()
	h.Write(sha[:])
	return h.Sum(nil)
}

// IsValidClassicAddress reports whether s decodes to a 20-byte account id
func IsValidClassicAddress(s string) bool {
	payload, err := decodeCheck(s)
	if err != nil {
		return false
	}
	return len(payload) == 1+accountIDSize && payload[0] == accountIDPrefix
}

func encodeCheck(prefix byte, payload []byte) string {
	buf := make([]byte, 0, 1+len(payload)+4)
	buf = append(buf, prefix)
	buf = append(buf, payload...)
	buf = append(buf, checksum(buf)...)
	return encodeBase58(buf)
}

func decodeCheck(s string) ([]byte, error) {
	raw, err := decodeBase58(s)
	if err != nil {
		return nil, err
	}
	if len(raw) < 5 {
		return nil, ErrInvalidAddress
	}
	body, sum := raw[:len(raw)-4], raw[len(raw)-4:]
	if !bytes.Equal(checksum(body), sum) {
		return nil, ErrInvalidChecksum
	}
	return body, nil
}

func checksum(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:4]
}

func encodeBase58(b []byte) string {
	x := new(big.Int).SetBytes(b)
	mod := new(big.Int)
	out := make([]byte, 0, len(b)*138/100+1)
	for x.Cmp(bigZero) > 0 {
		x.DivMod(x, bigRadix, mod)
		out = append(out, alphabet[mod.Int64()])
	}
	for _, c := range b {
		if c != 0 {
			break
		}
		out = append(out, alphabet[0])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

func decodeBase58(s string) ([]byte, error) {
	if s == "" {
		return nil, ErrInvalidAddress
	}
	x := new(big.Int)
	for _, r := range s {
		idx := strings.IndexRune(alphabet, r)
		if idx < 0 {
			return nil, fmt.Errorf("invalid base58 character %q", r)
		}
		x.Mul(x, bigRadix)
		x.Add(x, big.NewInt(int64(idx)))
	}
	decoded := x.Bytes()

	leading := 0
	for leading < len(s) && s[leading] == alphabet[0] {
		leading++
	}
	out := make([]byte, leading+len(decoded))
	copy(out[leading:], decoded)
	return out, nil
}
