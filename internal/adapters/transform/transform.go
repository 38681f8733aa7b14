// Package transform provides the symmetric stream ciphers benchmarked by the
// sampler, together with the key material and payload they share.
package transform

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20"

	"github.com/ghalamif/CipherPulse/internal/ports"
)

const (
	AES256CFB = "aes-256-cfb"
	AES256CTR = "aes-256-ctr"
	ChaCha20  = "chacha20"

	// DefaultBlockSize is the size of the ReferenceBlock payload.
	DefaultBlockSize = 10 << 20
)

// Names lists every supported transform.
var Names = []string{AES256CFB, AES256CTR, ChaCha20}

// Supported reports whether name is a known transform.
func Supported(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// CryptoContext is the key and IV shared by every benchmark in a session.
// Reusing them is fine because ciphertext is discarded.
type CryptoContext struct {
	Key [32]byte
	IV  [16]byte
}

// NewCryptoContext fills key and IV from r; pass nil for crypto/rand.
func NewCryptoContext(r io.Reader) (CryptoContext, error) {
	if r == nil {
		r = rand.Reader
	}
	var cc CryptoContext
	if _, err := io.ReadFull(r, cc.Key[:]); err != nil {
		return cc, fmt.Errorf("generate key: %w", err)
	}
	if _, err := io.ReadFull(r, cc.IV[:]); err != nil {
		return cc, fmt.Errorf("generate iv: %w", err)
	}
	return cc, nil
}

// NewReferenceBlock returns size random bytes from r; pass nil for crypto/rand.
func NewReferenceBlock(r io.Reader, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("reference block size must be > 0, got %d", size)
	}
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("generate reference block: %w", err)
	}
	return buf, nil
}

// New builds the named transform over cc.
func New(name string, cc CryptoContext) (ports.Transform, error) {
	switch name {
	case AES256CFB, AES256CTR:
		block, err := aes.NewCipher(cc.Key[:])
		if err != nil {
			return nil, fmt.Errorf("aes: %w", err)
		}
		if name == AES256CTR {
			return &aesCTR{block: block, iv: cc.IV}, nil
		}
		return &aesCFB{block: block, iv: cc.IV}, nil
	case ChaCha20:
		c := &chachaStream{key: cc.Key}
		copy(c.nonce[:], cc.IV[:chacha20.NonceSize])
		if _, err := c.stream(); err != nil {
			return nil, fmt.Errorf("chacha20: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown transform %q", name)
	}
}

type aesCFB struct {
	block cipher.Block
	iv    [16]byte
}

func (a *aesCFB) Name() string { return AES256CFB }

func (a *aesCFB) Encrypt(dst, src []byte) {
	cipher.NewCFBEncrypter(a.block, a.iv[:]).XORKeyStream(dst, src)
}

func (a *aesCFB) Decrypt(dst, src []byte) {
	cipher.NewCFBDecrypter(a.block, a.iv[:]).XORKeyStream(dst, src)
}

type aesCTR struct {
	block cipher.Block
	iv    [16]byte
}

func (a *aesCTR) Name() string { return AES256CTR }

func (a *aesCTR) Encrypt(dst, src []byte) {
	cipher.NewCTR(a.block, a.iv[:]).XORKeyStream(dst, src)
}

// CTR is its own inverse.
func (a *aesCTR) Decrypt(dst, src []byte) { a.Encrypt(dst, src) }

type chachaStream struct {
	key   [chacha20.KeySize]byte
	nonce [chacha20.NonceSize]byte
}

func (c *chachaStream) Name() string { return ChaCha20 }

func (c *chachaStream) stream() (*chacha20.Cipher, error) {
	return chacha20.NewUnauthenticatedCipher(c.key[:], c.nonce[:])
}

func (c *chachaStream) Encrypt(dst, src []byte) {
	s, err := c.stream()
	if err != nil {
		// key and nonce sizes are fixed by the array types and checked in New
		panic(err)
	}
	s.XORKeyStream(dst, src)
}

func (c *chachaStream) Decrypt(dst, src []byte) { c.Encrypt(dst, src) }

var (
	_ ports.Transform = (*aesCFB)(nil)
	_ ports.Transform = (*aesCTR)(nil)
	_ ports.Transform = (*chachaStream)(nil)
)
