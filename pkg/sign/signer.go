package sign

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Default sizes for generated identity material, in bytes.
const (
	DefaultKeySize  = 64
	DefaultIVSize   = 12
	DefaultSaltSize = 64
)

// derivedKeySize is the AES-256 key length produced by HKDF.
const derivedKeySize = 32

// hkdfInfo provides domain separation for key derivation.
const hkdfInfo = "baselib-sign-v1"

// Signer produces integrity signatures for token material.
//
// Implementations must be deterministic for fixed identity material: the
// same key/iv/salt and input always yield the same signature. Accessors
// must return copies so identity material is never aliased between
// signers.
type Signer interface {
	// Sign returns the signature of data.
	Sign(data []byte) ([]byte, error)
	// Clone returns an independent signer with copied identity material.
	Clone() Signer

	Key() []byte
	SetKey(key []byte)
	IV() []byte
	SetIV(iv []byte)
	Salt() []byte
	SetSalt(salt []byte)
}

// AES is the default Signer. It derives an AES-256 key from its key and
// salt via HKDF-SHA256 and signs by running the input through AES-CBC with
// a fixed zero IV, so the output is deterministic and verifiable by any
// signer holding the same identity material.
type AES struct {
	key  []byte
	iv   []byte
	salt []byte
}

// compile-time contract check
var _ Signer = (*AES)(nil)

// Option configures NewAES.
type Option func(*config)

type config struct {
	key, iv, salt            []byte
	keySize, ivSize, saltSize int
}

// WithKey supplies key material. The slice is copied.
func WithKey(key []byte) Option {
	return func(c *config) { c.key = cloneBytes(key) }
}

// WithIV supplies an initialization vector. The slice is copied.
func WithIV(iv []byte) Option {
	return func(c *config) { c.iv = cloneBytes(iv) }
}

// WithSalt supplies salt material. The slice is copied.
func WithSalt(salt []byte) Option {
	return func(c *config) { c.salt = cloneBytes(salt) }
}

// WithKeySize sets the generated key size when no key is supplied.
func WithKeySize(n int) Option {
	return func(c *config) { c.keySize = n }
}

// WithIVSize sets the generated IV size when no IV is supplied.
func WithIVSize(n int) Option {
	return func(c *config) { c.ivSize = n }
}

// WithSaltSize sets the generated salt size when no salt is supplied.
func WithSaltSize(n int) Option {
	return func(c *config) { c.saltSize = n }
}

// NewAES creates a signer, generating any identity material that was not
// supplied. Returns an error when random generation fails or a configured
// size is not positive.
func NewAES(opts ...Option) (*AES, error) {
	cfg := config{
		keySize:  DefaultKeySize,
		ivSize:   DefaultIVSize,
		saltSize: DefaultSaltSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var err error
	if len(cfg.key) == 0 {
		if cfg.key, err = GenerateRandom(cfg.keySize); err != nil {
			return nil, err
		}
	}
	if len(cfg.iv) == 0 {
		if cfg.iv, err = GenerateRandom(cfg.ivSize); err != nil {
			return nil, err
		}
	}
	if len(cfg.salt) == 0 {
		if cfg.salt, err = GenerateRandom(cfg.saltSize); err != nil {
			return nil, err
		}
	}

	return &AES{key: cfg.key, iv: cfg.iv, salt: cfg.salt}, nil
}

// Sign signs data with the derived AES-256 key.
func (a *AES) Sign(data []byte) ([]byte, error) {
	if len(a.key) == 0 {
		return nil, ErrEmptyKey
	}
	if len(data) == 0 {
		return nil, ErrEmptyData
	}

	key, err := a.deriveKey()
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}

	padded := padPKCS7(data, block.BlockSize())
	out := make([]byte, len(padded))
	// The IV is fixed so the signature is deterministic; confidentiality
	// is not a goal here, only integrity.
	cipher.NewCBCEncrypter(block, make([]byte, block.BlockSize())).CryptBlocks(out, padded)

	return out, nil
}

// Clone returns a deep copy of the signer.
func (a *AES) Clone() Signer {
	return &AES{
		key:  cloneBytes(a.key),
		iv:   cloneBytes(a.iv),
		salt: cloneBytes(a.salt),
	}
}

// Key returns a copy of the key material.
func (a *AES) Key() []byte { return cloneBytes(a.key) }

// SetKey replaces the key material with a copy of key.
func (a *AES) SetKey(key []byte) { a.key = cloneBytes(key) }

// IV returns a copy of the initialization vector.
func (a *AES) IV() []byte { return cloneBytes(a.iv) }

// SetIV replaces the initialization vector with a copy of iv.
func (a *AES) SetIV(iv []byte) { a.iv = cloneBytes(iv) }

// Salt returns a copy of the salt material.
func (a *AES) Salt() []byte { return cloneBytes(a.salt) }

// SetSalt replaces the salt material with a copy of salt.
func (a *AES) SetSalt(salt []byte) { a.salt = cloneBytes(salt) }

// deriveKey stretches key+salt into an AES-256 key.
func (a *AES) deriveKey() ([]byte, error) {
	r := hkdf.New(sha256.New, a.key, a.salt, []byte(hkdfInfo))
	key := make([]byte, derivedKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

// GenerateRandom returns n cryptographically random bytes.
// Returns ErrInvalidSize when n is not positive.
func GenerateRandom(n int) ([]byte, error) {
	if n <= 0 {
		return nil, ErrInvalidSize
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+pad)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
