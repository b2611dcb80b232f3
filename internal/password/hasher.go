package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"hash"

	"golang.org/x/crypto/pbkdf2"
)

const (
	AlgorithmSHA256 = "sha256"
	AlgorithmSHA512 = "sha512"
)

// Config tunes the key-derivation parameters. Zero values fall back to the
// defaults used for all stored credentials.
type Config struct {
	Iterations int    `mapstructure:"iterations"`
	SaltSize   int    `mapstructure:"salt_size"`
	KeySize    int    `mapstructure:"key_size"`
	Algorithm  string `mapstructure:"algorithm"`
}

func (c Config) withDefaults() Config {
	if c.Iterations <= 0 {
		c.Iterations = 100_000
	}
	if c.SaltSize <= 0 {
		c.SaltSize = 16
	}
	if c.KeySize <= 0 {
		c.KeySize = 32
	}
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmSHA256
	}
	return c
}

// Hasher derives salted keys from plaintext passwords using PBKDF2.
type Hasher struct {
	config Config
}

func NewHasher(config Config) *Hasher {
	return &Hasher{config: config.withDefaults()}
}

// NewSalt generates a fresh random salt. Salts are never reused between
// passwords.
func (h *Hasher) NewSalt() ([]byte, error) {
	salt := make([]byte, h.config.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

func (h *Hasher) Hash(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, h.config.Iterations, h.config.KeySize, h.digest())
}

// Verify reports whether password matches the expected derived key. The
// comparison is constant-time; a wrong password is not an error.
func (h *Hasher) Verify(password string, salt, expected []byte) bool {
	computed := h.Hash(password, salt)
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

func (h *Hasher) digest() func() hash.Hash {
	if h.config.Algorithm == AlgorithmSHA512 {
		return sha512.New
	}
	return sha256.New
}
