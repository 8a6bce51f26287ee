package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

// ErrMalformed is returned when a sealed value cannot be decoded or authenticated.
var ErrMalformed = errors.New("crypto: malformed ciphertext")

// Crypter encrypts and decrypts data using AES-256-GCM.
type Crypter struct {
	aead cipher.AEAD
}

// New creates a Crypter. key must be exactly 32 bytes.
func New(key []byte) *Crypter {
	if len(key) != 32 {
		panic("crypto: key must be 32 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		panic(err)
	}
	return &Crypter{aead: gcm}
}

// NewFromSecret derives a 32-byte key from an arbitrary-length secret.
func NewFromSecret(secret string) *Crypter {
	key := sha256.Sum256([]byte(secret))
	return New(key[:])
}

// Encrypt encrypts plaintext and returns ciphertext with the nonce prepended.
func (c *Crypter) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt decrypts ciphertext produced by Encrypt.
func (c *Crypter) Decrypt(ciphertext []byte) ([]byte, error) {
	n := c.aead.NonceSize()
	if len(ciphertext) < n {
		return nil, ErrMalformed
	}
	nonce, sealed := ciphertext[:n], ciphertext[n:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrMalformed
	}
	return plaintext, nil
}

// SealString encrypts plaintext into a URL-safe string suitable for a cookie value.
func (c *Crypter) SealString(plaintext []byte) (string, error) {
	ct, err := c.Encrypt(plaintext)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(ct), nil
}

// OpenString reverses SealString.
func (c *Crypter) OpenString(sealed string) ([]byte, error) {
	ct, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return nil, ErrMalformed
	}
	return c.Decrypt(ct)
}
