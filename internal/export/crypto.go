package export

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keySize          = 32 // AES-256
	nonceSize        = 12 // GCM standard nonce size
	saltSize         = 16
	pbkdf2Iterations = 100000

	envelopeFormat = "semplan-encrypted-v1"
)

var ErrDecrypt = errors.New("decryption failed: wrong passphrase or corrupted file")

// Crypto encrypts backups with a key derived from a passphrase
type Crypto struct {
	key []byte
}

// NewCrypto derives the key from passphrase and salt
func NewCrypto(passphrase string, salt []byte) *Crypto {
	key := pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, keySize, sha256.New)
	return &Crypto{key: key}
}

// GenerateSalt generates a random salt
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// Encrypt seals plaintext with AES-256-GCM. The nonce is prepended.
func (c *Crypto) Encrypt(plaintext []byte) ([]byte, error) {
	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens data produced by Encrypt
func (c *Crypto) Decrypt(data []byte) ([]byte, error) {
	if len(data) < nonceSize {
		return nil, ErrDecrypt
	}
	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

func (c *Crypto) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

type envelope struct {
	Format string `json:"format"`
	Salt   string `json:"salt"`
	Data   string `json:"data"`
}

// Seal wraps plaintext in an encrypted JSON envelope
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	sealed, err := NewCrypto(passphrase, salt).Encrypt(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt: %w", err)
	}
	return json.MarshalIndent(envelope{
		Format: envelopeFormat,
		Salt:   base64.StdEncoding.EncodeToString(salt),
		Data:   base64.StdEncoding.EncodeToString(sealed),
	}, "", "  ")
}

// IsSealed reports whether data looks like an encrypted envelope
func IsSealed(data []byte) bool {
	if !bytes.Contains(data, []byte(envelopeFormat)) {
		return false
	}
	var env envelope
	return json.Unmarshal(data, &env) == nil && env.Format == envelopeFormat
}

// Open decrypts an envelope produced by Seal
func Open(data []byte, passphrase string) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Format != envelopeFormat {
		return nil, ErrDecrypt
	}
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, ErrDecrypt
	}
	sealed, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, ErrDecrypt
	}
	return NewCrypto(passphrase, salt).Decrypt(sealed)
}
