package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// AESCardCipher implements usecase.CardCipher with AES-256-GCM. The nonce is
// prepended to the ciphertext and the whole blob is base64-encoded for
// storage in a text column.
type AESCardCipher struct {
	gcm cipher.AEAD
}

// NewAESCardCipher creates a new AESCardCipher. The key must be exactly 32
// bytes.
func NewAESCardCipher(key string) (*AESCardCipher, error) {
	if len(key) != 32 {
		return nil, errors.New("card cipher key must be exactly 32 bytes")
	}

	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &AESCardCipher{gcm: gcm}, nil
}

// Encrypt encrypts a card number for storage.
func (c *AESCardCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt decrypts a stored card number.
func (c *AESCardCipher) Decrypt(ciphertext string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	nonceSize := c.gcm.NonceSize()
	if len(sealed) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	plaintext, err := c.gcm.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}
