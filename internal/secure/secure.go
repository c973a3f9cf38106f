// Package secure implements the crypto helpers the kiosk needs at its
// external boundaries: gift-card token encryption for the stored-value host,
// the settings PIN cipher, and display masking for account numbers.
package secure

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

var ErrCiphertextMalformed = errors.New("malformed ciphertext")

// EncryptGiftToken encrypts a gift-card token for the stored-value host with
// AES-256-CBC. The output is base64(iv || ciphertext); the host expects a
// fresh IV per message.
func EncryptGiftToken(key []byte, token string) (string, error) {
	if len(key) != 32 {
		return "", fmt.Errorf("gift card key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	plain := pkcs7Pad([]byte(token), aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(plain))
	iv := out[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], plain)
	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptGiftToken reverses EncryptGiftToken.
func DecryptGiftToken(key []byte, encoded string) (string, error) {
	if len(key) != 32 {
		return "", fmt.Errorf("gift card key must be 32 bytes, got %d", len(key))
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCiphertextMalformed, err)
	}
	if len(raw) < 2*aes.BlockSize || len(raw)%aes.BlockSize != 0 {
		return "", ErrCiphertextMalformed
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	iv, ct := raw[:aes.BlockSize], raw[aes.BlockSize:]
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)
	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// PIN cipher parameters. Key and IV are both derived from the passphrase in
// one PBKDF2 pass over a fixed salt; SHA-1 and the low iteration count match
// the blobs already deployed on the fleet's settings stores.
const (
	pinKDFIterations = 1000
	pinKeyLen        = 32
	pinIVLen         = 16
)

var pinKDFSalt = []byte("Ivan Medvedev")

func pinKeyIV(passphrase string) ([]byte, []byte) {
	derived := pbkdf2.Key([]byte(passphrase), pinKDFSalt, pinKDFIterations, pinKeyLen+pinIVLen, sha1.New)
	return derived[:pinKeyLen], derived[pinKeyLen:]
}

// EncryptPIN encrypts a settings PIN under a passphrase-derived key and IV.
// Output is base64 ciphertext.
func EncryptPIN(passphrase, pin string) (string, error) {
	key, iv := pinKeyIV(passphrase)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	plain := pkcs7Pad([]byte(pin), aes.BlockSize)
	out := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plain)
	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptPIN reverses EncryptPIN. Spaces in transit turn into '+' first; the
// blob may have crossed a URL decoder.
func DecryptPIN(passphrase, encoded string) (string, error) {
	encoded = strings.ReplaceAll(encoded, " ", "+")
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCiphertextMalformed, err)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", ErrCiphertextMalformed
	}
	key, iv := pinKeyIV(passphrase)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	plain := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, raw)
	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// MaskCardNumber hides all but the last four digits of an account number.
func MaskCardNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	padded := make([]byte, len(b)+n)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, ErrCiphertextMalformed
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, ErrCiphertextMalformed
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, ErrCiphertextMalformed
		}
	}
	return b[:len(b)-n], nil
}
