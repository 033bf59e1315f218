// Package seal protects sensitive payload fields prior to the delivery
// stream write. A sealed value has the format
//
//	base64(data) ":" base64(hmac-sha256(data))
//
// which keeps the value transportable through JSON while allowing the
// receiving side to verify integrity before use.
package seal

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// KeySize is the required key length in bytes.
const KeySize = 16

var (
	ErrInvalidKeySize   = fmt.Errorf("seal key must be %d bytes", KeySize)
	ErrInvalidFormat    = errors.New("sealed value must have the format base64(data):base64(mac)")
	ErrInvalidSignature = errors.New("sealed value failed signature verification")
)

// Seal signs the plaintext with the key and returns the sealed value.
func Seal(plaintext, key []byte) (string, error) {
	if len(key) != KeySize {
		return "", ErrInvalidKeySize
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(plaintext)

	return base64.StdEncoding.EncodeToString(plaintext) + ":" +
		base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Open verifies and unpacks a sealed value, returning the original
// plaintext. The MAC comparison is constant-time.
func Open(sealed string, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}

	dataPart, macPart, found := strings.Cut(sealed, ":")
	if !found {
		return nil, ErrInvalidFormat
	}

	plaintext, err := base64.StdEncoding.DecodeString(dataPart)
	if err != nil {
		return nil, fmt.Errorf("%w, details: %v", ErrInvalidFormat, err)
	}
	receivedMac, err := base64.StdEncoding.DecodeString(macPart)
	if err != nil {
		return nil, fmt.Errorf("%w, details: %v", ErrInvalidFormat, err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(plaintext)
	if !hmac.Equal(receivedMac, mac.Sum(nil)) {
		return nil, ErrInvalidSignature
	}

	return plaintext, nil
}
