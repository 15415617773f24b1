package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// Service encrypts and decrypts token material before/after persistence.
type Service interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(encoded string) (string, error)
}

const (
	ivSize  = 12
	tagSize = 16
	keySize = 32

	// scrypt cost parameters. The derivation runs once per process, so a
	// deliberately slow setting costs nothing per request.
	scryptN = 32768
	scryptR = 8
	scryptP = 1
)

// kdfSalt is fixed: one encryption secret per deployment means one derived
// key per deployment. Rotating the secret invalidates every stored
// ciphertext; the protected refresh tokens are re-issued by providers, so
// a forced reconnect is the accepted recovery path.
var kdfSalt = []byte("recall-credential-cipher-v1")

var (
	// ErrEmptyPlaintext rejects encryption of empty values, which would
	// otherwise persist a ciphertext that decrypts to nothing useful.
	ErrEmptyPlaintext = errors.New("plaintext must not be empty")

	// ErrFormat means the encoded value is not three colon-delimited
	// base64 fields of the expected sizes.
	ErrFormat = errors.New("malformed encrypted value")

	// ErrAuthentication means tag verification failed: the ciphertext was
	// tampered with or encrypted under a different key. It must always
	// propagate; there is no fallback to returning unverified plaintext.
	ErrAuthentication = errors.New("ciphertext authentication failed")
)

// Cipher is an AES-256-GCM Service keyed by scrypt from the deployment's
// encryption secret. It holds no mutable state and is safe for concurrent
// use.
type Cipher struct {
	gcm cipher.AEAD
}

// NewCipher derives the AES key from the encryption secret and prepares
// the AEAD. The secret must be at least 32 characters; shorter secrets are
// a deployment error that the startup guard should have caught.
func NewCipher(encryptionSecret string) (*Cipher, error) {
	if len(encryptionSecret) < 32 {
		return nil, fmt.Errorf("encryption secret must be at least 32 characters, got %d", len(encryptionSecret))
	}

	key, err := scrypt.Key([]byte(encryptionSecret), kdfSalt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Cipher{gcm: gcm}, nil
}

// Encrypt seals plaintext under a fresh random IV and encodes the result
// as iv:tag:ciphertext in base64. IVs are never reused: repeating one
// under the same GCM key breaks confidentiality outright.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPlaintext
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	// Seal returns ciphertext || tag.
	sealed := c.gcm.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	enc := base64.StdEncoding
	return enc.EncodeToString(iv) + ":" + enc.EncodeToString(tag) + ":" + enc.EncodeToString(ciphertext), nil
}

// Decrypt decodes an iv:tag:ciphertext value and opens it. A structural
// problem is ErrFormat; a failed tag check is ErrAuthentication.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	parts := strings.Split(encoded, ":")
	if len(parts) != 3 {
		return "", ErrFormat
	}

	enc := base64.StdEncoding
	iv, err := enc.DecodeString(parts[0])
	if err != nil || len(iv) != ivSize {
		return "", ErrFormat
	}
	tag, err := enc.DecodeString(parts[1])
	if err != nil || len(tag) != tagSize {
		return "", ErrFormat
	}
	ciphertext, err := enc.DecodeString(parts[2])
	if err != nil {
		return "", ErrFormat
	}

	plaintext, err := c.gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrAuthentication
	}

	return string(plaintext), nil
}
