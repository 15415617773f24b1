package crypto

import (
	"encoding/base64"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "unit-test-encryption-secret-0123456789abcdef"
	otherSecret = "another-encryption-secret-fedcba9876543210"
)

// scrypt is deliberately slow, so derive each test key once.
var (
	cipherOnce  sync.Once
	sharedCiph  *Cipher
	sharedOther *Cipher
)

func testCipher(t *testing.T) (*Cipher, *Cipher) {
	t.Helper()
	cipherOnce.Do(func() {
		var err error
		sharedCiph, err = NewCipher(testSecret)
		if err != nil {
			panic(err)
		}
		sharedOther, err = NewCipher(otherSecret)
		if err != nil {
			panic(err)
		}
	})
	return sharedCiph, sharedOther
}

func TestNewCipher_ShortSecret(t *testing.T) {
	c, err := NewCipher("too-short")
	assert.Error(t, err)
	assert.Nil(t, c)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	c, _ := testCipher(t)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"short token", "ya29.a0AfB_byC"},
		{"refresh token", "1//0eXvZ-long-refresh-token-material-0123456789"},
		{"single char", "x"},
		{"unicode", "töken-ünïcode-材料"},
		{"contains colons", "a:b:c:d"},
		{"long", strings.Repeat("token-", 512)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := c.Encrypt(tt.plaintext)
			require.NoError(t, err)
			assert.NotContains(t, encoded, tt.plaintext)

			decrypted, err := c.Decrypt(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, decrypted)
		})
	}
}

func TestEncrypt_Format(t *testing.T) {
	c, _ := testCipher(t)

	encoded, err := c.Encrypt("secret-token")
	require.NoError(t, err)

	parts := strings.Split(encoded, ":")
	require.Len(t, parts, 3)

	iv, err := base64.StdEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	assert.Len(t, iv, ivSize)

	tag, err := base64.StdEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	assert.Len(t, tag, tagSize)
}

func TestEncrypt_EmptyPlaintext(t *testing.T) {
	c, _ := testCipher(t)

	_, err := c.Encrypt("")
	assert.ErrorIs(t, err, ErrEmptyPlaintext)
}

func TestEncrypt_UniqueIVs(t *testing.T) {
	c, _ := testCipher(t)

	seenIV := make(map[string]bool)
	seenCiphertext := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		encoded, err := c.Encrypt("identical-plaintext")
		require.NoError(t, err)

		parts := strings.Split(encoded, ":")
		require.Len(t, parts, 3)
		assert.False(t, seenIV[parts[0]], "iv repeated at iteration %d", i)
		assert.False(t, seenCiphertext[parts[2]], "ciphertext repeated at iteration %d", i)
		seenIV[parts[0]] = true
		seenCiphertext[parts[2]] = true
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	c, _ := testCipher(t)

	valid, err := c.Encrypt("secret-token")
	require.NoError(t, err)
	parts := strings.Split(valid, ":")

	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"one field", "onlyone"},
		{"two fields", parts[0] + ":" + parts[1]},
		{"four fields", valid + ":extra"},
		{"iv not base64", "!!!:" + parts[1] + ":" + parts[2]},
		{"tag not base64", parts[0] + ":!!!:" + parts[2]},
		{"ciphertext not base64", parts[0] + ":" + parts[1] + ":!!!"},
		{"iv wrong size", base64.StdEncoding.EncodeToString([]byte("short")) + ":" + parts[1] + ":" + parts[2]},
		{"tag wrong size", parts[0] + ":" + base64.StdEncoding.EncodeToString([]byte("short")) + ":" + parts[2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decrypt(tt.encoded)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	c, _ := testCipher(t)

	encoded, err := c.Encrypt("secret-token")
	require.NoError(t, err)
	parts := strings.Split(encoded, ":")

	ciphertext, err := base64.StdEncoding.DecodeString(parts[2])
	require.NoError(t, err)

	for i := range ciphertext {
		tampered := make([]byte, len(ciphertext))
		copy(tampered, ciphertext)
		tampered[i] ^= 0xff

		reassembled := parts[0] + ":" + parts[1] + ":" + base64.StdEncoding.EncodeToString(tampered)
		plaintext, err := c.Decrypt(reassembled)
		assert.ErrorIs(t, err, ErrAuthentication, "byte %d", i)
		assert.Empty(t, plaintext)
	}
}

func TestDecrypt_TamperedTag(t *testing.T) {
	c, _ := testCipher(t)

	encoded, err := c.Encrypt("secret-token")
	require.NoError(t, err)
	parts := strings.Split(encoded, ":")

	tag, err := base64.StdEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	for i := range tag {
		tampered := make([]byte, len(tag))
		copy(tampered, tag)
		tampered[i] ^= 0xff

		reassembled := parts[0] + ":" + base64.StdEncoding.EncodeToString(tampered) + ":" + parts[2]
		plaintext, err := c.Decrypt(reassembled)
		assert.ErrorIs(t, err, ErrAuthentication, "byte %d", i)
		assert.Empty(t, plaintext)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	c, other := testCipher(t)

	encoded, err := c.Encrypt("secret-token")
	require.NoError(t, err)

	plaintext, err := other.Decrypt(encoded)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Empty(t, plaintext)
}
