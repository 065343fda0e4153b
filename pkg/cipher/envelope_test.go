package cipher

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() StaticKeyProvider {
	return StaticKeyProvider(bytes.Repeat([]byte{0x42}, KeySize))
}

func TestRoundTrip(t *testing.T) {
	c := New(testKey())
	for _, plaintext := range []string{"", "a", "exactly16bytes!!", `{"game_id":"20240101120000","fen":"8/8/8/8/8/8/8/8 w - - 0 1"}`} {
		env, err := c.Encrypt([]byte(plaintext))
		require.NoError(t, err)
		assert.Len(t, env.IV, aes.BlockSize)
		assert.Zero(t, len(env.Ciphertext)%aes.BlockSize)
		assert.Greater(t, len(env.Ciphertext), len(plaintext), "padding always adds at least one byte")

		got, err := c.Decrypt(env)
		require.NoError(t, err)
		assert.Equal(t, plaintext, string(got))
	}
}

func TestFreshIVPerCall(t *testing.T) {
	c := New(testKey())
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		env, err := c.Encrypt([]byte("same payload"))
		require.NoError(t, err)
		iv := string(env.IV)
		assert.False(t, seen[iv], "iv reused")
		seen[iv] = true
	}
}

func TestTamperDetection(t *testing.T) {
	c := New(testKey())
	env, err := c.Encrypt([]byte(`{"fen":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"}`))
	require.NoError(t, err)

	flip := func(b []byte, bit int) []byte {
		out := append([]byte(nil), b...)
		out[bit/8] ^= 1 << (bit % 8)
		return out
	}

	for bit := 0; bit < len(env.Ciphertext)*8; bit++ {
		tampered := env
		tampered.Ciphertext = flip(env.Ciphertext, bit)
		_, err := c.Decrypt(tampered)
		require.ErrorIs(t, err, ErrIntegrity, "ciphertext bit %d", bit)
	}
	for bit := 0; bit < len(env.HMAC)*8; bit++ {
		tampered := env
		tampered.HMAC = flip(env.HMAC, bit)
		_, err := c.Decrypt(tampered)
		require.ErrorIs(t, err, ErrIntegrity, "tag bit %d", bit)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	env, err := New(testKey()).Encrypt([]byte("secret"))
	require.NoError(t, err)

	other := New(StaticKeyProvider(bytes.Repeat([]byte{0x07}, KeySize)))
	_, err = other.Decrypt(env)
	assert.ErrorIs(t, err, ErrIntegrity)
}

// sealRaw encrypts an already padded buffer and tags it, so the tag check
// passes and the padding check is what fails.
func sealRaw(t *testing.T, key, iv, padded []byte) Envelope {
	t.Helper()
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
	return Envelope{IV: iv, Ciphertext: ct, HMAC: tag(key, ct)}
}

func TestDecryptBadPadding(t *testing.T) {
	key := []byte(testKey())
	iv := make([]byte, aes.BlockSize)
	c := New(testKey())

	tests := map[string][]byte{
		"zero pad byte":    make([]byte, aes.BlockSize),
		"pad byte too big": bytes.Repeat([]byte{0x11}, aes.BlockSize),
		"inconsistent pad": append(bytes.Repeat([]byte{'x'}, 13), 0x01, 0x02, 0x03),
	}
	for name, padded := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decrypt(sealRaw(t, key, iv, padded))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestDecryptMalformed(t *testing.T) {
	key := []byte(testKey())
	c := New(testKey())

	ct := bytes.Repeat([]byte{1}, 15)
	_, err := c.Decrypt(Envelope{IV: make([]byte, 16), Ciphertext: ct, HMAC: tag(key, ct)})
	assert.ErrorIs(t, err, ErrFormat, "misaligned ciphertext")

	env, err := c.Encrypt([]byte("payload"))
	require.NoError(t, err)
	env.IV = env.IV[:15]
	_, err = c.Decrypt(env)
	assert.ErrorIs(t, err, ErrFormat, "short iv")
}

func TestEnvelopeEncoding(t *testing.T) {
	c := New(testKey())
	env, err := c.Encrypt([]byte("payload"))
	require.NoError(t, err)

	data, err := env.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"iv\": ")

	var raw map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 3)
	assert.Equal(t, base64.StdEncoding.EncodeToString(env.IV), raw["iv"])
	assert.Equal(t, base64.StdEncoding.EncodeToString(env.Ciphertext), raw["ciphertext"])
	assert.Equal(t, base64.StdEncoding.EncodeToString(env.HMAC), raw["hmac"])

	decoded, err := DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, env, decoded)
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	c := New(testKey())
	env, err := c.Encrypt([]byte("payload"))
	require.NoError(t, err)
	data, err := env.Encode()
	require.NoError(t, err)

	var raw map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	raw["iv"] = raw["iv"][:len(raw["iv"])-1]
	truncated, err := json.Marshal(raw)
	require.NoError(t, err)

	tests := map[string]string{
		"not json":      "{",
		"missing field": `{"iv":"AAAAAAAAAAAAAAAAAAAAAA==","ciphertext":"AAAAAAAAAAAAAAAAAAAAAA=="}`,
		"bad base64":    `{"iv":"***","ciphertext":"AA==","hmac":"AA=="}`,
		"truncated iv":  string(truncated),
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeEnvelope([]byte(in))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestEncryptRejectsBadKey(t *testing.T) {
	_, err := New(StaticKeyProvider([]byte("short"))).Encrypt([]byte("x"))
	assert.Error(t, err)
}
