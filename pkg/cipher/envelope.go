// Package cipher seals save-file payloads in an authenticated envelope.
//
// The payload is encrypted with AES-256 in CBC mode under a fresh random IV,
// padded with PKCS#7, and authenticated with SHA-256(key || ciphertext). The
// envelope is stored as JSON with three base64 fields:
//
//	{"iv": "...", "ciphertext": "...", "hmac": "..."}
//
// The key is kept in the clear in a local key file. This guards the save
// file against casual inspection and editing, not against someone who can
// read the key file.
package cipher

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const KeySize = 32

var (
	// ErrIntegrity means the stored tag does not match the ciphertext.
	ErrIntegrity = errors.New("integrity check failed")
	// ErrFormat means the envelope or its padding is malformed.
	ErrFormat = errors.New("malformed envelope")
)

// Envelope is the output of one Encrypt call. Fields hold raw bytes; JSON
// encoding uses standard base64 strings.
type Envelope struct {
	IV         []byte
	Ciphertext []byte
	HMAC       []byte
}

type envelopeJSON struct {
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
	HMAC       string `json:"hmac"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelopeJSON{
		IV:         base64.StdEncoding.EncodeToString(e.IV),
		Ciphertext: base64.StdEncoding.EncodeToString(e.Ciphertext),
		HMAC:       base64.StdEncoding.EncodeToString(e.HMAC),
	})
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw envelopeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	fields := []struct {
		name string
		in   string
		out  *[]byte
	}{
		{"iv", raw.IV, &e.IV},
		{"ciphertext", raw.Ciphertext, &e.Ciphertext},
		{"hmac", raw.HMAC, &e.HMAC},
	}
	for _, f := range fields {
		if f.in == "" {
			return fmt.Errorf("%w: missing %s", ErrFormat, f.name)
		}
		b, err := base64.StdEncoding.DecodeString(f.in)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrFormat, f.name, err)
		}
		*f.out = b
	}
	return nil
}

// Encode renders the envelope the way it is written to disk.
func (e Envelope) Encode() ([]byte, error) {
	return json.MarshalIndent(e, "", "    ")
}

// DecodeEnvelope parses an on-disk envelope.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		if errors.Is(err, ErrFormat) {
			return Envelope{}, err
		}
		return Envelope{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return e, nil
}

// Cipher encrypts and decrypts envelopes with the key from a KeyProvider.
type Cipher struct {
	keys KeyProvider
	rand io.Reader
}

type Option func(*Cipher)

// WithRand replaces the IV source.
func WithRand(r io.Reader) Option {
	return func(c *Cipher) {
		c.rand = r
	}
}

func New(keys KeyProvider, opts ...Option) *Cipher {
	c := &Cipher{keys: keys, rand: rand.Reader}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cipher) Encrypt(plaintext []byte) (Envelope, error) {
	key, err := c.key()
	if err != nil {
		return Envelope{}, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return Envelope{}, fmt.Errorf("init cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return Envelope{}, fmt.Errorf("generate iv: %w", err)
	}

	padded := pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return Envelope{IV: iv, Ciphertext: ciphertext, HMAC: tag(key, ciphertext)}, nil
}

// Decrypt verifies the tag before touching the ciphertext. It returns an
// error wrapping ErrIntegrity on a tag mismatch and ErrFormat on a bad IV,
// misaligned ciphertext or invalid padding.
func (c *Cipher) Decrypt(e Envelope) ([]byte, error) {
	key, err := c.key()
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(e.HMAC, tag(key, e.Ciphertext)) != 1 {
		return nil, ErrIntegrity
	}
	if len(e.IV) != aes.BlockSize {
		return nil, fmt.Errorf("%w: iv is %d bytes", ErrFormat, len(e.IV))
	}
	if len(e.Ciphertext) == 0 || len(e.Ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not a multiple of the block size", ErrFormat)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	padded := make([]byte, len(e.Ciphertext))
	cipher.NewCBCDecrypter(block, e.IV).CryptBlocks(padded, e.Ciphertext)
	return unpad(padded, aes.BlockSize)
}

func (c *Cipher) key() ([]byte, error) {
	key, err := c.keys.Key()
	if err != nil {
		return nil, fmt.Errorf("load key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("load key: want %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

func tag(key, ciphertext []byte) []byte {
	h := sha256.New()
	h.Write(key)
	h.Write(ciphertext)
	return h.Sum(nil)
}

func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(append(make([]byte, 0, len(b)+n), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, fmt.Errorf("%w: bad padded length", ErrFormat)
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size {
		return nil, fmt.Errorf("%w: bad padding", ErrFormat)
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, fmt.Errorf("%w: bad padding", ErrFormat)
		}
	}
	return b[:len(b)-n], nil
}
