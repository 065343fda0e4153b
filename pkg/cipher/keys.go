package cipher

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// KeyProvider supplies the symmetric key.
type KeyProvider interface {
	Key() ([]byte, error)
}

// StaticKeyProvider returns a fixed key.
type StaticKeyProvider []byte

func (k StaticKeyProvider) Key() ([]byte, error) {
	return []byte(k), nil
}

type keyFile struct {
	Key string `json:"key"`
}

// FileKeyProvider loads the key from a JSON key file on first use and
// creates the file with a random key when it is missing or unreadable.
type FileKeyProvider struct {
	path   string
	logger *zap.Logger
	rand   io.Reader

	once sync.Once
	key  []byte
	err  error
}

func NewFileKeyProvider(path string, logger *zap.Logger) *FileKeyProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileKeyProvider{path: path, logger: logger, rand: rand.Reader}
}

func (p *FileKeyProvider) Key() ([]byte, error) {
	p.once.Do(func() {
		p.key, p.err = p.load()
	})
	return p.key, p.err
}

func (p *FileKeyProvider) load() ([]byte, error) {
	key, err := readKeyFile(p.path)
	if err == nil {
		return key, nil
	}
	if !os.IsNotExist(err) {
		p.logger.Warn("unreadable key file, generating a new key", zap.String("path", p.path), zap.Error(err))
	}

	key = make([]byte, KeySize)
	if _, err := io.ReadFull(p.rand, key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err := writeKeyFile(p.path, key); err != nil {
		// The key still serves this process; saves made now will not be
		// readable by the next one.
		p.logger.Error("failed to persist key", zap.String("path", p.path), zap.Error(err))
	} else {
		p.logger.Info("created key file", zap.String("path", p.path))
	}
	return key, nil
}

func readKeyFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("decode key file: %w", err)
	}
	key, err := base64.StdEncoding.DecodeString(kf.Key)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("key is %d bytes, want %d", len(key), KeySize)
	}
	return key, nil
}

func writeKeyFile(path string, key []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(keyFile{Key: base64.StdEncoding.EncodeToString(key)}, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
