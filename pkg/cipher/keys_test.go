package cipher

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileKeyProviderCreatesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "encryption_keys.json")
	p := NewFileKeyProvider(path, zap.NewNop())

	key, err := p.Key()
	require.NoError(t, err)
	assert.Len(t, key, KeySize)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var kf map[string]string
	require.NoError(t, json.Unmarshal(data, &kf))
	stored, err := base64.StdEncoding.DecodeString(kf["key"])
	require.NoError(t, err)
	assert.Equal(t, key, stored)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileKeyProviderReusesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encryption_keys.json")

	first, err := NewFileKeyProvider(path, nil).Key()
	require.NoError(t, err)
	second, err := NewFileKeyProvider(path, nil).Key()
	require.NoError(t, err)
	assert.Equal(t, first, second, "key must not rotate between processes")

	// Data sealed by one provider opens with another reading the same file.
	env, err := New(NewFileKeyProvider(path, nil)).Encrypt([]byte("saved game"))
	require.NoError(t, err)
	got, err := New(NewFileKeyProvider(path, nil)).Decrypt(env)
	require.NoError(t, err)
	assert.Equal(t, "saved game", string(got))
}

func TestFileKeyProviderInitOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encryption_keys.json")
	p := NewFileKeyProvider(path, nil)

	var wg sync.WaitGroup
	keys := make([][]byte, 8)
	for i := range keys {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			keys[i], _ = p.Key()
		}(i)
	}
	wg.Wait()
	for _, k := range keys[1:] {
		assert.Equal(t, keys[0], k)
	}

	// Removing the file after initialization does not change the key.
	require.NoError(t, os.Remove(path))
	again, err := p.Key()
	require.NoError(t, err)
	assert.Equal(t, keys[0], again)
}

func TestFileKeyProviderReplacesCorruptFile(t *testing.T) {
	tests := map[string]string{
		"not json":   "{{",
		"bad base64": `{"key": "!!!"}`,
		"short key":  `{"key": "AAAA"}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "encryption_keys.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			key, err := NewFileKeyProvider(path, nil).Key()
			require.NoError(t, err)
			assert.Len(t, key, KeySize)

			reread, err := readKeyFile(path)
			require.NoError(t, err)
			assert.Equal(t, key, reread)
		})
	}
}

func TestStaticKeyProvider(t *testing.T) {
	key, err := testKey().Key()
	require.NoError(t, err)
	assert.Len(t, key, KeySize)
}
