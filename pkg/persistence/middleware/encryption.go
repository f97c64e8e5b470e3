package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
)

// EncryptedPrefix marks a user_data value written by the encryption middleware.
const EncryptedPrefix = "enc:v1:"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new values.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.UserRecordStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts collected variable
// values with AES-GCM before they reach the durable tier. Profile fields and
// values written without the middleware are returned as stored.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.UserRecordStore) ports.UserRecordStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) SaveVariable(ctx context.Context, userID, name, value string) error {
	ciphertext, err := encrypt([]byte(value), m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt variable %q: %w", name, err)
	}
	sealed := EncryptedPrefix + base64.StdEncoding.EncodeToString(ciphertext)
	return m.next.SaveVariable(ctx, userID, name, sealed)
}

func (m *encryptionMiddleware) LoadUser(ctx context.Context, userID string) (domain.UserRecord, error) {
	rec, err := m.next.LoadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	data, ok := userData(rec)
	if !ok {
		return rec, nil
	}

	for name, raw := range data {
		sealed, ok := raw.(string)
		if !ok {
			if wrapper, isMap := raw.(map[string]any); isMap {
				sealed, ok = wrapper["value"].(string)
			}
		}
		if !ok || !strings.HasPrefix(sealed, EncryptedPrefix) {
			continue
		}

		ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, EncryptedPrefix))
		if err != nil {
			return nil, fmt.Errorf("failed to decode variable %q: %w", name, err)
		}
		plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt variable %q: %w", name, err)
		}
		data[name] = string(plain)
	}

	rec[domain.UserDataKey] = data
	return rec, nil
}

// userData returns user_data as a map, decoding its JSON form if needed.
func userData(rec domain.UserRecord) (map[string]any, bool) {
	switch v := rec[domain.UserDataKey].(type) {
	case map[string]any:
		return v, true
	case string:
		var out map[string]any
		if err := json.Unmarshal([]byte(v), &out); err != nil || out == nil {
			return nil, false
		}
		return out, true
	}
	return nil, false
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
