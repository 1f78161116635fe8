package credentials

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	serviceName       = "geobridge"
	keyPublishableKey = "publishable_key"
	keyTokenSecret    = "token_secret"
)

var ErrNotFound = errors.New("credentials: not found")

func StorePublishableKey(key string) error {
	if err := keyring.Set(serviceName, "app:"+keyPublishableKey, key); err != nil {
		return fmt.Errorf("store publishable key: %w", err)
	}
	return nil
}

func LoadPublishableKey() (string, error) {
	return LoadAppSecret(keyPublishableKey)
}

func DeletePublishableKey() {
	DeleteAppSecret(keyPublishableKey)
}

// TokenSecret returns the key that signs verified location tokens,
// generating and storing one on first use.
func TokenSecret() ([]byte, error) {
	if v, err := LoadAppSecret(keyTokenSecret); err == nil {
		if secret, err := base64.StdEncoding.DecodeString(v); err == nil {
			return secret, nil
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	if err := StoreAppSecret(keyTokenSecret, base64.StdEncoding.EncodeToString(secret)); err != nil {
		return nil, fmt.Errorf("store token secret: %w", err)
	}
	return secret, nil
}

func StoreAppSecret(key string, value string) error {
	return keyring.Set(serviceName, "app:"+key, value)
}

func LoadAppSecret(key string) (string, error) {
	val, err := keyring.Get(serviceName, "app:"+key)
	if err != nil {
		return "", ErrNotFound
	}
	return val, nil
}

func DeleteAppSecret(key string) {
	_ = keyring.Delete(serviceName, "app:"+key)
}
