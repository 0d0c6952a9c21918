package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	pepperOnce sync.Once
	pepper     string
	pepperFile string
)

// SetPepperPath configures the file the pepper is loaded from. Must be
// called before the first hash or verify; if the file does not exist a
// new pepper is generated and written there.
func SetPepperPath(file string) {
	pepperFile = file
}

func pepperValue() string {
	if pepperFile == "" {
		return ""
	}

	pepperOnce.Do(func() {
		var err error
		pepper, err = loadOrGeneratePepper()
		if err != nil {
			slog.Error("failed to load or generate pepper", slog.Any("err", err))
			os.Exit(1)
		}
	})

	return pepper
}

func loadOrGeneratePepper() (string, error) {
	path := filepath.Clean(pepperFile)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		raw := make([]byte, keyLength)
		if _, err := rand.Read(raw); err != nil {
			return "", err
		}
		value := base64.RawURLEncoding.EncodeToString(raw)
		if err := os.WriteFile(path, []byte(value), 0600); err != nil {
			return "", err
		}
		return value, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 - path comes from service config
	if err != nil {
		return "", err
	}
	return string(data), nil
}
