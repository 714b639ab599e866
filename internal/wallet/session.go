package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// sessionFilePath returns the per-user session cache file.
// Uses the OS cache directory with 0600 permissions so only the current
// user can read it.
//
//	macOS:   ~/Library/Caches/pincli/session.json
//	Linux:   ~/.cache/pincli/session.json
//	Windows: %LocalAppData%\pincli\session.json
func sessionFilePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "pincli", "session.json")
}

// loadSessionKeys reads the session file and returns the key map.
// Returns an empty map (never nil) on any error.
func loadSessionKeys() map[string]string {
	data, err := os.ReadFile(sessionFilePath())
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return make(map[string]string)
	}
	return m
}

// saveSessionKeys writes the key map to the session file with restrictive
// permissions.
func saveSessionKeys(m map[string]string) error {
	path := sessionFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	_ = os.Chmod(path, 0o600)
	return nil
}

// GetSessionKey returns a cached value for ref, or ("", false) if not cached.
func GetSessionKey(ref string) (string, bool) {
	m := loadSessionKeys()
	v, ok := m[ref]
	return v, ok
}

// SetSessionKey caches a value under ref for the rest of the session.
func SetSessionKey(ref, value string) error {
	m := loadSessionKeys()
	m[ref] = value
	return saveSessionKeys(m)
}

// ClearSessionKey removes a cached value.
func ClearSessionKey(ref string) error {
	m := loadSessionKeys()
	delete(m, ref)
	return saveSessionKeys(m)
}

// Identity-token session cache. The pin service login yields a short-lived
// identity token; caching it avoids a signature prompt on every action.

func identityRef(address string) string { return "pincli.identity." + address }

// GetSessionIdentity returns the cached identity token for address.
func GetSessionIdentity(address string) (string, bool) {
	return GetSessionKey(identityRef(address))
}

// SetSessionIdentity caches the identity token for address.
func SetSessionIdentity(address, token string) error {
	return SetSessionKey(identityRef(address), token)
}
