package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const sessionFile = "bsync-session"

// tokenEnv holds a bearer token, used when no -token flag is given.
const tokenEnv = "BSYNC_TOKEN"

// sessionPath is the file where 'bsync token' stores the token.
var sessionPath = func() string { return filepath.Join(os.TempDir(), sessionFile) }

func saveToken(token string) error {
	if err := os.WriteFile(sessionPath(), []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// resolveToken returns the bearer token to use: flag first, then the
// environment, then the session file. It returns "" if there is none.
func resolveToken(flagValue string) (string, error) {
	if t := strings.TrimSpace(flagValue); t != "" {
		return bearer(t), nil
	}
	if t := strings.TrimSpace(os.Getenv(tokenEnv)); t != "" {
		return bearer(t), nil
	}
	data, err := os.ReadFile(sessionPath())
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return bearer(strings.TrimSpace(string(data))), nil
}

// bearer adds the scheme to a raw token.
func bearer(token string) string {
	if token == "" || strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bearer " + token
}
