package statusline

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// keychainTimeout bounds the macOS keychain subprocess.
const keychainTimeout = 3 * time.Second

type credentialsFile struct {
	ClaudeAIOAuth struct {
		AccessToken string `json:"accessToken"`
	} `json:"claudeAiOauth"`
}

// AccessToken finds the OAuth access token for the usage API. It tries
// the plain credentials file first, then the macOS keychain. An empty
// return means no usable credential was found.
func AccessToken(homeDir string) string {
	if tok := tokenFromFile(filepath.Join(homeDir, ".claude", ".credentials.json")); tok != "" {
		return tok
	}
	if runtime.GOOS == "darwin" {
		return tokenFromKeychain()
	}
	return ""
}

func tokenFromFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return parseCredentials(data)
}

func tokenFromKeychain() string {
	ctx, cancel := context.WithTimeout(context.Background(), keychainTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "security",
		"find-generic-password", "-s", "Claude Code-credentials", "-w").Output()
	if err != nil {
		return ""
	}
	return parseCredentials([]byte(strings.TrimSpace(string(out))))
}

func parseCredentials(data []byte) string {
	var creds credentialsFile
	if err := json.Unmarshal(data, &creds); err != nil {
		return ""
	}
	return creds.ClaudeAIOAuth.AccessToken
}
