// Package cmdsafety classifies shell commands before they run. It
// splits the world three ways: commands safe enough to auto-approve,
// commands dangerous enough to refuse outright, and everything else,
// which is handed back to the caller's normal permission flow.
//
// Classification is deliberately conservative with compound commands:
// any shell metacharacter that could chain or substitute commands
// disqualifies a command from the safe list entirely.
package cmdsafety

import "strings"

// Verdict is the outcome of classifying one command.
type Verdict int

const (
	// Unhandled means the classifier has no opinion; the surrounding
	// permission system decides.
	Unhandled Verdict = iota
	// Allow means the command matched the safe list.
	Allow
	// Deny means the command matched a blocked pattern.
	Deny
)

// Decision pairs a verdict with the operator-facing reason.
type Decision struct {
	Verdict Verdict
	Reason  string
}

// shellMetacharacters enable chaining, substitution, or injection.
// A command containing any of these never matches the safe list.
var shellMetacharacters = []string{
	";", "&&", "||", "|", "$(", "`", "${{", "\n", "\r",
}

// dangerousPatterns are refused wherever they appear inside a compound
// command, case-insensitively.
var dangerousPatterns = []string{
	"git push",
	"git reset --hard",
	"git clean -fd",
	"push --force",
	"push -f",
	"rm -rf",
	"rm -fr",
	"rmdir /s",
	"del /f",
	"del /s",
	"format ",
	"mkfs",
	"dd if=",
	"> /dev/",
	"chmod 777",
	"chmod -r 777",
	"chown ",
	"chgrp ",
	"curl | sh",
	"curl |sh",
	"wget | sh",
	"wget |sh",
	"curl | bash",
	"wget | bash",
	"sudo ",
	"su -",
	"doas ",
	"crontab",
	"at ",
	"schtasks",
	"nc -",
	"netcat",
	"ncat",
	"base64 -d",
	"base64 --decode",
	"eval ",
	"exec ",
	":(){",
	":()",
}

// blockedPrefixes are refused when a simple command starts with them.
var blockedPrefixes = []string{
	"git push",
	"git reset --hard",
	"git clean",
	"sudo rm",
	"sudo ",
	"rm -rf",
	"rm -fr",
}

// exactSafeCommands are read-only operations approved verbatim.
var exactSafeCommands = map[string]bool{
	"git status":        true,
	"git diff":          true,
	"git log":           true,
	"git branch":        true,
	"git branch -a":     true,
	"git branch -r":     true,
	"git remote -v":     true,
	"git stash list":    true,
	"git worktree list": true,
	"pwd":               true,
	"whoami":            true,
	"date":              true,
	"uname":             true,
	"uname -a":          true,
	"node --version":    true,
	"npm --version":     true,
	"python --version":  true,
	"python3 --version": true,
	"php --version":     true,
	"git --version":     true,
	"go version":        true,
}

// prefixRule approves commands starting with Prefix unless one of the
// Deny substrings appears. Exact restricts the rule to the bare prefix.
type prefixRule struct {
	Prefix string
	Deny   []string
	Exact  bool
}

var safePrefixes = []prefixRule{
	{Prefix: "git log "},
	{Prefix: "git diff "},
	{Prefix: "git show "},
	{Prefix: "git status "},
	{Prefix: "git branch ", Deny: []string{"-d", "-D", "--delete", "-m", "-M", "--move"}},

	{Prefix: "git add "},
	{Prefix: "git stash"},
	{Prefix: "git checkout -b "},
	{Prefix: "git switch -c "},
	{Prefix: "git commit "},
	{Prefix: "git worktree add "},

	{Prefix: "ls "},
	{Prefix: "ls", Exact: true},
	{Prefix: "dir "},
	{Prefix: "dir", Exact: true},
	{Prefix: "find ", Deny: []string{"-exec", "-delete", "-ok"}},
	{Prefix: "cat "},
	{Prefix: "head "},
	{Prefix: "tail "},
	{Prefix: "wc "},
	{Prefix: "grep "},
	{Prefix: "which "},
	{Prefix: "where "},
	{Prefix: "type "},
	{Prefix: "file "},
	{Prefix: "stat "},

	{Prefix: "mkdir ", Deny: []string{"/etc", "/usr", "/bin", "/var", "/root", `C:\Windows`, `C:\Program`}},
	{Prefix: "touch ", Deny: []string{"/etc", "/usr", "/bin", "/var", "/root"}},

	{Prefix: "npm run "},
	{Prefix: "npm test"},
	{Prefix: "npm install", Deny: []string{"-g", "--global"}},
	{Prefix: "npm ci"},
	{Prefix: "npm audit"},
	{Prefix: "yarn test"},
	{Prefix: "yarn install"},
	{Prefix: "yarn run "},
	{Prefix: "pnpm test"},
	{Prefix: "pnpm install"},
	{Prefix: "pnpm run "},
	{Prefix: "composer install"},
	{Prefix: "composer update"},
	{Prefix: "composer dump-autoload"},
	{Prefix: "cargo build"},
	{Prefix: "cargo test"},
	{Prefix: "cargo check"},
	{Prefix: "go build"},
	{Prefix: "go test"},
	{Prefix: "go vet"},
	{Prefix: "go mod "},

	{Prefix: "npx tsc"},
	{Prefix: "npx eslint"},
	{Prefix: "npx prettier"},
	{Prefix: "php -l "},
	{Prefix: "python -m py_compile"},
	{Prefix: "python3 -m py_compile"},
	{Prefix: "python -m pytest"},
	{Prefix: "python3 -m pytest"},
	{Prefix: "phpunit"},
	{Prefix: "pytest"},

	{Prefix: "test "},
	{Prefix: "[ "},
}

// Classify decides what to do with a shell command about to execute.
// The empty command is Unhandled.
func Classify(command string) Decision {
	if command == "" {
		return Decision{Verdict: Unhandled}
	}

	if hasShellMetacharacters(command) {
		// Compound command. Refuse it only if a dangerous pattern
		// appears anywhere; otherwise stand aside.
		if hasDangerousPattern(command) {
			return Decision{
				Verdict: Deny,
				Reason:  "Blocked: Command contains dangerous patterns with shell operators",
			}
		}
		return Decision{Verdict: Unhandled}
	}

	if hasBlockedPrefix(command) {
		return Decision{
			Verdict: Deny,
			Reason:  "Blocked: This command requires manual execution",
		}
	}

	if isSafe(command) {
		return Decision{Verdict: Allow, Reason: "Auto-approved safe command"}
	}

	return Decision{Verdict: Unhandled}
}

func hasShellMetacharacters(command string) bool {
	for _, m := range shellMetacharacters {
		if strings.Contains(command, m) {
			return true
		}
	}
	return false
}

func hasDangerousPattern(command string) bool {
	lower := strings.ToLower(command)
	for _, p := range dangerousPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func hasBlockedPrefix(command string) bool {
	lower := strings.ToLower(strings.TrimSpace(command))
	for _, p := range blockedPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func isSafe(command string) bool {
	trimmed := strings.TrimSpace(command)
	if exactSafeCommands[trimmed] {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, rule := range safePrefixes {
		if rule.Exact {
			if trimmed == rule.Prefix {
				return true
			}
			continue
		}
		if !strings.HasPrefix(trimmed, rule.Prefix) {
			continue
		}
		denied := false
		for _, d := range rule.Deny {
			if strings.Contains(lower, strings.ToLower(d)) {
				denied = true
				break
			}
		}
		if denied {
			return false
		}
		return true
	}
	return false
}
