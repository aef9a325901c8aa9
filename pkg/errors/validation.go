package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateToken validates a single command-line token such as a build goal
// or option. The token is expected to be trimmed already.
//
// The validation rules:
//   - No empty tokens
//   - No whitespace (a token is one argv element)
//   - No control characters or null bytes
func ValidateToken(kind, token string) error {
	if token == "" {
		return New(ErrCodeInvalidInput, "%s cannot be blank", kind)
	}
	for _, r := range token {
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "%s must be a single token: %q", kind, token)
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", kind)
		}
	}
	return nil
}

// ValidatePropertyKey validates a build property key.
// Keys must be non-blank, contain no whitespace and no '='.
func ValidatePropertyKey(key string) error {
	if err := ValidateToken("property key", key); err != nil {
		return err
	}
	if strings.Contains(key, "=") {
		return New(ErrCodeInvalidInput, "property key cannot contain '=': %q", key)
	}
	return nil
}

// mavenIDRegex matches valid Maven groupId and artifactId segments.
var mavenIDRegex = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// ValidateMavenID validates a Maven groupId or artifactId.
// It rejects blank values and characters Maven does not allow in coordinates.
func ValidateMavenID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "%s cannot be blank", kind)
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "%s too long (max 256 characters)", kind)
	}
	if !mavenIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid %s: %q", kind, id)
	}
	return nil
}

// ValidateDirectory validates a working directory argument.
// Only syntactic checks are performed; existence is checked by the caller.
func ValidateDirectory(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return New(ErrCodeInvalidInput, "working directory cannot be blank")
	}
	for _, r := range dir {
		if r == '\x00' {
			return New(ErrCodeInvalidInput, "working directory contains a null byte")
		}
	}
	return nil
}
