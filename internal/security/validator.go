// Package security provides validation for notebook file paths.
package security

import (
	"path/filepath"
	"strings"

	"github.com/nbserve/jupyter-mcp/internal/errors"
)

// Validator defines the path validation interface used by the adapter layer.
type Validator interface {
	ValidatePath(path string) error
	SanitizePath(path string) (string, error)
}

// DefaultValidator rejects notebook paths that reach into restricted system
// directories. Relative paths resolve against the working directory.
type DefaultValidator struct {
	allowedPaths []string
	blockedPaths []string
}

// NewDefaultValidator creates a validator with secure defaults.
func NewDefaultValidator() *DefaultValidator {
	return &DefaultValidator{
		blockedPaths: []string{
			"/etc",
			"/usr/bin",
			"/usr/sbin",
			"/sbin",
			"/bin",
			"/sys",
			"/proc",
		},
	}
}

// WithAllowedPaths restricts notebook paths to the given directory roots.
func (v *DefaultValidator) WithAllowedPaths(paths []string) *DefaultValidator {
	v.allowedPaths = make([]string, len(paths))
	copy(v.allowedPaths, paths)
	return v
}

// WithBlockedPaths adds blocked path prefixes to the default list.
func (v *DefaultValidator) WithBlockedPaths(paths []string) *DefaultValidator {
	v.blockedPaths = append(v.blockedPaths, paths...)
	return v
}

// ValidatePath checks whether a notebook path is allowed.
func (v *DefaultValidator) ValidatePath(path string) error {
	if path == "" {
		return errors.Validation("notebook path cannot be empty")
	}

	resolved := filepath.Clean(path)
	if !filepath.IsAbs(resolved) {
		abs, err := filepath.Abs(resolved)
		if err != nil {
			return errors.Validation("cannot resolve notebook path: %v", err)
		}
		resolved = abs
	}
	if real, err := filepath.EvalSymlinks(resolved); err == nil {
		resolved = real
	}

	for _, blocked := range v.blockedPaths {
		if strings.HasPrefix(resolved, blocked) {
			return errors.Validation("notebook path accesses restricted directory %s", blocked)
		}
	}

	if len(v.allowedPaths) > 0 {
		allowed := false
		for _, root := range v.allowedPaths {
			if strings.HasPrefix(resolved, root) {
				allowed = true
				break
			}
		}
		if !allowed {
			return errors.Validation("notebook path is not in an allowed directory")
		}
	}

	return nil
}

// SanitizePath cleans and validates a notebook path.
func (v *DefaultValidator) SanitizePath(path string) (string, error) {
	if err := v.ValidatePath(path); err != nil {
		return "", err
	}
	return filepath.Clean(path), nil
}
