package security

import (
	"path/filepath"
	"testing"
)

func TestValidatePathDefaults(t *testing.T) {
	v := NewDefaultValidator()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty path", "", true},
		{"blocked etc", "/etc/notebooks/x.ipynb", true},
		{"blocked proc", "/proc/1/x.ipynb", true},
		{"traversal into blocked", "/home/user/../../etc/x.ipynb", true},
		{"home path", "/home/user/work.ipynb", false},
		{"relative path", "work.ipynb", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePath(tt.path)
			if tt.wantErr && err == nil {
				t.Errorf("ValidatePath(%q) = nil, want error", tt.path)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidatePath(%q) = %v, want nil", tt.path, err)
			}
		})
	}
}

func TestValidatePathAllowedRoots(t *testing.T) {
	root := t.TempDir()
	v := NewDefaultValidator().WithAllowedPaths([]string{root})

	inside := filepath.Join(root, "nb.ipynb")
	if err := v.ValidatePath(inside); err != nil {
		t.Errorf("ValidatePath(%q) = %v, want nil", inside, err)
	}

	if err := v.ValidatePath("/home/elsewhere/nb.ipynb"); err == nil {
		t.Errorf("Expected paths outside the allowed root to be rejected")
	}
}

func TestValidatePathExtraBlocked(t *testing.T) {
	v := NewDefaultValidator().WithBlockedPaths([]string{"/var/secrets"})

	if err := v.ValidatePath("/var/secrets/nb.ipynb"); err == nil {
		t.Errorf("Expected extra blocked prefix to be enforced")
	}
}

func TestSanitizePath(t *testing.T) {
	v := NewDefaultValidator()

	got, err := v.SanitizePath("/home/user//notebooks/./work.ipynb")
	if err != nil {
		t.Fatalf("SanitizePath failed: %v", err)
	}
	if got != "/home/user/notebooks/work.ipynb" {
		t.Errorf("SanitizePath = %q", got)
	}

	if _, err := v.SanitizePath("/etc/x.ipynb"); err == nil {
		t.Errorf("Expected sanitize to reject blocked paths")
	}
}
