package cache

import "testing"

func TestValidateKey_URL(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"https://example.com:8080/path/to/file?x=1", "misc/https-example.com-8080/path-to-file-x-1"},
		{"http://example.com", "misc/http-example.com/index"},
		{"http://example.com/", "misc/http-example.com/index"},
		{"https://example.com/a/b", "misc/https-example.com/a-b"},
	}

	for _, tt := range tests {
		got, ok := ValidateKey(tt.key)
		if !ok {
			t.Errorf("ValidateKey(%q) rejected", tt.key)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestValidateKey_Path(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"themes/my-theme.zip", "themes/my-theme.zip"},
		{"a b/c", "a-b/c"},
		{"plugins//cache.json", "plugins/cache.json"},
	}

	for _, tt := range tests {
		got, ok := ValidateKey(tt.key)
		if !ok {
			t.Errorf("ValidateKey(%q) rejected", tt.key)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestValidateKey_Traversal(t *testing.T) {
	got, ok := ValidateKey("../../etc/passwd")
	if !ok || got != "etc/passwd" {
		t.Errorf("Expected traversal segments dropped, got %q (%v)", got, ok)
	}

	got, ok = ValidateKey("a/./../b")
	if !ok || got != "a/b" {
		t.Errorf("Expected dot segments dropped, got %q (%v)", got, ok)
	}

	// A segment of only dots must not survive sanitization as-is.
	got, ok = ValidateKey("a/.../b")
	if !ok || got != "a/-/b" {
		t.Errorf("Expected dots-only segment replaced, got %q (%v)", got, ok)
	}
}

func TestValidateKey_Rejects(t *testing.T) {
	for _, key := range []string{"", "/", "///", ".", ".."} {
		if got, ok := ValidateKey(key); ok {
			t.Errorf("ValidateKey(%q) = %q, expected rejection", key, got)
		}
	}
}
