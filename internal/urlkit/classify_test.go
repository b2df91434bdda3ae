package urlkit

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want Protocol
	}{
		{"http", "http://example.com/repo/", HTTP},
		{"https", "https://example.com/repo/", HTTP},
		{"ftp", "ftp://example.com/repo/", FTP},
		{"file triple slash", "file:///var/cache/repo", FILE},
		{"file single slash", "file:/var/cache/repo", FILE},
		{"rsync", "rsync://example.com/repo/", RSYNC},
		{"oci", "oci://registry.example.com/repo", OCI},
		{"unknown scheme", "gopher://example.com/repo", OTHER},
		{"no scheme", "example.com/repo", OTHER},
		{"case sensitive scheme", "HTTP://example.com/repo", OTHER},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.url); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestHostOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"http with path", "http://example.com/repo/path/", "http://example.com"},
		{"https with port", "https://example.com:8443/repo/", "https://example.com:8443"},
		{"http no path", "http://example.com", "http://example.com"},
		{"file triple slash", "file:///var/cache/repo", "file://"},
		{"file single slash", "file:/var/cache/repo", "file://"},
		{"ftp", "ftp://mirror.example.com/debian/", "ftp://mirror.example.com"},
		{"no scheme", "example.com/repo", "example.com/repo"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HostOnly(tt.url); got != tt.want {
				t.Errorf("HostOnly(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
