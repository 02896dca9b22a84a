package buildinfo

import "testing"

func TestShort(t *testing.T) {
	oldV, oldC := Version, Commit
	defer func() { Version, Commit = oldV, oldC }()

	tests := []struct {
		version string
		commit  string
		want    string
	}{
		{"dev", "unknown", "dev"},
		{"v0.3.1", "abcdef0123", "v0.3.1"},
		{"dev", "abcdef0123", "abcdef0"},
		{"", "abc", "abc"},
	}
	for _, tt := range tests {
		Version, Commit = tt.version, tt.commit
		if got := Short(); got != tt.want {
			t.Fatalf("Short() with version=%q commit=%q = %q, want %q", tt.version, tt.commit, got, tt.want)
		}
	}
}
