package feeds

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}

func TestLoadSeeds(t *testing.T) {
	path := writeSeedFile(t, `
feeds:
  - id: bbc
    url: https://feeds.bbci.co.uk/news/rss.xml
    title: "  BBC News  "
    color: "#bb1919"
  - id: npr
    url: https://feeds.npr.org/1001/rss.xml
    title: NPR
`)

	seeds, err := LoadSeeds(path)
	if err != nil {
		t.Fatalf("LoadSeeds: %v", err)
	}
	if len(seeds) != 2 {
		t.Fatalf("seeds = %d, want 2", len(seeds))
	}
	if seeds[0].Title != "BBC News" {
		t.Errorf("Title = %q, want trimmed", seeds[0].Title)
	}
	if seeds[1].Color != "" {
		t.Errorf("Color = %q, want empty when omitted", seeds[1].Color)
	}
}

func TestLoadSeedsErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{name: "empty list", content: "feeds: []\n"},
		{name: "missing url", content: "feeds:\n  - id: x\n    title: X\n"},
		{name: "missing title", content: "feeds:\n  - id: x\n    url: https://x/rss\n"},
		{name: "duplicate id", content: "feeds:\n  - id: x\n    url: https://x/rss\n    title: X\n  - id: x\n    url: https://y/rss\n    title: Y\n"},
		{name: "not yaml", content: "{{{\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSeedFile(t, tc.content)
			if _, err := LoadSeeds(path); err == nil {
				t.Error("err = nil, want a load error")
			}
		})
	}
}

func TestLoadSeedsMissingFile(t *testing.T) {
	if _, err := LoadSeeds(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("err = nil, want an open error")
	}
	if _, err := LoadSeeds("  "); err == nil {
		t.Error("err = nil, want an empty-path error")
	}
}
