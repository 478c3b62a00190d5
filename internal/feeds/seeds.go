package feeds

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML shape of the default subscriptions shipped with the
// service. User additions and removals live in the store, not here.
type seedFile struct {
	Feeds []domain.Feed `yaml:"feeds"`
}

// LoadSeeds reads the default feed list from a YAML file.
func LoadSeeds(path string) ([]domain.Feed, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("feeds file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read feeds file: %w", err)
	}

	var seeds seedFile
	if err := yaml.Unmarshal(raw, &seeds); err != nil {
		return nil, fmt.Errorf("decode feeds file: %w", err)
	}
	if len(seeds.Feeds) == 0 {
		return nil, errors.New("feeds file contains no feed entries")
	}

	idx := make(map[string]bool, len(seeds.Feeds))
	for i := range seeds.Feeds {
		f := sanitizeFeed(seeds.Feeds[i])
		if err := validateFeed(f); err != nil {
			return nil, fmt.Errorf("feed[%d]: %w", i, err)
		}
		if idx[f.ID] {
			return nil, fmt.Errorf("duplicate feed id %q", f.ID)
		}
		idx[f.ID] = true
		seeds.Feeds[i] = f
	}

	return seeds.Feeds, nil
}

func sanitizeFeed(f domain.Feed) domain.Feed {
	f.ID = strings.TrimSpace(f.ID)
	f.URL = strings.TrimSpace(f.URL)
	f.Title = strings.TrimSpace(f.Title)
	f.Color = strings.TrimSpace(f.Color)
	return f
}

func validateFeed(f domain.Feed) error {
	if f.ID == "" {
		return errors.New("id is required")
	}
	if f.URL == "" {
		return fmt.Errorf("url is required for feed %q", f.ID)
	}
	if f.Title == "" {
		return fmt.Errorf("title is required for feed %q", f.ID)
	}
	return nil
}
