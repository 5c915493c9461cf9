// Package deck loads the tarot card catalog and draws cards without replacement.
package deck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/korjavin/catmoodbot/models"
)

// CatalogOptions control how card artwork paths are built and checked
type CatalogOptions struct {
	ArtDir string
	ArtExt string
	// RequireArtwork makes a missing artwork file a load error
	RequireArtwork bool
}

type catalogEntry struct {
	ID   *int   `yaml:"id"`
	Name string `yaml:"name"`
}

// LoadCatalog reads a list of {id, name} records. JSON is valid YAML, so the
// markup.json deck files work as well as YAML ones.
func LoadCatalog(path string, opts CatalogOptions) ([]models.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.ConfigError{Source: path, Msg: "read catalog", Err: err}
	}
	return ParseCatalog(path, data, opts)
}

// ParseCatalog builds cards from raw catalog data; source is only used in errors
func ParseCatalog(source string, data []byte, opts CatalogOptions) ([]models.Card, error) {
	var entries []catalogEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, &models.ConfigError{Source: source, Msg: "parse catalog", Err: err}
	}
	if len(entries) == 0 {
		return nil, &models.ConfigError{Source: source, Msg: "catalog is empty"}
	}

	ext := strings.TrimPrefix(opts.ArtExt, ".")
	if ext == "" {
		ext = "png"
	}

	names := make(map[string]bool, len(entries))
	ids := make(map[int]string, len(entries))
	cards := make([]models.Card, 0, len(entries))

	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, &models.ConfigError{Source: source, Msg: fmt.Sprintf("entry %d has no name", i)}
		}
		if e.ID == nil {
			return nil, &models.ConfigError{Source: source, Msg: fmt.Sprintf("card %q has no id", name)}
		}
		if names[name] {
			return nil, &models.ConfigError{Source: source, Msg: fmt.Sprintf("duplicate card name %q", name)}
		}
		if other, ok := ids[*e.ID]; ok {
			return nil, &models.ConfigError{Source: source, Msg: fmt.Sprintf("cards %q and %q share id %d", other, name, *e.ID)}
		}
		if !safeName(name) {
			return nil, &models.ConfigError{Source: source, Msg: fmt.Sprintf("card name %q escapes the artwork directory", name)}
		}
		names[name] = true
		ids[*e.ID] = name

		imagePath := filepath.Join(opts.ArtDir, name+"."+ext)
		if opts.RequireArtwork {
			if _, err := os.Stat(imagePath); err != nil {
				return nil, &models.ConfigError{Source: source, Msg: fmt.Sprintf("artwork for %q", name), Err: err}
			}
		}

		cards = append(cards, models.Card{
			Name:      name,
			Value:     *e.ID,
			ImagePath: imagePath,
		})
	}

	return cards, nil
}

// safeName rejects names that would resolve outside the artwork directory
func safeName(name string) bool {
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return filepath.Base(name) == name
}
