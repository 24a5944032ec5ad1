package card

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlCardFile is the top-level YAML structure for card content files.
type yamlCardFile struct {
	Cards []*Card `yaml:"cards"`
}

// LoadCardsFromBytes parses cards from YAML bytes. Cards are validated
// individually; catalog-level checks (uniqueness) happen in NewCatalog.
//
// Precondition: data must be valid YAML conforming to the card schema.
// Postcondition: Returns the parsed cards or a non-nil error.
func LoadCardsFromBytes(data []byte) ([]*Card, error) {
	var file yamlCardFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing card YAML: %w", err)
	}
	for _, c := range file.Cards {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("validating card: %w", err)
		}
	}
	return file.Cards, nil
}

// LoadCardsFromFile reads and validates one card content file.
//
// Precondition: path must point to a valid YAML card file.
// Postcondition: Returns the file's cards or a non-nil error.
func LoadCardsFromFile(path string) ([]*Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading card file %s: %w", path, err)
	}
	cards, err := LoadCardsFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cards, nil
}

// LoadCatalog loads all YAML card files in a directory into a Catalog.
// Files are visited in lexical order, so authored ordering is stable.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns a validated Catalog or the first error encountered.
func LoadCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading cards directory %s: %w", dir, err)
	}

	var cards []*Card
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		fileCards, err := LoadCardsFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		cards = append(cards, fileCards...)
	}

	if len(cards) == 0 {
		return nil, fmt.Errorf("no card files found in %s", dir)
	}

	return NewCatalog(cards)
}
