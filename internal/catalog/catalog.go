// Package catalog holds the fixed set of achievement definitions. A Catalog
// is built once at start-up and shared read-only by the evaluator, the
// granter and the handlers.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/gdg-garage/task-streaks-api/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed achievements.yaml
var defaultYAML []byte

// Entry is one achievement definition.
type Entry struct {
	ID            string
	Title         string
	Description   string
	IconCodePoint string
	Color         string
	Type          models.AchievementType
	Rarity        models.Rarity
	TargetValue   int
	Secret        bool
}

// Model converts the entry into its database row.
func (e Entry) Model() models.Achievement {
	return models.Achievement{
		AchievementID: e.ID,
		Title:         e.Title,
		Description:   e.Description,
		IconCodePoint: e.IconCodePoint,
		Color:         e.Color,
		Type:          e.Type,
		Rarity:        e.Rarity,
		TargetValue:   e.TargetValue,
		IsSecret:      e.Secret,
	}
}

type Catalog struct {
	version int
	entries []Entry
	byID    map[string]Entry
}

type fileEntry struct {
	ID            string `yaml:"id"`
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	IconCodePoint string `yaml:"icon_code_point"`
	Color         string `yaml:"color"`
	Type          string `yaml:"type"`
	Rarity        string `yaml:"rarity"`
	TargetValue   int    `yaml:"target_value"`
	Secret        bool   `yaml:"secret"`
}

type file struct {
	Version      int         `yaml:"version"`
	Achievements []fileEntry `yaml:"achievements"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Load reads a catalog from a YAML file; an empty path yields Default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing catalog: %w", err)
	}

	entries := make([]Entry, 0, len(f.Achievements))
	for _, fe := range f.Achievements {
		typ, err := models.ParseAchievementType(fe.Type)
		if err != nil {
			return nil, fmt.Errorf("achievement %q: %w", fe.ID, err)
		}
		rarity, err := models.ParseRarity(fe.Rarity)
		if err != nil {
			return nil, fmt.Errorf("achievement %q: %w", fe.ID, err)
		}
		entries = append(entries, Entry{
			ID:            fe.ID,
			Title:         fe.Title,
			Description:   fe.Description,
			IconCodePoint: fe.IconCodePoint,
			Color:         fe.Color,
			Type:          typ,
			Rarity:        rarity,
			TargetValue:   fe.TargetValue,
			Secret:        fe.Secret,
		})
	}
	return New(f.Version, entries)
}

// New validates entries and builds a Catalog. Useful for tests that want a
// smaller catalog than the default one.
func New(version int, entries []Entry) (*Catalog, error) {
	c := &Catalog{
		version: version,
		entries: make([]Entry, 0, len(entries)),
		byID:    make(map[string]Entry, len(entries)),
	}
	for _, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("achievement without id")
		}
		if e.TargetValue < 1 {
			return nil, fmt.Errorf("achievement %q: target_value must be at least 1", e.ID)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate achievement id %q", e.ID)
		}
		c.byID[e.ID] = e
		c.entries = append(c.entries, e)
	}
	return c, nil
}

func (c *Catalog) Version() int {
	return c.version
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// All returns a copy of every entry in file order.
func (c *Catalog) All() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) ByID(id string) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

func (c *Catalog) ByType(t models.AchievementType) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (c *Catalog) ByRarity(r models.Rarity) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Rarity == r {
			out = append(out, e)
		}
	}
	return out
}
