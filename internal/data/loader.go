package data

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var embedded embed.FS

// Loader handles reading the static combat tables. Each table is looked up in
// the data directories in order and falls back to the embedded defaults.
type Loader struct {
	dataDirs []string
}

// NewLoader initializes a Loader with the given data directory fallback hierarchy.
func NewLoader(dataDirs []string) *Loader {
	return &Loader{dataDirs: dataDirs}
}

type statusFile struct {
	StatusEffects []StatusEffectDef `yaml:"status_effects"`
}

type abilityFile struct {
	Abilities []AbilityDef        `yaml:"abilities"`
	Kits      map[string][]string `yaml:"kits"`
}

type affixFile struct {
	Affixes []AffixDef `yaml:"affixes"`
	Elites  []EliteDef `yaml:"elites"`
}

type rarityFile struct {
	Rarities []RarityDef `yaml:"rarities"`
}

type difficultyFile struct {
	Difficulties []Difficulty `yaml:"difficulties"`
}

type enemyFile struct {
	Templates []EnemyTemplate `yaml:"templates"`
	Areas     []Area          `yaml:"areas"`
}

// LoadCatalog reads every table and returns a validated Catalog.
func (l *Loader) LoadCatalog() (*Catalog, error) {
	var (
		st  statusFile
		ab  abilityFile
		af  affixFile
		ra  rarityFile
		di  difficultyFile
		en  enemyFile
		cat Catalog
	)
	targets := []any{&st, &ab, &af, &ra, &di, &en}
	for i, ref := range Tables {
		if err := l.load(ref, targets[i]); err != nil {
			return nil, err
		}
	}

	cat.StatusEffects = make(map[string]StatusEffectDef, len(st.StatusEffects))
	for _, s := range st.StatusEffects {
		cat.StatusEffects[s.ID] = s
	}
	cat.Abilities = make(map[string]AbilityDef, len(ab.Abilities))
	for _, a := range ab.Abilities {
		if _, dup := cat.Abilities[a.ID]; dup {
			return nil, fmt.Errorf("duplicate ability id %q", a.ID)
		}
		cat.Abilities[a.ID] = a
	}
	cat.Kits = ab.Kits
	cat.Affixes = af.Affixes
	cat.Elites = af.Elites
	cat.Rarities = ra.Rarities
	cat.Difficulties = make(map[string]Difficulty, len(di.Difficulties))
	for _, d := range di.Difficulties {
		cat.Difficulties[d.ID] = d
	}
	cat.Templates = make(map[string]EnemyTemplate, len(en.Templates))
	for _, t := range en.Templates {
		cat.Templates[t.ID] = t
	}
	cat.Areas = make(map[string]Area, len(en.Areas))
	for _, a := range en.Areas {
		cat.Areas[a.ID] = a
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid combat catalog: %w", err)
	}
	return &cat, nil
}

// MustDefault loads the embedded catalog and panics on failure. It is meant
// for tests and tools that ship with the defaults.
func MustDefault() *Catalog {
	c, err := NewLoader(nil).LoadCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

func (l *Loader) load(ref string, target any) error {
	for _, dir := range l.dataDirs {
		path := filepath.Join(dir, ref)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		defer f.Close()
		return decode(ref, f, target)
	}

	f, err := embedded.Open("catalog/" + ref)
	if err != nil {
		return fmt.Errorf("could not find or open table %s in any available data directory", ref)
	}
	defer f.Close()
	return decode(ref, f, target)
}

func decode(ref string, r io.Reader, target any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("failed to decode yaml table %s: %w", ref, err)
	}
	return nil
}

// Tables lists the catalog files in load order.
var Tables = []string{
	"status_effects.yaml",
	"abilities.yaml",
	"affixes.yaml",
	"rarities.yaml",
	"difficulties.yaml",
	"enemies.yaml",
}

// ExportDefault writes the embedded copy of table into dir so it can be
// edited and picked up as an override. An existing file is kept unless force
// is set; the returned bool reports whether the file was written.
func ExportDefault(dir, table string, force bool) (bool, error) {
	path := filepath.Join(dir, table)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}
	raw, err := embedded.ReadFile("catalog/" + table)
	if err != nil {
		return false, fmt.Errorf("no embedded table %s: %w", table, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
