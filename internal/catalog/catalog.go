// Package catalog holds the process-wide sector tables used to seed compliance
// items and employee requirements. The tables are read-only after Load.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

//go:embed sectors.yaml
var sectorsYAML []byte

type artifactEntry struct {
	Key         string          `yaml:"key"`
	Title       string          `yaml:"title"`
	Type        domain.ItemType `yaml:"type"`
	Category    string          `yaml:"category"`
	Description string          `yaml:"description"`
	Required    bool            `yaml:"required"`
}

type requirementEntry struct {
	Type          string `yaml:"type"`
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	RenewalMonths *int   `yaml:"renewal_months"`
	Mandatory     bool   `yaml:"mandatory"`
}

type sectorEntry struct {
	ID           string             `yaml:"id"`
	Name         string             `yaml:"name"`
	Industry     string             `yaml:"industry"`
	Regulator    string             `yaml:"regulator"`
	Artifacts    []artifactEntry    `yaml:"artifacts"`
	Requirements []requirementEntry `yaml:"requirements"`
}

type document struct {
	Nations       []string              `yaml:"nations"`
	BusinessSizes []domain.BusinessSize `yaml:"business_sizes"`
	Categories    []string              `yaml:"categories"`
	Default       sectorEntry           `yaml:"default"`
	Sectors       []sectorEntry         `yaml:"sectors"`
}

type sector struct {
	info         domain.SectorInfo
	artifacts    []domain.ArtifactSpec
	requirements []domain.RequirementSpec
}

// Catalog maps sector ids to artifact and requirement lists. A sector that
// is unknown, or that declares no artifacts or no requirements, falls back to
// the default list for the missing part.
type Catalog struct {
	order         []string
	sectors       map[string]sector
	fallback      sector
	nations       []string
	businessSizes []domain.BusinessSize
	categories    []string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog. It panics if the embedded data is
// malformed, which can only happen in a broken build.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(sectorsYAML)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("load embedded sector catalog: %v", defaultErr))
	}
	return defaultCatalog
}

// Load parses a catalog document.
func Load(raw []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(doc.Default.Artifacts) == 0 || len(doc.Default.Requirements) == 0 {
		return nil, errors.New("catalog default must declare artifacts and requirements")
	}

	c := &Catalog{
		sectors:       make(map[string]sector, len(doc.Sectors)),
		fallback:      toSector(domain.DefaultSectorID, doc.Default),
		nations:       doc.Nations,
		businessSizes: doc.BusinessSizes,
		categories:    doc.Categories,
	}
	for _, entry := range doc.Sectors {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, errors.New("catalog sector without id")
		}
		if _, dup := c.sectors[id]; dup {
			return nil, fmt.Errorf("catalog sector %q declared twice", id)
		}
		c.sectors[id] = toSector(id, entry)
		c.order = append(c.order, id)
	}
	return c, nil
}

func toSector(id string, entry sectorEntry) sector {
	s := sector{
		info: domain.SectorInfo{
			ID:        id,
			Name:      entry.Name,
			Industry:  entry.Industry,
			Regulator: entry.Regulator,
		},
		artifacts:    make([]domain.ArtifactSpec, 0, len(entry.Artifacts)),
		requirements: make([]domain.RequirementSpec, 0, len(entry.Requirements)),
	}
	for _, a := range entry.Artifacts {
		s.artifacts = append(s.artifacts, domain.ArtifactSpec{
			Key:         a.Key,
			Title:       a.Title,
			Type:        a.Type,
			Category:    a.Category,
			Description: a.Description,
			Required:    a.Required,
		})
	}
	for _, r := range entry.Requirements {
		s.requirements = append(s.requirements, domain.RequirementSpec{
			Type:          r.Type,
			Title:         r.Title,
			Description:   r.Description,
			RenewalMonths: r.RenewalMonths,
			Mandatory:     r.Mandatory,
		})
	}
	return s
}

// Artifacts returns a copy of the artifact list for the sector.
func (c *Catalog) Artifacts(sectorID string) []domain.ArtifactSpec {
	list := c.fallback.artifacts
	if s, ok := c.sectors[sectorID]; ok && len(s.artifacts) > 0 {
		list = s.artifacts
	}
	out := make([]domain.ArtifactSpec, len(list))
	copy(out, list)
	return out
}

// Requirements returns a copy of the employee requirement list for the sector.
func (c *Catalog) Requirements(sectorID string) []domain.RequirementSpec {
	list := c.fallback.requirements
	if s, ok := c.sectors[sectorID]; ok && len(s.requirements) > 0 {
		list = s.requirements
	}
	out := make([]domain.RequirementSpec, len(list))
	for i, r := range list {
		out[i] = r
		if r.RenewalMonths != nil {
			months := *r.RenewalMonths
			out[i].RenewalMonths = &months
		}
	}
	return out
}

// Lookup reports sector display data; ok is false for unlisted sectors.
func (c *Catalog) Lookup(sectorID string) (domain.SectorInfo, bool) {
	s, ok := c.sectors[sectorID]
	if !ok {
		return domain.SectorInfo{}, false
	}
	return s.info, true
}

// Sectors lists sectors in catalog order.
func (c *Catalog) Sectors() []domain.SectorInfo {
	out := make([]domain.SectorInfo, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.sectors[id].info)
	}
	return out
}

func (c *Catalog) Nations() []string {
	return append([]string(nil), c.nations...)
}

func (c *Catalog) BusinessSizes() []domain.BusinessSize {
	return append([]domain.BusinessSize(nil), c.businessSizes...)
}

func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Validate checks that every artifact list has unique non-empty keys and known
// item types, and that requirement types are unique per sector.
func (c *Catalog) Validate() error {
	var problems []string
	check := func(s sector) {
		seen := make(map[string]struct{}, len(s.artifacts))
		for _, a := range s.artifacts {
			switch {
			case strings.TrimSpace(a.Key) == "":
				problems = append(problems, fmt.Sprintf("%s: artifact %q has no key", s.info.ID, a.Title))
			case !a.Type.Valid():
				problems = append(problems, fmt.Sprintf("%s: artifact %s has unknown type %q", s.info.ID, a.Key, a.Type))
			}
			if _, dup := seen[a.Key]; dup {
				problems = append(problems, fmt.Sprintf("%s: duplicate artifact key %s", s.info.ID, a.Key))
			}
			seen[a.Key] = struct{}{}
		}
		types := make(map[string]struct{}, len(s.requirements))
		for _, r := range s.requirements {
			if _, dup := types[r.Type]; dup {
				problems = append(problems, fmt.Sprintf("%s: duplicate requirement type %s", s.info.ID, r.Type))
			}
			types[r.Type] = struct{}{}
			if r.RenewalMonths != nil && *r.RenewalMonths <= 0 {
				problems = append(problems, fmt.Sprintf("%s: requirement %s has non-positive renewal", s.info.ID, r.Type))
			}
		}
	}

	check(c.fallback)
	ids := append([]string(nil), c.order...)
	sort.Strings(ids)
	for _, id := range ids {
		check(c.sectors[id])
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}
