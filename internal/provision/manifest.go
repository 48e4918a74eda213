// Package provision seeds the catalog rows the engine reads: users, locales,
// projects, resources and entities.
package provision

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/database/sqldb"
	"github.com/locsync/locsync/internal/errors"
	"github.com/locsync/locsync/internal/logging"
)

// Manifest describes a catalog.
type Manifest struct {
	Users    []User    `yaml:"users"`
	Locales  []Locale  `yaml:"locales"`
	Projects []Project `yaml:"projects"`
}

type User struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
}

type Locale struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type Project struct {
	Slug      string     `yaml:"slug"`
	Name      string     `yaml:"name"`
	Locales   []string   `yaml:"locales"`
	Resources []Resource `yaml:"resources"`
}

type Resource struct {
	Path     string   `yaml:"path"`
	Entities []Entity `yaml:"entities"`
}

type Entity struct {
	Key      string `yaml:"key"`
	String   string `yaml:"string"`
	Obsolete bool   `yaml:"obsolete"`
}

// Result counts the rows a manifest touched, created or not.
type Result struct {
	Users     int
	Locales   int
	Projects  int
	Resources int
	Entities  int
}

// Parse decodes a manifest, rejecting unknown fields.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.UnmarshalWithOptions(data, &m, yaml.DisallowUnknownField()); err != nil {
		return nil, errors.NewParseError("yaml", "", yaml.FormatError(err, false, false), err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return m, nil
}

// Validate checks required fields.
func (m *Manifest) Validate() error {
	for i, u := range m.Users {
		if strings.TrimSpace(u.Username) == "" {
			return errors.NewValidationError(fmt.Sprintf("users[%d].username", i), u.Username, "is required")
		}
	}
	for i, l := range m.Locales {
		if strings.TrimSpace(l.Code) == "" {
			return errors.NewValidationError(fmt.Sprintf("locales[%d].code", i), l.Code, "is required")
		}
	}
	for i, p := range m.Projects {
		if strings.TrimSpace(p.Slug) == "" {
			return errors.NewValidationError(fmt.Sprintf("projects[%d].slug", i), p.Slug, "is required")
		}
		for j, r := range p.Resources {
			if strings.TrimSpace(r.Path) == "" {
				return errors.NewValidationError(fmt.Sprintf("projects[%d].resources[%d].path", i, j), r.Path, "is required")
			}
			for k, e := range r.Entities {
				if strings.TrimSpace(e.Key) == "" {
					return errors.NewValidationError(
						fmt.Sprintf("projects[%d].resources[%d].entities[%d].key", i, j, k), e.Key, "is required")
				}
			}
		}
	}
	return nil
}

// Apply creates every missing row of the manifest in one transaction.
// Applying the same manifest twice changes nothing.
func Apply(ctx context.Context, dbCtx *database.Context, m *Manifest) (*Result, error) {
	res := &Result{}
	err := dbCtx.RunInTx(ctx, func(ctx context.Context, q *sqldb.Queries) error {
		cat := database.NewCatalogRepositoryTx(q)

		for _, u := range m.Users {
			if _, err := cat.GetOrCreateUser(ctx, u.Username, u.Email); err != nil {
				return fmt.Errorf("user %s: %w", u.Username, err)
			}
			res.Users++
		}

		locales := make(map[string]int64)
		locale := func(code, name string) (int64, error) {
			key := strings.ToLower(code)
			if id, ok := locales[key]; ok {
				return id, nil
			}
			if name == "" {
				name = code
			}
			id, err := cat.GetOrCreateLocale(ctx, code, name)
			if err != nil {
				return 0, fmt.Errorf("locale %s: %w", code, err)
			}
			locales[key] = id
			res.Locales++
			return id, nil
		}
		for _, l := range m.Locales {
			if _, err := locale(l.Code, l.Name); err != nil {
				return err
			}
		}

		for _, p := range m.Projects {
			name := p.Name
			if name == "" {
				name = p.Slug
			}
			projectID, err := cat.GetOrCreateProject(ctx, p.Slug, name)
			if err != nil {
				return fmt.Errorf("project %s: %w", p.Slug, err)
			}
			res.Projects++

			for _, code := range p.Locales {
				localeID, err := locale(code, "")
				if err != nil {
					return err
				}
				if _, err := cat.EnableLocale(ctx, projectID, localeID); err != nil {
					return fmt.Errorf("project %s locale %s: %w", p.Slug, code, err)
				}
			}

			for _, r := range p.Resources {
				resourceID, err := cat.GetOrCreateResource(ctx, projectID, r.Path)
				if err != nil {
					return fmt.Errorf("resource %s: %w", r.Path, err)
				}
				res.Resources++
				for _, e := range r.Entities {
					if _, err := cat.UpsertEntity(ctx, resourceID, e.Key, e.String, e.Obsolete); err != nil {
						return fmt.Errorf("entity %s:%s: %w", r.Path, e.Key, err)
					}
					res.Entities++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info().
		Int("projects", res.Projects).
		Int("locales", res.Locales).
		Int("entities", res.Entities).
		Msg("catalog provisioned")
	return res, nil
}
