package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/database/sqldb"
	"github.com/locsync/locsync/internal/errors"
	"github.com/locsync/locsync/internal/normalize"
)

// LocaleRef is anything that names a locale: a resolved *database.LocaleRecord
// or a Code.
type LocaleRef interface {
	LocaleCode() string
}

// Code is an unresolved locale code such as "fr" or "fr-CA".
type Code string

// LocaleCode implements LocaleRef.
func (c Code) LocaleCode() string { return string(c) }

// LocaleService resolves locale references.
type LocaleService struct {
	ctx *database.Context
}

// NewLocaleService creates a new LocaleService.
func NewLocaleService(ctx *database.Context) *LocaleService {
	return &LocaleService{ctx: ctx}
}

// Resolve returns an already-resolved locale unchanged. A code matches a
// locale with exactly that code first, so "pt-BR" and "pt-PT" stay apart when
// both exist. Otherwise it is reduced to its base language. Both comparisons
// ignore case and treat "_" as "-".
func (s *LocaleService) Resolve(ctx context.Context, ref LocaleRef) (*database.LocaleRecord, error) {
	if rec, ok := ref.(*database.LocaleRecord); ok {
		if rec == nil {
			ref = nil
		} else if rec.ID != 0 {
			return rec, nil
		}
	}
	if ref == nil || strings.TrimSpace(ref.LocaleCode()) == "" {
		return nil, errors.NewValidationError("locale", nil, "locale code is required")
	}

	q, err := s.ctx.Q()
	if err != nil {
		return nil, err
	}
	code := strings.ReplaceAll(strings.TrimSpace(ref.LocaleCode()), "_", "-")
	row, err := q.GetLocaleByCode(ctx, code)
	if base := normalize.BaseLocale(code); base != code && errors.Is(err, sql.ErrNoRows) {
		row, err = q.GetLocaleByCode(ctx, base)
	}
	if err != nil {
		return nil, database.NotFound(err, "locale", ref.LocaleCode())
	}
	rec := database.LocaleRecordFromRow(row)
	return &rec, nil
}

// ProjectService looks up projects and their configured locales.
type ProjectService struct {
	catalog *database.CatalogRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(ctx *database.Context) *ProjectService {
	return &ProjectService{catalog: database.NewCatalogRepository(ctx)}
}

// Lookup finds a project by slug or name.
func (s *ProjectService) Lookup(ctx context.Context, ident string) (*database.ProjectRecord, error) {
	project, err := s.catalog.FindProject(ctx, ident)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, errors.NewNotFoundError("project", ident)
	}
	return project, nil
}

// ConfiguredLocales returns the locales enabled for the project.
func (s *ProjectService) ConfiguredLocales(ctx context.Context, projectID int64) ([]database.ProjectLocaleRecord, error) {
	return s.catalog.ListProjectLocales(ctx, projectID)
}

// UserService resolves authors and actors, falling back to a configured default user.
type UserService struct {
	catalog     *database.CatalogRepository
	defaultUser string
}

// NewUserService creates a new UserService.
func NewUserService(ctx *database.Context, defaultUser string) *UserService {
	return &UserService{catalog: database.NewCatalogRepository(ctx), defaultUser: defaultUser}
}

// Lookup finds a user by username.
func (s *UserService) Lookup(ctx context.Context, username string) (*database.UserRecord, error) {
	user, err := s.catalog.FindUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user", username)
	}
	return user, nil
}

// Default returns the configured default user. A missing default user is a
// configuration error.
func (s *UserService) Default(ctx context.Context) (*database.UserRecord, error) {
	if s.defaultUser == "" {
		return nil, errors.NewConfigError("default_user", "no default user configured", nil)
	}
	user, err := s.catalog.FindUser(ctx, s.defaultUser)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewConfigError("default_user",
			fmt.Sprintf("default user %q does not exist", s.defaultUser),
			errors.NewNotFoundError("user", s.defaultUser))
	}
	return user, nil
}

// LookupOrDefault returns the named user, or the default user when the name
// is empty or unknown.
func (s *UserService) LookupOrDefault(ctx context.Context, username string) (*database.UserRecord, error) {
	if username != "" {
		user, err := s.catalog.FindUser(ctx, username)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}
	return s.Default(ctx)
}

func entityOf(ctx context.Context, q *sqldb.Queries, id int64) (database.EntityRecord, error) {
	row, err := q.GetEntityByID(ctx, id)
	if err != nil {
		return database.EntityRecord{}, database.NotFound(err, "entity", id)
	}
	return database.EntityRecordFromRow(row), nil
}
