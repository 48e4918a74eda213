package usecase

import (
	"context"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/errors"
	"github.com/locsync/locsync/internal/report"
	"github.com/locsync/locsync/internal/services"
)

// MissingReport lists the strings of a project that have no translation in
// a locale.
type MissingReport struct {
	db       *database.Context
	projects *services.ProjectService
	locales  *services.LocaleService
}

// NewMissingReport creates a MissingReport use case.
func NewMissingReport(dbCtx *database.Context) *MissingReport {
	return &MissingReport{
		db:       dbCtx,
		projects: services.NewProjectService(dbCtx),
		locales:  services.NewLocaleService(dbCtx),
	}
}

// MissingResult is a built report with the context it was built for.
type MissingResult struct {
	Project string
	Locale  string
	Mode    report.Mode
	Sheet   report.Sheet
	Count   int
}

// Build reports the untranslated active entities of the project in the
// locale, which must be enabled for the project.
func (u *MissingReport) Build(ctx context.Context, projectIdent, localeCode string, mode report.Mode) (*MissingResult, error) {
	project, err := u.projects.Lookup(ctx, projectIdent)
	if err != nil {
		return nil, err
	}
	locale, err := u.locales.Resolve(ctx, services.Code(localeCode))
	if err != nil {
		return nil, err
	}
	configured, err := u.projects.ConfiguredLocales(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	var pl *database.ProjectLocaleRecord
	for i := range configured {
		if configured[i].LocaleID == locale.ID {
			pl = &configured[i]
			break
		}
	}
	if pl == nil {
		return nil, errors.NewNotFoundError("project locale", project.Slug+"/"+localeCode)
	}

	q, err := u.db.Q()
	if err != nil {
		return nil, err
	}
	rows, err := q.ListUntranslatedEntities(ctx, project.ID, pl.LocaleID)
	if err != nil {
		return nil, err
	}

	missing := make([]report.Missing, 0, len(rows))
	for _, e := range database.EntityRecordsFromRows(rows) {
		missing = append(missing, report.Missing{Resource: e.ResourcePath, Key: e.Key, Source: e.String})
	}
	sheet, err := report.Build(mode, pl.LocaleCode, missing)
	if err != nil {
		return nil, err
	}
	return &MissingResult{
		Project: project.Slug,
		Locale:  pl.LocaleCode,
		Mode:    mode,
		Sheet:   sheet,
		Count:   len(missing),
	}, nil
}
