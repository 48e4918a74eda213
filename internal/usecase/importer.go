package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/database/sqldb"
	"github.com/locsync/locsync/internal/errors"
	"github.com/locsync/locsync/internal/logging"
	"github.com/locsync/locsync/internal/outcome"
	"github.com/locsync/locsync/internal/record"
	"github.com/locsync/locsync/internal/services"
)

// Summary reports what one import batch did.
type Summary struct {
	// Imported counts records that produced at least one translation.
	Imported int
	// Total counts input records.
	Total int
	// Created counts translations, which exceeds Imported when one record
	// matched several entities.
	Created  int
	Outcomes map[outcome.Kind]int
}

// Importer loads translated records into a project.
type Importer struct {
	db           *database.Context
	projects     *services.ProjectService
	locales      *services.LocaleService
	users        *services.UserService
	translations *services.TranslationService
	propagator   *services.Propagator
	memories     *services.MemoryService
	now          func() time.Time
}

// NewImporter creates an Importer. Records without a known author are
// attributed to defaultUser.
func NewImporter(dbCtx *database.Context, defaultUser string) *Importer {
	now := func() time.Time { return time.Now().UTC() }
	return &Importer{
		db:           dbCtx,
		projects:     services.NewProjectService(dbCtx),
		locales:      services.NewLocaleService(dbCtx),
		users:        services.NewUserService(dbCtx, defaultUser),
		translations: services.NewTranslationService(now),
		propagator:   services.NewPropagator(),
		memories:     services.NewMemoryService(now),
		now:          now,
	}
}

type importBatch struct {
	project *database.ProjectRecord
	// configured is keyed by locale id. languages caches the project locale
	// each record language resolved to, nil when it is not configured.
	configured map[int64]database.ProjectLocaleRecord
	languages  map[string]*database.ProjectLocaleRecord
	resolver   *services.EntityResolver
	authors  map[string]*database.UserRecord
	sink     outcome.Sink
	summary  *Summary
}

// Import writes every record of src into the project identified by slug or
// name. Records are applied oldest first. Each matched entity is imported in
// its own transaction, so a failure only loses that entity. The returned error
// is set only when the batch could not start or had to stop.
func (u *Importer) Import(ctx context.Context, src record.Source, projectIdent string, sink outcome.Sink) (*Summary, error) {
	if sink == nil {
		sink = outcome.Discard
	}
	log := logging.FromContext(ctx)

	project, err := u.projects.Lookup(ctx, projectIdent)
	if err != nil {
		return nil, err
	}
	if _, err := u.users.Default(ctx); err != nil {
		return nil, err
	}
	configured, err := u.projects.ConfiguredLocales(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	records, err := record.Collect(src)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	record.SortByUpdated(records)

	b := &importBatch{
		project:    project,
		configured: make(map[int64]database.ProjectLocaleRecord, len(configured)),
		languages:  make(map[string]*database.ProjectLocaleRecord),
		resolver:   services.NewEntityResolver(u.db, project.ID),
		authors:    make(map[string]*database.UserRecord),
		sink:       sink,
		summary:    &Summary{Outcomes: make(map[outcome.Kind]int)},
	}
	for _, pl := range configured {
		b.configured[pl.LocaleID] = pl
	}

	log.Info().
		Str("project", project.Slug).
		Int("records", len(records)).
		Int("locales", len(configured)).
		Msg("import started")

	for _, rec := range records {
		if err := u.importRecord(ctx, b, rec); err != nil {
			log.Error().Err(err).Int("processed", b.summary.Total).Msg("import aborted")
			return b.summary, err
		}
	}

	log.Info().
		Str("project", project.Slug).
		Int("imported", b.summary.Imported).
		Int("total", b.summary.Total).
		Int("created", b.summary.Created).
		Msgf("imported %d out of %d", b.summary.Imported, b.summary.Total)

	return b.summary, nil
}

func (u *Importer) importRecord(ctx context.Context, b *importBatch, rec record.Record) error {
	b.summary.Total++
	base := outcome.Row{
		Language:    rec.Language,
		SourceKey:   rec.SourceKey(),
		SourceLabel: rec.Excerpt(),
	}

	pl, err := u.projectLocale(ctx, b, rec.Language)
	if err != nil {
		return u.fail(ctx, b, base, err)
	}
	if pl == nil {
		return u.emit(b, base, outcome.SkippedNotConfigured)
	}

	entities, err := b.resolver.Resolve(ctx, rec)
	if err != nil {
		return u.fail(ctx, b, base, err)
	}
	if len(entities) == 0 {
		return u.emit(b, base, outcome.NotFound)
	}

	author, err := u.author(ctx, b, rec.User)
	if err != nil {
		return u.fail(ctx, b, base, err)
	}

	imported := false
	for _, entity := range entities {
		row := base
		row.EntityID = entity.ID
		row.EntityLabel = entity.Label()

		tr, err := u.importEntity(ctx, rec, entity, *pl, author)
		switch {
		case err == nil:
			imported = true
			b.summary.Created++
			row.TranslationID = tr.ID
			row.Translation = tr.String
			err = u.emit(b, row, outcome.Import)
		case errors.IsAlreadyExists(err):
			err = u.emit(b, row, outcome.Skipped)
		default:
			err = u.fail(ctx, b, row, err)
		}
		if err != nil {
			return err
		}
	}
	if imported {
		b.summary.Imported++
	}
	return nil
}

// importEntity creates the approved translation of one entity together with
// its propagation and memory row.
func (u *Importer) importEntity(ctx context.Context, rec record.Record, entity database.EntityRecord, pl database.ProjectLocaleRecord, author *database.UserRecord) (*database.TranslationRecord, error) {
	created, approvedAt := u.dates(rec)

	var tr database.TranslationRecord
	err := u.db.RunInTx(ctx, func(ctx context.Context, q *sqldb.Queries) error {
		c, err := u.translations.Create(ctx, q, services.NewTranslation{
			EntityID:       entity.ID,
			LocaleID:       pl.LocaleID,
			String:         rec.Target,
			EntityDocument: services.EntityDocument(entity.Key, rec.Target),
			UserID:         &author.ID,
			Date:           created,
			Approved:       true,
			ApprovedUserID: &author.ID,
			ApprovedDate:   &approvedAt,
			Exclusive:      true,
		})
		if err != nil {
			return err
		}
		if err := u.propagator.Created(ctx, q, c); err != nil {
			return err
		}
		if _, err := u.memories.Capture(ctx, q, c.Translation); err != nil {
			return err
		}
		tr = c.Translation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

// projectLocale resolves a record language and returns the matching project
// locale, or nil when the language is unknown or not enabled for the project.
func (u *Importer) projectLocale(ctx context.Context, b *importBatch, language string) (*database.ProjectLocaleRecord, error) {
	if pl, ok := b.languages[language]; ok {
		return pl, nil
	}
	var pl *database.ProjectLocaleRecord
	locale, err := u.locales.Resolve(ctx, services.Code(language))
	switch {
	case err == nil:
		if c, ok := b.configured[locale.ID]; ok {
			pl = &c
		}
	case errors.IsNotFound(err), errors.IsValidationError(err):
	default:
		return nil, err
	}
	b.languages[language] = pl
	return pl, nil
}

func (u *Importer) dates(rec record.Record) (created, approved time.Time) {
	created, approved = rec.CreatedAt, rec.UpdatedAt
	if created.IsZero() {
		created = approved
	}
	if created.IsZero() {
		created = u.now()
	}
	if approved.IsZero() {
		approved = created
	}
	return created.UTC(), approved.UTC()
}

func (u *Importer) author(ctx context.Context, b *importBatch, username string) (*database.UserRecord, error) {
	if user, ok := b.authors[username]; ok {
		return user, nil
	}
	user, err := u.users.LookupOrDefault(ctx, username)
	if err != nil {
		return nil, err
	}
	b.authors[username] = user
	return user, nil
}

func (u *Importer) emit(b *importBatch, row outcome.Row, kind outcome.Kind) error {
	row.Outcome = kind
	row.At = u.now()
	b.summary.Outcomes[kind]++
	if err := b.sink.Write(row); err != nil {
		return fmt.Errorf("write outcome: %w", err)
	}
	return nil
}

// fail records a FAILED row, or returns err when the batch cannot continue.
func (u *Importer) fail(ctx context.Context, b *importBatch, row outcome.Row, err error) error {
	if database.IsFatal(err) {
		return err
	}
	logging.FromContext(ctx).Warn().
		Err(err).
		Str("language", row.Language).
		Str("source", row.SourceLabel).
		Int64("entity_id", row.EntityID).
		Msg("import failed for record")
	row.Error = err.Error()
	return u.emit(b, row, outcome.Failed)
}
