package services

import (
	"context"
	"fmt"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/database/sqldb"
)

// LocaleStats are the counters of one project locale together with the number
// of translated pairs recomputed from the claim rows.
type LocaleStats struct {
	database.ProjectLocaleRecord
	RecountPairs int64
}

// Consistent reports whether the stored counters account for every
// translated pair exactly once.
func (s LocaleStats) Consistent() bool {
	return s.TranslatedStrings+s.ApprovedStrings == s.RecountPairs
}

// ProjectStats summarises a project's translation progress.
type ProjectStats struct {
	Project  database.ProjectRecord
	Entities int
	Locales  []LocaleStats
}

// Drift lists the locale codes whose stored counters disagree with a recount.
func (p *ProjectStats) Drift() []string {
	var codes []string
	for _, l := range p.Locales {
		if !l.Consistent() {
			codes = append(codes, l.LocaleCode)
		}
	}
	return codes
}

// StatsService reads the denormalised counters.
type StatsService struct {
	ctx      *database.Context
	projects *ProjectService
}

// NewStatsService creates a new StatsService.
func NewStatsService(ctx *database.Context) *StatsService {
	return &StatsService{ctx: ctx, projects: NewProjectService(ctx)}
}

// Project returns the counters of the project and each of its locales.
func (s *StatsService) Project(ctx context.Context, ident string) (*ProjectStats, error) {
	project, err := s.projects.Lookup(ctx, ident)
	if err != nil {
		return nil, err
	}
	locales, err := s.projects.ConfiguredLocales(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	q, err := s.ctx.Q()
	if err != nil {
		return nil, err
	}
	entities, err := q.ListActiveEntities(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	stats := &ProjectStats{Project: *project, Entities: len(entities)}
	for _, pl := range locales {
		pairs, err := q.CountTranslatedPairs(ctx, project.ID, pl.LocaleID)
		if err != nil {
			return nil, fmt.Errorf("recount %s: %w", pl.LocaleCode, err)
		}
		stats.Locales = append(stats.Locales, LocaleStats{
			ProjectLocaleRecord: pl,
			RecountPairs:        pairs,
		})
	}
	return stats, nil
}

// Counters returns the stored counters of one aggregate row.
func (s *StatsService) Counters(ctx context.Context, agg sqldb.Aggregate, id int64) (database.Counters, error) {
	q, err := s.ctx.Q()
	if err != nil {
		return database.Counters{}, err
	}
	row, err := q.GetAggregateCounters(ctx, agg, id)
	if err != nil {
		return database.Counters{}, database.NotFound(err, string(agg), id)
	}
	return database.CountersFromAggregate(row), nil
}
