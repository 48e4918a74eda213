package usecase

import (
	"context"

	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/logging"
	"github.com/locsync/locsync/internal/services"
)

// Stats reports translation progress.
type Stats struct {
	stats *services.StatsService
}

// NewStats creates a Stats use case.
func NewStats(dbCtx *database.Context) *Stats {
	return &Stats{stats: services.NewStatsService(dbCtx)}
}

// Project returns the counters of a project and its locales. Counter drift
// against a recount is logged as a warning.
func (u *Stats) Project(ctx context.Context, ident string) (*services.ProjectStats, error) {
	stats, err := u.stats.Project(ctx, ident)
	if err != nil {
		return nil, err
	}
	if drift := stats.Drift(); len(drift) > 0 {
		logging.FromContext(ctx).Warn().
			Str("project", stats.Project.Slug).
			Strs("locales", drift).
			Msg("stored counters disagree with a recount")
	}
	return stats, nil
}
