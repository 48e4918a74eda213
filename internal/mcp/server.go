package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/locsync/locsync/internal/application"
	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/formats"
	"github.com/locsync/locsync/internal/report"
	"github.com/locsync/locsync/internal/usecase"
)

// Options configure tool defaults.
type Options struct {
	DefaultUser string
	ColSep      rune
	OutcomeLog  string
	Version     string
}

// Server wraps the MCP server with the review, stats and import tools
type Server struct {
	server *mcp.Server
	dbCtx  *database.Context
	opts   Options
}

// NewServer creates a new MCP server instance. The server owns dbCtx and
// closes it when Run returns.
func NewServer(dbCtx *database.Context, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "locsync",
		Version: opts.Version,
	}, nil)

	s := &Server{
		server: mcpServer,
		dbCtx:  dbCtx,
		opts:   opts,
	}

	s.registerTools()

	return s
}

// Run starts the MCP server with stdio transport
func (s *Server) Run(ctx context.Context) error {
	defer database.CloseDatabase(s.dbCtx)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "translation_approve",
		Description: "Approve a translation; any other approved translation of the same string is unapproved",
	}, s.handleApprove)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "translation_unapprove",
		Description: "Withdraw the approval of a translation",
	}, s.handleUnapprove)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "translation_reject",
		Description: "Reject a translation",
	}, s.handleReject)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "translation_amend",
		Description: "Replace a translation's text: the translation is rejected and a sibling with the new text is approved",
	}, s.handleAmend)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "translation_history",
		Description: "List every translation of the same string into the same locale",
	}, s.handleHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "project_stats",
		Description: "Show translated and approved string counts of a project per locale",
	}, s.handleStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "missing_translations",
		Description: "List strings of a project that have no translation in a locale",
	}, s.handleMissing)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "import_file",
		Description: "Import a TMX, TXML, XLIFF or TCSV file into a project",
	}, s.handleImport)
}

// Input/Output types for each tool

type ReviewInput struct {
	ID   int64  `json:"id" jsonschema:"the translation id"`
	User string `json:"user" jsonschema:"username of the reviewer"`
}

type AmendInput struct {
	ID   int64  `json:"id" jsonschema:"the translation id"`
	Text string `json:"text" jsonschema:"the replacement text"`
	User string `json:"user" jsonschema:"username of the reviewer"`
}

type TranslationOutput struct {
	ID       int64  `json:"id"`
	EntityID int64  `json:"entityId"`
	LocaleID int64  `json:"localeId"`
	String   string `json:"string"`
	State    string `json:"state"`
	Date     string `json:"date"`
	Fuzzy    bool   `json:"fuzzy,omitempty"`
}

type ReviewOutput struct {
	Translation TranslationOutput  `json:"translation"`
	Rejected    *TranslationOutput `json:"rejected,omitempty"`
	Created     bool               `json:"created,omitempty"`
}

type HistoryInput struct {
	ID int64 `json:"id" jsonschema:"any translation id of the string"`
}

type HistoryOutput struct {
	Translations []TranslationOutput `json:"translations"`
}

type StatsInput struct {
	Project string `json:"project" jsonschema:"project slug or name"`
}

type LocaleStatsOutput struct {
	Locale     string `json:"locale"`
	Translated int64  `json:"translated"`
	Approved   int64  `json:"approved"`
	Consistent bool   `json:"consistent"`
}

type StatsOutput struct {
	Project    string              `json:"project"`
	Entities   int                 `json:"entities"`
	Translated int64               `json:"translated"`
	Approved   int64               `json:"approved"`
	Locales    []LocaleStatsOutput `json:"locales"`
}

type MissingInput struct {
	Project string `json:"project" jsonschema:"project slug or name"`
	Locale  string `json:"locale" jsonschema:"locale code"`
	Mode    string `json:"mode,omitempty" jsonschema:"single or condensed (default condensed)"`
}

type MissingOutput struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
	Count  int        `json:"count"`
}

type ImportInput struct {
	Project  string  `json:"project" jsonschema:"project slug or name"`
	Format   string  `json:"format" jsonschema:"tmx, txml, xliff, tcsv or tcsv-simple"`
	Path     string  `json:"path" jsonschema:"path of the file to import"`
	Language *string `json:"language,omitempty" jsonschema:"target language of tcsv-simple files"`
}

type ImportOutput struct {
	Message  string         `json:"message"`
	Imported int            `json:"imported"`
	Total    int            `json:"total"`
	Created  int            `json:"created"`
	Outcomes map[string]int `json:"outcomes"`
}

func translationOutput(t database.TranslationRecord) TranslationOutput {
	return TranslationOutput{
		ID:       t.ID,
		EntityID: t.EntityID,
		LocaleID: t.LocaleID,
		String:   t.String,
		State:    t.State(),
		Date:     t.Date.Format(time.RFC3339),
		Fuzzy:    t.Fuzzy,
	}
}

func reviewOutput(res *usecase.ReviewResult) ReviewOutput {
	out := ReviewOutput{Translation: translationOutput(res.Translation), Created: res.Created}
	if res.Rejected != nil {
		rejected := translationOutput(*res.Rejected)
		out.Rejected = &rejected
	}
	return out
}

// Tool handlers

func (s *Server) handleApprove(ctx context.Context, req *mcp.CallToolRequest, input ReviewInput) (*mcp.CallToolResult, ReviewOutput, error) {
	res, err := usecase.NewReview(s.dbCtx).Approve(ctx, input.ID, input.User)
	if err != nil {
		return nil, ReviewOutput{}, fmt.Errorf("failed to approve translation: %w", err)
	}
	return nil, reviewOutput(res), nil
}

func (s *Server) handleUnapprove(ctx context.Context, req *mcp.CallToolRequest, input ReviewInput) (*mcp.CallToolResult, ReviewOutput, error) {
	res, err := usecase.NewReview(s.dbCtx).Unapprove(ctx, input.ID, input.User)
	if err != nil {
		return nil, ReviewOutput{}, fmt.Errorf("failed to unapprove translation: %w", err)
	}
	return nil, reviewOutput(res), nil
}

func (s *Server) handleReject(ctx context.Context, req *mcp.CallToolRequest, input ReviewInput) (*mcp.CallToolResult, ReviewOutput, error) {
	res, err := usecase.NewReview(s.dbCtx).Reject(ctx, input.ID, input.User)
	if err != nil {
		return nil, ReviewOutput{}, fmt.Errorf("failed to reject translation: %w", err)
	}
	return nil, reviewOutput(res), nil
}

func (s *Server) handleAmend(ctx context.Context, req *mcp.CallToolRequest, input AmendInput) (*mcp.CallToolResult, ReviewOutput, error) {
	res, err := usecase.NewReview(s.dbCtx).Amend(ctx, input.ID, input.Text, input.User)
	if err != nil {
		return nil, ReviewOutput{}, fmt.Errorf("failed to amend translation: %w", err)
	}
	return nil, reviewOutput(res), nil
}

func (s *Server) handleHistory(ctx context.Context, req *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
	history, err := usecase.NewReview(s.dbCtx).History(ctx, input.ID)
	if err != nil {
		return nil, HistoryOutput{}, fmt.Errorf("failed to load history: %w", err)
	}
	out := HistoryOutput{Translations: make([]TranslationOutput, 0, len(history))}
	for _, t := range history {
		out.Translations = append(out.Translations, translationOutput(t))
	}
	return nil, out, nil
}

func (s *Server) handleStats(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := usecase.NewStats(s.dbCtx).Project(ctx, input.Project)
	if err != nil {
		return nil, StatsOutput{}, fmt.Errorf("failed to load stats: %w", err)
	}
	out := StatsOutput{
		Project:    stats.Project.Slug,
		Entities:   stats.Entities,
		Translated: stats.Project.TranslatedStrings,
		Approved:   stats.Project.ApprovedStrings,
		Locales:    make([]LocaleStatsOutput, 0, len(stats.Locales)),
	}
	for _, l := range stats.Locales {
		out.Locales = append(out.Locales, LocaleStatsOutput{
			Locale:     l.LocaleCode,
			Translated: l.TranslatedStrings,
			Approved:   l.ApprovedStrings,
			Consistent: l.Consistent(),
		})
	}
	return nil, out, nil
}

func (s *Server) handleMissing(ctx context.Context, req *mcp.CallToolRequest, input MissingInput) (*mcp.CallToolResult, MissingOutput, error) {
	mode, err := report.ParseMode(input.Mode)
	if err != nil {
		return nil, MissingOutput{}, err
	}
	res, err := usecase.NewMissingReport(s.dbCtx).Build(ctx, input.Project, input.Locale, mode)
	if err != nil {
		return nil, MissingOutput{}, fmt.Errorf("failed to build report: %w", err)
	}
	rows := res.Sheet.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return nil, MissingOutput{Header: res.Sheet.Header, Rows: rows, Count: res.Count}, nil
}

func (s *Server) handleImport(ctx context.Context, req *mcp.CallToolRequest, input ImportInput) (*mcp.CallToolResult, ImportOutput, error) {
	format, err := formats.ParseFormat(input.Format)
	if err != nil {
		return nil, ImportOutput{}, err
	}
	opts := formats.Options{ColSep: s.opts.ColSep}
	if input.Language != nil {
		opts.Language = *input.Language
	}

	summary, err := application.ImportFile(ctx, s.dbCtx, application.ImportFileInput{
		Project:     input.Project,
		Format:      format,
		Path:        input.Path,
		Options:     opts,
		DefaultUser: s.opts.DefaultUser,
		OutcomeLog:  s.opts.OutcomeLog,
	})
	if err != nil {
		return nil, ImportOutput{}, fmt.Errorf("failed to import file: %w", err)
	}

	outcomes := make(map[string]int, len(summary.Outcomes))
	for k, n := range summary.Outcomes {
		outcomes[string(k)] = n
	}
	return nil, ImportOutput{
		Message:  fmt.Sprintf("Imported %d out of %d", summary.Imported, summary.Total),
		Imported: summary.Imported,
		Total:    summary.Total,
		Created:  summary.Created,
		Outcomes: outcomes,
	}, nil
}
