package database

import (
	"strings"
	"time"
)

// Counters are the denormalised translation statistics kept on every aggregate.
type Counters struct {
	LatestTranslationID *int64
	TranslatedStrings   int64
	ApprovedStrings     int64
}

// UserRecord represents a row in the users table.
type UserRecord struct {
	ID        int64
	Username  string
	Email     string
	CreatedAt time.Time
}

// LocaleRecord represents a row in the locales table.
type LocaleRecord struct {
	ID   int64
	Code string
	Name string
	Counters
}

// LocaleCode returns the stored code. It lets a resolved locale be passed
// wherever a locale reference is accepted.
func (l *LocaleRecord) LocaleCode() string {
	return l.Code
}

// ProjectRecord represents a row in the projects table.
type ProjectRecord struct {
	ID        int64
	Slug      string
	Name      string
	CreatedAt time.Time
	Counters
}

// ProjectLocaleRecord is a locale enabled for a project, with the
// project-scoped counters.
type ProjectLocaleRecord struct {
	ID         int64
	ProjectID  int64
	LocaleID   int64
	LocaleCode string
	LocaleName string
	Counters
}

// ResourceRecord represents a row in the resources table.
type ResourceRecord struct {
	ID        int64
	ProjectID int64
	Path      string
}

// EntityRecord is a translatable source string together with the resource it
// belongs to.
type EntityRecord struct {
	ID           int64
	ResourceID   int64
	ProjectID    int64
	ResourcePath string
	Key          string
	String       string
	Obsolete     bool
}

// Label identifies the entity in logs and reports.
func (e EntityRecord) Label() string {
	if e.Key != "" {
		return e.ResourcePath + ":" + e.Key
	}
	s := strings.Join(strings.Fields(e.String), " ")
	if r := []rune(s); len(r) > 40 {
		s = string(r[:39]) + "…"
	}
	return e.ResourcePath + ":" + s
}

// TranslationRecord is one candidate translation of an entity into a locale.
// Unset actor and date fields are nil.
type TranslationRecord struct {
	ID               int64
	EntityID         int64
	LocaleID         int64
	UserID           *int64
	String           string
	EntityDocument   string
	Date             time.Time
	Approved         bool
	ApprovedUserID   *int64
	ApprovedDate     *time.Time
	UnapprovedUserID *int64
	UnapprovedDate   *time.Time
	Rejected         bool
	RejectedUserID   *int64
	RejectedDate     *time.Time
	UnrejectedUserID *int64
	UnrejectedDate   *time.Time
	Fuzzy            bool
	Verbatim         bool
	Extra            string
}

// State names the review state for display.
func (t TranslationRecord) State() string {
	switch {
	case t.Approved:
		return "approved"
	case t.Rejected:
		return "rejected"
	default:
		return "unreviewed"
	}
}

// MemoryRecord is an immutable translation-memory pair.
type MemoryRecord struct {
	ID            int64
	Source        string
	Target        string
	EntityID      *int64
	LocaleID      int64
	TranslationID *int64
	ProjectID     *int64
	CreatedAt     time.Time
}
