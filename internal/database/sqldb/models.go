package sqldb

import (
	"database/sql"
	"time"
)

type User struct {
	ID        int64
	Username  string
	Email     sql.NullString
	CreatedAt time.Time
}

type Locale struct {
	ID                  int64
	Code                string
	Name                string
	LatestTranslationID sql.NullInt64
	TranslatedStrings   int64
	ApprovedStrings     int64
}

type Project struct {
	ID                  int64
	Slug                string
	Name                string
	LatestTranslationID sql.NullInt64
	TranslatedStrings   int64
	ApprovedStrings     int64
	CreatedAt           time.Time
}

type ProjectLocale struct {
	ID                  int64
	ProjectID           int64
	LocaleID            int64
	LatestTranslationID sql.NullInt64
	TranslatedStrings   int64
	ApprovedStrings     int64
}

type Resource struct {
	ID        int64
	ProjectID int64
	Path      string
	CreatedAt time.Time
}

type TranslatedResource struct {
	ID                  int64
	ResourceID          int64
	LocaleID            int64
	LatestTranslationID sql.NullInt64
	TranslatedStrings   int64
	ApprovedStrings     int64
}

type Entity struct {
	ID         int64
	ResourceID int64
	Key        string
	String     string
	Obsolete   bool
	CreatedAt  time.Time
}

type Translation struct {
	ID               int64
	EntityID         int64
	LocaleID         int64
	UserID           sql.NullInt64
	String           string
	EntityDocument   string
	Date             time.Time
	Approved         bool
	ApprovedUserID   sql.NullInt64
	ApprovedDate     sql.NullTime
	UnapprovedUserID sql.NullInt64
	UnapprovedDate   sql.NullTime
	Rejected         bool
	RejectedUserID   sql.NullInt64
	RejectedDate     sql.NullTime
	UnrejectedUserID sql.NullInt64
	UnrejectedDate   sql.NullTime
	Fuzzy            bool
	Verbatim         bool
	Extra            string
}

type Memory struct {
	ID            int64
	Source        string
	Target        string
	EntityID      sql.NullInt64
	LocaleID      int64
	TranslationID sql.NullInt64
	ProjectID     sql.NullInt64
	CreatedAt     time.Time
}
