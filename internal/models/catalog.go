package models

// Catalog names an editable record type.
type Catalog string

// Supported catalogs.
const (
	CatalogSessionPeriod  Catalog = "session_period"
	CatalogDeadlines      Catalog = "deadlines"
	CatalogCertifications Catalog = "certifications"
	CatalogTeachers       Catalog = "teachers"
	CatalogSchedule       Catalog = "schedule"
)

// Catalogs lists every catalog in panel order.
var Catalogs = []Catalog{
	CatalogSessionPeriod,
	CatalogDeadlines,
	CatalogCertifications,
	CatalogTeachers,
	CatalogSchedule,
}

// Valid reports whether c is a known catalog.
func (c Catalog) Valid() bool {
	for _, known := range Catalogs {
		if c == known {
			return true
		}
	}
	return false
}

// RecordSummary is a single selectable row in a catalog listing.
type RecordSummary struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// ColumnValue is one column assignment of an UPDATE statement.
type ColumnValue struct {
	Column string
	Value  interface{}
}
