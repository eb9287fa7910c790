// Package roster imports location rosters from spreadsheets and validates
// them before they reach the store.
package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/j-veylop/venue-usage-tui/internal/models"
)

var (
	// ErrInvalidRoster is returned for rosters that fail validation.
	ErrInvalidRoster = errors.New("invalid roster")
	// ErrNoColumns is returned when ID and name columns cannot be located.
	ErrNoColumns = errors.New("could not find location id and name columns")
	// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv.
	ErrUnsupportedFormat = errors.New("unsupported roster format")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// nameHints mark a column as holding the display name.
var nameHints = []string{"KEC", "NAM", "LOK", "GED", "SITE"}

// Columns are the zero-based positions of the two roster fields.
type Columns struct {
	ID   int
	Name int
}

// NormalizeHeader upper-cases a header cell and replaces spaces with "_".
func NormalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(h)), " ", "_")
}

// SniffColumns locates the ID and name columns from a header row. A header
// containing LOC is the ID column; one matching a name hint is the name
// column. Later matches win. Without a name match, the first column that is
// not the ID column is used.
func SniffColumns(header []string) (Columns, error) {
	cols := Columns{ID: -1, Name: -1}
	for i, raw := range header {
		h := NormalizeHeader(raw)
		switch {
		case strings.Contains(h, "LOC"):
			cols.ID = i
		case containsAny(h, nameHints):
			cols.Name = i
		}
	}

	if cols.Name < 0 && len(header) > 1 {
		if cols.ID == 0 {
			cols.Name = 1
		} else {
			cols.Name = 0
		}
	}

	if cols.ID < 0 || cols.Name < 0 || cols.ID == cols.Name {
		return Columns{}, fmt.Errorf("%w: header %v", ErrNoColumns, header)
	}
	return cols, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// FromRecords builds and validates a roster from a header row followed by
// data rows. Fully blank rows are skipped.
func FromRecords(project string, records [][]string) (*models.Roster, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: file has no rows", ErrInvalidRoster)
	}
	cols, err := SniffColumns(records[0])
	if err != nil {
		return nil, err
	}

	r := &models.Roster{Project: strings.TrimSpace(project)}
	for _, rec := range records[1:] {
		id := cell(rec, cols.ID)
		name := cell(rec, cols.Name)
		if id == "" && name == "" {
			continue
		}
		r.Locations = append(r.Locations, models.Location{ID: id, DisplayName: name})
	}

	if err := Validate(r); err != nil {
		return nil, err
	}
	return r, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// Validate rejects rosters without a project, without locations, with
// duplicate IDs or with blank fields.
func Validate(r *models.Roster) error {
	if r == nil {
		return fmt.Errorf("%w: nil roster", ErrInvalidRoster)
	}
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidRoster, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Roster.")
	switch fe.Tag() {
	case "required":
		return field + " is empty"
	case "min":
		return "roster has no locations"
	case "unique":
		return "duplicate location id"
	default:
		return field + " failed " + fe.Tag()
	}
}
