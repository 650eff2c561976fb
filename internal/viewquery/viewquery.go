// Package viewquery filters and sorts viewer-scoped event snapshots for
// display. Apply is a pure function: it never mutates its input, never
// touches storage, and never fails — malformed filter values simply act as
// "no filter applied".
package viewquery

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/gatherhq/gather-api/internal/domain/entity"
)

// Sort keys.
const (
	SortDate  = "date"
	SortTitle = "title"
)

// Query is the filter/sort state applied to a snapshot.
type Query struct {
	Search string // trimmed, case-insensitive substring match
	Role   string // "all" | "organizer" | "attendee"
	Status string // "all" | "going" | "maybe" | "not going"
	Sort   string // SortDate (default) | SortTitle
}

var titleCollator = collate.New(language.English, collate.IgnoreCase)

// Apply runs the fixed pipeline search -> role -> status -> sort and returns
// a new ordered slice. Empty input or no matches yield an empty slice.
func Apply(items []entity.EventWithRole, q Query) []entity.EventWithRole {
	out := make([]entity.EventWithRole, 0, len(items))

	search := strings.ToLower(strings.TrimSpace(q.Search))
	role := entity.Role(q.Role)
	status := entity.Status(q.Status)

	for _, it := range items {
		if search != "" && !matchesSearch(&it, search) {
			continue
		}
		if (role == entity.RoleOrganizer || role == entity.RoleAttendee) && it.ViewerRole != role {
			continue
		}
		// A concrete status filter always excludes organizer-role items.
		if status.Valid() && (it.ViewerRole != entity.RoleAttendee || it.ViewerStatus != status) {
			continue
		}
		out = append(out, it)
	}

	switch q.Sort {
	case SortTitle:
		sort.SliceStable(out, func(i, j int) bool {
			return titleCollator.CompareString(out[i].Title, out[j].Title) < 0
		})
	default:
		// Most imminent or most recent first.
		sort.SliceStable(out, func(i, j int) bool {
			return startInstant(&out[i]).After(startInstant(&out[j]))
		})
	}

	return out
}

func matchesSearch(it *entity.EventWithRole, search string) bool {
	for _, field := range []string{it.Title, it.Description, it.Location, it.OrganizerName} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// startInstant combines date and time; unparseable values sort last.
func startInstant(it *entity.EventWithRole) time.Time {
	t, err := it.StartsAt(time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
