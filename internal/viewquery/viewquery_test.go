package viewquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherhq/gather-api/internal/domain/entity"
)

func snapshot() []entity.EventWithRole {
	return []entity.EventWithRole{
		{
			Event: entity.Event{
				ID:          "e1",
				Title:       "board game night",
				Date:        "2026-04-18",
				Time:        "19:00",
				Location:    "Community hall",
				Description: "Bring your favourite game.",
			},
			OrganizerName: "alice",
			ViewerRole:    entity.RoleOrganizer,
		},
		{
			Event: entity.Event{
				ID:          "e2",
				Title:       "Dinner",
				Date:        "2026-05-02",
				Time:        "18:30",
				Location:    "Trattoria",
				Description: "Team dinner",
			},
			OrganizerName: "bob",
			ViewerRole:    entity.RoleAttendee,
			ViewerStatus:  entity.StatusGoing,
		},
		{
			Event: entity.Event{
				ID:          "e3",
				Title:       "Apartment warming",
				Date:        "2026-03-10",
				Time:        "20:00",
				Location:    "Main street 4",
				Description: "Snacks and board games",
			},
			OrganizerName: "carol",
			ViewerRole:    entity.RoleAttendee,
			ViewerStatus:  entity.StatusMaybe,
		},
	}
}

func ids(items []entity.EventWithRole) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestApplyDefaultSortsByDateDescending(t *testing.T) {
	got := Apply(snapshot(), Query{})
	assert.Equal(t, []string{"e2", "e1", "e3"}, ids(got))
}

func TestApplyTitleSortIgnoresCase(t *testing.T) {
	got := Apply(snapshot(), Query{Sort: SortTitle})
	assert.Equal(t, []string{"e3", "e1", "e2"}, ids(got))
}

func TestApplySearchMatchesAnyField(t *testing.T) {
	// "board" appears in e1's title and e3's description.
	got := Apply(snapshot(), Query{Search: "board"})
	assert.ElementsMatch(t, []string{"e1", "e3"}, ids(got))

	// Organizer name counts too.
	got = Apply(snapshot(), Query{Search: "CAROL"})
	assert.Equal(t, []string{"e3"}, ids(got))

	got = Apply(snapshot(), Query{Search: "  trattoria  "})
	assert.Equal(t, []string{"e2"}, ids(got))

	got = Apply(snapshot(), Query{Search: "nothing matches this"})
	assert.Empty(t, got)
}

func TestApplyRoleFilter(t *testing.T) {
	got := Apply(snapshot(), Query{Role: "organizer"})
	assert.Equal(t, []string{"e1"}, ids(got))

	got = Apply(snapshot(), Query{Role: "attendee"})
	assert.ElementsMatch(t, []string{"e2", "e3"}, ids(got))

	// Unknown role values act as no filter.
	got = Apply(snapshot(), Query{Role: "everyone"})
	assert.Len(t, got, 3)
	got = Apply(snapshot(), Query{Role: "all"})
	assert.Len(t, got, 3)
}

func TestApplyStatusFilter(t *testing.T) {
	got := Apply(snapshot(), Query{Status: "going"})
	assert.Equal(t, []string{"e2"}, ids(got))

	// A concrete status never matches organizer-role items.
	got = Apply(snapshot(), Query{Status: "maybe"})
	assert.Equal(t, []string{"e3"}, ids(got))

	// Unknown status values act as no filter.
	got = Apply(snapshot(), Query{Status: "undecided"})
	assert.Len(t, got, 3)
	got = Apply(snapshot(), Query{Status: "all"})
	assert.Len(t, got, 3)
}

func TestApplyPipelineCombines(t *testing.T) {
	got := Apply(snapshot(), Query{Search: "board", Role: "attendee", Status: "maybe"})
	assert.Equal(t, []string{"e3"}, ids(got))

	got = Apply(snapshot(), Query{Search: "board", Role: "attendee", Status: "going"})
	assert.Empty(t, got)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := snapshot()
	want := ids(in)

	_ = Apply(in, Query{Sort: SortTitle, Search: "board"})
	assert.Equal(t, want, ids(in))
}

func TestApplyEmptyInput(t *testing.T) {
	got := Apply(nil, Query{Search: "board"})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApplyUnparseableDateSortsLast(t *testing.T) {
	in := snapshot()
	in = append(in, entity.EventWithRole{
		Event: entity.Event{ID: "e4", Title: "Broken", Date: "soon", Time: "late"},
	})
	got := Apply(in, Query{})
	require.Len(t, got, 4)
	assert.Equal(t, "e4", got[3].ID)
}
