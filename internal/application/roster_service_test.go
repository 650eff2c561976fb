package application

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherhq/gather-api/internal/domain/entity"
	repo "github.com/gatherhq/gather-api/internal/domain/repository"
	"github.com/gatherhq/gather-api/pkg/apperr"
)

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) add(id, username, email string) *entity.User {
	u := &entity.User{ID: id, Username: username, Email: email, CreatedAt: time.Now()}
	r.users[id] = u
	return u
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, ex := range r.users {
		if strings.EqualFold(ex.Email, u.Email) {
			return repo.ErrDuplicate
		}
	}
	u.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	r.users[u.ID] = u
	return nil
}

type fakeEventRepo struct {
	users          *fakeUserRepo
	events         map[string]*entity.Event
	participations map[string]*entity.Participation // key eventID/userID
	seq            int
}

func newFakeEventRepo(users *fakeUserRepo) *fakeEventRepo {
	return &fakeEventRepo{
		users:          users,
		events:         map[string]*entity.Event{},
		participations: map[string]*entity.Participation{},
	}
}

func pkey(eventID, userID string) string { return eventID + "/" + userID }

func (r *fakeEventRepo) CreateWithOrganizer(_ context.Context, e *entity.Event) error {
	r.seq++
	e.ID = fmt.Sprintf("event-%d", r.seq)
	e.CreatedAt = time.Now()
	r.events[e.ID] = e
	r.participations[pkey(e.ID, e.OrganizerID)] = &entity.Participation{
		ID:        fmt.Sprintf("part-%d", len(r.participations)+1),
		EventID:   e.ID,
		UserID:    e.OrganizerID,
		Role:      entity.RoleOrganizer,
		InvitedAt: time.Now(),
	}
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*entity.Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return e, nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.events[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.events, id)
	for k, p := range r.participations {
		if p.EventID == id {
			delete(r.participations, k)
		}
	}
	return nil
}

func (r *fakeEventRepo) CreateParticipation(_ context.Context, p *entity.Participation) error {
	k := pkey(p.EventID, p.UserID)
	if _, ok := r.participations[k]; ok {
		return repo.ErrDuplicate
	}
	p.ID = fmt.Sprintf("part-%d", len(r.participations)+1)
	p.InvitedAt = time.Now()
	cp := *p
	r.participations[k] = &cp
	return nil
}

func (r *fakeEventRepo) GetParticipation(_ context.Context, eventID, userID string) (*entity.Participation, error) {
	p, ok := r.participations[pkey(eventID, userID)]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return p, nil
}

func (r *fakeEventRepo) UpdateParticipationStatus(_ context.Context, eventID, userID string, status entity.Status) (*entity.Participation, error) {
	p, ok := r.participations[pkey(eventID, userID)]
	if !ok || p.Role != entity.RoleAttendee {
		return nil, repo.ErrNotFound
	}
	p.Status = status
	return p, nil
}

func (r *fakeEventRepo) ListOrganized(_ context.Context, userID string) ([]entity.EventWithRole, error) {
	out := []entity.EventWithRole{}
	for _, e := range r.events {
		if e.OrganizerID != userID {
			continue
		}
		out = append(out, r.withRole(e, entity.RoleOrganizer, ""))
	}
	return out, nil
}

func (r *fakeEventRepo) ListInvited(_ context.Context, userID string) ([]entity.EventWithRole, error) {
	out := []entity.EventWithRole{}
	for _, p := range r.participations {
		if p.UserID != userID || p.Role != entity.RoleAttendee {
			continue
		}
		if e, ok := r.events[p.EventID]; ok {
			out = append(out, r.withRole(e, entity.RoleAttendee, p.Status))
		}
	}
	return out, nil
}

func (r *fakeEventRepo) ListParticipants(_ context.Context, eventID string) ([]entity.Participant, error) {
	out := []entity.Participant{}
	for _, p := range r.participations {
		if p.EventID != eventID {
			continue
		}
		pt := entity.Participant{Participation: *p}
		if u, ok := r.users.users[p.UserID]; ok {
			pt.Username = u.Username
			pt.Email = u.Email
		}
		out = append(out, pt)
	}
	return out, nil
}

func (r *fakeEventRepo) withRole(e *entity.Event, role entity.Role, status entity.Status) entity.EventWithRole {
	count := 0
	for _, p := range r.participations {
		if p.EventID == e.ID {
			count++
		}
	}
	organizerName := ""
	if u, ok := r.users.users[e.OrganizerID]; ok {
		organizerName = u.Username
	}
	return entity.EventWithRole{
		Event:            *e,
		OrganizerName:    organizerName,
		ViewerRole:       role,
		ViewerStatus:     status,
		ParticipantCount: count,
	}
}

func newTestService() (*RosterService, *fakeUserRepo, *fakeEventRepo) {
	users := newFakeUserRepo()
	events := newFakeEventRepo(users)
	svc := NewRosterService(events, users, nil, nil, nil)
	// Fixed clock so the past-date check is deterministic.
	svc.Now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	}
	return svc, users, events
}

func futureInput() CreateEventInput {
	return CreateEventInput{
		Title:       "Board Game Night",
		Date:        "2026-04-18",
		Time:        "19:00",
		Location:    "Community hall",
		Description: "Bring your favourite game.",
	}
}

func TestCreateEventOrganizerParticipation(t *testing.T) {
	svc, users, events := newTestService()
	users.add("alice", "alice", "alice@example.com")

	e, err := svc.CreateEvent(context.Background(), "alice", futureInput())
	require.NoError(t, err)
	require.NotEmpty(t, e.ID)
	assert.Equal(t, "alice", e.OrganizerID)

	p, err := events.GetParticipation(context.Background(), e.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOrganizer, p.Role)

	organized, err := svc.ListForViewer(context.Background(), "alice", FilterOrganized)
	require.NoError(t, err)
	require.Len(t, organized, 1)
	assert.Equal(t, entity.RoleOrganizer, organized[0].ViewerRole)
	assert.Equal(t, 1, organized[0].ParticipantCount)
}

func TestCreateEventValidation(t *testing.T) {
	svc, users, _ := newTestService()
	users.add("alice", "alice", "alice@example.com")
	ctx := context.Background()

	missing := futureInput()
	missing.Location = "   "
	_, err := svc.CreateEvent(ctx, "alice", missing)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	badDate := futureInput()
	badDate.Date = "18-04-2026"
	_, err = svc.CreateEvent(ctx, "alice", badDate)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	past := futureInput()
	past.Date = "2026-02-01"
	_, err = svc.CreateEvent(ctx, "alice", past)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestInviteParticipant(t *testing.T) {
	svc, users, _ := newTestService()
	users.add("alice", "alice", "alice@example.com")
	users.add("bob", "bob", "bob@example.com")
	ctx := context.Background()

	e, err := svc.CreateEvent(ctx, "alice", futureInput())
	require.NoError(t, err)

	p, err := svc.InviteParticipant(ctx, e.ID, "alice", "Bob@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "bob", p.UserID)
	assert.Equal(t, entity.RoleAttendee, p.Role)
	assert.Equal(t, entity.StatusMaybe, p.Status)

	invited, err := svc.ListForViewer(ctx, "bob", FilterInvited)
	require.NoError(t, err)
	require.Len(t, invited, 1)
	assert.Equal(t, entity.StatusMaybe, invited[0].ViewerStatus)
}

func TestInviteParticipantErrors(t *testing.T) {
	svc, users, _ := newTestService()
	users.add("alice", "alice", "alice@example.com")
	users.add("bob", "bob", "bob@example.com")
	ctx := context.Background()

	e, err := svc.CreateEvent(ctx, "alice", futureInput())
	require.NoError(t, err)

	_, err = svc.InviteParticipant(ctx, "missing", "alice", "bob@example.com")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = svc.InviteParticipant(ctx, e.ID, "bob", "bob@example.com")
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	_, err = svc.InviteParticipant(ctx, e.ID, "alice", "not an email")
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = svc.InviteParticipant(ctx, e.ID, "alice", "nobody@example.com")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	// Second invitation for the same user conflicts.
	_, err = svc.InviteParticipant(ctx, e.ID, "alice", "bob@example.com")
	require.NoError(t, err)
	_, err = svc.InviteParticipant(ctx, e.ID, "alice", "bob@example.com")
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestUpdateStatus(t *testing.T) {
	svc, users, _ := newTestService()
	users.add("alice", "alice", "alice@example.com")
	users.add("bob", "bob", "bob@example.com")
	ctx := context.Background()

	e, err := svc.CreateEvent(ctx, "alice", futureInput())
	require.NoError(t, err)
	_, err = svc.InviteParticipant(ctx, e.ID, "alice", "bob@example.com")
	require.NoError(t, err)

	p, err := svc.UpdateStatus(ctx, e.ID, "bob", entity.StatusGoing)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusGoing, p.Status)

	// Idempotent: setting the same value again succeeds.
	p, err = svc.UpdateStatus(ctx, e.ID, "bob", entity.StatusGoing)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusGoing, p.Status)

	p, err = svc.UpdateStatus(ctx, e.ID, "bob", entity.StatusNotGoing)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusNotGoing, p.Status)
}

func TestUpdateStatusErrors(t *testing.T) {
	svc, users, _ := newTestService()
	users.add("alice", "alice", "alice@example.com")
	users.add("bob", "bob", "bob@example.com")
	users.add("carol", "carol", "carol@example.com")
	ctx := context.Background()

	e, err := svc.CreateEvent(ctx, "alice", futureInput())
	require.NoError(t, err)
	_, err = svc.InviteParticipant(ctx, e.ID, "alice", "bob@example.com")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, e.ID, "bob", entity.Status("attending"))
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = svc.UpdateStatus(ctx, "missing", "bob", entity.StatusGoing)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	// Not invited.
	_, err = svc.UpdateStatus(ctx, e.ID, "carol", entity.StatusGoing)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	// Organizers hold no RSVP status on their own event.
	_, err = svc.UpdateStatus(ctx, e.ID, "alice", entity.StatusGoing)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestDeleteEvent(t *testing.T) {
	svc, users, _ := newTestService()
	users.add("alice", "alice", "alice@example.com")
	users.add("bob", "bob", "bob@example.com")
	ctx := context.Background()

	e, err := svc.CreateEvent(ctx, "alice", futureInput())
	require.NoError(t, err)
	_, err = svc.InviteParticipant(ctx, e.ID, "alice", "bob@example.com")
	require.NoError(t, err)

	err = svc.DeleteEvent(ctx, e.ID, "bob")
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	require.NoError(t, svc.DeleteEvent(ctx, e.ID, "alice"))

	// The event is gone for everyone, including former attendees.
	_, err = svc.GetEvent(ctx, e.ID, "bob")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	_, err = svc.UpdateStatus(ctx, e.ID, "bob", entity.StatusGoing)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	invited, err := svc.ListForViewer(ctx, "bob", FilterInvited)
	require.NoError(t, err)
	assert.Empty(t, invited)
}

func TestGetEvent(t *testing.T) {
	svc, users, _ := newTestService()
	users.add("alice", "alice", "alice@example.com")
	users.add("bob", "bob", "bob@example.com")
	users.add("carol", "carol", "carol@example.com")
	ctx := context.Background()

	e, err := svc.CreateEvent(ctx, "alice", futureInput())
	require.NoError(t, err)
	_, err = svc.InviteParticipant(ctx, e.ID, "alice", "bob@example.com")
	require.NoError(t, err)

	got, err := svc.GetEvent(ctx, e.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOrganizer, got.ViewerRole)
	assert.Equal(t, "alice", got.OrganizerName)
	assert.Equal(t, 2, got.ParticipantCount)
	assert.Empty(t, got.ViewerStatus)

	got, err = svc.GetEvent(ctx, e.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAttendee, got.ViewerRole)
	assert.Equal(t, entity.StatusMaybe, got.ViewerStatus)

	_, err = svc.GetEvent(ctx, e.ID, "carol")
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestListForViewerAll(t *testing.T) {
	svc, users, _ := newTestService()
	users.add("alice", "alice", "alice@example.com")
	users.add("bob", "bob", "bob@example.com")
	ctx := context.Background()

	mine, err := svc.CreateEvent(ctx, "alice", futureInput())
	require.NoError(t, err)

	theirs := futureInput()
	theirs.Title = "Dinner"
	other, err := svc.CreateEvent(ctx, "bob", theirs)
	require.NoError(t, err)
	_, err = svc.InviteParticipant(ctx, other.ID, "bob", "alice@example.com")
	require.NoError(t, err)

	all, err := svc.ListForViewer(ctx, "alice", FilterAll)
	require.NoError(t, err)
	require.Len(t, all, 2)

	roles := map[string]entity.Role{}
	for _, it := range all {
		roles[it.ID] = it.ViewerRole
	}
	assert.Equal(t, entity.RoleOrganizer, roles[mine.ID])
	assert.Equal(t, entity.RoleAttendee, roles[other.ID])

	_, err = svc.ListForViewer(ctx, "alice", RoleFilter("bogus"))
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestListParticipants(t *testing.T) {
	svc, users, _ := newTestService()
	users.add("alice", "alice", "alice@example.com")
	users.add("bob", "bob", "bob@example.com")
	ctx := context.Background()

	e, err := svc.CreateEvent(ctx, "alice", futureInput())
	require.NoError(t, err)
	_, err = svc.InviteParticipant(ctx, e.ID, "alice", "bob@example.com")
	require.NoError(t, err)

	participants, err := svc.ListParticipants(ctx, e.ID, "alice")
	require.NoError(t, err)
	require.Len(t, participants, 2)

	byUser := map[string]entity.Participant{}
	for _, p := range participants {
		byUser[p.UserID] = p
	}
	assert.Equal(t, entity.RoleOrganizer, byUser["alice"].Role)
	assert.Equal(t, "bob@example.com", byUser["bob"].Email)

	// Attendees cannot pull the roster.
	_, err = svc.ListParticipants(ctx, e.ID, "bob")
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	// Deleted event reports not-found before authorization.
	require.NoError(t, svc.DeleteEvent(ctx, e.ID, "alice"))
	_, err = svc.ListParticipants(ctx, e.ID, "bob")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
