package application

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gatherhq/gather-api/config"
	"github.com/gatherhq/gather-api/internal/domain/entity"
	repo "github.com/gatherhq/gather-api/internal/domain/repository"
	"github.com/gatherhq/gather-api/pkg/apperr"
	"github.com/gatherhq/gather-api/pkg/helpers"
	"github.com/gatherhq/gather-api/pkg/mailer"
	tpl "github.com/gatherhq/gather-api/pkg/mailer/templates"
)

// Same shape the sign-up and invite forms check: local@domain.tld.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RoleFilter scopes ListForViewer.
type RoleFilter string

const (
	FilterOrganized RoleFilter = "organized"
	FilterInvited   RoleFilter = "invited"
	FilterAll       RoleFilter = "all"
)

// RosterService owns the event/participation lifecycle. Every operation takes
// the caller's user id explicitly; the service never reads session state.
type RosterService struct {
	Events repo.EventRepository
	Users  repo.UserRepository
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger
	Cfg    *config.Config

	// Now is the clock used for the past-date check; tests override it.
	Now func() time.Time
}

func NewRosterService(events repo.EventRepository, users repo.UserRepository, pub *helpers.RabbitPublisher, logger *logrus.Logger, cfg *config.Config) *RosterService {
	return &RosterService{
		Events: events,
		Users:  users,
		Pub:    pub,
		Logger: logger,
		Cfg:    cfg,
		Now:    time.Now,
	}
}

type CreateEventInput struct {
	Title       string
	Date        string // entity.DateLayout
	Time        string // entity.TimeLayout
	Location    string
	Description string
}

// CreateEvent creates an event and its organizer participation atomically.
func (s *RosterService) CreateEvent(ctx context.Context, organizerID string, in CreateEventInput) (*entity.Event, error) {
	e := &entity.Event{
		Title:       strings.TrimSpace(in.Title),
		Date:        strings.TrimSpace(in.Date),
		Time:        strings.TrimSpace(in.Time),
		Location:    strings.TrimSpace(in.Location),
		Description: strings.TrimSpace(in.Description),
		OrganizerID: organizerID,
	}
	if e.Title == "" || e.Date == "" || e.Time == "" || e.Location == "" || e.Description == "" {
		return nil, apperr.New(apperr.Validation, "all event fields are required")
	}

	startsAt, err := e.StartsAt(time.Local)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "invalid event date or time")
	}
	if startsAt.Before(s.Now()) {
		return nil, apperr.New(apperr.Validation, "event date and time must be in the future")
	}

	if err := s.Events.CreateWithOrganizer(ctx, e); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create event", err)
	}
	return e, nil
}

// InviteParticipant invites the user owning email as an attendee with the
// default "maybe" status. Only the organizer may invite.
func (s *RosterService) InviteParticipant(ctx context.Context, eventID, invokingUserID, email string) (*entity.Participation, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != invokingUserID {
		return nil, apperr.New(apperr.Forbidden, "only the organizer can invite participants")
	}

	email = strings.TrimSpace(email)
	if !emailRe.MatchString(email) {
		return nil, apperr.New(apperr.Validation, "invalid email address")
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "no user found with that email")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to look up user", err)
	}

	p := &entity.Participation{
		EventID: event.ID,
		UserID:  user.ID,
		Role:    entity.RoleAttendee,
		Status:  entity.StatusMaybe,
	}
	if err := s.Events.CreateParticipation(ctx, p); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperr.New(apperr.Conflict, "user is already a participant of this event")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to create participation", err)
	}

	s.sendEventEmail(ctx, tpl.Invitation, event, user)
	return p, nil
}

// UpdateStatus overwrites the caller's RSVP answer. Organizers hold no status
// on their own events; the operation is idempotent.
func (s *RosterService) UpdateStatus(ctx context.Context, eventID, invokingUserID string, status entity.Status) (*entity.Participation, error) {
	if !status.Valid() {
		return nil, apperr.New(apperr.Validation, "status must be one of: going, maybe, not going")
	}

	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}

	p, err := s.Events.GetParticipation(ctx, eventID, invokingUserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.New(apperr.Forbidden, "you are not invited to this event")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to look up participation", err)
	}
	if p.Role != entity.RoleAttendee {
		return nil, apperr.New(apperr.Forbidden, "organizers cannot set a status on their own event")
	}

	updated, err := s.Events.UpdateParticipationStatus(ctx, eventID, invokingUserID, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to update status", err)
	}
	return updated, nil
}

// DeleteEvent removes the event and every participation referencing it, then
// tells invited attendees by email.
func (s *RosterService) DeleteEvent(ctx context.Context, eventID, invokingUserID string) error {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != invokingUserID {
		return apperr.New(apperr.Forbidden, "only the organizer can delete this event")
	}

	// Snapshot the roster before it cascades away.
	participants, err := s.Events.ListParticipants(ctx, eventID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to list participants", err)
	}

	if err := s.Events.Delete(ctx, eventID); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete event", err)
	}

	for _, p := range participants {
		if p.Role != entity.RoleAttendee {
			continue
		}
		s.sendEventEmail(ctx, tpl.Cancellation, event, &entity.User{Username: p.Username, Email: p.Email})
	}
	return nil
}

// GetEvent returns one event with the caller's role on it. Only the organizer
// or an invited attendee may view it.
func (s *RosterService) GetEvent(ctx context.Context, eventID, invokingUserID string) (*entity.EventWithRole, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	p, err := s.Events.GetParticipation(ctx, eventID, invokingUserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.New(apperr.Forbidden, "you are not a participant of this event")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to look up participation", err)
	}

	organizer, err := s.Users.GetByID(ctx, event.OrganizerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to look up organizer", err)
	}
	roster, err := s.Events.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list participants", err)
	}

	out := &entity.EventWithRole{
		Event:            *event,
		OrganizerName:    organizer.Username,
		ViewerRole:       p.Role,
		ParticipantCount: len(roster),
	}
	if p.Role == entity.RoleAttendee {
		out.ViewerStatus = p.Status
	}
	return out, nil
}

// ListForViewer lists the events userID organizes, is invited to, or both.
func (s *RosterService) ListForViewer(ctx context.Context, userID string, filter RoleFilter) ([]entity.EventWithRole, error) {
	switch filter {
	case FilterOrganized:
		items, err := s.Events.ListOrganized(ctx, userID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to list events", err)
		}
		return items, nil
	case FilterInvited:
		items, err := s.Events.ListInvited(ctx, userID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to list events", err)
		}
		return items, nil
	case FilterAll:
		organized, err := s.Events.ListOrganized(ctx, userID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to list events", err)
		}
		invited, err := s.Events.ListInvited(ctx, userID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to list events", err)
		}
		return append(organized, invited...), nil
	default:
		return nil, apperr.New(apperr.Validation, "role filter must be one of: organized, invited, all")
	}
}

// ListParticipants returns the event roster with denormalized user identity.
// Existence is checked before authorization so a deleted event reports
// not-found rather than forbidden.
func (s *RosterService) ListParticipants(ctx context.Context, eventID, invokingUserID string) ([]entity.Participant, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != invokingUserID {
		return nil, apperr.New(apperr.Forbidden, "only the organizer can view participants")
	}

	participants, err := s.Events.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list participants", err)
	}
	return participants, nil
}

func (s *RosterService) getEvent(ctx context.Context, eventID string) (*entity.Event, error) {
	event, err := s.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "event not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to look up event", err)
	}
	return event, nil
}

// sendEventEmail enqueues a templated email about event for recipient.
// Best effort: the roster operation already committed, so failures only log.
func (s *RosterService) sendEventEmail(ctx context.Context, template string, event *entity.Event, recipient *entity.User) {
	if s.Pub == nil || s.Cfg == nil || !s.Cfg.MailSendEnabled {
		return
	}

	organizerName := ""
	if organizer, err := s.Users.GetByID(ctx, event.OrganizerID); err == nil {
		organizerName = organizer.Username
	}

	data := tpl.EmailData{
		RecipientName: recipient.Username,
		Email:         recipient.Email,
		AppName:       s.Cfg.AppName,
		EventTitle:    event.Title,
		EventDate:     event.Date,
		EventTime:     event.Time,
		Location:      event.Location,
		OrganizerName: organizerName,
	}
	job := mailer.EmailJob{To: recipient.Email, Template: template, Data: tpl.ToMap(data)}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"event_id": event.ID,
			"template": template,
		}).Warn("failed to publish email job")
	}
}
