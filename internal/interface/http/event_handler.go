package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gatherhq/gather-api/internal/application"
	"github.com/gatherhq/gather-api/internal/domain/entity"
	"github.com/gatherhq/gather-api/internal/interface/middleware"
	"github.com/gatherhq/gather-api/internal/viewquery"
	"github.com/gatherhq/gather-api/pkg/response"
	"github.com/gatherhq/gather-api/pkg/validation"
)

type EventHandler struct {
	Roster *application.RosterService
	Logger *logrus.Logger
}

func NewEventHandler(roster *application.RosterService, logger *logrus.Logger) *EventHandler {
	return &EventHandler{Roster: roster, Logger: logger}
}

type createEventRequest struct {
	Title       string `json:"title" binding:"required"`
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
	Time        string `json:"time" binding:"required"`
	Location    string `json:"location" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type inviteRequest struct {
	Email string `json:"email" binding:"required"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// eventResponse mirrors the wire format the front-end consumes.
type eventResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	Location         string    `json:"location"`
	Description      string    `json:"description"`
	OrganizerID      string    `json:"organizerId"`
	OrganizerName    string    `json:"organizerName,omitempty"`
	UserRole         string    `json:"userRole,omitempty"`
	UserStatus       string    `json:"userStatus,omitempty"`
	ParticipantCount int       `json:"participantCount"`
	CreatedAt        time.Time `json:"createdAt"`
}

type participantResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status,omitempty"`
	InvitedAt time.Time `json:"invitedAt"`
}

func toEventResponse(it entity.EventWithRole) eventResponse {
	r := eventResponse{
		ID:               it.ID,
		Title:            it.Title,
		Date:             it.Date,
		Time:             it.Time,
		Location:         it.Location,
		Description:      it.Description,
		OrganizerID:      it.OrganizerID,
		OrganizerName:    it.OrganizerName,
		UserRole:         string(it.ViewerRole),
		ParticipantCount: it.ParticipantCount,
		CreatedAt:        it.CreatedAt,
	}
	if it.ViewerRole == entity.RoleAttendee {
		r.UserStatus = string(it.ViewerStatus)
	}
	return r
}

func toEventResponses(items []entity.EventWithRole) []eventResponse {
	out := make([]eventResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toEventResponse(it))
	}
	return out
}

func toParticipantResponse(p entity.Participant) participantResponse {
	r := participantResponse{
		ID:        p.ID,
		EventID:   p.EventID,
		UserID:    p.UserID,
		Username:  p.Username,
		Email:     p.Email,
		Role:      string(p.Role),
		InvitedAt: p.InvitedAt,
	}
	if p.Role == entity.RoleAttendee {
		r.Status = string(p.Status)
	}
	return r
}

// Create POST /api/events
func (h *EventHandler) Create(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	e, err := h.Roster.CreateEvent(c.Request.Context(), uid, application.CreateEventInput{
		Title:       req.Title,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toEventResponse(entity.EventWithRole{Event: *e, ViewerRole: entity.RoleOrganizer, ParticipantCount: 1}), "event created", nil)
}

// Organized GET /api/events/organized
func (h *EventHandler) Organized(c *gin.Context) {
	h.list(c, application.FilterOrganized)
}

// Invited GET /api/events/invited
func (h *EventHandler) Invited(c *gin.Context) {
	h.list(c, application.FilterInvited)
}

func (h *EventHandler) list(c *gin.Context, filter application.RoleFilter) {
	uid := c.GetString(middleware.CtxUserIDKey)
	items, err := h.Roster.ListForViewer(c.Request.Context(), uid, filter)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.Success(c, http.StatusOK, toEventResponses(items), "events", nil)
}

// MyEvents GET /api/events/my-events
// Responds with {organized: [...], invited: [...]} — the contract the
// front-end's combined view expects.
func (h *EventHandler) MyEvents(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	items, err := h.Roster.ListForViewer(c.Request.Context(), uid, application.FilterAll)
	if err != nil {
		response.Failure(c, err)
		return
	}
	organized := []eventResponse{}
	invited := []eventResponse{}
	for _, it := range items {
		if it.ViewerRole == entity.RoleOrganizer {
			organized = append(organized, toEventResponse(it))
		} else {
			invited = append(invited, toEventResponse(it))
		}
	}
	response.Success(c, http.StatusOK, gin.H{"organized": organized, "invited": invited}, "events", nil)
}

// Feed GET /api/events/feed?search=&role=&status=&sort=
// The combined snapshot piped through the view query pipeline.
func (h *EventHandler) Feed(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	items, err := h.Roster.ListForViewer(c.Request.Context(), uid, application.FilterAll)
	if err != nil {
		response.Failure(c, err)
		return
	}
	filtered := viewquery.Apply(items, viewquery.Query{
		Search: c.Query("search"),
		Role:   c.DefaultQuery("role", "all"),
		Status: c.DefaultQuery("status", "all"),
		Sort:   c.DefaultQuery("sort", viewquery.SortDate),
	})
	response.Success(c, http.StatusOK, toEventResponses(filtered), "events", nil)
}

// GetOne GET /api/events/:id
func (h *EventHandler) GetOne(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	item, err := h.Roster.GetEvent(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.Success(c, http.StatusOK, toEventResponse(*item), "event", nil)
}

// Participants GET /api/events/:id/participants
func (h *EventHandler) Participants(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	participants, err := h.Roster.ListParticipants(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		response.Failure(c, err)
		return
	}
	out := make([]participantResponse, 0, len(participants))
	for _, p := range participants {
		out = append(out, toParticipantResponse(p))
	}
	response.Success(c, http.StatusOK, out, "participants", nil)
}

// Invite POST /api/events/:id/invite
func (h *EventHandler) Invite(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Roster.InviteParticipant(c.Request.Context(), c.Param("id"), uid, req.Email)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"id":        p.ID,
		"eventId":   p.EventID,
		"userId":    p.UserID,
		"role":      p.Role,
		"status":    p.Status,
		"invitedAt": p.InvitedAt,
	}, "user invited", nil)
}

// UpdateStatus PUT /api/events/:id/status
func (h *EventHandler) UpdateStatus(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Roster.UpdateStatus(c.Request.Context(), c.Param("id"), uid, entity.Status(req.Status))
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":      p.ID,
		"eventId": p.EventID,
		"userId":  p.UserID,
		"status":  p.Status,
	}, "status updated", nil)
}

// Delete DELETE /api/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Roster.DeleteEvent(c.Request.Context(), c.Param("id"), uid); err != nil {
		response.Failure(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "event deleted", nil)
}
