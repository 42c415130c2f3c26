package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mentorgrid/scheduling/internal/model"
	"github.com/mentorgrid/scheduling/internal/scheduling"
	"github.com/mentorgrid/scheduling/internal/timezone"
)

type SchedulingHandler struct {
	service *scheduling.Service
	logger  *slog.Logger
}

func NewSchedulingHandler(service *scheduling.Service, logger *slog.Logger) *SchedulingHandler {
	return &SchedulingHandler{service: service, logger: logger}
}

type slotItem struct {
	Start       string `json:"start"`
	DisplayDate string `json:"display_date"`
	DisplayTime string `json:"display_time"`
	Available   bool   `json:"available"`
}

type slotsResponse struct {
	MentorID string     `json:"mentor_id"`
	Date     string     `json:"date"`
	Timezone string     `json:"timezone"`
	Slots    []slotItem `json:"slots"`
}

// Slots handles GET /api/v1/public/slots.
func (h *SchedulingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	mentorID := strings.TrimSpace(q.Get("mentor_id"))
	sessionTypeID := strings.TrimSpace(q.Get("session_type_id"))
	if mentorID == "" || sessionTypeID == "" {
		http.Error(w, "mentor_id and session_type_id required", http.StatusBadRequest)
		return
	}

	date, err := timezone.ParseDate(q.Get("date"))
	if err != nil {
		http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	viewerZone := strings.TrimSpace(q.Get("timezone"))
	if viewerZone == "" {
		viewerZone = "UTC"
	}

	views, err := h.service.Slots(r.Context(), mentorID, date, sessionTypeID, viewerZone)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := slotsResponse{
		MentorID: mentorID,
		Date:     date.String(),
		Timezone: viewerZone,
		Slots:    make([]slotItem, 0, len(views)),
	}
	for _, v := range views {
		resp.Slots = append(resp.Slots, slotItem{
			Start:       v.Start.Format(time.RFC3339),
			DisplayDate: v.DisplayDate,
			DisplayTime: v.DisplayTime,
			Available:   v.Available,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type availableDatesResponse struct {
	MentorID string   `json:"mentor_id"`
	Dates    []string `json:"dates"`
}

// AvailableDates handles GET /api/v1/public/available-dates.
func (h *SchedulingHandler) AvailableDates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	mentorID := strings.TrimSpace(q.Get("mentor_id"))
	sessionTypeID := strings.TrimSpace(q.Get("session_type_id"))
	if mentorID == "" || sessionTypeID == "" {
		http.Error(w, "mentor_id and session_type_id required", http.StatusBadRequest)
		return
	}

	from, err := timezone.ParseDate(q.Get("from"))
	if err != nil {
		http.Error(w, "invalid from date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	to, err := timezone.ParseDate(q.Get("to"))
	if err != nil {
		http.Error(w, "invalid to date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	dates, err := h.service.AvailableDates(r.Context(), mentorID, sessionTypeID, from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := availableDatesResponse{MentorID: mentorID, Dates: make([]string, 0, len(dates))}
	for _, d := range dates {
		resp.Dates = append(resp.Dates, d.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

type bookRequest struct {
	MentorID        string `json:"mentor_id"`
	MenteeID        string `json:"mentee_id"`
	SessionTypeID   string `json:"session_type_id"`
	Start           string `json:"start"`
	Note            string `json:"note"`
	MeetingPlatform string `json:"meeting_platform"`
}

type bookResponse struct {
	BookingID   string `json:"booking_id"`
	Status      string `json:"status"`
	ScheduledAt string `json:"scheduled_at"`
	MeetingLink string `json:"meeting_link,omitempty"`
}

// Book handles POST /api/v1/public/book.
func (h *SchedulingHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	req.MentorID = strings.TrimSpace(req.MentorID)
	req.MenteeID = strings.TrimSpace(req.MenteeID)
	req.SessionTypeID = strings.TrimSpace(req.SessionTypeID)
	if req.MentorID == "" || req.MenteeID == "" || req.SessionTypeID == "" {
		http.Error(w, "mentor_id, mentee_id and session_type_id required", http.StatusBadRequest)
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		http.Error(w, "invalid start, want RFC3339", http.StatusBadRequest)
		return
	}

	booking, err := h.service.Reserve(r.Context(), scheduling.ReserveRequest{
		MentorID:        req.MentorID,
		MenteeID:        req.MenteeID,
		SessionTypeID:   req.SessionTypeID,
		Start:           start,
		Note:            strings.TrimSpace(req.Note),
		MeetingPlatform: strings.TrimSpace(req.MeetingPlatform),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, bookResponse{
		BookingID:   booking.ID,
		Status:      string(booking.Status),
		ScheduledAt: booking.ScheduledAt.Format(time.RFC3339),
		MeetingLink: booking.MeetingLink,
	})
}

type bookingItem struct {
	BookingID       string `json:"booking_id"`
	MenteeID        string `json:"mentee_id"`
	SessionTypeID   string `json:"session_type_id"`
	ScheduledAt     string `json:"scheduled_at"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
	MeetingPlatform string `json:"meeting_platform,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// List handles GET /api/v1/bookings.
func (h *SchedulingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	mentorID := strings.TrimSpace(q.Get("mentor_id"))
	if mentorID == "" {
		http.Error(w, "mentor_id required", http.StatusBadRequest)
		return
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	bookings, err := h.service.Bookings(r.Context(), mentorID, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]bookingItem, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, toBookingItem(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": items})
}

func toBookingItem(b model.Booking) bookingItem {
	return bookingItem{
		BookingID:       b.ID,
		MenteeID:        b.MenteeID,
		SessionTypeID:   b.SessionTypeID,
		ScheduledAt:     b.ScheduledAt.Format(time.RFC3339),
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
		MeetingPlatform: b.MeetingPlatform,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
	}
}

func (h *SchedulingHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduling.ErrInvalidSlot):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, scheduling.ErrSlotConflict):
		http.Error(w, "slot already booked", http.StatusConflict)
	case errors.Is(err, scheduling.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, scheduling.ErrStoreUnavailable):
		http.Error(w, "service temporarily unavailable", http.StatusServiceUnavailable)
	default:
		h.logger.Error("unhandled scheduling error", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
