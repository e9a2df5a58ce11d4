package schedule

import (
	"clinic-scheduling/internal/apierrors"
	"clinic-scheduling/internal/configs"
	"clinic-scheduling/internal/database"
	"clinic-scheduling/internal/logging"
	"clinic-scheduling/internal/metrics"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const dateFormat = "2006-01-02"

type httpHandler struct {
	service Service
	logger  *log.Logger
}

// Setup setups the routes handled by the schedule context.
func Setup(router *chi.Mux, logger *log.Logger, config configs.Config, dbConn database.Connection) {
	handler := &httpHandler{logger: logger, service: NewService(config, dbConn)}

	router.Group(func(group chi.Router) {
		group.Get("/api/v1/doctors/{doctorUUID}/slots/{year}/{month}/{day}", handler.GetBookableSlots)
		group.Get("/api/v1/doctors/{doctorUUID}/calendar/{view}/{year}/{month}/{day}", handler.GetRenderGrid)
		group.Get("/api/v1/doctors/{doctorUUID}/appointments/{year}/{month}/{day}", handler.GetAppointments)
		group.Post("/api/v1/doctors/{doctorUUID}/appointments", handler.Book)
		group.Patch("/api/v1/appointments/{appointmentUUID}/confirm", handler.Confirm)
		group.Patch("/api/v1/appointments/{appointmentUUID}/reschedule", handler.Reschedule)
		group.Patch("/api/v1/appointments/{appointmentUUID}/cancel", handler.Cancel)
	})

	router.Group(func(group chi.Router) {
		group.Get("/api/v1/doctors/{doctorUUID}/availability", handler.ListAvailability)
		group.Post("/api/v1/doctors/{doctorUUID}/availability", handler.SetAvailability)
		group.Delete("/api/v1/availability/{ruleUUID}", handler.RemoveAvailability)
		group.Post("/api/v1/doctors/{doctorUUID}/availability/block", handler.QuickBlock)
		group.Post("/api/v1/doctors/{doctorUUID}/availability/unblock", handler.QuickUnblock)
		group.Get("/api/v1/doctors/{doctorUUID}/blocks", handler.ListBlocks)
		group.Post("/api/v1/doctors/{doctorUUID}/blocks", handler.AddBlock)
		group.Put("/api/v1/blocks/{blockUUID}", handler.UpdateBlock)
		group.Delete("/api/v1/blocks/{blockUUID}", handler.RemoveBlock)
	})
}

// parseDateParameters parses the given parameters into a valid time.
func (h httpHandler) parseDateParameters(r *http.Request) (time.Time, error) {
	var zeroTime time.Time
	year := chi.URLParam(r, "year")
	month := chi.URLParam(r, "month")
	day := chi.URLParam(r, "day")
	if year == "" || month == "" || day == "" {
		return zeroTime, apierrors.NewAPIError(apierrors.WithDetail("invalid date reference"), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	concatDate := fmt.Sprintf("%s-%s-%s", year, month, day)
	date, err := time.Parse(dateFormat, concatDate)
	if err != nil {
		return zeroTime, apierrors.NewAPIError(apierrors.WithDetail("invalid date reference"), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}
	return date, nil
}

// parseUUIDParameter parses a UUID parameter into a valid UUID.
func (h httpHandler) parseUUIDParameter(parName string, r *http.Request) (uuid.UUID, error) {
	zeroUUID := uuid.UUID{}
	uuidPar := chi.URLParam(r, parName)
	if uuidPar == "" {
		return zeroUUID, apierrors.NewAPIError(apierrors.WithDetail("invalid identifier"), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	parsedUUID, err := uuid.Parse(uuidPar)
	if err != nil {
		return zeroUUID, apierrors.NewAPIError(apierrors.WithDetail("invalid identifier"), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}
	return parsedUUID, nil
}

// writeError logs the given error and answers with the HTTP status it maps to.
func (h httpHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		w.WriteHeader(apiErr.HTTPStatusCode())
		_ = json.NewEncoder(w).Encode(apiErr)
		return
	}
	var validationErr *apierrors.ValidationError
	if errors.As(err, &validationErr) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(validationErr)
		return
	}
	var batchErr *BatchError
	if errors.As(err, &batchErr) {
		w.WriteHeader(http.StatusMultiStatus)
		_ = json.NewEncoder(w).Encode(batchErr)
		return
	}
	switch {
	case errors.Is(err, ErrSlotTaken):
		metrics.CountBookingConflict()
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(apierrors.NewAPIError(apierrors.WithDetail(err.Error()), apierrors.WithHTTPStatusCode(http.StatusConflict)))
	case errors.Is(err, ErrInvalidTransition):
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(apierrors.NewAPIError(apierrors.WithDetail(err.Error()), apierrors.WithHTTPStatusCode(http.StatusConflict)))
	case errors.Is(err, ErrAppointmentNotFound), errors.Is(err, ErrRuleNotFound), errors.Is(err, ErrBlockNotFound),
		errors.Is(err, ErrDoctorNotFound), errors.Is(err, ErrPatientNotFound):
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(apierrors.NewAPIError(apierrors.WithDetail(err.Error()), apierrors.WithHTTPStatusCode(http.StatusNotFound)))
	case errors.Is(err, ErrTransient):
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(apierrors.NewAPIError(apierrors.WithDetail(err.Error()), apierrors.WithHTTPStatusCode(http.StatusServiceUnavailable)))
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (h httpHandler) GetBookableSlots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	date, err := h.parseDateParameters(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	doctorUUID, err := h.parseUUIDParameter("doctorUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	slots, err := h.service.GetBookableSlots(ctx, doctorUUID, date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(slots)
}

func (h httpHandler) GetRenderGrid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := View(chi.URLParam(r, "view"))
	if view != ViewDay && view != ViewWeek && view != ViewMonth {
		h.writeError(w, r, apierrors.NewAPIError(apierrors.WithDetail("invalid view reference - day, week or month"), apierrors.WithHTTPStatusCode(http.StatusBadRequest)))
		return
	}
	date, err := h.parseDateParameters(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	doctorUUID, err := h.parseUUIDParameter("doctorUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	grid, err := h.service.GetRenderGrid(ctx, doctorUUID, date, view)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(grid)
}

func (h httpHandler) GetAppointments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	date, err := h.parseDateParameters(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	doctorUUID, err := h.parseUUIDParameter("doctorUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	until := date
	if untilPar := r.URL.Query().Get("until"); untilPar != "" {
		until, err = time.Parse(dateFormat, untilPar)
		if err != nil {
			h.writeError(w, r, apierrors.NewValidationError("until", "must be a YYYY-MM-DD date"))
			return
		}
	}
	appointments, err := h.service.GetAppointments(ctx, doctorUUID, date, until)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(appointments)
}

type bookRequest struct {
	PatientUUID   string        `json:"patient_uuid"`
	Date          string        `json:"date"`
	Time          TimeOfDay     `json:"time"`
	EndTime       NullTimeOfDay `json:"end_time"`
	Type          string        `json:"type"`
	PaymentMethod string        `json:"payment_method"`
	Notes         *string       `json:"notes,omitempty"`
	Confirmed     bool          `json:"confirmed"`
}

func (h httpHandler) Book(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doctorUUID, err := h.parseUUIDParameter("doctorUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	request := new(bookRequest)
	if err = json.NewDecoder(r.Body).Decode(request); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	patientUUID, err := uuid.Parse(request.PatientUUID)
	if err != nil {
		h.writeError(w, r, apierrors.NewValidationError("patient_uuid", "must be a valid UUID"))
		return
	}
	date, err := time.Parse(dateFormat, request.Date)
	if err != nil {
		h.writeError(w, r, apierrors.NewValidationError("date", "must be a YYYY-MM-DD date"))
		return
	}
	appointment, err := h.service.Book(ctx, BookingRequest{
		DoctorUUID:    doctorUUID,
		PatientUUID:   patientUUID,
		Date:          date,
		StartTime:     request.Time,
		EndTime:       request.EndTime,
		Type:          request.Type,
		PaymentMethod: request.PaymentMethod,
		Notes:         request.Notes,
		Confirmed:     request.Confirmed,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.CountAppointmentBooked()
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(appointment)
}

func (h httpHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appointmentUUID, err := h.parseUUIDParameter("appointmentUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	appointment, err := h.service.Confirm(ctx, appointmentUUID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(appointment)
}

type rescheduleRequest struct {
	Date    string        `json:"date"`
	Time    TimeOfDay     `json:"time"`
	EndTime NullTimeOfDay `json:"end_time"`
}

func (h httpHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appointmentUUID, err := h.parseUUIDParameter("appointmentUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	request := new(rescheduleRequest)
	if err = json.NewDecoder(r.Body).Decode(request); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	date, err := time.Parse(dateFormat, request.Date)
	if err != nil {
		h.writeError(w, r, apierrors.NewValidationError("date", "must be a YYYY-MM-DD date"))
		return
	}
	appointment, err := h.service.Reschedule(ctx, appointmentUUID, date, request.Time, request.EndTime)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(appointment)
}

func (h httpHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appointmentUUID, err := h.parseUUIDParameter("appointmentUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.service.Cancel(ctx, appointmentUUID); err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.CountAppointmentCancelled()
	w.WriteHeader(http.StatusNoContent)
}

func (h httpHandler) ListAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doctorUUID, err := h.parseUUIDParameter("doctorUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rules, err := h.service.ListAvailability(ctx, doctorUUID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(rules)
}

func (h httpHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doctorUUID, err := h.parseUUIDParameter("doctorUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rule := new(WeeklyRule)
	if err = json.NewDecoder(r.Body).Decode(rule); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	created, err := h.service.SetAvailability(ctx, doctorUUID, *rule)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(created)
}

func (h httpHandler) RemoveAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ruleUUID, err := h.parseUUIDParameter("ruleUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.service.RemoveAvailability(ctx, ruleUUID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type quickBatchRequest struct {
	Days      []int     `json:"days"`
	StartTime TimeOfDay `json:"start_time"`
	EndTime   TimeOfDay `json:"end_time"`
}

func (h httpHandler) QuickBlock(w http.ResponseWriter, r *http.Request) {
	h.handleQuickBatch(w, r, h.service.QuickBlock)
}

func (h httpHandler) QuickUnblock(w http.ResponseWriter, r *http.Request) {
	h.handleQuickBatch(w, r, h.service.QuickUnblock)
}

func (h httpHandler) handleQuickBatch(w http.ResponseWriter, r *http.Request, batch func(ctx context.Context, doctorUUID uuid.UUID, days []int, start, end TimeOfDay) ([]BatchItemResult, error)) {
	ctx := r.Context()
	doctorUUID, err := h.parseUUIDParameter("doctorUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	request := new(quickBatchRequest)
	if err = json.NewDecoder(r.Body).Decode(request); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	results, err := batch(ctx, doctorUUID, request.Days, request.StartTime, request.EndTime)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(results)
}

func (h httpHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doctorUUID, err := h.parseUUIDParameter("doctorUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var from, to *time.Time
	if fromPar := r.URL.Query().Get("from"); fromPar != "" {
		parsed, err := time.Parse(dateFormat, fromPar)
		if err != nil {
			h.writeError(w, r, apierrors.NewValidationError("from", "must be a YYYY-MM-DD date"))
			return
		}
		from = &parsed
	}
	if toPar := r.URL.Query().Get("to"); toPar != "" {
		parsed, err := time.Parse(dateFormat, toPar)
		if err != nil {
			h.writeError(w, r, apierrors.NewValidationError("to", "must be a YYYY-MM-DD date"))
			return
		}
		to = &parsed
	}
	blocks, err := h.service.ListBlocks(ctx, doctorUUID, from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(blocks)
}

type blockRequest struct {
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Date        string    `json:"date"`
	StartTime   TimeOfDay `json:"start_time"`
	EndTime     TimeOfDay `json:"end_time"`
	EventType   string    `json:"event_type"`
}

func (r blockRequest) toBlock() (Block, error) {
	date, err := time.Parse(dateFormat, r.Date)
	if err != nil {
		return Block{}, apierrors.NewValidationError("date", "must be a YYYY-MM-DD date")
	}
	return Block{
		Title:       r.Title,
		Description: r.Description,
		Date:        date,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		EventType:   r.EventType,
	}, nil
}

func (h httpHandler) AddBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doctorUUID, err := h.parseUUIDParameter("doctorUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	request := new(blockRequest)
	if err = json.NewDecoder(r.Body).Decode(request); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	block, err := request.toBlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.service.AddBlock(ctx, doctorUUID, block)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(created)
}

func (h httpHandler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	blockUUID, err := h.parseUUIDParameter("blockUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	request := new(blockRequest)
	if err = json.NewDecoder(r.Body).Decode(request); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	block, err := request.toBlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.service.UpdateBlock(ctx, blockUUID, block)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(updated)
}

func (h httpHandler) RemoveBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	blockUUID, err := h.parseUUIDParameter("blockUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.service.RemoveBlock(ctx, blockUUID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
