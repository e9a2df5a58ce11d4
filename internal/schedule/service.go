package schedule

import (
	"clinic-scheduling/internal/apierrors"
	"clinic-scheduling/internal/configs"
	"clinic-scheduling/internal/database"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// View selects how a render grid is assembled.
type View string

const (
	ViewDay   View = "day"
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

// BookingRequest carries everything needed to create an appointment.
type BookingRequest struct {
	DoctorUUID    uuid.UUID     `json:"-"`
	PatientUUID   uuid.UUID     `json:"patient_uuid"`
	Date          time.Time     `json:"date"`
	StartTime     TimeOfDay     `json:"time"`
	EndTime       NullTimeOfDay `json:"end_time"`
	Type          string        `json:"type"`
	PaymentMethod string        `json:"payment_method"`
	Notes         *string       `json:"notes,omitempty"`

	// Confirmed is set by staff-initiated booking paths, which skip the
	// pending state and create the appointment directly as confirmed.
	Confirmed bool `json:"confirmed"`
}

// RenderGrid is the renderable composition of slots and positioned
// appointments for a day, week or month view.
type RenderGrid struct {
	View  View        `json:"view"`
	Slots []TimeOfDay `json:"slots"`
	Days  []DayGrid   `json:"days"`
}

// DayGrid is one rendered day. Day and week views fill Entries with the
// per-slot layout; the month view fills Inline and More instead.
type DayGrid struct {
	Date      string                                `json:"date"`
	Available bool                                  `json:"available"`
	Entries   map[TimeOfDay][]PositionedAppointment `json:"entries,omitempty"`
	Inline    []Appointment                         `json:"inline,omitempty"`
	More      int                                   `json:"more,omitempty"`
}

// Planner determines the read-only composition methods offered to calendar views.
type Planner interface {

	// GetBookableSlots returns the start times still bookable for the doctor on the given date.
	GetBookableSlots(ctx context.Context, doctorUUID uuid.UUID, date time.Time) ([]TimeOfDay, error)

	// GetRenderGrid returns the slot sequence and appointment layout for the
	// view anchored at the given date.
	GetRenderGrid(ctx context.Context, doctorUUID uuid.UUID, anchor time.Time, view View) (*RenderGrid, error)

	// GetAppointments returns the doctor's appointments within the given date
	// range, cancelled ones included.
	GetAppointments(ctx context.Context, doctorUUID uuid.UUID, from, to time.Time) ([]Appointment, error)
}

// Booker determines the appointment lifecycle methods.
type Booker interface {

	// Book creates an appointment, re-verifying the slot at write time.
	Book(ctx context.Context, request BookingRequest) (*Appointment, error)

	// Confirm moves a pending appointment to confirmed.
	Confirm(ctx context.Context, appointmentUUID uuid.UUID) (*Appointment, error)

	// Reschedule moves an appointment to a new date and time window.
	Reschedule(ctx context.Context, appointmentUUID uuid.UUID, date time.Time, start TimeOfDay, end NullTimeOfDay) (*Appointment, error)

	// Cancel cancels an appointment. Cancelling twice is a no-op success.
	Cancel(ctx context.Context, appointmentUUID uuid.UUID) error
}

// AvailabilityManager determines the methods that shape a doctor's availability.
type AvailabilityManager interface {

	// ListAvailability lists the doctor's weekly availability rules.
	ListAvailability(ctx context.Context, doctorUUID uuid.UUID) ([]WeeklyRule, error)

	// SetAvailability creates a weekly availability rule. Shrinking
	// availability never invalidates appointments already booked.
	SetAvailability(ctx context.Context, doctorUUID uuid.UUID, rule WeeklyRule) (*WeeklyRule, error)

	// RemoveAvailability deletes a weekly availability rule.
	RemoveAvailability(ctx context.Context, ruleUUID uuid.UUID) error

	// QuickBlock inserts one unavailable rule per requested day over the given
	// time range, reporting the outcome of every day.
	QuickBlock(ctx context.Context, doctorUUID uuid.UUID, days []int, start, end TimeOfDay) ([]BatchItemResult, error)

	// QuickUnblock deletes the unavailable rules whose day and time range
	// exactly match a previous QuickBlock, reporting the outcome of every day.
	QuickUnblock(ctx context.Context, doctorUUID uuid.UUID, days []int, start, end TimeOfDay) ([]BatchItemResult, error)

	// ListBlocks lists the doctor's calendar blocks, optionally bounded to a date range.
	ListBlocks(ctx context.Context, doctorUUID uuid.UUID, from, to *time.Time) ([]Block, error)

	// AddBlock creates a one-off calendar block.
	AddBlock(ctx context.Context, doctorUUID uuid.UUID, block Block) (*Block, error)

	// UpdateBlock updates a calendar block in place.
	UpdateBlock(ctx context.Context, blockUUID uuid.UUID, block Block) (*Block, error)

	// RemoveBlock deletes a calendar block.
	RemoveBlock(ctx context.Context, blockUUID uuid.UUID) error
}

// Service determines the methods used to manage the clinic agenda.
type Service interface {
	Planner
	Booker
	AvailabilityManager
}

type settings struct {
	granularity int
	dayStart    TimeOfDay
	dayEnd      TimeOfDay
	monthInline int
}

type defaultService struct {
	repository Repository
	settings   settings
}

// NewService creates a new schedule service.
func NewService(config configs.Config, dbConn database.Connection) Service {
	return &defaultService{
		repository: newRepository(dbConn),
		settings:   settingsFrom(config),
	}
}

// settingsFrom derives the grid settings from the configuration, falling back
// to the clinic defaults when a value is missing or unparsable.
func settingsFrom(config configs.Config) settings {
	derived := settings{
		granularity: DefaultGranularityMinutes,
		dayStart:    DefaultDayStart,
		dayEnd:      DefaultDayEnd,
		monthInline: configs.DefaultMonthInlineAppointments,
	}
	if config == nil {
		return derived
	}
	if config.SlotGranularityMinutes() > 0 {
		derived.granularity = config.SlotGranularityMinutes()
	}
	if start, err := ParseTimeOfDay(config.DayStart()); err == nil {
		derived.dayStart = start
	}
	if end, err := ParseTimeOfDay(config.DayEnd()); err == nil {
		derived.dayEnd = end
	}
	if config.MonthInlineAppointments() > 0 {
		derived.monthInline = config.MonthInlineAppointments()
	}
	if !derived.dayStart.Before(derived.dayEnd) {
		derived.dayStart = DefaultDayStart
		derived.dayEnd = DefaultDayEnd
	}
	return derived
}

// wrapStorageErr keeps the retryable storage failures distinguishable from the rest.
func wrapStorageErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return fmt.Errorf("an unexpected error occurred: %w", err)
}

// dayBounds narrows a date to the single-day range used by the repository filters.
func dayBounds(date time.Time) (time.Time, time.Time) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return day, day
}

// loadAgenda fetches the three rule sources every availability decision needs.
func (d defaultService) loadAgenda(ctx context.Context, doctorID int64, from, to time.Time) ([]WeeklyRule, []Block, []Appointment, error) {
	rules, err := d.repository.ListWeeklyRules(ctx, doctorID)
	if err != nil {
		return nil, nil, nil, wrapStorageErr(err)
	}
	blocks, err := d.repository.ListBlocks(ctx, doctorID, &from, &to)
	if err != nil {
		return nil, nil, nil, wrapStorageErr(err)
	}
	appointments, err := d.repository.ListAppointments(ctx, doctorID, &from, &to)
	if err != nil {
		return nil, nil, nil, wrapStorageErr(err)
	}
	return rules, blocks, appointments, nil
}

func (d defaultService) findDoctor(ctx context.Context, doctorUUID uuid.UUID) (*Doctor, error) {
	doctor, err := d.repository.FindDoctorByUUID(ctx, doctorUUID)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	return doctor, nil
}

func (d defaultService) GetBookableSlots(ctx context.Context, doctorUUID uuid.UUID, date time.Time) ([]TimeOfDay, error) {
	doctor, err := d.findDoctor(ctx, doctorUUID)
	if err != nil {
		return nil, err
	}
	from, to := dayBounds(date)
	rules, blocks, appointments, err := d.loadAgenda(ctx, doctor.ID, from, to)
	if err != nil {
		return nil, err
	}
	catalog := DefaultCatalog(d.settings.granularity, d.settings.dayStart, d.settings.dayEnd)
	return AvailableTimes(catalog, date, rules, blocks, appointments, uuid.Nil), nil
}

// viewBounds resolves the date range a view renders: the anchor day itself,
// the seven days starting at the anchor, or the anchor's calendar month.
func viewBounds(anchor time.Time, view View) (time.Time, time.Time) {
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	switch view {
	case ViewWeek:
		return day, day.AddDate(0, 0, 6)
	case ViewMonth:
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		return first, first.AddDate(0, 1, -1)
	default:
		return day, day
	}
}

func (d defaultService) GetRenderGrid(ctx context.Context, doctorUUID uuid.UUID, anchor time.Time, view View) (*RenderGrid, error) {
	doctor, err := d.findDoctor(ctx, doctorUUID)
	if err != nil {
		return nil, err
	}
	from, to := viewBounds(anchor, view)
	rules, blocks, appointments, err := d.loadAgenda(ctx, doctor.ID, from, to)
	if err != nil {
		return nil, err
	}
	grid := &RenderGrid{
		View:  view,
		Slots: BuildSlots(appointments, d.settings.granularity, d.settings.dayStart, d.settings.dayEnd),
		Days:  make([]DayGrid, 0, int(to.Sub(from).Hours()/24)+1),
	}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		ofDay := make([]Appointment, 0)
		for _, appointment := range appointments {
			if SameDate(appointment.Date, day) {
				ofDay = append(ofDay, appointment)
			}
		}
		dayGrid := DayGrid{
			Date:      day.Format("2006-01-02"),
			Available: IsDateAvailable(day, rules, blocks),
		}
		if view == ViewMonth {
			dayGrid.Inline, dayGrid.More = MonthCell(ofDay, d.settings.monthInline)
		} else {
			dayGrid.Entries = Layout(ofDay, grid.Slots, d.settings.granularity)
		}
		grid.Days = append(grid.Days, dayGrid)
	}
	return grid, nil
}

func (d defaultService) GetAppointments(ctx context.Context, doctorUUID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	doctor, err := d.findDoctor(ctx, doctorUUID)
	if err != nil {
		return nil, err
	}
	appointments, err := d.repository.ListAppointments(ctx, doctor.ID, &from, &to)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	return appointments, nil
}

// slotIsBookable re-verifies a requested window right before writing: the
// start time must be one of the still-available catalog times and the whole
// window must be free of active appointments and inside availability.
func (d defaultService) slotIsBookable(date time.Time, start, end TimeOfDay, rules []WeeklyRule, blocks []Block, appointments []Appointment, exclude uuid.UUID) bool {
	catalog := DefaultCatalog(d.settings.granularity, d.settings.dayStart, d.settings.dayEnd)
	offered := false
	for _, candidate := range AvailableTimes(catalog, date, rules, blocks, appointments, exclude) {
		if candidate == start {
			offered = true
			break
		}
	}
	if !offered {
		return false
	}
	if !WindowIsAvailable(date, start, end, rules, blocks) {
		return false
	}
	return !HasOverlap(appointments, date, start, end, d.settings.granularity, exclude)
}

func (d defaultService) Book(ctx context.Context, request BookingRequest) (*Appointment, error) {
	appointment := Appointment{
		UUID:          uuid.New(),
		Date:          request.Date,
		StartTime:     request.StartTime,
		EndTime:       request.EndTime,
		Status:        StatusPending,
		Type:          request.Type,
		PaymentMethod: request.PaymentMethod,
		Notes:         request.Notes,
	}
	if request.Confirmed {
		appointment.Status = StatusConfirmed
	}
	if err := appointment.Validate(); err != nil {
		return nil, err
	}
	doctor, err := d.findDoctor(ctx, request.DoctorUUID)
	if err != nil {
		return nil, err
	}
	patient, err := d.repository.FindPatientByUUID(ctx, request.PatientUUID)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	appointment.DoctorID = doctor.ID
	appointment.PatientID = patient.ID

	from, to := dayBounds(request.Date)
	rules, blocks, appointments, err := d.loadAgenda(ctx, doctor.ID, from, to)
	if err != nil {
		return nil, err
	}
	end := appointment.EffectiveEnd(d.settings.granularity)
	if !d.slotIsBookable(request.Date, request.StartTime, end, rules, blocks, appointments, uuid.Nil) {
		return nil, ErrSlotTaken
	}
	created, err := d.repository.InsertAppointment(ctx, appointment)
	if err != nil {
		// Two near-simultaneous bookings can both pass the read-time check;
		// the unique index on (doctor_id, date, start_time) is the arbiter.
		if database.IsUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, wrapStorageErr(err)
	}
	return created, nil
}

func (d defaultService) Confirm(ctx context.Context, appointmentUUID uuid.UUID) (*Appointment, error) {
	appointment, err := d.repository.FindAppointmentByUUID(ctx, appointmentUUID)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.Status == StatusConfirmed {
		return appointment, nil
	}
	if !appointment.Status.CanTransitionTo(StatusConfirmed) {
		return nil, ErrInvalidTransition
	}
	updated, err := d.repository.UpdateAppointmentStatus(ctx, appointmentUUID, StatusConfirmed)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	if !updated {
		return nil, ErrAppointmentNotFound
	}
	appointment.Status = StatusConfirmed
	return appointment, nil
}

func (d defaultService) Reschedule(ctx context.Context, appointmentUUID uuid.UUID, date time.Time, start TimeOfDay, end NullTimeOfDay) (*Appointment, error) {
	if date.IsZero() {
		return nil, apierrors.NewValidationError("date", "required")
	}
	if end.Valid && !start.Before(end.TimeOfDay) {
		return nil, apierrors.NewValidationError("end_time", "must be after time")
	}
	appointment, err := d.repository.FindAppointmentByUUID(ctx, appointmentUUID)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.IsActive() {
		return nil, ErrInvalidTransition
	}
	from, to := dayBounds(date)
	rules, blocks, appointments, err := d.loadAgenda(ctx, appointment.DoctorID, from, to)
	if err != nil {
		return nil, err
	}
	probe := *appointment
	probe.Date, probe.StartTime, probe.EndTime = date, start, end
	windowEnd := probe.EffectiveEnd(d.settings.granularity)
	// The appointment's own reservation must not conflict with its new slot.
	if !d.slotIsBookable(date, start, windowEnd, rules, blocks, appointments, appointmentUUID) {
		return nil, ErrSlotTaken
	}
	updated, err := d.repository.UpdateAppointmentTime(ctx, appointmentUUID, from, start, end)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, wrapStorageErr(err)
	}
	if !updated {
		return nil, ErrAppointmentNotFound
	}
	probe.Date = from
	return &probe, nil
}

func (d defaultService) Cancel(ctx context.Context, appointmentUUID uuid.UUID) error {
	appointment, err := d.repository.FindAppointmentByUUID(ctx, appointmentUUID)
	if err != nil {
		return wrapStorageErr(err)
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}
	// Cancellation is a safety action: a second invocation is a no-op success.
	if appointment.Status == StatusCancelled {
		return nil
	}
	updated, err := d.repository.UpdateAppointmentStatus(ctx, appointmentUUID, StatusCancelled)
	if err != nil {
		return wrapStorageErr(err)
	}
	if !updated {
		return ErrAppointmentNotFound
	}
	return nil
}

func (d defaultService) ListAvailability(ctx context.Context, doctorUUID uuid.UUID) ([]WeeklyRule, error) {
	doctor, err := d.findDoctor(ctx, doctorUUID)
	if err != nil {
		return nil, err
	}
	rules, err := d.repository.ListWeeklyRules(ctx, doctor.ID)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	return rules, nil
}

func (d defaultService) SetAvailability(ctx context.Context, doctorUUID uuid.UUID, rule WeeklyRule) (*WeeklyRule, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	doctor, err := d.findDoctor(ctx, doctorUUID)
	if err != nil {
		return nil, err
	}
	rule.UUID = uuid.New()
	rule.DoctorID = doctor.ID
	created, err := d.repository.InsertWeeklyRule(ctx, rule)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	return created, nil
}

func (d defaultService) RemoveAvailability(ctx context.Context, ruleUUID uuid.UUID) error {
	deleted, err := d.repository.DeleteWeeklyRule(ctx, ruleUUID)
	if err != nil {
		return wrapStorageErr(err)
	}
	if !deleted {
		return ErrRuleNotFound
	}
	return nil
}

// validateBatch validates the day set and time range shared by QuickBlock and QuickUnblock.
func validateBatch(days []int, start, end TimeOfDay) error {
	if len(days) == 0 {
		return apierrors.NewValidationError("days", "required")
	}
	for _, day := range days {
		if day < 0 || day > 6 {
			return apierrors.NewValidationError("days", "must be between 0 (Sunday) and 6 (Saturday)")
		}
	}
	if !start.Before(end) {
		return apierrors.NewValidationError("end_time", "must be after start_time")
	}
	return nil
}

func (d defaultService) QuickBlock(ctx context.Context, doctorUUID uuid.UUID, days []int, start, end TimeOfDay) ([]BatchItemResult, error) {
	if err := validateBatch(days, start, end); err != nil {
		return nil, err
	}
	doctor, err := d.findDoctor(ctx, doctorUUID)
	if err != nil {
		return nil, err
	}
	results := make([]BatchItemResult, 0, len(days))
	failed := false
	for _, day := range days {
		rule := WeeklyRule{
			UUID:      uuid.New(),
			DoctorID:  doctor.ID,
			DayOfWeek: day,
			StartTime: start,
			EndTime:   end,
			Available: false,
		}
		if _, err := d.repository.InsertWeeklyRule(ctx, rule); err != nil {
			failed = true
			results = append(results, BatchItemResult{DayOfWeek: day, Succeeded: false, Detail: err.Error()})
			continue
		}
		results = append(results, BatchItemResult{DayOfWeek: day, Succeeded: true})
	}
	if failed {
		return results, &BatchError{Results: results}
	}
	return results, nil
}

func (d defaultService) QuickUnblock(ctx context.Context, doctorUUID uuid.UUID, days []int, start, end TimeOfDay) ([]BatchItemResult, error) {
	if err := validateBatch(days, start, end); err != nil {
		return nil, err
	}
	doctor, err := d.findDoctor(ctx, doctorUUID)
	if err != nil {
		return nil, err
	}
	results := make([]BatchItemResult, 0, len(days))
	failed := false
	for _, day := range days {
		removed, err := d.repository.DeleteMatchingUnavailableRules(ctx, doctor.ID, day, start, end)
		if err != nil {
			failed = true
			results = append(results, BatchItemResult{DayOfWeek: day, Succeeded: false, Detail: err.Error()})
			continue
		}
		result := BatchItemResult{DayOfWeek: day, Succeeded: true}
		if removed == 0 {
			result.Detail = "no matching block"
		}
		results = append(results, result)
	}
	if failed {
		return results, &BatchError{Results: results}
	}
	return results, nil
}

func (d defaultService) ListBlocks(ctx context.Context, doctorUUID uuid.UUID, from, to *time.Time) ([]Block, error) {
	doctor, err := d.findDoctor(ctx, doctorUUID)
	if err != nil {
		return nil, err
	}
	blocks, err := d.repository.ListBlocks(ctx, doctor.ID, from, to)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	return blocks, nil
}

func (d defaultService) AddBlock(ctx context.Context, doctorUUID uuid.UUID, block Block) (*Block, error) {
	if err := block.Validate(); err != nil {
		return nil, err
	}
	doctor, err := d.findDoctor(ctx, doctorUUID)
	if err != nil {
		return nil, err
	}
	block.UUID = uuid.New()
	block.DoctorID = doctor.ID
	created, err := d.repository.InsertBlock(ctx, block)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	return created, nil
}

func (d defaultService) UpdateBlock(ctx context.Context, blockUUID uuid.UUID, block Block) (*Block, error) {
	if err := block.Validate(); err != nil {
		return nil, err
	}
	block.UUID = blockUUID
	updated, err := d.repository.UpdateBlock(ctx, block)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	if !updated {
		return nil, ErrBlockNotFound
	}
	return &block, nil
}

func (d defaultService) RemoveBlock(ctx context.Context, blockUUID uuid.UUID) error {
	deleted, err := d.repository.DeleteBlock(ctx, blockUUID)
	if err != nil {
		return wrapStorageErr(err)
	}
	if !deleted {
		return ErrBlockNotFound
	}
	return nil
}
