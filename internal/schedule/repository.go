package schedule

import (
	"clinic-scheduling/internal/database"
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const (
	findDoctorByUUIDQuery  = "SELECT id, uuid, name, email, specialty FROM tb_doctor WHERE uuid = $1"
	findPatientByUUIDQuery = "SELECT id, uuid, name, email FROM tb_patient WHERE uuid = $1"

	listWeeklyRulesQuery     = "SELECT id, uuid, doctor_id, day_of_week, start_time, end_time, available FROM tb_weekly_rule WHERE doctor_id = $1 ORDER BY day_of_week, start_time, id"
	insertWeeklyRuleQuery    = "INSERT INTO tb_weekly_rule (uuid, doctor_id, day_of_week, start_time, end_time, available) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id"
	deleteWeeklyRuleQuery    = "DELETE FROM tb_weekly_rule WHERE uuid = $1"
	deleteMatchingRulesQuery = "DELETE FROM tb_weekly_rule WHERE doctor_id = $1 AND day_of_week = $2 AND start_time = $3 AND end_time = $4 AND available = FALSE"

	insertBlockQuery = "INSERT INTO tb_block (uuid, doctor_id, title, description, date, start_time, end_time, event_type) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id"
	updateBlockQuery = "UPDATE tb_block SET title = $2, description = $3, date = $4, start_time = $5, end_time = $6, event_type = $7 WHERE uuid = $1"
	deleteBlockQuery = "DELETE FROM tb_block WHERE uuid = $1"

	findAppointmentByUUIDQuery   = "SELECT id, uuid, doctor_id, patient_id, date, start_time, end_time, status, type, payment_method, notes FROM tb_appointment WHERE uuid = $1"
	insertAppointmentQuery       = "INSERT INTO tb_appointment (uuid, doctor_id, patient_id, date, start_time, end_time, status, type, payment_method, notes) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id"
	updateAppointmentTimeQuery   = "UPDATE tb_appointment SET date = $2, start_time = $3, end_time = $4 WHERE uuid = $1"
	updateAppointmentStatusQuery = "UPDATE tb_appointment SET status = $2 WHERE uuid = $1"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repository provides access to scheduling data.
type Repository interface {

	// FindDoctorByUUID finds a doctor by its UUID.
	FindDoctorByUUID(ctx context.Context, doctorUUID uuid.UUID) (*Doctor, error)

	// FindPatientByUUID finds a patient by its UUID.
	FindPatientByUUID(ctx context.Context, patientUUID uuid.UUID) (*Patient, error)

	// ListWeeklyRules lists the doctor's recurring weekly availability rules.
	ListWeeklyRules(ctx context.Context, doctorID int64) ([]WeeklyRule, error)

	// InsertWeeklyRule inserts a new weekly availability rule.
	InsertWeeklyRule(ctx context.Context, rule WeeklyRule) (*WeeklyRule, error)

	// DeleteWeeklyRule deletes a weekly rule, reporting whether it existed.
	DeleteWeeklyRule(ctx context.Context, ruleUUID uuid.UUID) (bool, error)

	// DeleteMatchingUnavailableRules deletes the unavailable rules whose day
	// and time window exactly match, returning how many were removed.
	DeleteMatchingUnavailableRules(ctx context.Context, doctorID int64, dayOfWeek int, start, end TimeOfDay) (int64, error)

	// ListBlocks lists the doctor's calendar blocks, optionally bounded to a date range.
	ListBlocks(ctx context.Context, doctorID int64, from, to *time.Time) ([]Block, error)

	// InsertBlock inserts a new calendar block.
	InsertBlock(ctx context.Context, block Block) (*Block, error)

	// UpdateBlock updates a calendar block in place, reporting whether it existed.
	UpdateBlock(ctx context.Context, block Block) (bool, error)

	// DeleteBlock deletes a calendar block, reporting whether it existed.
	DeleteBlock(ctx context.Context, blockUUID uuid.UUID) (bool, error)

	// ListAppointments lists the doctor's appointments, optionally bounded to a
	// date range. Cancelled appointments are included; read views keep them.
	ListAppointments(ctx context.Context, doctorID int64, from, to *time.Time) ([]Appointment, error)

	// FindAppointmentByUUID finds an appointment by its UUID.
	FindAppointmentByUUID(ctx context.Context, appointmentUUID uuid.UUID) (*Appointment, error)

	// InsertAppointment inserts a new appointment. A unique constraint
	// violation from the database means the slot was taken concurrently.
	InsertAppointment(ctx context.Context, appointment Appointment) (*Appointment, error)

	// UpdateAppointmentTime moves an appointment to a new date and time window.
	UpdateAppointmentTime(ctx context.Context, appointmentUUID uuid.UUID, date time.Time, start TimeOfDay, end NullTimeOfDay) (bool, error)

	// UpdateAppointmentStatus changes the appointment status.
	UpdateAppointmentStatus(ctx context.Context, appointmentUUID uuid.UUID, status AppointmentStatus) (bool, error)
}

type defaultRepository struct {
	dbConn database.Connection
}

// NewRepository creates a new Repository.
func newRepository(dbConn database.Connection) Repository {
	return &defaultRepository{dbConn: dbConn}
}

func (d defaultRepository) FindDoctorByUUID(ctx context.Context, doctorUUID uuid.UUID) (*Doctor, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, findDoctorByUUIDQuery, doctorUUID)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	doctor := new(Doctor)
	for rows.Next() {
		if err = database.TransformRow(rows, doctor); err != nil {
			return nil, err
		}
		if doctor.ID > 0 {
			return doctor, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) FindPatientByUUID(ctx context.Context, patientUUID uuid.UUID) (*Patient, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, findPatientByUUIDQuery, patientUUID)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	patient := new(Patient)
	for rows.Next() {
		if err = database.TransformRow(rows, patient); err != nil {
			return nil, err
		}
		if patient.ID > 0 {
			return patient, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) ListWeeklyRules(ctx context.Context, doctorID int64) ([]WeeklyRule, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, listWeeklyRulesQuery, doctorID)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	rules := make([]WeeklyRule, 0)
	for rows.Next() {
		rule := new(WeeklyRule)
		if err = database.TransformRow(rows, rule); err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, nil
}

func (d defaultRepository) InsertWeeklyRule(ctx context.Context, rule WeeklyRule) (*WeeklyRule, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	err := d.dbConn.DB().QueryRowContext(ctx, insertWeeklyRuleQuery,
		rule.UUID, rule.DoctorID, rule.DayOfWeek, rule.StartTime, rule.EndTime, rule.Available).Scan(&rule.ID)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (d defaultRepository) DeleteWeeklyRule(ctx context.Context, ruleUUID uuid.UUID) (bool, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, deleteWeeklyRuleQuery, ruleUUID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (d defaultRepository) DeleteMatchingUnavailableRules(ctx context.Context, doctorID int64, dayOfWeek int, start, end TimeOfDay) (int64, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, deleteMatchingRulesQuery, doctorID, dayOfWeek, start, end)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (d defaultRepository) ListBlocks(ctx context.Context, doctorID int64, from, to *time.Time) ([]Block, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	builder := psql.Select("id", "uuid", "doctor_id", "title", "description", "date", "start_time", "end_time", "event_type").
		From("tb_block").
		Where(squirrel.Eq{"doctor_id": doctorID}).
		OrderBy("date", "start_time", "id")
	if from != nil {
		builder = builder.Where(squirrel.GtOrEq{"date": *from})
	}
	if to != nil {
		builder = builder.Where(squirrel.LtOrEq{"date": *to})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build the block list query: %w", err)
	}
	rows, err := d.dbConn.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	blocks := make([]Block, 0)
	for rows.Next() {
		block := new(Block)
		if err = database.TransformRow(rows, block); err != nil {
			return nil, err
		}
		blocks = append(blocks, *block)
	}
	return blocks, nil
}

func (d defaultRepository) InsertBlock(ctx context.Context, block Block) (*Block, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	err := d.dbConn.DB().QueryRowContext(ctx, insertBlockQuery,
		block.UUID, block.DoctorID, block.Title, block.Description, block.Date, block.StartTime, block.EndTime, block.EventType).Scan(&block.ID)
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (d defaultRepository) UpdateBlock(ctx context.Context, block Block) (bool, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, updateBlockQuery,
		block.UUID, block.Title, block.Description, block.Date, block.StartTime, block.EndTime, block.EventType)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (d defaultRepository) DeleteBlock(ctx context.Context, blockUUID uuid.UUID) (bool, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, deleteBlockQuery, blockUUID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (d defaultRepository) ListAppointments(ctx context.Context, doctorID int64, from, to *time.Time) ([]Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	builder := psql.Select("id", "uuid", "doctor_id", "patient_id", "date", "start_time", "end_time", "status", "type", "payment_method", "notes").
		From("tb_appointment").
		Where(squirrel.Eq{"doctor_id": doctorID}).
		OrderBy("date", "start_time", "id")
	if from != nil {
		builder = builder.Where(squirrel.GtOrEq{"date": *from})
	}
	if to != nil {
		builder = builder.Where(squirrel.LtOrEq{"date": *to})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build the appointment list query: %w", err)
	}
	rows, err := d.dbConn.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	appointments := make([]Appointment, 0)
	for rows.Next() {
		appointment := new(Appointment)
		if err = database.TransformRow(rows, appointment); err != nil {
			return nil, err
		}
		appointments = append(appointments, *appointment)
	}
	return appointments, nil
}

func (d defaultRepository) FindAppointmentByUUID(ctx context.Context, appointmentUUID uuid.UUID) (*Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, findAppointmentByUUIDQuery, appointmentUUID)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	appointment := new(Appointment)
	for rows.Next() {
		if err = database.TransformRow(rows, appointment); err != nil {
			return nil, err
		}
		if appointment.ID > 0 {
			return appointment, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) InsertAppointment(ctx context.Context, appointment Appointment) (*Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	err := d.dbConn.DB().QueryRowContext(ctx, insertAppointmentQuery,
		appointment.UUID, appointment.DoctorID, appointment.PatientID, appointment.Date,
		appointment.StartTime, appointment.EndTime, appointment.Status,
		appointment.Type, appointment.PaymentMethod, appointment.Notes).Scan(&appointment.ID)
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (d defaultRepository) UpdateAppointmentTime(ctx context.Context, appointmentUUID uuid.UUID, date time.Time, start TimeOfDay, end NullTimeOfDay) (bool, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, updateAppointmentTimeQuery, appointmentUUID, date, start, end)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (d defaultRepository) UpdateAppointmentStatus(ctx context.Context, appointmentUUID uuid.UUID, status AppointmentStatus) (bool, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, updateAppointmentStatusQuery, appointmentUUID, status)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
