package main

import (
	"clinic-scheduling/internal/configs"
	"clinic-scheduling/internal/database"
	"clinic-scheduling/internal/schedule"
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

var (
	configPath = flag.String("config", "", "Config file path")
	doctors    = flag.Int("doctors", 5, "Number of doctors to seed")
	patients   = flag.Int("patients", 50, "Number of patients to seed")
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
}

func main() {
	flag.Parse()
	if *configPath == "" {
		log.Fatal("no config file path was given")
	}
	config := configs.MustLoad(*configPath)

	dbConn, err := database.NewConnection(config)
	if err != nil {
		log.Fatal(err)
	}
	defer dbConn.Close()

	gofakeit.Seed(time.Now().UnixNano())

	ctx := context.Background()
	if err := seedDoctors(ctx, dbConn.DB(), config, *doctors); err != nil {
		log.Fatalf("could not seed doctors: %v", err)
	}
	if err := seedPatients(ctx, dbConn.DB(), *patients); err != nil {
		log.Fatalf("could not seed patients: %v", err)
	}

	log.Println("seed complete")
}

// seedDoctors inserts fake doctors, each covered by an available weekly rule
// on every working day so their agenda is bookable right away.
func seedDoctors(ctx context.Context, db *sql.DB, config configs.Config, count int) error {
	log.Printf("seeding %d doctors", count)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	dayStart := schedule.MustParseTimeOfDay(config.DayStart())
	dayEnd := schedule.MustParseTimeOfDay(config.DayEnd())

	for i := 0; i < count; i++ {
		var doctorID int64
		err = tx.QueryRowContext(ctx,
			"INSERT INTO tb_doctor (uuid, name, email, specialty) VALUES ($1, $2, $3, $4) RETURNING id",
			uuid.New(), gofakeit.Name(), gofakeit.Email(), specialties[gofakeit.Number(0, len(specialties)-1)]).Scan(&doctorID)
		if err != nil {
			return err
		}
		for dayOfWeek := int(time.Monday); dayOfWeek <= int(time.Friday); dayOfWeek++ {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO tb_weekly_rule (uuid, doctor_id, day_of_week, start_time, end_time, available) VALUES ($1, $2, $3, $4, $5, TRUE)",
				uuid.New(), doctorID, dayOfWeek, dayStart, dayEnd)
			if err != nil {
				return err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	log.Println("doctors seeded")
	return nil
}

func seedPatients(ctx context.Context, db *sql.DB, count int) error {
	log.Printf("seeding %d patients", count)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i := 0; i < count; i++ {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO tb_patient (uuid, name, email) VALUES ($1, $2, $3)",
			uuid.New(), gofakeit.Name(), gofakeit.Email())
		if err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	log.Println("patients seeded")
	return nil
}
