package main

import (
	"clinic-scheduling/internal/configs"
	"clinic-scheduling/internal/database"
	"clinic-scheduling/migrations"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

var (
	configPath = flag.String("config", "", "Config file path")
	down       = flag.Bool("down", false, "Roll back all migrations instead of applying them")
)

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

	dbDriver, err := postgres.WithInstance(dbConn.DB(), &postgres.Config{})
	if err != nil {
		log.Fatal(fmt.Errorf("could not create the database driver: %w", err))
	}

	srcDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		log.Fatal(fmt.Errorf("could not read the embedded migrations: %w", err))
	}

	migrator, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		log.Fatal(fmt.Errorf("could not create the migrator: %w", err))
	}
	defer func() { _, _ = migrator.Close() }()

	run := migrator.Up
	if *down {
		run = migrator.Down
	}
	if err = run(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal(fmt.Errorf("could not run the migrations: %w", err))
	}

	fmt.Println("migrations complete")
}
