// Package configs contains the system configurations.
package configs

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Default grid settings used when the configuration file leaves them out.
const (
	DefaultSlotGranularityMinutes  = 30
	DefaultDayStart                = "08:00"
	DefaultDayEnd                  = "21:00"
	DefaultMonthInlineAppointments = 3
)

type configData struct {
	ServerPort              int32  `json:"port"`
	DatabaseDSN             string `json:"database_dsn"`
	DatabaseDriver          string `json:"database_driver"`
	SlotGranularityMinutes  int    `json:"slot_granularity_minutes"`
	DayStart                string `json:"day_start"`
	DayEnd                  string `json:"day_end"`
	MonthInlineAppointments int    `json:"month_inline_appointments"`
}

// Config holds the system configuration.
type Config interface {
	ServerPort() int32
	DatabaseDSN() string
	DatabaseDriver() string
	SlotGranularityMinutes() int
	DayStart() string
	DayEnd() string
	MonthInlineAppointments() int
}

type defaultConfig struct {
	data *configData
}

func (c *defaultConfig) ServerPort() int32 {
	return c.data.ServerPort
}

func (c *defaultConfig) DatabaseDSN() string {
	return c.data.DatabaseDSN
}

func (c *defaultConfig) DatabaseDriver() string {
	return c.data.DatabaseDriver
}

func (c *defaultConfig) SlotGranularityMinutes() int {
	return c.data.SlotGranularityMinutes
}

func (c *defaultConfig) DayStart() string {
	return c.data.DayStart
}

func (c *defaultConfig) DayEnd() string {
	return c.data.DayEnd
}

func (c *defaultConfig) MonthInlineAppointments() int {
	return c.data.MonthInlineAppointments
}

// applyEnvironment overrides file values with environment variables, so
// deployments can keep credentials out of the configuration file. A .env
// file next to the binary is honored when present.
func (c *defaultConfig) applyEnvironment() error {
	_ = godotenv.Load()
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		c.data.DatabaseDSN = dsn
	}
	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		c.data.DatabaseDriver = driver
	}
	if port := os.Getenv("PORT"); port != "" {
		parsed, err := strconv.ParseInt(port, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid PORT value %q: %w", port, err)
		}
		c.data.ServerPort = int32(parsed)
	}
	return nil
}

func (c *defaultConfig) validate() error {
	if c.data.ServerPort <= 0 {
		return fmt.Errorf("a valid server port must be given")
	}
	if c.data.DatabaseDSN == "" {
		return fmt.Errorf("a database DSN must be given")
	}
	return nil
}

// Load loads the given configuration file.
func Load(configPath string) (Config, error) {
	data := &configData{
		SlotGranularityMinutes:  DefaultSlotGranularityMinutes,
		DayStart:                DefaultDayStart,
		DayEnd:                  DefaultDayEnd,
		MonthInlineAppointments: DefaultMonthInlineAppointments,
	}
	configFile, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("an error occurred while loading config file: %w", err)
	}
	defer configFile.Close()
	err = json.NewDecoder(configFile).Decode(data)
	if err != nil {
		return nil, fmt.Errorf("an error occurred while parsing config file: %w", err)
	}
	configuration := &defaultConfig{data: data}
	if err = configuration.applyEnvironment(); err != nil {
		return nil, err
	}
	if err = configuration.validate(); err != nil {
		return nil, err
	}
	return configuration, nil
}

// MustLoad loads the given configuration file and if any error occurs, will panic.
func MustLoad(configPath string) Config {
	config, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return config
}
