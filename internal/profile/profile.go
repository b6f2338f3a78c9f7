package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where gatherly stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of the gatherly instance
	InstanceURL string

	// DefaultTimezone is the IANA zone applied to events created without one.
	DefaultTimezone string
	// MaxOccurrences caps a single calendar expansion call.
	MaxOccurrences int
	// ReminderLeadTime is the look-ahead, in minutes, of the reminder runner.
	ReminderLeadTime int
	// ReminderCron is the cron expression driving the reminder runner.
	ReminderCron string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from GATHERLY_* environment variables, filling
// only fields not already set by flags.
func (p *Profile) FromEnv() {
	if p.Mode == "" {
		p.Mode = getEnvOrDefault("GATHERLY_MODE", "demo")
	}
	if p.Addr == "" {
		p.Addr = os.Getenv("GATHERLY_ADDR")
	}
	if p.Port == 0 {
		if port, err := strconv.Atoi(getEnvOrDefault("GATHERLY_PORT", "8081")); err == nil {
			p.Port = port
		}
	}
	if p.Data == "" {
		p.Data = os.Getenv("GATHERLY_DATA")
	}
	if p.DSN == "" {
		p.DSN = os.Getenv("GATHERLY_DSN")
	}
	if p.Driver == "" {
		p.Driver = getEnvOrDefault("GATHERLY_DRIVER", "sqlite")
	}
	if p.InstanceURL == "" {
		p.InstanceURL = os.Getenv("GATHERLY_INSTANCE_URL")
	}
	if p.DefaultTimezone == "" {
		p.DefaultTimezone = getEnvOrDefault("GATHERLY_DEFAULT_TIMEZONE", "UTC")
	}
	if p.MaxOccurrences == 0 {
		if n, err := strconv.Atoi(getEnvOrDefault("GATHERLY_MAX_OCCURRENCES", "100")); err == nil && n > 0 {
			p.MaxOccurrences = n
		}
	}
	if p.ReminderLeadTime == 0 {
		if n, err := strconv.Atoi(getEnvOrDefault("GATHERLY_REMINDER_LEAD_MINUTES", "30")); err == nil && n > 0 {
			p.ReminderLeadTime = n
		}
	}
	if p.ReminderCron == "" {
		p.ReminderCron = getEnvOrDefault("GATHERLY_REMINDER_CRON", "*/5 * * * *")
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "gatherly")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/gatherly"
		}
	}
	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("gatherly_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.MaxOccurrences <= 0 {
		p.MaxOccurrences = 100
	}

	return nil
}
