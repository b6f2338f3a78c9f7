package profile

import (
	"os"
	"testing"
)

func clearEnv() {
	for _, key := range []string{
		"GATHERLY_MODE", "GATHERLY_ADDR", "GATHERLY_PORT", "GATHERLY_DATA",
		"GATHERLY_DSN", "GATHERLY_DRIVER", "GATHERLY_INSTANCE_URL",
		"GATHERLY_DEFAULT_TIMEZONE", "GATHERLY_MAX_OCCURRENCES",
		"GATHERLY_REMINDER_LEAD_MINUTES", "GATHERLY_REMINDER_CRON",
	} {
		os.Unsetenv(key)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv()

	p := &Profile{}
	p.FromEnv()

	if p.Mode != "demo" {
		t.Errorf("Mode = %q, want demo", p.Mode)
	}
	if p.Port != 8081 {
		t.Errorf("Port = %d, want 8081", p.Port)
	}
	if p.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", p.Driver)
	}
	if p.DefaultTimezone != "UTC" {
		t.Errorf("DefaultTimezone = %q, want UTC", p.DefaultTimezone)
	}
	if p.MaxOccurrences != 100 {
		t.Errorf("MaxOccurrences = %d, want 100", p.MaxOccurrences)
	}
	if p.ReminderCron != "*/5 * * * *" {
		t.Errorf("ReminderCron = %q", p.ReminderCron)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv()
	t.Setenv("GATHERLY_MODE", "prod")
	t.Setenv("GATHERLY_PORT", "9090")
	t.Setenv("GATHERLY_DRIVER", "postgres")
	t.Setenv("GATHERLY_DEFAULT_TIMEZONE", "Europe/Berlin")
	t.Setenv("GATHERLY_MAX_OCCURRENCES", "250")

	p := &Profile{}
	p.FromEnv()

	if p.Mode != "prod" {
		t.Errorf("Mode = %q, want prod", p.Mode)
	}
	if p.Port != 9090 {
		t.Errorf("Port = %d, want 9090", p.Port)
	}
	if p.Driver != "postgres" {
		t.Errorf("Driver = %q, want postgres", p.Driver)
	}
	if p.DefaultTimezone != "Europe/Berlin" {
		t.Errorf("DefaultTimezone = %q", p.DefaultTimezone)
	}
	if p.MaxOccurrences != 250 {
		t.Errorf("MaxOccurrences = %d, want 250", p.MaxOccurrences)
	}
}

func TestFromEnvDoesNotClobberFlags(t *testing.T) {
	clearEnv()
	t.Setenv("GATHERLY_PORT", "9090")

	p := &Profile{Port: 7070, Mode: "dev"}
	p.FromEnv()

	if p.Port != 7070 {
		t.Errorf("Port = %d, want flag value 7070", p.Port)
	}
	if p.Mode != "dev" {
		t.Errorf("Mode = %q, want flag value dev", p.Mode)
	}
}

func TestValidate(t *testing.T) {
	clearEnv()

	p := &Profile{Mode: "bogus", Driver: "sqlite", Data: t.TempDir()}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if p.Mode != "demo" {
		t.Errorf("Mode = %q, want fallback demo", p.Mode)
	}
	if p.DSN == "" {
		t.Error("DSN not derived for sqlite driver")
	}
	if p.MaxOccurrences != 100 {
		t.Errorf("MaxOccurrences = %d, want default 100", p.MaxOccurrences)
	}
}
