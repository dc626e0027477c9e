package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	DBDriver string
	DBDSN    string
	LogFile  string

	ProfileServiceURL      string
	NotificationServiceURL string
	AnalyticsServiceURL    string
	HTTPClientTimeout      time.Duration

	SchedulerTimezone  string
	DealsOfTheDayCron  string
	ReconcileCron      string
	DealsOfTheDayLimit int
	ReconcilePageSize  int
	DealCodeTemplate   string
	TemplatesDir       string

	// AdminUserIDs may approve deals and trigger jobs by hand.
	AdminUserIDs []string
}

const defaultCodeTemplate = "{YY}{MM}{DD}{T}{NNNN}"

// validCodeTemplate demands the tokens that keep codes unique: the full date,
// the owner-kind letter and the daily counter.
func validCodeTemplate(t string) bool {
	for _, tok := range []string{"{MM}", "{DD}", "{T}", "{NNNN}"} {
		if !strings.Contains(t, tok) {
			return false
		}
	}
	return strings.Contains(t, "{YY}") || strings.Contains(t, "{YYYY}")
}

func Load() Config {
	cfg := Config{
		Port:     env("PORT", "8080"),
		DBDriver: env("DB_DRIVER", "sqlite"),
		DBDSN:    env("DB_DSN", "dealcore.db"), // sqlite file in project root
		LogFile:  env("LOG_FILE", "./dealcore.log"),

		ProfileServiceURL:      env("PROFILE_SERVICE_URL", "http://localhost:8090"),
		NotificationServiceURL: env("NOTIFICATION_SERVICE_URL", "http://localhost:8091"),
		AnalyticsServiceURL:    env("ANALYTICS_SERVICE_URL", "http://localhost:8092"),
		HTTPClientTimeout:      envDuration("HTTP_CLIENT_TIMEOUT", 5*time.Second),

		SchedulerTimezone:  env("SCHEDULER_TIMEZONE", "Asia/Dhaka"),
		DealsOfTheDayCron:  env("DOTD_CRON", "0 0 * * *"),
		ReconcileCron:      env("RECONCILE_CRON", "30 0 * * *"),
		DealsOfTheDayLimit: envInt("DEALS_OF_THE_DAY_LIMIT", 10),
		ReconcilePageSize:  envInt("RECONCILE_PAGE_SIZE", 100),
		DealCodeTemplate:   env("DEAL_CODE_TEMPLATE", defaultCodeTemplate),
		TemplatesDir:       env("TEMPLATES_DIR", "./web/templates"),
		AdminUserIDs:       envList("ADMIN_USER_IDS"),
	}
	if !validCodeTemplate(cfg.DealCodeTemplate) {
		log.Printf("[config] ignoring invalid DEAL_CODE_TEMPLATE=%q", cfg.DealCodeTemplate)
		cfg.DealCodeTemplate = defaultCodeTemplate
	}
	log.Printf("[config] PORT=%s DB_DRIVER=%s DB_DSN=%s LOG_FILE=%s TZ=%s DOTD_LIMIT=%d ADMINS=%d",
		cfg.Port, cfg.DBDriver, cfg.DBDSN, cfg.LogFile, cfg.SchedulerTimezone, cfg.DealsOfTheDayLimit, len(cfg.AdminUserIDs))
	return cfg
}

// Location resolves SchedulerTimezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.SchedulerTimezone)
	if err != nil {
		log.Printf("[config] unknown SCHEDULER_TIMEZONE %q, using UTC", c.SchedulerTimezone)
		return time.UTC
	}
	return loc
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] ignoring invalid %s=%q", key, v)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] ignoring invalid %s=%q", key, v)
		return def
	}
	return d
}

// envList splits a comma-separated variable, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
