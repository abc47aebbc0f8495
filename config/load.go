package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func Load() App {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading environment directly")
	}

	cfg := App{
		Port:              getenv("APP_PORT", "8080"),
		DatabaseURL:       must("DATABASE_URL"),
		JWTSecret:         getenv("JWT_SECRET", "local_dev_secret"),
		Env:               getenv("APP_ENV", "dev"),
		MaxLoanDays:       getint("MAX_LOAN_DAYS", 3),
		EnforceHours:      getbool("ENFORCE_OPERATING_HOURS", true),
		OpenHour:          getint("LIBRARY_OPEN_HOUR", 8),
		CloseHour:         getint("LIBRARY_CLOSE_HOUR", 16),
		OverdueReportCron: getenv("OVERDUE_REPORT_CRON", "0 8 * * *"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Error("invalid int env, using default", "key", k, "value", v)
		return def
	}
	return n
}

func getbool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Error("invalid bool env, using default", "key", k, "value", v)
		return def
	}
	return b
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
