package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	// borrow policy knobs, enforced server-side in service/borrow
	MaxLoanDays  int  `env:"MAX_LOAN_DAYS" default:"3"`
	EnforceHours bool `env:"ENFORCE_OPERATING_HOURS" default:"true"`
	OpenHour     int  `env:"LIBRARY_OPEN_HOUR" default:"8"`
	CloseHour    int  `env:"LIBRARY_CLOSE_HOUR" default:"16"`

	OverdueReportCron string `env:"OVERDUE_REPORT_CRON" default:"0 8 * * *"`
}
