package config

// App holds process-wide settings that do not belong to a single component.
type App struct {
	Env                string `env:"APP_ENV" envDefault:"development"`
	Name               string `env:"APP_NAME" envDefault:"institute-api"`
	OrgName            string `env:"ORG_NAME" envDefault:"Institute"`
	FrontendURL        string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	EnableTransactions bool   `env:"ENABLE_TRANSACTIONS" envDefault:"false"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat          string `env:"LOG_FORMAT" envDefault:"json"`
	MailDevDir         string `env:"MAIL_DEV_DIR" envDefault:"tmp/mail"`
	BcryptCost         int    `env:"BCRYPT_COST" envDefault:"10"`
}

// IsProduction reports whether the service runs in production mode.
func (a App) IsProduction() bool {
	return a.Env == "production"
}
