package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	AppEnv string `env:"APP_ENV,default=development"`
	Port   string `env:"PORT,default=8080"`

	MongoURI string `env:"MONGO_URI,required"`
	DBName   string `env:"DB_NAME,default=second_serving"`

	JWTSecret    string        `env:"JWT_SECRET,required"`
	JWTTTL       time.Duration `env:"JWT_TTL,default=720h"`
	JWTCookieTTL time.Duration `env:"JWT_COOKIE_TTL,default=720h"`
	OTPTTL       time.Duration `env:"OTP_TTL,default=10m"`

	FrontendURL           string  `env:"FRONTEND_URL,default=http://localhost:5173"`
	VolunteerRadiusMeters float64 `env:"VOLUNTEER_RADIUS_METERS,default=3000"`
	AllowedOrigins        string  `env:"ALLOWED_ORIGINS,default=http://localhost:5173"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=30"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	GroqAPIKey          string `env:"GROQ_API_KEY"`
	GroqBaseURL         string `env:"GROQ_BASE_URL,default=https://api.groq.com/openai/v1"`
	GroqModel           string `env:"GROQ_MODEL,default=llama-3.3-70b-versatile"`
	ClassifierRulesFile string `env:"CLASSIFIER_RULES_FILE"`

	TwilioSID  string `env:"TWILIO_SID"`
	TwilioAuth string `env:"TWILIO_AUTH"`
	TwilioFrom string `env:"TWILIO_FROM"`

	TelegramBotToken        string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramVolunteerChatID int64  `env:"TELEGRAM_VOLUNTEER_CHAT_ID"`

	ExpirySweepSchedule string `env:"EXPIRY_SWEEP_SCHEDULE,default=@every 15m"`
}

// Load reads .env when present and decodes the process environment into AppEnv.
func Load() error {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}

	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	AppEnv = cfg
	return nil
}
