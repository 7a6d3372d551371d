package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	// Refresh Token Config
	RefreshTokenExpiryDuration time.Duration
	RefreshTokenCookieName     string
	RefreshTokenCookiePath     string `mapstructure:"REFRESH_TOKEN_COOKIE_PATH"`

	// Password reset tokens
	ResetTokenTTL time.Duration

	// Accrual batch job
	AccrualHourUTC  int           // Hour of day (UTC) the daily cycle fires
	AccrualLockTTL  time.Duration // Job lease duration
	AccrualDisabled bool          // Disables the in-process scheduler (manual trigger only)

	// External OAuth Providers
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
	FrontendBaseURL    string `mapstructure:"FRONTEND_BASE_URL"`

	// Analytics
	PosthogAPIKey string `mapstructure:"POSTHOG_API_KEY"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "cryptonest-backend")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_NAME", "refresh_token")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_PATH", "/api/v1/auth")
	viper.SetDefault("RESET_TOKEN_TTL", "30m")
	viper.SetDefault("ACCRUAL_HOUR_UTC", 0)
	viper.SetDefault("ACCRUAL_LOCK_TTL", "10m")
	viper.SetDefault("ACCRUAL_DISABLED", false)
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("POSTHOG_API_KEY", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour * 1
		if jwtExpiryStr != "" {
			log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
		}
	}

	jwtIssuer := viper.GetString("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "cryptonest-backend"
	}

	refreshTokenExpiryStr := viper.GetString("REFRESH_TOKEN_EXPIRY_DURATION")
	refreshTokenExpiryDuration, err := time.ParseDuration(refreshTokenExpiryStr)
	if err != nil {
		refreshTokenExpiryDuration = time.Hour * 24 * 7
		if refreshTokenExpiryStr != "" {
			log.Printf("Warning: Invalid value for REFRESH_TOKEN_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", refreshTokenExpiryStr, refreshTokenExpiryDuration.String())
		}
	}

	refreshTokenCookieName := viper.GetString("REFRESH_TOKEN_COOKIE_NAME")
	if refreshTokenCookieName == "" {
		refreshTokenCookieName = "refresh_token"
	}

	refreshTokenCookiePath := viper.GetString("REFRESH_TOKEN_COOKIE_PATH")
	if refreshTokenCookiePath == "" {
		refreshTokenCookiePath = "/api/v1/auth"
	}

	resetTokenTTLStr := viper.GetString("RESET_TOKEN_TTL")
	resetTokenTTL, err := time.ParseDuration(resetTokenTTLStr)
	if err != nil || resetTokenTTL <= 0 {
		resetTokenTTL = 30 * time.Minute
		if resetTokenTTLStr != "" {
			log.Printf("Warning: Invalid value for RESET_TOKEN_TTL ('%s'). Defaulting to %s.\n", resetTokenTTLStr, resetTokenTTL.String())
		}
	}

	accrualHour := viper.GetInt("ACCRUAL_HOUR_UTC")
	if accrualHour < 0 || accrualHour > 23 {
		log.Printf("Warning: ACCRUAL_HOUR_UTC (%d) out of range. Defaulting to 0.\n", accrualHour)
		accrualHour = 0
	}

	accrualLockTTLStr := viper.GetString("ACCRUAL_LOCK_TTL")
	accrualLockTTL, err := time.ParseDuration(accrualLockTTLStr)
	if err != nil || accrualLockTTL <= 0 {
		accrualLockTTL = 10 * time.Minute
		if accrualLockTTLStr != "" {
			log.Printf("Warning: Invalid value for ACCRUAL_LOCK_TTL ('%s'). Defaulting to %s.\n", accrualLockTTLStr, accrualLockTTL.String())
		}
	}

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")

	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google OAuth will not function.")
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.JWTSecret = jwtSecret
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = jwtIssuer
	cfg.RefreshTokenExpiryDuration = refreshTokenExpiryDuration
	cfg.RefreshTokenCookieName = refreshTokenCookieName
	cfg.RefreshTokenCookiePath = refreshTokenCookiePath
	cfg.ResetTokenTTL = resetTokenTTL
	cfg.AccrualHourUTC = accrualHour
	cfg.AccrualLockTTL = accrualLockTTL
	cfg.AccrualDisabled = viper.GetBool("ACCRUAL_DISABLED")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")

	return cfg, nil
}
