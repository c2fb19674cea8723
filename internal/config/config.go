package config

import (
	"crypto/rand"
	"os"
	"strconv"
	"time"

	"github.com/poofware/device-auth-service/internal/utils"
)

// AppName identifies this service in logs and delivery messages.
const AppName = "device-auth-service"

// Config holds all application configuration, including secrets and
// tuning knobs.
type Config struct {
	Env     string
	AppPort string
	AppUrl  string
	DBUrl   string

	// Credential signing
	JWTSecret []byte
	TokenTTL  time.Duration

	// Proof of work
	PowDifficulty   uint32
	PowChallengeTTL time.Duration

	// Possession proofs
	OTPCodeLength    int
	OTPCodeExpiry    time.Duration
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromPhone  string

	// DevMode relaxes secret requirements and disables SMS delivery.
	DevMode bool
}

// Defaults for environment-tunable values.
const (
	DefaultAppPort           = "8080"
	DefaultPowDifficulty     = 4
	DefaultPowTimeoutMinutes = 10
	DefaultTokenTTLHours     = 24
	OTPCodeLength            = 6
	OTPCodeExpiry            = 5 * time.Minute
)

// LoadConfig reads configuration from the environment and fails fast on
// anything mandatory that is missing. Outside the dev profile there is
// no fallback signing secret: the process refuses to start without
// JWT_SECRET.
func LoadConfig() *Config {
	env := os.Getenv("ENV")
	if env == "" {
		utils.Logger.Fatal("ENV env var is missing")
	}
	devMode := env == "dev"

	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		appPort = DefaultAppPort
	}

	appUrl := os.Getenv("APP_URL")
	if appUrl == "" && !devMode {
		utils.Logger.Fatal("APP_URL env var is missing")
	}

	dbUrl := os.Getenv("DB_URL")
	if dbUrl == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}

	secret := []byte(os.Getenv("JWT_SECRET"))
	if len(secret) == 0 {
		if !devMode {
			utils.Logger.Fatal("JWT_SECRET env var is missing (mandatory outside dev)")
		}
		// dev only: ephemeral per-process secret, never a compiled-in literal
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to generate dev signing secret")
		}
		utils.Logger.Warn("JWT_SECRET not set; using an ephemeral dev secret, tokens will not survive restarts")
	}

	difficulty := envUint32("POW_DIFFICULTY", DefaultPowDifficulty)
	timeoutMinutes := envInt("POW_TIMEOUT_MINUTES", DefaultPowTimeoutMinutes)
	tokenTTLHours := envInt("TOKEN_TTL_HOURS", DefaultTokenTTLHours)

	twilioSID := os.Getenv("TWILIO_ACCOUNT_SID")
	twilioToken := os.Getenv("TWILIO_AUTH_TOKEN")
	twilioFrom := os.Getenv("TWILIO_FROM_PHONE")
	if !devMode {
		if twilioSID == "" {
			utils.Logger.Fatal("TWILIO_ACCOUNT_SID env var is missing")
		}
		if twilioToken == "" {
			utils.Logger.Fatal("TWILIO_AUTH_TOKEN env var is missing")
		}
		if twilioFrom == "" {
			utils.Logger.Fatal("TWILIO_FROM_PHONE env var is missing")
		}
	}

	return &Config{
		Env:              env,
		AppPort:          appPort,
		AppUrl:           appUrl,
		DBUrl:            dbUrl,
		JWTSecret:        secret,
		TokenTTL:         time.Duration(tokenTTLHours) * time.Hour,
		PowDifficulty:    difficulty,
		PowChallengeTTL:  time.Duration(timeoutMinutes) * time.Minute,
		OTPCodeLength:    OTPCodeLength,
		OTPCodeExpiry:    OTPCodeExpiry,
		TwilioAccountSID: twilioSID,
		TwilioAuthToken:  twilioToken,
		TwilioFromPhone:  twilioFrom,
		DevMode:          devMode,
	}
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		utils.Logger.Fatalf("%s must be an integer, got %q", key, raw)
	}
	return v
}

func envUint32(key string, def uint32) uint32 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		utils.Logger.Fatalf("%s must be an unsigned integer, got %q", key, raw)
	}
	return uint32(v)
}
