package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/poofware/device-auth-service/internal/app"
	"github.com/poofware/device-auth-service/internal/config"
	"github.com/poofware/device-auth-service/internal/controllers"
	"github.com/poofware/device-auth-service/internal/middleware"
	"github.com/poofware/device-auth-service/internal/repositories"
	"github.com/poofware/device-auth-service/internal/services"
	"github.com/poofware/device-auth-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	revocationRepo := repositories.NewRevocationRepository(application.DB)
	otpRepo := repositories.NewDeviceOTPRepository(application.DB)

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	challengeStore := services.NewChallengeStore()
	powService := services.NewPowService(challengeStore, cfg.PowDifficulty, cfg.PowChallengeTTL)
	jwtService := services.NewJWTService(cfg.JWTSecret)

	var sender services.SMSSender
	if cfg.DevMode {
		sender = services.NewLogSender()
	} else {
		sender = services.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromPhone)
	}
	otpService := services.NewOTPService(otpRepo, sender, cfg.OTPCodeLength, cfg.OTPCodeExpiry)

	//----------------------------------------------------------------------
	// Controllers
	//----------------------------------------------------------------------
	powController := controllers.NewPowController(powService, jwtService, cfg)
	deviceController := controllers.NewDeviceAuthController(jwtService, otpService, revocationRepo, cfg)
	healthController := controllers.NewHealthController(application)

	//----------------------------------------------------------------------
	// Router & Endpoints
	//----------------------------------------------------------------------
	router := mux.NewRouter()
	router.Use(middleware.AuthMiddleware(jwtService, revocationRepo))

	// Public (allow-listed in the auth gate)
	router.HandleFunc("/health", healthController.HealthCheckHandler).Methods("GET")
	router.HandleFunc("/pow/challenge", powController.GetChallenge).Methods("POST")
	router.HandleFunc("/pow/verify", powController.VerifySolution).Methods("POST")

	// Self-authenticating recovery endpoints (signature/expiry only)
	router.HandleFunc("/device/otp/request", deviceController.RequestOTP).Methods("POST")
	router.HandleFunc("/device/reissue", deviceController.ReissueDevice).Methods("POST")

	// Behind the auth gate
	router.HandleFunc("/device/revoke", deviceController.RevokeDevice).Methods("POST")
	router.HandleFunc("/device/me", deviceController.DeviceStatus).Methods("GET")

	//----------------------------------------------------------------------
	// Scheduled maintenance via cron
	//----------------------------------------------------------------------
	c := cron.New()

	// expired challenge sweep (bounds the in-memory store)
	_, schErr1 := c.AddFunc("@every 1m", func() {
		if removed := challengeStore.SweepExpired(); removed > 0 {
			utils.Logger.Debugf("Swept %d expired PoW challenges", removed)
		}
	})
	if schErr1 != nil {
		utils.Logger.WithError(schErr1).Fatal("Failed to schedule challenge sweep job")
	}

	// expired OTP rows
	_, schErr2 := c.AddFunc("15 3 * * *", func() {
		if e := otpRepo.CleanupExpired(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled OTP cleanup failed")
		}
	})
	if schErr2 != nil {
		utils.Logger.WithError(schErr2).Fatal("Failed to schedule OTP cleanup job")
	}

	c.Start()

	var allowedOrigins []string
	if cfg.AppUrl != "" {
		allowedOrigins = append(allowedOrigins, cfg.AppUrl)
	}
	if cfg.DevMode {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000")
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", config.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}
