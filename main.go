// main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/medisync/hospital-api/config"
	"github.com/medisync/hospital-api/endpoint"
	"github.com/medisync/hospital-api/middleware"
	"github.com/medisync/hospital-api/model"
	"github.com/medisync/hospital-api/sse"
	"github.com/medisync/hospital-api/util"
)

func migratedModels() []interface{} {
	return []interface{}{
		&model.Role{},
		&model.User{},
		&model.Session{},
		&model.Hospital{},
		&model.Doctor{},
		&model.Appointment{},
		&model.HealthReport{},
		&model.HandoffNote{},
		&model.AttendanceRecord{},
		&model.SecurityLog{},
	}
}

func main() {
	cfg := config.LoadConfig()

	util.SetJWTSecret(os.Getenv("JWTSECRET"))
	util.InitUserEmailCacheFromEnv()

	db, err := config.ConnectMySQL()
	if err != nil {
		log.Fatalf("error connecting to database: %v", err)
	}
	if err := db.AutoMigrate(migratedModels()...); err != nil {
		log.Fatalf("error migrating database: %v", err)
	}
	if err := model.SeedRoles(db); err != nil {
		log.Fatalf("error seeding roles: %v", err)
	}
	util.SetSecurityLoggerDB(db)

	if _, err := config.ConnectRedis(); err != nil {
		log.Printf("redis unavailable, sessions fall back to database lookups: %v", err)
	}

	if geoipPath := os.Getenv("GEOIP_DB_PATH"); geoipPath != "" {
		if err := util.InitGeoIP(geoipPath); err != nil {
			log.Printf("geoip database not loaded: %v", err)
		}
		defer util.CloseGeoIP()
	}

	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		log.Fatalf("error creating uploads directory: %v", err)
	}
	endpoint.SetUploadsDir(cfg.UploadsDir)
	endpoint.SetAIClient(util.NewAIClient(cfg.AIBaseURL))

	gin.SetMode(cfg.GinMode)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/board/stream"})))
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.EndpointCallLogger())

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.AppName})
	})
	router.Static("/uploads", cfg.UploadsDir)

	registerRoutes(router)

	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

func registerRoutes(router *gin.Engine) {
	apiLimiter := middleware.RateLimiter(middleware.RateLimitConfig{Scope: "api", Limit: 100, Window: 15 * time.Minute})
	loginLimiter := middleware.RateLimiter(middleware.RateLimitConfig{Limit: 5, Window: 15 * time.Minute})
	signupLimiter := middleware.RateLimiter(middleware.RateLimitConfig{Limit: 10, Window: time.Hour})

	v1 := router.Group("/api/v1")
	v1.Use(apiLimiter)

	auth := v1.Group("/auth")
	{
		auth.POST("/register/user", signupLimiter, endpoint.RegisterUser)
		auth.POST("/register/hospital", signupLimiter, endpoint.RegisterHospital)
		auth.POST("/register/doctor", signupLimiter, endpoint.RegisterDoctor)
		auth.POST("/login", loginLimiter, endpoint.Login)
		auth.GET("/validate", endpoint.ValidateToken)
		auth.DELETE("/logout", middleware.SessionAuth(), endpoint.Logout)
	}

	appointments := v1.Group("/appointments")
	{
		appointments.POST("", middleware.OptionalSessionAuth(), endpoint.CreateAppointment)
		appointments.GET("", middleware.SessionAuth(), endpoint.ListAppointments)
	}

	doctors := v1.Group("/doctors")
	{
		doctors.GET("", endpoint.ListDoctors)
		doctors.PUT("/profile", middleware.SessionAuth(), middleware.RequireRole(model.RoleDoctor), endpoint.UpdateDoctorProfile)
		doctors.GET("/:id", endpoint.GetDoctor)
	}

	hospitals := v1.Group("/hospitals")
	{
		hospitals.GET("/me", middleware.SessionAuth(), middleware.RequireRole(model.RoleHospitalAdmin), endpoint.GetHospital)
		hospitals.PATCH("/beds", middleware.SessionAuth(), middleware.RequireRole(model.RoleHospitalAdmin), endpoint.UpdateBeds)
		hospitals.POST("/handoff-summary", middleware.SessionAuth(), middleware.RequireRole(model.RoleHospitalAdmin, model.RoleDoctor), endpoint.SummarizeHandoffs)
	}

	v1.GET("/donors", endpoint.FindDonors)

	handoffs := v1.Group("/handoffs")
	{
		handoffs.POST("", endpoint.CreateHandoff)
		handoffs.GET("", endpoint.ListHandoffs)
	}

	attendance := v1.Group("/attendance")
	{
		attendance.POST("/clock-in", endpoint.ClockIn)
		attendance.POST("/clock-out", endpoint.ClockOut)
		attendance.GET("", endpoint.ListAttendance)
	}

	v1.GET("/board/stream", sse.Stream)

	v1.POST("/consent/simplify", middleware.SessionAuth(), endpoint.SimplifyConsent)

	reports := v1.Group("/reports")
	reports.Use(middleware.SessionAuth())
	{
		reports.POST("/analyze", endpoint.AnalyzeReport)
		reports.GET("", endpoint.ListReports)
	}
}
