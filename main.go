package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"staffhub-backend/internal/attendance"
	"staffhub-backend/internal/dashboard"
	"staffhub-backend/internal/platform/auth"
	"staffhub-backend/internal/platform/db"
	"staffhub-backend/internal/staff"
	"staffhub-backend/internal/task"
	"staffhub-backend/internal/timesession"
)

func main() {
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("[FATAL] auth.jwt_secret is not set")
	}

	loc, err := time.LoadLocation(cfg.Workday.Timezone)
	if err != nil {
		log.Fatalf("[FATAL] invalid workday.timezone %q: %v", cfg.Workday.Timezone, err)
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	workday := attendance.Workday{Start: cfg.Workday.Start, Loc: loc}
	secret := []byte(cfg.Auth.JWTSecret)
	authSvc := auth.NewService(conn, secret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	// /api/v1
	api := r.Group("/api/v1")
	auth.RegisterRoutes(api, authSvc)

	authed := api.Group("")
	authed.Use(auth.RequireAuth(secret))
	staff.RegisterRoutes(authed, staff.NewService(conn))
	attendance.RegisterRoutes(authed, attendance.NewService(conn, workday))
	timesession.RegisterRoutes(authed, timesession.NewService(conn, loc))
	task.RegisterRoutes(authed, task.NewService(conn))
	dashboard.RegisterRoutes(authed, dashboard.NewService(conn, loc))

	admin := api.Group("/admin")
	admin.Use(auth.RequireAuth(secret), auth.RequireRole(auth.RoleAdmin))
	auth.RegisterAdminRoutes(admin, authSvc)

	srv := &http.Server{
		Addr:    ":8443",
		Handler: r,
	}

	var certFile, keyFile string
	if mode == "dev" {
		certFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Key)
	} else {
		certFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Key)
	}

	go func() {
		log.Println("[INFO] listening on https://0.0.0.0:8443")
		if err := srv.ListenAndServeTLS(certFile, keyFile); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
