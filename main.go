// Package main school-library borrowing API.
//
// @title           Perpustakaan Digital API
// @version         1.0
// @description     School-library borrowing service (catalog, loans, returns).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/qihfathny29/perpustakaandigital40-sub000/app/echoServer"
	authctrl "github.com/qihfathny29/perpustakaandigital40-sub000/app/echoServer/controller/auth"
	bookctrl "github.com/qihfathny29/perpustakaandigital40-sub000/app/echoServer/controller/book"
	borrowctrl "github.com/qihfathny29/perpustakaandigital40-sub000/app/echoServer/controller/borrow"
	"github.com/qihfathny29/perpustakaandigital40-sub000/app/echoServer/validation"
	"github.com/qihfathny29/perpustakaandigital40-sub000/config"
	bookrepo "github.com/qihfathny29/perpustakaandigital40-sub000/repository/book"
	borrowrepo "github.com/qihfathny29/perpustakaandigital40-sub000/repository/borrow"
	userrepo "github.com/qihfathny29/perpustakaandigital40-sub000/repository/user"
	authsvc "github.com/qihfathny29/perpustakaandigital40-sub000/service/auth"
	booksvc "github.com/qihfathny29/perpustakaandigital40-sub000/service/book"
	borrowsvc "github.com/qihfathny29/perpustakaandigital40-sub000/service/borrow"
	"github.com/qihfathny29/perpustakaandigital40-sub000/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	rr := borrowrepo.New(db)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	bs := booksvc.New(br)
	policy := borrowsvc.Policy{
		MaxLoanDays:  cfg.MaxLoanDays,
		EnforceHours: cfg.EnforceHours,
		OpenHour:     cfg.OpenHour,
		CloseHour:    cfg.CloseHour,
	}
	ls := borrowsvc.New(db, br, rr, ur, policy)

	// overdue report job (read-only)
	sched := cron.New()
	reporter := borrowsvc.NewReporter(rr, log)
	if _, err := reporter.Schedule(sched, cfg.OverdueReportCron); err != nil {
		log.Error("overdue report schedule failed", "err", err, "cron", cfg.OverdueReportCron)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	borrowC := &borrowctrl.Controller{Svc: ls, V: v, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		Book:      bookC,
		Borrow:    borrowC,
		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		log.Info("starting server", "port", port, "env", cfg.Env)
		if err := e.Start(":" + port); err != nil {
			log.Info("server stopped", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	log.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		os.Exit(1)
	}
	log.Info("server shut down")
}
