package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/exam-metrics/raschd/internal/api/http"
	"github.com/exam-metrics/raschd/internal/config"
	"github.com/exam-metrics/raschd/internal/db"
	"github.com/exam-metrics/raschd/internal/eventlog"
	"github.com/exam-metrics/raschd/internal/exam"
	"github.com/exam-metrics/raschd/internal/storage"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	sheets, err := storage.NewFSStore(cfg.SheetBasePath)
	if err != nil {
		log.Fatalf("sheet store: %v", err)
	}

	svc := exam.NewService(
		exam.NewSQLStore(dbh),
		exam.NewProcessor(nil),
		exam.WithEventSink(eventlog.NewRepo(dbh)),
		exam.WithSheetArchive(sheets),
	)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Post("/exams", api.CreateExamHandler(svc))
	r.Get("/exams", api.ListExamsHandler(svc))
	r.Get("/exams/{examCode}", api.GetExamHandler(svc))
	r.Delete("/exams/{examCode}", api.DeleteExamHandler(svc))
	r.Post("/exams/{examCode}/recalibrate", api.RecalibrateExamHandler(svc))

	r.Post("/submissions", api.SubmitHandler(svc))
	r.Get("/submissions/{studentCode}/{examCode}", api.GetResultHandler(svc))

	r.Get("/statistics/{examCode}", api.StatisticsHandler(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("raschd listening on %s", cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
