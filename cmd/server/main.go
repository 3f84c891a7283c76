package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"clinical-intake/internal/advisory"
	"clinical-intake/internal/agent"
	"clinical-intake/internal/interview"
	"clinical-intake/internal/patient"
	"clinical-intake/internal/platform/telegram"
	"clinical-intake/internal/report"
	"clinical-intake/internal/transcript"
)

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// 1. Infrastructure
	var patients patient.Repository
	dbConnStr := os.Getenv("DATABASE_URL")
	if dbConnStr != "" {
		var db *sql.DB
		var err error
		for i := 0; i < 10; i++ {
			db, err = sql.Open("postgres", dbConnStr)
			if err == nil {
				err = db.Ping()
			}
			if err == nil {
				break
			}
			log.Info("waiting for database", "attempt", i+1)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			log.Error("could not connect to database", "error", err)
			os.Exit(1)
		}
		log.Info("connected to database")

		m, err := migrate.New("file://migrations", dbConnStr)
		if err != nil {
			log.Error("migration init failed", "error", err)
		} else if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Error("migration up failed", "error", err)
		} else {
			log.Info("migrations applied")
		}

		patients = patient.NewRepository(db)
	} else {
		log.Info("no DATABASE_URL set, using in-memory patient store")
		patients = patient.NewMemoryRepository()
	}

	transcripts := transcript.NewFileStore(getEnv("STORAGE_BASE_PATH", "./var/storage"))

	// 2. Interview engine
	maxTurns, _ := strconv.Atoi(getEnv("INTERVIEW_MAX_TURNS", "0"))
	if maxTurns <= 0 {
		maxTurns = interview.DefaultMaxTurns
	}

	var strategy interview.Strategy
	if getEnv("QUESTION_SOURCE", "template") == "openai" {
		strategy = agent.NewOpenAIStrategy(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_MODEL"), maxTurns)
		log.Info("using openai question source")
	} else {
		strategy = &interview.TemplateStrategy{MaxTurns: maxTurns, BatchSize: interview.DefaultBatchSize}
	}

	pairing := interview.PairingMode(getEnv("ANSWER_PAIRING", string(interview.PairJointly)))
	engine := interview.NewEngine(interview.NewSessionStore(), strategy, transcripts, pairing, log)
	interviewHandler := interview.NewHandler(engine, patients)

	// 3. Advisory pipeline
	retrievalTimeout, _ := strconv.Atoi(getEnv("VECTOR_DB_TIMEOUT_SECONDS", "15"))
	retriever := advisory.NewVectorClient(
		getEnv("VECTOR_DB_URL", "http://medical_vector_database:8000"),
		os.Getenv("VECTOR_DB_API_KEY"),
		time.Duration(retrievalTimeout)*time.Second,
	)
	advisorySvc := advisory.NewService(transcripts, retriever, advisory.NewSynthesizer(), log)

	var reporter advisory.Reporter
	doctorChatID, _ := strconv.ParseInt(os.Getenv("DOCTOR_CHAT_ID"), 10, 64)
	tgToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if tgToken != "" && doctorChatID != 0 {
		reporter = report.NewService(telegram.NewClient(tgToken), doctorChatID)
	} else {
		log.Info("TELEGRAM_BOT_TOKEN or DOCTOR_CHAT_ID not set, report delivery disabled")
	}

	advisoryHandler := advisory.NewHandler(advisorySvc, reporter)
	transcriptHandler := transcript.NewHandler(transcripts)
	patientHandler := patient.NewHandler(patients)

	// 4. Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS for frontend
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
			if r.Method == "OPTIONS" {
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api", func(r chi.Router) {
		interview.RegisterRoutes(r, interviewHandler)
		advisory.RegisterRoutes(r, advisoryHandler)
		transcript.RegisterRoutes(r, transcriptHandler)
		patient.RegisterRoutes(r, patientHandler)
	})

	port := getEnv("PORT", "8080")
	log.Info("server starting", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
