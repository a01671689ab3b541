package main

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"fritter/internal/auth"
	"fritter/internal/config"
	"fritter/internal/db"
	"fritter/internal/handlers"
	"fritter/internal/metrics"
	"fritter/internal/service"
	"fritter/internal/store"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(os.Getenv("FRITTER_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatal(err)
	}

	dbc, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer dbc.Close()

	if err := db.Migrate(dbc); err != nil {
		log.Fatal(err)
	}

	users := store.NewUsers(dbc)
	tweets := store.NewTweets(dbc)
	sessions := auth.NewManager(dbc, time.Duration(cfg.SessionTTL))

	h := handlers.New(
		service.NewAuth(users),
		service.NewTweets(tweets, users),
		service.NewSocial(users),
		sessions,
		filepath.Join("web", "templates"),
		log,
	)

	r := mux.NewRouter()
	r.Use(handlers.Observe(log))

	r.Handle("/metrics", metrics.Handler())
	r.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir(filepath.Join("web", "static")))))

	h.Register(r)

	limiter := handlers.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, sessions)

	log.WithField("addr", cfg.Addr).Info("listening")
	if err := http.ListenAndServe(cfg.Addr, handlers.WithRecover(limiter.Handler(r), log)); err != nil {
		log.Fatal(err)
	}
}
