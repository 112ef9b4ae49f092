package cli

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"playquiz/internal/app"
	"playquiz/internal/config"
	"playquiz/internal/domain"
	"playquiz/internal/infra/memory"
	pgstore "playquiz/internal/infra/postgres"
	rediscache "playquiz/internal/infra/redis"
	transport "playquiz/internal/transport/http"
)

// NewServeCmd builds the subcommand that runs the reference tally server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	envPort := os.Getenv("PORT")
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the playQuiz REST endpoints and live websocket playback",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
	cmd.Flags().StringVar(port, "port", envPort, "port to listen on")
	return cmd
}

// seeder is implemented by stores that accept seed quizzes.
type seeder interface {
	Upsert(ctx context.Context, quiz domain.Quiz) error
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var store interface {
		rediscache.QuizStore
		seeder
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = pgstore.NewQuizStore(pool)
	} else {
		store = memory.NewQuizStore()
	}

	if cfg.Quiz.Seed != "" {
		if err := seedQuizzes(ctx, store, cfg.Quiz.Seed); err != nil {
			return err
		}
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = rediscache.NewQuizRepository(redisClient, store, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(store, quizTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = rediscache.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	tallies := app.NewTallyService(quizRepo)
	grace := config.TTLDuration(cfg.Server.SessionGrace, time.Minute)
	playbackService := app.NewPlaybackService(tallies, sessions, grace)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	transport.NewQuizHandler(tallies).Register(mux)
	transport.NewPlayHandler(playbackService).Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting playquiz server on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func seedQuizzes(ctx context.Context, store seeder, path string) error {
	quizzes, err := config.LoadQuizzes(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("quiz seed %s not found, starting without seed data", path)
		return nil
	}
	if err != nil {
		return err
	}
	for _, quiz := range quizzes {
		if err := store.Upsert(ctx, quiz); err != nil {
			return err
		}
	}
	log.Printf("seeded %d quizzes from %s", len(quizzes), path)
	return nil
}
