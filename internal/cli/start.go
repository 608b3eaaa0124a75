package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"quizmaster/internal/badge"
	"quizmaster/internal/config"
	"quizmaster/internal/domain"
	"quizmaster/internal/infra/httpfetch"
	"quizmaster/internal/infra/memory"
	pgstore "quizmaster/internal/infra/postgres"
	redisstore "quizmaster/internal/infra/redis"
	"quizmaster/internal/session"
	transport "quizmaster/internal/transport/http"
	"quizmaster/internal/tui"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand that runs an interactive quiz.
func NewStartCmd(configPath, listenPort *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Fetch the quiz and take it in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuiz(cmd.Context(), *configPath, *listenPort)
		},
	}
	cmd.Flags().StringVar(listenPort, "listen", "", "port for the live snapshot feed (empty disables it)")
	return cmd
}

func runQuiz(ctx context.Context, configPath, listenPort string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	tiers, err := cfg.TierTable()
	if err != nil {
		return err
	}

	doc, err := loadDocument(ctx, cfg)
	if err != nil {
		// A failed fetch leaves the quiz unloadable; there is no retry.
		return err
	}

	ledger, err := buildLedger(ctx, cfg)
	if err != nil {
		return err
	}

	archive, cleanup, err := buildArchive(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sess := session.New(&doc)

	feedPort := listenPort
	if feedPort == "" {
		feedPort = cfg.Feed.Port
	}
	if feedPort != "" {
		server := startFeed(sess, feedPort)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	ui := tui.New(os.Stdin, os.Stdout, tiers, badge.DefaultCatalog())
	return ui.Run(ctx, sess, ledger, archive)
}

func loadDocument(ctx context.Context, cfg config.Config) (domain.QuizDocument, error) {
	if cfg.Quiz.URL == "" {
		log.Printf("no quiz url configured, using the built-in sample quiz")
		return memory.NewStaticQuizSource(sampleQuiz()).FetchQuiz(ctx)
	}

	client := &http.Client{Timeout: config.DurationOr(cfg.Quiz.Timeout, 15*time.Second)}
	repo := httpfetch.NewRepository(client, cfg.Quiz.URL, cfg.Quiz.ProxyURL,
		config.DurationOr(cfg.Quiz.CacheTTL, 10*time.Minute))
	return repo.FetchQuiz(ctx)
}

func buildLedger(ctx context.Context, cfg config.Config) (*badge.Ledger, error) {
	var store badge.KVStore = memory.NewKVStore()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = redisstore.NewKVStore(client)
	} else {
		log.Printf("no redis configured, badges last for this run only")
	}

	ledger := badge.NewLedger(store)
	if err := ledger.Load(ctx); err != nil {
		// Claims made this run still persist; only history is degraded.
		log.Printf("could not load badge history: %v", err)
	}
	return ledger, nil
}

func buildArchive(ctx context.Context, cfg config.Config) (tui.Archiver, func(), error) {
	if cfg.Postgres.URL == "" {
		return nil, func() {}, nil
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, nil, err
	}
	return pgstore.NewAttemptStore(pool), pool.Close, nil
}

func startFeed(sess *session.Session, port string) *http.Server {
	feed := transport.NewFeedHandler(sess)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/feed", feed.ServeWS)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("live feed listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("feed server: %v", err)
		}
	}()
	return server
}

// sampleQuiz keeps the client usable offline; swap in a real document URL
// via config for live content.
func sampleQuiz() domain.QuizDocument {
	return domain.QuizDocument{
		Title:              "Molecular Biology Quiz",
		Description:        "Test your knowledge of DNA, RNA, and molecular genetics!",
		Topic:              "Molecular Basis of Inheritance",
		DurationMinutes:    10,
		CorrectAnswerMarks: 4,
		NegativeMarks:      1,
		MaxMistakeCount:    9,
		Questions: []domain.Question{
			{
				ID:          1,
				Description: "Which molecule carries amino acids to the ribosome during translation?",
				Options: []domain.Option{
					{ID: 11, Description: "mRNA"},
					{ID: 12, Description: "tRNA", IsCorrect: true},
					{ID: 13, Description: "rRNA"},
					{ID: 14, Description: "DNA polymerase"},
				},
				DetailedSolution: "Transfer RNA (tRNA) reads codons on the mRNA and delivers the matching amino acid.",
			},
			{
				ID:          2,
				Description: "In which direction does DNA polymerase synthesize the new strand?",
				Options: []domain.Option{
					{ID: 21, Description: "3' to 5'"},
					{ID: 22, Description: "5' to 3'", IsCorrect: true},
					{ID: 23, Description: "Both directions"},
					{ID: 24, Description: "It varies by organism"},
				},
				DetailedSolution: "DNA polymerase only adds nucleotides to a free 3'-OH, so synthesis runs 5' to 3'.",
			},
			{
				ID:          3,
				Description: "Which base is found in RNA but not in DNA?",
				Options: []domain.Option{
					{ID: 31, Description: "Thymine"},
					{ID: 32, Description: "Guanine"},
					{ID: 33, Description: "Uracil", IsCorrect: true},
					{ID: 34, Description: "Cytosine"},
				},
				DetailedSolution: "RNA uses uracil in place of thymine.",
			},
		},
	}
}
