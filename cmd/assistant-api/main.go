package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	httpadapter "github.com/Mo-nish/Invensis-Requiter/internal/adapters/http"
	"github.com/Mo-nish/Invensis-Requiter/internal/adapters/llm"
	firestorestore "github.com/Mo-nish/Invensis-Requiter/internal/adapters/storage/firestore"
	memstore "github.com/Mo-nish/Invensis-Requiter/internal/adapters/storage/memory"
	redisstore "github.com/Mo-nish/Invensis-Requiter/internal/adapters/storage/redis"
	"github.com/Mo-nish/Invensis-Requiter/internal/adapters/storage/supabase"
	"github.com/Mo-nish/Invensis-Requiter/internal/app/assistant"
	"github.com/Mo-nish/Invensis-Requiter/internal/app/catalog"
	"github.com/Mo-nish/Invensis-Requiter/internal/app/conversation"
	"github.com/Mo-nish/Invensis-Requiter/internal/app/notify"
	"github.com/Mo-nish/Invensis-Requiter/internal/config"
	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
	"github.com/Mo-nish/Invensis-Requiter/internal/metrics"
	"github.com/Mo-nish/Invensis-Requiter/internal/observability"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	observability.Init(observability.Config{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "assistant-api",
	})

	if err := run(cfg); err != nil {
		observability.Logger().Fatal().Err(err).Msg("assistant api stopped")
	}
}

func run(cfg *config.Config) error {
	log := observability.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	cat := catalog.Default()
	if cfg.RolesFile != "" {
		loaded, err := catalog.LoadFile(cfg.RolesFile)
		if err != nil {
			return fmt.Errorf("load roles: %w", err)
		}
		cat = loaded
		log.Info().Str("file", cfg.RolesFile).Msg("[CATALOG] using roles file")
	}
	return serve(ctx, cfg, cat, reg, m)
}

func serve(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, reg *prometheus.Registry, m *metrics.Metrics) error {
	log := observability.Logger()

	sessionStore, messageStore, closeStore, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	candidates, err := buildCandidates(cfg)
	if err != nil {
		return err
	}

	llmClient, err := buildLLM(ctx, cfg)
	if err != nil {
		return err
	}

	engine := assistant.NewEngine(cat, assistant.Options{
		LLM:        llmClient,
		Candidates: candidates,
	})

	conv := conversation.NewService(engine, sessionStore, messageStore, conversation.Options{
		MaxHistory:     cfg.MaxHistory,
		SessionTimeout: cfg.SessionTimeout,
		Metrics:        m,
	})
	notifySvc := notify.NewService(candidates, notify.Options{
		ReminderWindow: cfg.ReminderWindow,
		Metrics:        m,
	})

	handler := httpadapter.NewServer(conv, notifySvc, httpadapter.Options{
		Metrics:  m,
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go runCleanup(ctx, conv, cfg.CleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("mode", string(cfg.Mode)).Msg("assistant api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// runCleanup deletes expired sessions until ctx is done. A zero interval
// disables it; with redis the keys expire on their own anyway.
func runCleanup(ctx context.Context, conv *conversation.Service, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := conv.CleanupExpired(ctx); err != nil {
				observability.Logger().Warn().Err(err).Msg("session cleanup failed")
			}
		}
	}
}

func buildStores(ctx context.Context, cfg *config.Config) (domain.SessionStore, domain.MessageStore, func(), error) {
	log := observability.Logger()

	switch cfg.StorageBackend {
	case config.StorageFirestore:
		log.Info().Str("project", cfg.GCPProjectID).Msg("[STORE] using Firestore storage")
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init firestore store: %w", err)
		}
		// 1 store, implements 2 interfaces
		return fsStore, fsStore, func() { _ = fsStore.Close() }, nil

	case config.StorageRedis:
		log.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("[STORE] using Redis storage")
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		rs := redisstore.NewStore(client,
			redisstore.WithTTL(cfg.SessionTimeout),
			redisstore.WithTranscriptCap(cfg.MaxHistory),
		)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rs.Ping(pingCtx); err != nil {
			_ = rs.Close()
			return nil, nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return rs, rs, func() { _ = rs.Close() }, nil

	default:
		log.Info().Msg("[STORE] using in-memory storage")
		return memstore.NewSessionStore(), memstore.NewMessageStore(), func() {}, nil
	}
}

func buildCandidates(cfg *config.Config) (domain.CandidateDirectory, error) {
	log := observability.Logger()

	switch cfg.CandidateBackend {
	case config.CandidatesSupabase:
		log.Info().Msg("[CANDIDATES] using Supabase directory")
		dir, err := supabase.NewDirectory(supabase.Config{URL: cfg.SupabaseURL, APIKey: cfg.SupabaseKey})
		if err != nil {
			return nil, fmt.Errorf("init supabase directory: %w", err)
		}
		return dir, nil
	default:
		log.Info().Msg("[CANDIDATES] using in-memory demo directory")
		return memstore.NewCandidateStore(demoCandidates(time.Now())...), nil
	}
}

func buildLLM(ctx context.Context, cfg *config.Config) (domain.LLMClient, error) {
	log := observability.Logger()

	switch cfg.LLMProvider {
	case config.LLMMock:
		log.Info().Msg("[LLM] using MOCK LLM client")
		return llm.NewMockLLM(), nil
	case config.LLMVertex:
		log.Info().Str("model", cfg.ModelName).Msg("[LLM] using Vertex LLM client")
		c, err := llm.NewVertexClient(ctx, llm.VertexConfig{
			ProjectID: cfg.GCPProjectID,
			Location:  cfg.GCPLocation,
			ModelName: cfg.ModelName,
		})
		if err != nil {
			return nil, fmt.Errorf("init vertex client: %w", err)
		}
		return c, nil
	case config.LLMOpenAI:
		log.Info().Str("model", cfg.ModelName).Msg("[LLM] using OpenAI LLM client")
		c, err := llm.NewOpenAIClient(llm.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, ModelName: cfg.ModelName})
		if err != nil {
			return nil, fmt.Errorf("init openai client: %w", err)
		}
		return c, nil
	default:
		log.Info().Msg("[LLM] disabled, free-form questions use FAQ and contextual help")
		return nil, nil
	}
}

// demoCandidates seeds local mode so reminders and data replies have
// something to show.
func demoCandidates(now time.Time) []domain.Candidate {
	soon := now.Add(15 * time.Minute)
	later := now.Add(25 * time.Minute)
	return []domain.Candidate{
		{ID: "demo-1", Name: "Priya Sharma", Status: domain.CandidateStatusAssigned,
			ManagerEmail: "manager@invensis.net", AssignedBy: "hr@invensis.net",
			InterviewAt: &soon, CreatedAt: now.AddDate(0, 0, -3)},
		{ID: "demo-2", Name: "Tom Becker", Status: domain.CandidateStatusAssigned,
			ManagerEmail: "manager@invensis.net", AssignedBy: "hr@invensis.net",
			InterviewAt: &later, CreatedAt: now.AddDate(0, 0, -2)},
		{ID: "demo-3", Name: "Ana Lima", Status: domain.CandidateStatusPending,
			AssignedBy: "hr@invensis.net", CreatedAt: now.AddDate(0, 0, -7)},
	}
}
