package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/alltimesound/customer-service-agent/agent/agents/coordinator"
	"github.com/alltimesound/customer-service-agent/agent/agents/specialist"
	llmx "github.com/alltimesound/customer-service-agent/agent/llm"
	"github.com/alltimesound/customer-service-agent/agent/mediation"
	sessionx "github.com/alltimesound/customer-service-agent/agent/session"
	"github.com/alltimesound/customer-service-agent/agent/store"
	"github.com/alltimesound/customer-service-agent/agent/tool"
	configx "github.com/alltimesound/customer-service-agent/pkg/config"
	"github.com/alltimesound/customer-service-agent/pkg/langfuse"
	_ "github.com/alltimesound/customer-service-agent/pkg/logger/autoload"
)

type appConfig struct {
	SessionBackend string        `envconfig:"SESSION_BACKEND" default:"memory"` // memory or redis
	RateQuota      int           `envconfig:"RATE_QUOTA" default:"10"`
	RateWindow     time.Duration `envconfig:"RATE_WINDOW" default:"60s"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[appConfig]("APP")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	storeCfg := configx.MustNew[store.Config]("STORE")
	langfuseCfg := configx.MustNew[langfuse.Config]("LANGFUSE")

	recordStore, err := store.Open(*storeCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open record store")
	}
	defer recordStore.Close()

	// The sample deployment owns its schema outright: recreate and reseed
	// on every start.
	if err := recordStore.Reset(ctx); err != nil {
		log.Fatal().Err(err).Msg("reset record store")
	}

	sessions := newSessionStore(appCfg.SessionBackend)
	tracer := newTracer(ctx, *langfuseCfg)

	limiter := mediation.NewRateLimiter(appCfg.RateQuota, appCfg.RateWindow)
	pipeline, err := mediation.New(defaultProfileLoader(recordStore), limiter, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("build mediation pipeline")
	}

	catalog := tool.NewCatalog(recordStore)
	registry, err := specialist.NewRegistry(ctx, *llmCfg, catalog, pipeline, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("build agent registry")
	}

	service, err := coordinator.New(sessions, registry, pipeline, tracer, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("build coordinator")
	}

	runChat(ctx, service)
}

// defaultProfileLoader serializes the demo customer record for sessions
// that start without a bound profile.
func defaultProfileLoader(recordStore *store.Store) mediation.ProfileLoader {
	return func(ctx context.Context) (string, error) {
		record, err := recordStore.GetCustomerRecord(ctx, store.DefaultCustomerID)
		if err != nil {
			return "", err
		}
		encoded, err := json.Marshal(record)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

func newSessionStore(backend string) sessionx.Store {
	if strings.EqualFold(strings.TrimSpace(backend), "redis") {
		redisCfg := configx.MustNew[sessionx.UpstashRedisConfig]("UPSTASH_REDIS")
		redisStore, err := sessionx.NewUpstashRedisStore(*redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("build redis session store")
		}
		return redisStore
	}
	return sessionx.NewMemoryStore()
}

// newTracer wires Langfuse when keys are configured. An auth failure is
// logged and tracing is disabled; it never blocks startup.
func newTracer(ctx context.Context, cfg langfuse.Config) langfuse.Tracer {
	if !cfg.Enabled() {
		return langfuse.NopTracer{}
	}
	client, err := langfuse.NewClient(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("langfuse client disabled")
		return langfuse.NopTracer{}
	}
	if err := client.CheckAuth(ctx); err != nil {
		log.Warn().Err(err).Msg("langfuse auth failed, tracing disabled")
		return langfuse.NopTracer{}
	}
	return client
}

func runChat(ctx context.Context, service *coordinator.Service) {
	sessionID := uuid.NewString()
	fmt.Println("All Time Sound customer service. Type your message, or 'quit' to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "quit") || strings.EqualFold(text, "exit") {
			break
		}

		reply, err := service.HandleMessage(ctx, sessionID, text)
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			fmt.Println("Sorry, something went wrong handling that. Please try again.")
			continue
		}
		fmt.Println(reply)
	}
}
