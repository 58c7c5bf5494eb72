package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sessiond/internal/audit"
	auditrepo "sessiond/internal/audit/repository"
	"sessiond/internal/clock"
	"sessiond/internal/config"
	"sessiond/internal/db"
	"sessiond/internal/ident"
	permengine "sessiond/internal/permission/engine"
	permrepo "sessiond/internal/permission/repository"
	permservice "sessiond/internal/permission/service"
	"sessiond/internal/security"
	"sessiond/internal/server"
	sessionrepo "sessiond/internal/session/repository"
	sessionservice "sessiond/internal/session/service"
	"sessiond/internal/telemetry"
	otelsetup "sessiond/internal/telemetry/otel"
	"sessiond/internal/telemetry/producer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, "sessiond", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	issuer, closers, err := assemble(ctx, cfg)
	if err != nil {
		log.Fatalf("assemble: %v", err)
	}

	srv, err := server.New(issuer)
	if err != nil {
		log.Fatalf("server: %v", err)
	}
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Routes(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight async event emits drain before tearing down exporters.
	time.Sleep(telemetry.ShutdownDrainDuration)
	for _, closer := range closers {
		closer()
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}

// assemble wires concrete implementations into the session issuer. All
// collaborators are chosen here; nothing below this layer reads config.
func assemble(ctx context.Context, cfg *config.Config) (*sessionservice.SessionIssuer, []func(), error) {
	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		return nil, nil, err
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		return nil, nil, err
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), clock.System())

	if cfg.DatabaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL must be set")
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){pool.Close}

	evaluator, err := permengine.NewOPAEvaluator()
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	permissions := permservice.NewService(permrepo.NewPostgresRepository(pool), evaluator)

	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(pool), server.ClientIP)

	var emitter telemetry.EventEmitter
	if kafkaProducer := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.KafkaTopic); kafkaProducer != nil {
		emitter = kafkaProducer
		closers = append(closers, func() {
			if err := kafkaProducer.Close(); err != nil {
				log.Printf("kafka close: %v", err)
			}
		})
	}

	issuer := sessionservice.NewSessionIssuer(
		sessionrepo.NewPostgresRepository(pool),
		permissions,
		security.NewBcryptHasher(cfg.BcryptCost),
		security.NewSecretSource(),
		tokens,
		clock.System(),
		ident.UUID(),
		cfg.SessionSecretBits,
		auditLogger,
		emitter,
	)
	return issuer, closers, nil
}
