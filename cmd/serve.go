package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/config"
	"github.com/examgate/examgate/internal/database/mysql"
	"github.com/examgate/examgate/internal/database/postgres"
	"github.com/examgate/examgate/internal/faceid"
	"github.com/examgate/examgate/internal/verify"
	"github.com/examgate/examgate/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the examgate API server. The server exposes identity
verification, faceprint enrollment and similarity search, plus the
student, device and alert endpoints of the exam-center administration.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// newExtractor builds the face pipeline from config: pigo cascade for
// detection, the encoder sidecar for embeddings.
func newExtractor(cfg *config.Config) (*faceid.Extractor, error) {
	cascade, err := faceid.LoadCascade(cfg.Face.CascadePath)
	if err != nil {
		return nil, err
	}
	detector, err := faceid.NewPigoDetector(cascade, cfg.Face.MinDetectionQuality)
	if err != nil {
		return nil, err
	}
	encoder := faceid.NewHTTPEncoder(cfg.Encoder.URL)

	return faceid.NewExtractor(detector, encoder, faceid.Params{
		Dim:            cfg.Face.Dim,
		SelectorLambda: cfg.Face.SelectorLambda,
		MaxUploadBytes: cfg.Face.MaxUploadBytes,
	}), nil
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (string, int) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return host, port
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	if cfg.ExamDB.DSN == "" {
		return errors.New("EXAM_DATABASE_DSN environment variable is required")
	}

	fmt.Printf("Connecting to faceprint database...\n")
	pgPool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pgPool.Close()

	fmt.Printf("Connecting to exam-center database...\n")
	examPool, err := mysql.NewPool(cfg.ExamDB.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to exam database: %w", err)
	}
	defer examPool.Close()

	extractor, err := newExtractor(cfg)
	if err != nil {
		return fmt.Errorf("failed to build face pipeline: %w", err)
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	if err != nil {
		return errors.New("JWT_SECRET environment variable is required")
	}

	faceprints := postgres.NewFaceprintRepository(pgPool)
	students := mysql.NewStudentRepository(examPool)

	deps := web.Deps{
		Verify:     verify.NewService(students, faceprints, extractor, cfg.Face.Tolerance),
		Faceprints: faceprints,
		Students:   students,
		Devices:    mysql.NewDeviceRepository(examPool),
		Alerts:     mysql.NewAlertRepository(examPool),
		Users:      mysql.NewUserRepository(examPool),
		Tokens:     tokens,
		MaxUpload:  cfg.Face.MaxUploadBytes,
	}

	host, port := resolveServeHostPort(cmd)
	server := web.NewServer(host, port, deps)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting examgate API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
