package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/examgate/examgate/internal/config"
	"github.com/examgate/examgate/internal/database"
	"github.com/examgate/examgate/internal/database/postgres"
	"github.com/examgate/examgate/internal/faceid"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Bulk-enroll student faceprints from a photo directory",
	Long: `Enroll faceprints for every photo in a directory. Each file must be
named <student_id>.<ext> with a png/jpg/jpeg extension. Files that fail
validation or face detection are reported and skipped; the run continues.`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("dir", "", "Directory with <student_id>.<ext> photos (required)")
	enrollCmd.Flags().String("college", "", "College partition for the enrolled faceprints")
	enrollCmd.Flags().Bool("update", false, "Replace existing faceprints instead of failing on duplicates")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	dir := mustGetString(cmd, "dir")
	if dir == "" {
		return errors.New("--dir is required")
	}
	college := mustGetString(cmd, "college")
	update := mustGetBool(cmd, "update")

	cfg := config.Load()
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	extractor, err := newExtractor(cfg)
	if err != nil {
		return fmt.Errorf("failed to build face pipeline: %w", err)
	}
	faceprints := postgres.NewFaceprintRepository(pool)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading photo directory: %w", err)
	}

	var photos []string
	for _, e := range entries {
		if !e.IsDir() && faceid.AllowedExtension(e.Name()) {
			photos = append(photos, e.Name())
		}
	}
	if len(photos) == 0 {
		fmt.Println("No png/jpg/jpeg photos found, nothing to enroll")
		return nil
	}

	fmt.Printf("Photos to enroll: %d\n\n", len(photos))

	bar := progressbar.NewOptions(len(photos),
		progressbar.OptionSetDescription("Enrolling faceprints"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	ctx := context.Background()
	var enrolled, updated, failed int
	var failures []string

	for _, name := range photos {
		studentID := strings.TrimSuffix(name, filepath.Ext(name))
		path := filepath.Join(dir, name)

		vec, err := extractor.Extract(ctx, path)
		if err != nil {
			failed++
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			bar.Add(1)
			continue
		}

		_, err = faceprints.Insert(ctx, studentID, college, vec)
		if errors.Is(err, database.ErrDuplicate) && update {
			err = faceprints.UpdateVector(ctx, studentID, vec)
			if err == nil {
				updated++
				bar.Add(1)
				continue
			}
		}
		if err != nil {
			failed++
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			bar.Add(1)
			continue
		}

		enrolled++
		bar.Add(1)
	}

	fmt.Printf("\n\nEnrolled: %d, updated: %d, failed: %d\n", enrolled, updated, failed)
	for _, f := range failures {
		fmt.Printf("  %s\n", f)
	}
	if failed > 0 {
		return fmt.Errorf("%d photo(s) failed to enroll", failed)
	}
	return nil
}
