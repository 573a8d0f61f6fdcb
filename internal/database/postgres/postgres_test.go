//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/examgate/examgate/internal/config"
	"github.com/examgate/examgate/internal/database"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

// testEmbedding builds a 128-dimensional embedding with a recognizable ramp.
func testEmbedding(offset float32) []float32 {
	v := make([]float32, 128)
	for i := range v {
		v[i] = (float32(i) + offset) / 128.0
	}
	return v
}

func TestFaceprintRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewFaceprintRepository(pool)

	t.Run("InsertAndGet", func(t *testing.T) {
		want := testEmbedding(0)

		id, err := repo.Insert(ctx, "S-1001", "engineering", want)
		if err != nil {
			t.Fatalf("Failed to insert faceprint: %v", err)
		}
		if id == 0 {
			t.Error("Expected non-zero id")
		}

		got, err := repo.GetByStudent(ctx, "S-1001")
		if err != nil {
			t.Fatalf("Failed to get faceprint: %v", err)
		}
		if got.StudentID != "S-1001" {
			t.Errorf("Expected StudentID 'S-1001', got '%s'", got.StudentID)
		}
		if got.College != "engineering" {
			t.Errorf("Expected College 'engineering', got '%s'", got.College)
		}
		if len(got.Embedding) != 128 {
			t.Fatalf("Expected 128 dimensions, got %d", len(got.Embedding))
		}
		// Vectors must round-trip unchanged.
		for i := range want {
			if got.Embedding[i] != want[i] {
				t.Fatalf("Embedding[%d] = %v, want %v", i, got.Embedding[i], want[i])
			}
		}
	})

	t.Run("DuplicateInsert", func(t *testing.T) {
		_, err := repo.Insert(ctx, "S-1001", "engineering", testEmbedding(1))
		if !errors.Is(err, database.ErrDuplicate) {
			t.Errorf("Expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("UpdateVector", func(t *testing.T) {
		want := testEmbedding(5)
		if err := repo.UpdateVector(ctx, "S-1001", want); err != nil {
			t.Fatalf("Failed to update vector: %v", err)
		}

		got, err := repo.GetByStudent(ctx, "S-1001")
		if err != nil {
			t.Fatal(err)
		}
		if got.Embedding[0] != want[0] {
			t.Errorf("Embedding[0] = %v, want %v after update", got.Embedding[0], want[0])
		}

		err = repo.UpdateVector(ctx, "nonexistent", want)
		if !errors.Is(err, database.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := repo.GetByStudent(ctx, "nonexistent")
		if !errors.Is(err, database.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SearchSimilar", func(t *testing.T) {
		// Seed students at increasing distance from the query vector.
		query := make([]float32, 128)
		for i, d := range []float64{0.1, 0.5, 0.9} {
			v := make([]float32, 128)
			v[0] = float32(d)
			if _, err := repo.Insert(ctx, fmt.Sprintf("S-200%d", i), "medicine", v); err != nil {
				t.Fatalf("Failed to seed faceprint: %v", err)
			}
		}

		matches, err := repo.SearchSimilar(ctx, query, 0.6, 10, "medicine")
		if err != nil {
			t.Fatalf("Failed to search: %v", err)
		}
		if len(matches) != 2 {
			t.Fatalf("Expected 2 matches within 0.6, got %d", len(matches))
		}
		if matches[0].StudentID != "S-2000" {
			t.Errorf("Expected closest match S-2000, got %s", matches[0].StudentID)
		}
		if matches[0].Distance > matches[1].Distance {
			t.Error("Matches not ordered by ascending distance")
		}
		if matches[0].Similarity < matches[1].Similarity {
			t.Error("Similarity not descending")
		}

		// College filter excludes the other partition entirely.
		matches, err = repo.SearchSimilar(ctx, query, 0.6, 10, "law")
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) != 0 {
			t.Errorf("Expected 0 matches in 'law', got %d", len(matches))
		}
	})

	t.Run("List", func(t *testing.T) {
		prints, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(prints) != 4 {
			t.Errorf("Expected 4 faceprints, got %d", len(prints))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete(ctx, "S-1001"); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}

		_, err := repo.GetByStudent(ctx, "S-1001")
		if !errors.Is(err, database.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}

		err = repo.Delete(ctx, "S-1001")
		if !errors.Is(err, database.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}
