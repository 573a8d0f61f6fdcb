package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Database DatabaseConfig
	ExamDB   ExamDBConfig
	Encoder  EncoderConfig
	Face     FaceConfig
	Auth     AuthConfig
}

// DatabaseConfig configures the PostgreSQL faceprint store.
type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// ExamDBConfig configures the exam-center administrative MySQL database.
type ExamDBConfig struct {
	DSN string // MySQL DSN (e.g., examgate:examgate@tcp(mysql:3306)/examcenter?parseTime=true)
}

// EncoderConfig configures the face encoder sidecar.
type EncoderConfig struct {
	URL string // defaults to http://localhost:8000
}

type FaceConfig struct {
	Dim                 int     `yaml:"dim"`
	Tolerance           float64 `yaml:"tolerance"`
	SelectorLambda      float64 `yaml:"selector_lambda"`
	MinDetectionQuality float64 `yaml:"min_detection_quality"`
	MaxUploadBytes      int64   `yaml:"max_upload_bytes"`
	CascadePath         string  `yaml:"-"` // path to the pigo facefinder cascade
}

type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

type faceDefaults struct {
	Face FaceConfig `yaml:"face"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var defaults faceDefaults
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		// Embedded file, should never happen in practice.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	face := defaults.Face
	face.Dim = envInt("FACE_DIM", face.Dim)
	face.Tolerance = envFloat("FACE_TOLERANCE", face.Tolerance)
	face.SelectorLambda = envFloat("FACE_SELECTOR_LAMBDA", face.SelectorLambda)
	face.MinDetectionQuality = envFloat("FACE_MIN_DETECTION_QUALITY", face.MinDetectionQuality)
	face.MaxUploadBytes = int64(envInt("FACE_MAX_UPLOAD_BYTES", int(face.MaxUploadBytes)))
	face.CascadePath = envString("FACE_CASCADE_PATH", "models/facefinder")

	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		ExamDB: ExamDBConfig{
			DSN: os.Getenv("EXAM_DATABASE_DSN"),
		},
		Encoder: EncoderConfig{
			URL: envString("ENCODER_URL", "http://localhost:8000"),
		},
		Face: face,
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			JWTIssuer: envString("JWT_ISSUER", "examgate"),
		},
	}
}
