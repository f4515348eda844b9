package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	GMapsAPIKey string

	CenterLat   float64
	CenterLon   float64
	RadiusM     int
	HalfWidthM  float64
	HalfHeightM float64
	StepFactor  float64

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	SearchKeyword string

	RequestsPerSecond float64
	MaxRetries        int
	PageTokenDelayMs  int

	CSVOutputPath    string
	ReportOutputPath string
	MapHTMLPath      string
	MapPNGPath       string
	PlaceTypesPath   string

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		GMapsAPIKey: getEnv("GMAPS_API_KEY", ""),

		// Default search area matches the original survey: downtown
		// Salt Lake City, 500 m search radius, 5 km half extents.
		CenterLat:   getEnvFloat("CENTER_LAT", 40.7606586),
		CenterLon:   getEnvFloat("CENTER_LON", -111.8927191),
		RadiusM:     getEnvInt("SEARCH_RADIUS_M", 500),
		HalfWidthM:  getEnvFloat("GRID_HALF_WIDTH_M", 5000),
		HalfHeightM: getEnvFloat("GRID_HALF_HEIGHT_M", 5000),
		StepFactor:  getEnvFloat("GRID_STEP_FACTOR", 1.4),

		PostgresHost:     getEnv("POSTGRES_HOST", ""),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "mapper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "mapper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "places_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		SearchKeyword: getEnv("SEARCH_KEYWORD", "restaurant"),

		RequestsPerSecond: getEnvFloat("REQUESTS_PER_SECOND", 5),
		MaxRetries:        getEnvInt("MAX_RETRIES", 3),
		PageTokenDelayMs:  getEnvInt("PAGE_TOKEN_DELAY_MS", 2000),

		CSVOutputPath:    getEnv("CSV_OUTPUT_PATH", "./output/places.csv"),
		ReportOutputPath: getEnv("REPORT_OUTPUT_PATH", "./output/summary_stats.txt"),
		MapHTMLPath:      getEnv("MAP_HTML_PATH", "./output/grid.html"),
		MapPNGPath:       getEnv("MAP_PNG_PATH", "./output/grid.png"),
		PlaceTypesPath:   getEnv("PLACE_TYPES_PATH", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// UsePostgres reports whether a database host was configured. Without one
// the pipeline runs in-memory and writes files only.
func (c *Config) UsePostgres() bool {
	return c.PostgresHost != ""
}

// GridStepM is the grid spacing derived from the search radius. The
// factor stays below 2 so adjacent search circles overlap.
func (c *Config) GridStepM() float64 {
	return float64(c.RadiusM) * c.StepFactor
}

// defaultPlaceTypes is the category filter applied when no YAML list is
// configured. Matches the original survey's primary types.
var defaultPlaceTypes = []string{
	"restaurant",
	"meal_takeaway",
	"meal_delivery",
	"bakery",
	"cafe",
}

type placeTypesFile struct {
	IncludedTypes []string `yaml:"included_types"`
}

// LoadPlaceTypes returns the primary place types kept during cleaning,
// read from the configured YAML file when one is set.
func (c *Config) LoadPlaceTypes() ([]string, error) {
	if c.PlaceTypesPath == "" {
		return defaultPlaceTypes, nil
	}

	data, err := os.ReadFile(c.PlaceTypesPath)
	if err != nil {
		return nil, fmt.Errorf("config: read place types %q: %w", c.PlaceTypesPath, err)
	}

	var f placeTypesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse place types %q: %w", c.PlaceTypesPath, err)
	}
	if len(f.IncludedTypes) == 0 {
		return nil, fmt.Errorf("config: place types file %q lists no included_types", c.PlaceTypesPath)
	}
	return f.IncludedTypes, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}
