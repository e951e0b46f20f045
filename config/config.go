// Package config holds the ranking policy and run settings. Policy values come
// from Default() and an optional YAML file; run settings come from the
// environment, loaded through godotenv.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Scale is the (actual maximum, standard maximum) pair used to rescale one subject
type Scale struct {
	ActualMax   float64 `yaml:"actual_max"`
	StandardMax float64 `yaml:"standard_max"`
}

// Factor is the linear multiplier applied to positive marks.
func (s Scale) Factor() float64 {
	return s.StandardMax / s.ActualMax
}

// Rescaling configures the optional subject rescaling stage
type Rescaling struct {
	Enabled  bool             `yaml:"enabled"`
	Subjects map[string]Scale `yaml:"subjects"`
}

// Cutoffs are percentile cutoffs for each rank list
type Cutoffs struct {
	General  float64            `yaml:"general"`
	EWS      float64            `yaml:"ews"`
	PWD      float64            `yaml:"pwd"`
	Category map[string]float64 `yaml:"category"`
}

// Policy is everything the ranking engine needs to know
type Policy struct {
	Subjects          []string           `yaml:"subjects"`
	BestOf            int                `yaml:"best_of"`
	SMASTopN          int                `yaml:"smas_top_n"`
	SMASMultipliers   map[string]float64 `yaml:"smas_multipliers"`
	ReliefMultiplier  float64            `yaml:"relief_multiplier"`
	MinQualified      int                `yaml:"min_qualified_subjects"`
	Cutoffs           Cutoffs            `yaml:"cutoffs"`
	ReservedOrder     []string           `yaml:"reserved_categories"`
	ClampNegative     bool               `yaml:"clamp_negative"`
	PercentileDecimal int                `yaml:"percentile_decimals"`
	Rescaling         Rescaling          `yaml:"rescaling"`
}

// Config is the full configuration of one run
type Config struct {
	Policy Policy `yaml:"policy"`

	InputPath  string `yaml:"-"`
	OutputPath string `yaml:"-"`
	Format     string `yaml:"-"`

	DBDriver     string `yaml:"-"`
	DBDSN        string `yaml:"-"`
	SaveSnapshot bool   `yaml:"-"`
	Label        string `yaml:"-"`
}

// Default values.
const (
	DefaultInputPath  = "provisional.csv"
	DefaultOutputPath = "output_results.csv"
	DefaultFormat     = "csv"
	DefaultDBDriver   = "postgres"
)

// Configuration validation errors.
var (
	ErrNoSubjects           = errors.New("at least one subject column is required")
	ErrInvalidBestOf        = errors.New("best_of must be between 1 and the number of subjects")
	ErrInvalidTopN          = errors.New("smas_top_n must be positive")
	ErrMissingGENMultiplier = errors.New("smas_multipliers must define GEN")
	ErrInvalidRelief        = errors.New("relief_multiplier must be in (0, 1]")
	ErrInvalidMinQualified  = errors.New("min_qualified_subjects must be between 0 and the number of subjects")
	ErrInvalidFormat        = errors.New("format must be csv or json")
	ErrInvalidDBDriver      = errors.New("database driver must be postgres or sqlite")
	ErrUnknownRescaleKey    = errors.New("rescaling names a subject that is not configured")
)

// DefaultPolicy returns the NEST ranking rules.
func DefaultPolicy() Policy {
	return Policy{
		Subjects: []string{"Bio Marks", "Chem Marks", "Math Marks", "Phy Marks"},
		BestOf:   3,
		SMASTopN: 100,
		SMASMultipliers: map[string]float64{
			"GEN": 0.20,
			"OBC": 0.18,
			"SC":  0.10,
			"ST":  0.10,
		},
		ReliefMultiplier: 0.5,
		MinQualified:     3,
		Cutoffs: Cutoffs{
			General: 95,
			EWS:     95,
			PWD:     75,
			Category: map[string]float64{
				"OBC": 90,
				"SC":  75,
				"ST":  75,
			},
		},
		ReservedOrder:     []string{"OBC", "SC", "ST"},
		ClampNegative:     true,
		PercentileDecimal: 4,
	}
}

// Default returns a config with the default policy and run settings.
func Default() *Config {
	return &Config{
		Policy:     DefaultPolicy(),
		InputPath:  DefaultInputPath,
		OutputPath: DefaultOutputPath,
		Format:     DefaultFormat,
		DBDriver:   DefaultDBDriver,
	}
}

// Load builds a config from defaults, the optional policy file at path and the
// environment. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.LoadPolicyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadPolicyFile overlays the YAML policy file onto cfg.
func (c *Config) LoadPolicyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.InputPath = envOr("NEST_INPUT", c.InputPath)
	c.OutputPath = envOr("NEST_OUTPUT", c.OutputPath)
	c.Format = strings.ToLower(envOr("NEST_FORMAT", c.Format))
	c.DBDriver = strings.ToLower(envOr("RESULTS_DB_DRIVER", c.DBDriver))
	c.DBDSN = envOr("RESULTS_DB_DSN", c.DBDSN)

	if c.DBDSN == "" && c.DBDriver == "postgres" && os.Getenv("DB_HOST") != "" {
		c.DBDSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			os.Getenv("DB_HOST"),
			envOr("DB_PORT", "5432"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"))
	}

	c.Label = envOr("NEST_LABEL", c.Label)
	if v := os.Getenv("NEST_SAVE_SNAPSHOT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SaveSnapshot = b
		}
	}

	if v := os.Getenv("NEST_CLAMP_NEGATIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Policy.ClampNegative = b
		}
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	errs := c.Policy.validate()

	switch c.Format {
	case "csv", "json":
	default:
		errs = append(errs, ErrInvalidFormat)
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, ErrInvalidDBDriver)
	}
	return errors.Join(errs...)
}

func (p Policy) validate() []error {
	var errs []error
	n := len(p.Subjects)
	if n == 0 {
		errs = append(errs, ErrNoSubjects)
	}
	if p.BestOf < 1 || p.BestOf > n {
		errs = append(errs, ErrInvalidBestOf)
	}
	if p.SMASTopN <= 0 {
		errs = append(errs, ErrInvalidTopN)
	}
	if _, ok := p.SMASMultipliers["GEN"]; !ok {
		errs = append(errs, ErrMissingGENMultiplier)
	}
	if p.ReliefMultiplier <= 0 || p.ReliefMultiplier > 1 {
		errs = append(errs, ErrInvalidRelief)
	}
	if p.MinQualified < 0 || p.MinQualified > n {
		errs = append(errs, ErrInvalidMinQualified)
	}
	for _, code := range p.ReservedOrder {
		if _, ok := p.Cutoffs.Category[code]; !ok {
			errs = append(errs, fmt.Errorf("reserved category %s has no percentile cutoff", code))
		}
	}
	if p.Rescaling.Enabled {
		keys := make([]string, 0, len(p.Rescaling.Subjects))
		for subject := range p.Rescaling.Subjects {
			keys = append(keys, subject)
		}
		sort.Strings(keys)
		for _, subject := range keys {
			if !slices.Contains(p.Subjects, subject) {
				errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownRescaleKey, subject))
			}
			if p.Rescaling.Subjects[subject].ActualMax <= 0 {
				errs = append(errs, fmt.Errorf("rescaling for %s: actual_max must be positive", subject))
			}
		}
	}
	return errs
}

// IsReserved reports whether category has its own category rank list.
func (p Policy) IsReserved(category string) bool {
	for _, code := range p.ReservedOrder {
		if code == category {
			return true
		}
	}
	return false
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
