package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultWorkers   = 4
	DefaultChunkSize = 500
	DefaultFlavour   = "ua1"
	DefaultState     = "customer"
	DefaultCompany   = "PDFix"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the batch remediation pipeline
type Config struct {
	// Directory layout
	InputRoot   string
	OutputRoot  string
	ReportsRoot string

	// Remediation engine configuration
	EngineBinary string // vendor CLI used to apply the remediation profile
	ProfilePath  string // JSON parameter document passed to the engine

	// Validator configuration
	JarPath string // veraPDF greenfield-apps jar
	Flavour string // accessibility standard: "ua1" or "ua2"

	// Batch configuration
	Workers    int           // bounded worker count, independent of core count
	ChunkSize  int           // maximum jobs per chunk
	JobTimeout time.Duration // per-job wall clock limit, 0 disables

	// Report header labels
	State   string
	Company string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	root := "resources"
	return &Config{
		InputRoot:    filepath.Join(root, "input"),
		OutputRoot:   filepath.Join(root, "output"),
		ReportsRoot:  filepath.Join(root, "reports"),
		EngineBinary: "pdfix",
		ProfilePath:  filepath.Join(root, "configuration", "make-accessible.json"),
		JarPath:      filepath.Join("lib", "greenfield-apps-1.27.0-SNAPSHOT.jar"),
		Flavour:      DefaultFlavour,
		Workers:      DefaultWorkers,
		ChunkSize:    DefaultChunkSize,
		JobTimeout:   0,
		State:        DefaultState,
		Company:      DefaultCompany,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand roots so worker log lines carry unambiguous paths
	for _, p := range []*string{&cfg.InputRoot, &cfg.OutputRoot, &cfg.ReportsRoot} {
		if expanded, err := filepath.Abs(*p); err == nil {
			*p = expanded
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("PDFREM")
	viper.AutomaticEnv()

	viper.SetDefault("input", cfg.InputRoot)
	viper.SetDefault("output", cfg.OutputRoot)
	viper.SetDefault("reports", cfg.ReportsRoot)
	viper.SetDefault("engine", cfg.EngineBinary)
	viper.SetDefault("profile", cfg.ProfilePath)
	viper.SetDefault("jar", cfg.JarPath)
	viper.SetDefault("flavour", cfg.Flavour)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("chunksize", cfg.ChunkSize)
	viper.SetDefault("jobtimeout", cfg.JobTimeout)
	viper.SetDefault("state", cfg.State)
	viper.SetDefault("company", cfg.Company)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("input", cfg.InputRoot, "Root directory containing input PDF folders")
	pflag.String("output", cfg.OutputRoot, "Root directory for remediated PDFs")
	pflag.String("reports", cfg.ReportsRoot, "Root directory for validator reports and summaries")
	pflag.String("engine", cfg.EngineBinary, "Remediation engine binary")
	pflag.String("profile", cfg.ProfilePath, "Remediation profile (JSON parameter document)")
	pflag.String("jar", cfg.JarPath, "Path to the veraPDF validation jar")
	pflag.String("flavour", cfg.Flavour, "Accessibility standard flavour (ua1, ua2)")
	pflag.Int("workers", cfg.Workers, "Worker pool size")
	pflag.Int("chunksize", cfg.ChunkSize, "Maximum number of files per chunk")
	pflag.Duration("jobtimeout", cfg.JobTimeout, "Per-job timeout (0 disables)")
	pflag.String("state", cfg.State, "State/customer label shown in the HTML report header")
	pflag.String("company", cfg.Company, "Company label shown in the HTML report header")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"input", "output", "reports", "engine", "profile", "jar",
		"flavour", "workers", "chunksize", "jobtimeout", "state", "company",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.InputRoot = viper.GetString("input")
	cfg.OutputRoot = viper.GetString("output")
	cfg.ReportsRoot = viper.GetString("reports")
	cfg.EngineBinary = viper.GetString("engine")
	cfg.ProfilePath = viper.GetString("profile")
	cfg.JarPath = viper.GetString("jar")
	cfg.Flavour = viper.GetString("flavour")
	cfg.Workers = viper.GetInt("workers")
	cfg.ChunkSize = viper.GetInt("chunksize")
	cfg.JobTimeout = viper.GetDuration("jobtimeout")
	cfg.State = viper.GetString("state")
	cfg.Company = viper.GetString("company")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.InputRoot == "" {
		return errors.New("input root cannot be empty")
	}
	if c.OutputRoot == "" {
		return errors.New("output root cannot be empty")
	}
	if c.ReportsRoot == "" {
		return errors.New("reports root cannot be empty")
	}

	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.ChunkSize < 1 {
		return errors.New("chunk size must be at least 1")
	}
	if c.JobTimeout < 0 {
		return errors.New("job timeout cannot be negative")
	}

	if c.Flavour != "ua1" && c.Flavour != "ua2" {
		return fmt.Errorf("invalid flavour: %s (must be one of: ua1, ua2)", c.Flavour)
	}

	return nil
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{InputRoot: %s, OutputRoot: %s, ReportsRoot: %s, Workers: %d, ChunkSize: %d, JobTimeout: %s}",
		c.InputRoot, c.OutputRoot, c.ReportsRoot, c.Workers, c.ChunkSize, c.JobTimeout)
}
