// Package config loads analyzer settings from an optional YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all analyzer configuration.
type Config struct {
	InputPath    string `yaml:"input_path"`
	OutputDir    string `yaml:"output_dir"`
	HTMLReport   string `yaml:"html_report"`
	CSVReport    string `yaml:"csv_report"`
	Reports      string `yaml:"reports"` // comma-separated: table, summary, html, csv, json
	Threshold    int    `yaml:"alert_threshold"`
	LogYear      int    `yaml:"log_year"`      // 0 means the current year
	Notifier     string `yaml:"notifier"`      // log, ses, telegram, none
	Notify       Notify `yaml:"notify"`
	Outputs      string `yaml:"outputs"`       // comma-separated alert sinks
	ChartFormats string `yaml:"chart_formats"` // comma-separated: png, pdf, svg
	UploadS3URL  string `yaml:"upload_s3_url"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"` // text or json
}

// Notify holds the notifier settings.
type Notify struct {
	EmailFrom      string `yaml:"email_from"`
	EmailTo        string `yaml:"email_to"` // comma-separated
	TelegramToken  string `yaml:"telegram_bot_token"`
	TelegramChatID string `yaml:"telegram_chat_id"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		OutputDir:    "output",
		Reports:      "table,summary,html",
		Threshold:    5,
		Notifier:     "log",
		ChartFormats: "png,pdf,svg",
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load builds the configuration: defaults, then CONFIG_FILE if set, then
// environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return Config{}, err
	}

	if cfg.HTMLReport == "" {
		cfg.HTMLReport = filepath.Join(cfg.OutputDir, "report.html")
	}
	if cfg.CSVReport == "" {
		cfg.CSVReport = filepath.Join(cfg.OutputDir, "log_entries.csv")
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.InputPath, "INPUT_PATH")
	setString(&c.OutputDir, "OUTPUT_DIR")
	setString(&c.HTMLReport, "HTML_REPORT")
	setString(&c.CSVReport, "CSV_REPORT")
	setString(&c.Reports, "REPORTS")
	setString(&c.Notifier, "NOTIFIER")
	setString(&c.Notify.EmailFrom, "NOTIFY_EMAIL_FROM")
	setString(&c.Notify.EmailTo, "NOTIFY_EMAIL_TO")
	setString(&c.Notify.TelegramToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Notify.TelegramChatID, "TELEGRAM_CHAT_ID")
	setString(&c.Outputs, "OUTPUTS")
	setString(&c.ChartFormats, "CHART_FORMATS")
	setString(&c.UploadS3URL, "UPLOAD_S3_URL")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	if err := setInt(&c.Threshold, "ALERT_THRESHOLD"); err != nil {
		return err
	}
	if c.Threshold < 1 {
		return fmt.Errorf("invalid ALERT_THRESHOLD: must be at least 1, got %d", c.Threshold)
	}

	return setInt(&c.LogYear, "LOG_YEAR")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
