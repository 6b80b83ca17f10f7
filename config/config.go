package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// Config captures all command-line options required to run a scan.
type Config struct {
	IMAPHost           string
	IMAPPort           int
	IMAPUser           string
	IMAPPass           string
	UseTLS             bool
	InsecureSkipVerify bool
	Folder             string
	MboxPath           string
	BatchSize          int
	Limit              int
	HeadersOnly        bool
	OutputPath         string
	StateDir           string
	NoState            bool
	Top                int
	LogLevel           string
	LogDir             string
	IncludeSender      []string
	IncludeSubject     []string
	IncludeBody        []string
	ExcludeSender      []string
	ExcludeSubject     []string
	ExcludeBody        []string
}

// RegisterFlags attaches all CLI flags to the provided command.
func RegisterFlags(cmd *cobra.Command) error {
	defaultStateDir, err := defaultStateDir()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	flags.String("host", "", "IMAP server hostname")
	flags.Int("port", 993, "IMAP server port")
	flags.String("user", "", "IMAP username")
	flags.String("pass", "", "IMAP password (falls back to JUNK_EMAIL_PASS env var)")
	flags.Bool("use-tls", true, "Use TLS for the IMAP connection")
	flags.Bool("insecure-skip-verify", false, "Skip TLS certificate verification (not recommended)")
	flags.String("folder", "Junk", "Mailbox folder to scan")
	flags.String("mbox", "", "Scan a local .mbox file instead of an IMAP folder")
	flags.Int("batch-size", 100, "Number of messages fetched per IMAP batch")
	flags.Int("limit", 0, "Maximum number of messages to scan, newest first (0 = all)")
	flags.Bool("headers-only", false, "Scan only sender and subject, skipping message bodies (faster)")
	flags.StringP("output", "o", "", "Write the report to this file as well as the console")
	flags.String("state-dir", defaultStateDir, "Directory for persisted address counts")
	flags.Bool("no-state", false, "Do not load or save persisted address counts")
	flags.IntP("top", "t", 0, "Number of top addresses to display (0 = all)")
	flags.String("log-level", "info", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for log files (logs to stdout only when empty)")
	flags.StringArray("include-sender", nil, "Regex allow-list applied to sender fields (mutually exclusive with exclude flags)")
	flags.StringArray("include-subject", nil, "Regex allow-list applied to subject fields (mutually exclusive with exclude flags)")
	flags.StringArray("include-body", nil, "Regex allow-list applied to message bodies (mutually exclusive with exclude flags)")
	flags.StringArray("exclude-sender", nil, "Regex block-list applied to sender fields (mutually exclusive with include flags)")
	flags.StringArray("exclude-subject", nil, "Regex block-list applied to subject fields (mutually exclusive with include flags)")
	flags.StringArray("exclude-body", nil, "Regex block-list applied to message bodies (mutually exclusive with include flags)")

	return nil
}

// LoadConfig converts the parsed Cobra flags into a Config struct with validation.
func LoadConfig(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()

	imapHost, err := flags.GetString("host")
	if err != nil {
		return Config{}, err
	}
	imapPort, err := flags.GetInt("port")
	if err != nil {
		return Config{}, err
	}
	imapUser, err := flags.GetString("user")
	if err != nil {
		return Config{}, err
	}
	imapPass, err := flags.GetString("pass")
	if err != nil {
		return Config{}, err
	}
	useTLS, err := flags.GetBool("use-tls")
	if err != nil {
		return Config{}, err
	}
	insecureSkipVerify, err := flags.GetBool("insecure-skip-verify")
	if err != nil {
		return Config{}, err
	}
	folder, err := flags.GetString("folder")
	if err != nil {
		return Config{}, err
	}
	mboxPath, err := flags.GetString("mbox")
	if err != nil {
		return Config{}, err
	}
	batchSize, err := flags.GetInt("batch-size")
	if err != nil {
		return Config{}, err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return Config{}, err
	}
	headersOnly, err := flags.GetBool("headers-only")
	if err != nil {
		return Config{}, err
	}
	outputPath, err := flags.GetString("output")
	if err != nil {
		return Config{}, err
	}
	stateDir, err := flags.GetString("state-dir")
	if err != nil {
		return Config{}, err
	}
	noState, err := flags.GetBool("no-state")
	if err != nil {
		return Config{}, err
	}
	top, err := flags.GetInt("top")
	if err != nil {
		return Config{}, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return Config{}, err
	}
	logDir, err := flags.GetString("log-dir")
	if err != nil {
		return Config{}, err
	}
	includeSender, err := flags.GetStringArray("include-sender")
	if err != nil {
		return Config{}, err
	}
	includeSubject, err := flags.GetStringArray("include-subject")
	if err != nil {
		return Config{}, err
	}
	includeBody, err := flags.GetStringArray("include-body")
	if err != nil {
		return Config{}, err
	}
	excludeSender, err := flags.GetStringArray("exclude-sender")
	if err != nil {
		return Config{}, err
	}
	excludeSubject, err := flags.GetStringArray("exclude-subject")
	if err != nil {
		return Config{}, err
	}
	excludeBody, err := flags.GetStringArray("exclude-body")
	if err != nil {
		return Config{}, err
	}

	if imapPass == "" {
		imapPass = os.Getenv("JUNK_EMAIL_PASS")
	}

	if stateDir == "" {
		stateDir, err = defaultStateDir()
		if err != nil {
			return Config{}, err
		}
	}

	logLevel = strings.ToLower(logLevel)
	if logLevel == "warning" {
		logLevel = "warn"
	}

	cfg := Config{
		IMAPHost:           imapHost,
		IMAPPort:           imapPort,
		IMAPUser:           imapUser,
		IMAPPass:           imapPass,
		UseTLS:             useTLS,
		InsecureSkipVerify: insecureSkipVerify,
		Folder:             folder,
		MboxPath:           mboxPath,
		BatchSize:          batchSize,
		Limit:              limit,
		HeadersOnly:        headersOnly,
		OutputPath:         outputPath,
		StateDir:           filepath.Clean(stateDir),
		NoState:            noState,
		Top:                top,
		LogLevel:           logLevel,
		LogDir:             logDir,
		IncludeSender:      includeSender,
		IncludeSubject:     includeSubject,
		IncludeBody:        includeBody,
		ExcludeSender:      excludeSender,
		ExcludeSubject:     excludeSubject,
		ExcludeBody:        excludeBody,
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	if cfg.MboxPath == "" && cfg.IMAPHost == "" {
		return fmt.Errorf("either --host or --mbox is required")
	}
	if cfg.MboxPath != "" && cfg.IMAPHost != "" {
		return fmt.Errorf("--host and --mbox are mutually exclusive")
	}

	if cfg.MboxPath == "" {
		if cfg.IMAPUser == "" {
			return fmt.Errorf("--user is required")
		}
		if cfg.IMAPPass == "" {
			return fmt.Errorf("IMAP password must be provided via --pass or JUNK_EMAIL_PASS env var")
		}
		if cfg.IMAPPort <= 0 || cfg.IMAPPort > 65535 {
			return fmt.Errorf("--port must be between 1 and 65535")
		}
	}

	if cfg.BatchSize <= 0 {
		return fmt.Errorf("--batch-size must be positive")
	}
	if cfg.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	if cfg.MboxPath != "" && cfg.Limit > 0 {
		return fmt.Errorf("--limit only applies to IMAP scans")
	}
	if cfg.Top < 0 {
		return fmt.Errorf("--top must not be negative")
	}

	includeActive := len(cfg.IncludeSender) > 0 || len(cfg.IncludeSubject) > 0 || len(cfg.IncludeBody) > 0
	excludeActive := len(cfg.ExcludeSender) > 0 || len(cfg.ExcludeSubject) > 0 || len(cfg.ExcludeBody) > 0
	if includeActive && excludeActive {
		return fmt.Errorf("include and exclude flags are mutually exclusive")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %s", cfg.LogLevel)
	}

	return nil
}

func defaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".junk-email", "state"), nil
}
