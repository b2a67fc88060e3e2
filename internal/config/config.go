// Package config loads optional JSON defaults for the wifiprep commands.
// Every key is optional; command-line flags take precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Input formats accepted by input_format and --format.
const (
	FormatAuto  = "auto"
	FormatLines = "lines"
	FormatPcap  = "pcap"
)

// PrepConfig holds optional defaults. Nil fields fall back to built-in values.
type PrepConfig struct {
	DefaultLabel      *string `json:"default_label,omitempty"`
	InputFormat       *string `json:"input_format,omitempty"` // auto, lines or pcap
	NormalizationFile *string `json:"normalization_file,omitempty"`
	SerialBaud        *int    `json:"serial_baud,omitempty"`
	CatalogPath       *string `json:"catalog_path,omitempty"`
}

func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// Empty returns a config with every field unset.
func Empty() *PrepConfig {
	return &PrepConfig{}
}

// Load reads a JSON config file. The file must have a .json extension and
// be at most 1 MiB.
func Load(path string) (*PrepConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that are set.
func (c *PrepConfig) Validate() error {
	if c.DefaultLabel != nil && strings.TrimSpace(*c.DefaultLabel) == "" {
		return fmt.Errorf("default_label must not be empty")
	}

	if c.InputFormat != nil {
		if err := ValidateFormat(*c.InputFormat); err != nil {
			return fmt.Errorf("input_format: %w", err)
		}
	}

	if c.NormalizationFile != nil && *c.NormalizationFile == "" {
		return fmt.Errorf("normalization_file must not be empty")
	}

	if c.SerialBaud != nil && *c.SerialBaud <= 0 {
		return fmt.Errorf("serial_baud must be positive, got %d", *c.SerialBaud)
	}

	return nil
}

// ValidateFormat accepts auto, lines or pcap.
func ValidateFormat(f string) error {
	switch f {
	case FormatAuto, FormatLines, FormatPcap:
		return nil
	default:
		return fmt.Errorf("unknown input format %q (want auto, lines or pcap)", f)
	}
}

// GetDefaultLabel returns the label applied to unlabeled entries.
func (c *PrepConfig) GetDefaultLabel() string {
	if c.DefaultLabel == nil {
		return "normal"
	}
	return *c.DefaultLabel
}

// GetInputFormat returns the capture format selector.
func (c *PrepConfig) GetInputFormat() string {
	if c.InputFormat == nil {
		return FormatAuto
	}
	return *c.InputFormat
}

// GetNormalizationFile returns the artifact name written into the dataset
// directory.
func (c *PrepConfig) GetNormalizationFile() string {
	if c.NormalizationFile == nil {
		return "normalization.json"
	}
	return *c.NormalizationFile
}

// GetSerialBaud returns the device console speed.
func (c *PrepConfig) GetSerialBaud() int {
	if c.SerialBaud == nil {
		return 115200
	}
	return *c.SerialBaud
}

// GetCatalogPath returns the sqlite catalog path, or "" when disabled.
func (c *PrepConfig) GetCatalogPath() string {
	if c.CatalogPath == nil {
		return ""
	}
	return *c.CatalogPath
}

// ResolveFormat turns auto into a concrete format from the file extension.
func ResolveFormat(format, path string) string {
	if format != FormatAuto && format != "" {
		return format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pcap", ".cap":
		return FormatPcap
	default:
		return FormatLines
	}
}
