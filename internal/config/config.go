package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// OracleConfig selects and tunes the reasoning backend used for decision
// tree extraction. An empty or "none" provider runs the pipeline on the
// pattern extractor alone.
type OracleConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxConcurrent  int    `toml:"max_concurrent"`
}

type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type NavigationConfig struct {
	MinTOCEntries int `toml:"min_toc_entries"`
	MaxHeadingLen int `toml:"max_heading_len"`
}

type ChunkingConfig struct {
	MaxTokens     int `toml:"max_tokens"`
	TargetTokens  int `toml:"target_tokens"`
	MinTokens     int `toml:"min_tokens"`
	OverlapTokens int `toml:"overlap_tokens"`
}

type PipelineConfig struct {
	AutoFix bool `toml:"auto_fix"`
}

// PromptsConfig carries fmt.Sprintf templates; see DefaultDecisionPrompt
// for the placeholder order.
type PromptsConfig struct {
	Decision string `toml:"decision"`
}

type Config struct {
	Oracle     OracleConfig     `toml:"oracle"`
	Neo4j      Neo4jConfig      `toml:"neo4j"`
	Navigation NavigationConfig `toml:"navigation"`
	Chunking   ChunkingConfig   `toml:"chunking"`
	Pipeline   PipelineConfig   `toml:"pipeline"`
	Prompts    PromptsConfig    `toml:"prompts"`
}

// DefaultDecisionPrompt is the built-in extraction prompt. Placeholders, in
// order: section title, navigation path, allowed outcome vocabulary,
// section text.
const DefaultDecisionPrompt = `You are reading one section of a mortgage lending guideline.

Section: %s
Location: %s

Extract the decision logic of this section as a JSON object:
{"condition": "<root condition being evaluated>",
 "branches": [{"condition": "<branch condition>",
               "outcome": "<one of: %s>",
               "description": "<what happens>",
               "branches": []}]}

A branch either carries an outcome or nests further branches, never both.
Use only the allowed outcomes. Respond with the JSON object only.

Section text:
%s`

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Oracle: OracleConfig{
			TimeoutSeconds: 30,
			MaxConcurrent:  4,
		},
		Neo4j: Neo4jConfig{
			User: "neo4j",
		},
		Pipeline: PipelineConfig{
			AutoFix: true,
		},
		Prompts: PromptsConfig{
			Decision: DefaultDecisionPrompt,
		},
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if cfg.Prompts.Decision == "" {
		cfg.Prompts.Decision = DefaultDecisionPrompt
	}
	return cfg, nil
}

// ApplyEnv lets environment variables override the file, which is how
// deployments inject credentials.
func (c *Config) ApplyEnv() {
	setString(&c.Oracle.Provider, "ORACLE_PROVIDER")
	setString(&c.Oracle.Model, "ORACLE_MODEL")
	setString(&c.Oracle.APIKey, "ORACLE_API_KEY")
	setString(&c.Oracle.BaseURL, "ORACLE_BASE_URL")
	setInt(&c.Oracle.TimeoutSeconds, "ORACLE_TIMEOUT_SECONDS")
	setInt(&c.Oracle.MaxConcurrent, "ORACLE_MAX_CONCURRENT")

	setString(&c.Neo4j.URI, "NEO4J_URI")
	setString(&c.Neo4j.User, "NEO4J_USER")
	setString(&c.Neo4j.Password, "NEO4J_PASSWORD")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
