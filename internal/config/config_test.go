package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 0}}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_SimilarityThresholdAboveOne(t *testing.T) {
	cfg := validConfig()
	cfg.Search.SimilarityThreshold = 1.5

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for similarity threshold above 1")
	}
}

func TestValidate_ExactMatchCapOutOfRange(t *testing.T) {
	for _, v := range []float64{-0.1, 1.1} {
		cfg := validConfig()
		cfg.Search.ExactMatchCap = v

		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for exact_match_cap=%g", v)
		}
	}
}

func TestValidate_EmbeddingKeyWithoutModel(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.APIKey = "key"
	cfg.Embedding.Model = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for embedding api_key without model")
	}
}

func TestValidate_LLMKeyWithoutModel(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.APIKey = "key"
	cfg.LLM.Model = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for llm api_key without model")
	}
}

func TestValidate_NoProvidersIsValid(t *testing.T) {
	cfg := validConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("providers are optional, got error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Redis.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Redis.ReadinessTimeout)
	}
	if cfg.Cache.MaxSize != 1000 {
		t.Errorf("expected MaxSize=1000, got %d", cfg.Cache.MaxSize)
	}
	if cfg.Cache.DefaultTTLSec != 300 {
		t.Errorf("expected DefaultTTLSec=300, got %d", cfg.Cache.DefaultTTLSec)
	}
	if cfg.Cache.SweepIntervalSec != 60 {
		t.Errorf("expected SweepIntervalSec=60, got %d", cfg.Cache.SweepIntervalSec)
	}
	if cfg.Search.MaxResults != 10 {
		t.Errorf("expected MaxResults=10, got %d", cfg.Search.MaxResults)
	}
	if cfg.Search.SimilarityThreshold != 0.1 {
		t.Errorf("expected SimilarityThreshold=0.1, got %g", cfg.Search.SimilarityThreshold)
	}
	if cfg.Search.LLMConfidenceThreshold != 0.7 {
		t.Errorf("expected LLMConfidenceThreshold=0.7, got %g", cfg.Search.LLMConfidenceThreshold)
	}
	if cfg.Search.ExternalTimeoutSec != 5 {
		t.Errorf("expected ExternalTimeoutSec=5, got %d", cfg.Search.ExternalTimeoutSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Cache:  CacheConfig{MaxSize: 50, DefaultTTLSec: 30, SweepIntervalSec: 15},
		Search: SearchConfig{MaxResults: 25, SimilarityThreshold: 0.3},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Cache.MaxSize != 50 {
		t.Errorf("expected MaxSize=50, got %d", cfg.Cache.MaxSize)
	}
	if cfg.Search.MaxResults != 25 {
		t.Errorf("expected MaxResults=25, got %d", cfg.Search.MaxResults)
	}
	if cfg.Search.SimilarityThreshold != 0.3 {
		t.Errorf("expected SimilarityThreshold=0.3, got %g", cfg.Search.SimilarityThreshold)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("PRODSEARCH_TEST_KEY", "secret")

	in := []byte("api_key: ${PRODSEARCH_TEST_KEY}\nmodel: ${PRODSEARCH_TEST_MODEL:-text-embedding-3-small}\n")
	out := string(expandEnvVars(in))

	want := "api_key: secret\nmodel: text-embedding-3-small\n"
	if out != want {
		t.Errorf("expanded:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
http:
  port: 9090
search:
  max_results: 5
embedding:
  api_key: ${PRODSEARCH_TEST_EMB_KEY:-}
`
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Search.MaxResults != 5 {
		t.Errorf("max_results = %d, want 5", cfg.Search.MaxResults)
	}
	if cfg.Embedding.APIKey != "" {
		t.Errorf("api_key = %q, want empty", cfg.Embedding.APIKey)
	}
	// defaults applied on top of the file
	if cfg.Cache.MaxSize != 1000 {
		t.Errorf("cache max_size default = %d, want 1000", cfg.Cache.MaxSize)
	}
}
