package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:   HTTPConfig{Port: 8080},
		Corpus: CorpusConfig{Path: "data/vessels.csv"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := validConfig()
		cfg.HTTP.Port = port
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for port %d", port)
		}
	}
}

func TestValidate_MissingCorpusPath(t *testing.T) {
	cfg := validConfig()
	cfg.Corpus.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing corpus path")
	}
}

func TestValidate_UnsupportedCorpusFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Corpus.Path = "data/vessels.xlsx"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported corpus format")
	}
}

func TestValidate_ThresholdAboveOne(t *testing.T) {
	cfg := validConfig()
	cfg.Search.SimilarityThreshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
}

func TestValidate_MaxTopKBelowDefault(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	cfg.Search.MaxTopK = cfg.Search.DefaultTopK - 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for max_top_k below default_top_k")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.WriteTimeoutSec != 10 || cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("http defaults = %+v", cfg.HTTP)
	}
	if cfg.Search.DefaultTopK != 10 {
		t.Errorf("default top_k = %d", cfg.Search.DefaultTopK)
	}
	if cfg.Search.MaxTopK != 100 {
		t.Errorf("default max_top_k = %d", cfg.Search.MaxTopK)
	}
	if cfg.Search.SimilarityThreshold != 0.3 {
		t.Errorf("default threshold = %v", cfg.Search.SimilarityThreshold)
	}
	if cfg.Cache.TTLHours != 24 {
		t.Errorf("default cache ttl = %d", cfg.Cache.TTLHours)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SHIPDEX_TEST_PORT", "9090")
	os.Unsetenv("SHIPDEX_TEST_MISSING")

	in := []byte("port: ${SHIPDEX_TEST_PORT}\npath: ${SHIPDEX_TEST_MISSING:-data/vessels.csv}\n")
	got := string(expandEnvVars(in))
	want := "port: 9090\npath: data/vessels.csv\n"
	if got != want {
		t.Errorf("expanded = %q, want %q", got, want)
	}
}
