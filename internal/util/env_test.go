package util

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"DEBUG", "PORT", "STORE_ADAPTER", "SQLITE_PATH", "PARALLEL_RUNS", "SOFT_ACCEPT_THRESHOLD", "AWS_BUCKET"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	if cfg.Port != "8080" || cfg.StoreAdapter != StoreSQLite || cfg.SQLitePath != "data/reports.db" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Debug {
		t.Fatalf("expected debug off")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DEBUG", "true")
	t.Setenv("STORE_ADAPTER", StorePostgres)
	t.Setenv("PARALLEL_RUNS", "8")
	t.Setenv("SOFT_ACCEPT_THRESHOLD", "0.55")

	cfg := LoadConfig()
	if !cfg.Debug || cfg.StoreAdapter != StorePostgres || cfg.ParallelRuns != 8 || cfg.SoftAcceptThreshold != 0.55 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestGetEnvNumericInvalid(t *testing.T) {
	t.Setenv("OSINT_TEST_NUMBER", "many")
	if got := GetEnvNumeric("OSINT_TEST_NUMBER", 3); got != 3 {
		t.Fatalf("expected default for invalid value, got %v", got)
	}
	if got := GetEnvBool("OSINT_TEST_NUMBER", true); !got {
		t.Fatalf("expected default for invalid bool")
	}
}
