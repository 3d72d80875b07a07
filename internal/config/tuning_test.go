package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	if cfg.OverlapThreshold == nil || *cfg.OverlapThreshold != 12 {
		t.Errorf("Expected OverlapThreshold 12, got %v", cfg.OverlapThreshold)
	}
	if cfg.MinSharedFingerprints == nil || *cfg.MinSharedFingerprints != 8 {
		t.Errorf("Expected MinSharedFingerprints 8, got %v", cfg.MinSharedFingerprints)
	}
	if cfg.ExhaustiveFallback == nil || *cfg.ExhaustiveFallback != true {
		t.Errorf("Expected ExhaustiveFallback true, got %v", cfg.ExhaustiveFallback)
	}
	if cfg.GetWorkers() != runtime.NumCPU() {
		t.Errorf("GetWorkers() = %d, want %d", cfg.GetWorkers(), runtime.NumCPU())
	}
}

func TestEmptyTuningConfig_Getters(t *testing.T) {
	cfg := EmptyTuningConfig()

	if cfg.GetOverlapThreshold() != 12 {
		t.Errorf("GetOverlapThreshold() = %d, want 12", cfg.GetOverlapThreshold())
	}
	if cfg.GetMinSharedFingerprints() != 8 {
		t.Errorf("GetMinSharedFingerprints() = %d, want 8", cfg.GetMinSharedFingerprints())
	}
	if cfg.GetDisablePruning() {
		t.Error("GetDisablePruning() = true, want false")
	}
	if !cfg.GetExhaustiveFallback() {
		t.Error("GetExhaustiveFallback() = false, want true")
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "overlap_threshold": 6,
  "exhaustive_fallback": false,
  "workers": 3
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("LoadTuningConfig failed: %v", err)
	}

	if cfg.GetOverlapThreshold() != 6 {
		t.Errorf("GetOverlapThreshold() = %d, want 6", cfg.GetOverlapThreshold())
	}
	if cfg.GetMinSharedFingerprints() != 8 {
		t.Errorf("omitted min_shared_fingerprints should default to 8, got %d", cfg.GetMinSharedFingerprints())
	}

	rc := cfg.ResolverConfig()
	if rc.OverlapThreshold != 6 || rc.Workers != 3 || !rc.DisableFallback || rc.DisablePruning {
		t.Errorf("ResolverConfig() = %+v", rc)
	}
}

func TestLoadTuningConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"wrong extension", write("cfg.yaml", "{}"), ".json extension"},
		{"missing file", filepath.Join(tmpDir, "absent.json"), "failed to stat"},
		{"bad json", write("bad.json", "{"), "failed to parse"},
		{"zero threshold", write("zero.json", `{"overlap_threshold": 0}`), "overlap_threshold"},
		{"zero fingerprints", write("fp.json", `{"min_shared_fingerprints": 0}`), "min_shared_fingerprints"},
		{"negative workers", write("workers.json", `{"workers": -2}`), "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTuningConfig(tt.path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadTuningConfig_TooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "huge.json")
	big := `{"workers": 1` + strings.Repeat(" ", 1024*1024+1) + `}`
	if err := os.WriteFile(p, []byte(big), 0644); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if _, err := LoadTuningConfig(p); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected size error, got %v", err)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	want := DefaultTuningConfig()

	if cfg.GetOverlapThreshold() != want.GetOverlapThreshold() {
		t.Errorf("defaults file overlap_threshold = %d, want %d", cfg.GetOverlapThreshold(), want.GetOverlapThreshold())
	}
	if cfg.GetMinSharedFingerprints() != want.GetMinSharedFingerprints() {
		t.Errorf("defaults file min_shared_fingerprints = %d, want %d", cfg.GetMinSharedFingerprints(), want.GetMinSharedFingerprints())
	}
	if cfg.GetExhaustiveFallback() != want.GetExhaustiveFallback() {
		t.Error("defaults file exhaustive_fallback differs from built-in default")
	}
}
