package scenario

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinScenarios(t *testing.T) {
	builtin := Builtin()

	if len(builtin) != 5 {
		t.Fatalf("Expected 5 builtin scenarios, got %d", len(builtin))
	}

	for _, s := range builtin {
		if err := s.Validate(); err != nil {
			t.Errorf("Builtin scenario %q failed validation: %v", s.Name, err)
		}
	}

	// small_files is the canonical first scenario
	if builtin[0].Name != "small_files" || builtin[0].Files != 1000 {
		t.Errorf("Expected small_files with 1000 files first, got %q with %d", builtin[0].Name, builtin[0].Files)
	}
}

func TestQuickScenarios(t *testing.T) {
	quick := Quick()

	if len(quick) != 1 {
		t.Fatalf("Expected 1 quick scenario, got %d", len(quick))
	}
	if quick[0].Name != "small_files" {
		t.Errorf("Expected quick scenario small_files, got %q", quick[0].Name)
	}
	if quick[0].Files != 100 || quick[0].Dirs != 5 {
		t.Errorf("Expected 100 files in 5 dirs, got %d files in %d dirs", quick[0].Files, quick[0].Dirs)
	}
}

func TestByName(t *testing.T) {
	s, ok := ByName("deep_dirs")
	if !ok {
		t.Fatal("ByName should find deep_dirs")
	}
	if s.Depth != 10 {
		t.Errorf("Expected deep_dirs depth 10, got %d", s.Depth)
	}

	if _, ok := ByName("no_such_scenario"); ok {
		t.Error("ByName should not find no_such_scenario")
	}
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "scenario_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	path := filepath.Join(tempDir, "minimal.yaml")
	content := `scenarios:
  - name: minimal
    files: 10
  - name: flat
    files: 10
    dirs: 0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write scenario file: %v", err)
	}

	scenarios, err := LoadFile(path)
	if err != nil {
		t.Fatalf("Failed to load scenario file: %v", err)
	}

	minimal := scenarios[0]
	if minimal.SizeKB != DefaultSizeKB {
		t.Errorf("Expected SizeKB default %d, got %d", DefaultSizeKB, minimal.SizeKB)
	}
	if minimal.Dirs != DefaultDirs {
		t.Errorf("Expected Dirs default %d, got %d", DefaultDirs, minimal.Dirs)
	}
	if minimal.Depth != DefaultDepth {
		t.Errorf("Expected Depth default %d, got %d", DefaultDepth, minimal.Depth)
	}
	if minimal.LargeSizeKB != DefaultLargeSizeKB {
		t.Errorf("Expected LargeSizeKB default %d, got %d", DefaultLargeSizeKB, minimal.LargeSizeKB)
	}
	if minimal.LargeFiles != 0 {
		t.Errorf("Expected 0 large files, got %d", minimal.LargeFiles)
	}

	// An explicit zero is not replaced by the default
	if scenarios[1].Dirs != 0 {
		t.Errorf("Explicit dirs: 0 should survive, got %d", scenarios[1].Dirs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		scenario  Scenario
		wantError bool
	}{
		{
			name:      "valid scenario",
			scenario:  Scenario{Name: "ok", Files: 1},
			wantError: false,
		},
		{
			name:      "missing name",
			scenario:  Scenario{Files: 10},
			wantError: true,
		},
		{
			name:      "zero files",
			scenario:  Scenario{Name: "empty", Files: 0},
			wantError: true,
		},
		{
			name:      "negative files",
			scenario:  Scenario{Name: "neg", Files: -1},
			wantError: true,
		},
		{
			name:      "negative dirs",
			scenario:  Scenario{Name: "neg_dirs", Files: 10, Dirs: -1},
			wantError: true,
		},
		{
			name:      "negative large size",
			scenario:  Scenario{Name: "neg_large", Files: 10, LargeSizeKB: -5},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scenario.Validate()
			if tt.wantError && err == nil {
				t.Error("Validate() expected error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "scenario_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	path := filepath.Join(tempDir, "scenarios.yaml")
	content := `scenarios:
  - name: tiny
    files: 10
    size_kb: 2
  - name: wide
    files: 50
    dirs: 20
    depth: 1
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write scenario file: %v", err)
	}

	scenarios, err := LoadFile(path)
	if err != nil {
		t.Fatalf("Failed to load scenario file: %v", err)
	}

	if len(scenarios) != 2 {
		t.Fatalf("Expected 2 scenarios, got %d", len(scenarios))
	}
	if scenarios[0].Name != "tiny" || scenarios[0].SizeKB != 2 {
		t.Errorf("First scenario mismatch: %+v", scenarios[0])
	}
	if scenarios[1].Name != "wide" || scenarios[1].Dirs != 20 {
		t.Errorf("Second scenario mismatch: %+v", scenarios[1])
	}
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "scenario_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	path := filepath.Join(tempDir, "bad.yaml")
	content := `scenarios:
  - name: typo
    files: 10
    size_kv: 2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write scenario file: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile should reject unknown keys")
	}
}

func TestLoadFileRejectsDuplicates(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "scenario_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	path := filepath.Join(tempDir, "dup.yaml")
	content := `scenarios:
  - name: same
    files: 10
  - name: same
    files: 20
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write scenario file: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile should reject duplicate scenario names")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/scenarios.yaml"); err == nil {
		t.Error("LoadFile should fail for a missing file")
	}
}
