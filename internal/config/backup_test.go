package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBackupUserConfig(t *testing.T) {
	// Create temp directory for test
	tmpDir := t.TempDir()

	// Override config path for testing
	origXDG := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer os.Setenv("XDG_CONFIG_HOME", origXDG)

	configDir := filepath.Join(tmpDir, "ragkb")
	configPath := filepath.Join(configDir, "config.yaml")

	t.Run("no config exists", func(t *testing.T) {
		backupPath, err := BackupUserConfig()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if backupPath != "" {
			t.Errorf("expected empty backup path for non-existent config, got %s", backupPath)
		}
	})

	t.Run("backup existing config", func(t *testing.T) {
		// Create config directory and file
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatalf("failed to create config dir: %v", err)
		}
		testContent := "version: 1\nembeddings:\n  provider: ollama\n"
		if err := os.WriteFile(configPath, []byte(testContent), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		backupPath, err := BackupUserConfig()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if backupPath == "" {
			t.Fatal("expected non-empty backup path")
		}

		// Verify backup exists and has correct content
		backupContent, err := os.ReadFile(backupPath)
		if err != nil {
			t.Fatalf("failed to read backup: %v", err)
		}
		if string(backupContent) != testContent {
			t.Errorf("backup content mismatch:\ngot: %s\nwant: %s", backupContent, testContent)
		}

		// Verify backup path is absolute
		if !filepath.IsAbs(backupPath) {
			t.Errorf("backup path should be absolute: %s", backupPath)
		}
	})
}

func TestListUserConfigBackups(t *testing.T) {
	tmpDir := t.TempDir()

	origXDG := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer os.Setenv("XDG_CONFIG_HOME", origXDG)

	configDir := filepath.Join(tmpDir, "ragkb")
	configPath := filepath.Join(configDir, "config.yaml")

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	t.Run("no backups exist", func(t *testing.T) {
		backups, err := ListUserConfigBackups()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(backups) != 0 {
			t.Errorf("expected 0 backups, got %d", len(backups))
		}
	})

	t.Run("list multiple backups", func(t *testing.T) {
		// Create some backup files with different timestamps
		timestamps := []string{"20260101-100000", "20260101-110000", "20260101-120000"}
		for _, ts := range timestamps {
			backupName := filepath.Join(configDir, "config.yaml.bak."+ts)
			if err := os.WriteFile(backupName, []byte("test"), 0644); err != nil {
				t.Fatalf("failed to create backup: %v", err)
			}
			// Small delay to ensure different mod times
			time.Sleep(10 * time.Millisecond)
		}

		backups, err := ListUserConfigBackups()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(backups) != 3 {
			t.Errorf("expected 3 backups, got %d", len(backups))
		}

		// Verify sorted by mod time (newest first)
		for i := 1; i < len(backups); i++ {
			info1, _ := os.Stat(backups[i-1])
			info2, _ := os.Stat(backups[i])
			if info1.ModTime().Before(info2.ModTime()) {
				t.Errorf("backups not sorted correctly: %s before %s", backups[i-1], backups[i])
			}
		}
	})

	t.Run("cleanup old backups", func(t *testing.T) {
		// Create config file
		if err := os.WriteFile(configPath, []byte("test config"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		// Create 4 more backups (should trigger cleanup)
		for i := 0; i < 4; i++ {
			_, err := BackupUserConfig()
			if err != nil {
				t.Fatalf("failed to create backup: %v", err)
			}
			time.Sleep(10 * time.Millisecond)
		}

		// Should have at most MaxBackups
		backups, err := ListUserConfigBackups()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(backups) > MaxBackups {
			t.Errorf("expected at most %d backups, got %d", MaxBackups, len(backups))
		}
	})
}

func TestMergeNewDefaults(t *testing.T) {
	t.Run("adds missing retrieval and hnsw fields", func(t *testing.T) {
		cfg := &Config{
			Version: 1,
			Retrieval: RetrievalConfig{
				TopK: 5,
				// FetchMultiplier, DedupThreshold are 0 (not set)
			},
		}

		added := cfg.MergeNewDefaults()

		if cfg.Retrieval.FetchMultiplier == 0 {
			t.Error("FetchMultiplier should be set to default")
		}
		if cfg.Retrieval.DedupThreshold == 0 {
			t.Error("DedupThreshold should be set to default")
		}
		if cfg.HNSW.RebuildThreshold == 0 {
			t.Error("RebuildThreshold should be set to default")
		}

		hasFetchMultiplier := false
		hasDedup := false
		for _, field := range added {
			if field == "retrieval.fetch_multiplier" {
				hasFetchMultiplier = true
			}
			if field == "retrieval.dedup_threshold" {
				hasDedup = true
			}
		}
		if !hasFetchMultiplier {
			t.Error("should report fetch_multiplier as added")
		}
		if !hasDedup {
			t.Error("should report dedup_threshold as added")
		}
	})

	t.Run("adds missing fusion weights", func(t *testing.T) {
		cfg := &Config{
			Version: 1,
			Embedding: EmbeddingConfig{
				Provider: "openai",
				Model:    "test-model",
			},
		}

		added := cfg.MergeNewDefaults()

		if cfg.Files.FileContentContextWeight != 1.0 {
			t.Error("FileContentContextWeight should be set to default 1.0")
		}
		if cfg.Files.KnowledgeBaseContextWeight != 1.0 {
			t.Error("KnowledgeBaseContextWeight should be set to default 1.0")
		}

		hasFile := false
		hasKB := false
		for _, field := range added {
			if field == "files.file_content_context_weight" {
				hasFile = true
			}
			if field == "files.knowledge_base_context_weight" {
				hasKB = true
			}
		}
		if !hasFile {
			t.Error("should report file_content_context_weight as added")
		}
		if !hasKB {
			t.Error("should report knowledge_base_context_weight as added")
		}
	})

	t.Run("preserves existing values", func(t *testing.T) {
		cfg := &Config{
			Version: 1,
			Retrieval: RetrievalConfig{
				TopK:            5,
				FetchMultiplier: 9,   // Custom value
				DedupThreshold:  0.8, // Custom value
			},
			HNSW: HNSWConfig{
				RebuildThreshold: 2000, // Custom value
			},
			Files: FilesConfig{
				FileContentContextWeight:   0.5, // Custom value
				KnowledgeBaseContextWeight: 0.7, // Custom value
			},
		}

		added := cfg.MergeNewDefaults()

		if cfg.Retrieval.FetchMultiplier != 9 {
			t.Errorf("FetchMultiplier changed from 9 to %d", cfg.Retrieval.FetchMultiplier)
		}
		if cfg.Retrieval.DedupThreshold != 0.8 {
			t.Errorf("DedupThreshold changed from 0.8 to %f", cfg.Retrieval.DedupThreshold)
		}
		if cfg.HNSW.RebuildThreshold != 2000 {
			t.Errorf("RebuildThreshold changed from 2000 to %d", cfg.HNSW.RebuildThreshold)
		}
		if cfg.Files.FileContentContextWeight != 0.5 {
			t.Errorf("FileContentContextWeight changed from 0.5 to %f", cfg.Files.FileContentContextWeight)
		}
		if cfg.Files.KnowledgeBaseContextWeight != 0.7 {
			t.Errorf("KnowledgeBaseContextWeight changed from 0.7 to %f", cfg.Files.KnowledgeBaseContextWeight)
		}

		for _, field := range added {
			if field == "retrieval.fetch_multiplier" ||
				field == "retrieval.dedup_threshold" ||
				field == "hnsw.rebuild_threshold" ||
				field == "files.file_content_context_weight" ||
				field == "files.knowledge_base_context_weight" {
				t.Errorf("should not report %s as added (was already set)", field)
			}
		}
	})

	t.Run("returns empty for complete config", func(t *testing.T) {
		cfg := NewConfig()

		added := cfg.MergeNewDefaults()

		if len(added) != 0 {
			t.Errorf("expected 0 added fields for complete config, got %v", added)
		}
	})
}

func TestWriteYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg := &Config{
		Version: 1,
		Embedding: EmbeddingConfig{
			Provider: "openai",
			Model:    "test-model",
		},
	}

	if err := cfg.WriteYAML(configPath); err != nil {
		t.Fatalf("failed to write YAML: %v", err)
	}

	// Verify file exists and is readable
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read written file: %v", err)
	}
	if len(data) == 0 {
		t.Error("written file is empty")
	}

	// Verify it contains expected content
	content := string(data)
	if !contains(content, "provider: openai") {
		t.Error("written file should contain provider: openai")
	}
	if !contains(content, "model: test-model") {
		t.Error("written file should contain model: test-model")
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(s) > 0 && containsHelper(s, substr))
}

func containsHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
