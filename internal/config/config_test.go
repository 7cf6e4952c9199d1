package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.BackupRoot = "/backups/Documents"
	cfg.MinMessageCount = 5
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.BackupRoot != "/backups/Documents" {
		t.Errorf("BackupRoot = %q, want %q", loaded.BackupRoot, "/backups/Documents")
	}
	if loaded.MinMessageCount != 5 {
		t.Errorf("MinMessageCount = %d, want 5", loaded.MinMessageCount)
	}
}

func TestLoadMissingUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PageSize != 100 || cfg.DefaultWindow != "latest_day" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("/nonexistent/config.toml")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile() err = %v, want ErrNotExist", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "backup_root: /data/wechat\ndefault_window: all\npage_size: 50\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BackupRoot != "/data/wechat" || cfg.DefaultWindow != "all" || cfg.PageSize != 50 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ExportLimit != 10000 {
		t.Errorf("unset field lost its default: ExportLimit = %d", cfg.ExportLimit)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WXBAK_BACKUP_ROOT", "/env/root")
	t.Setenv("WXBAK_PAGE_SIZE", "25")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BackupRoot != "/env/root" || cfg.PageSize != 25 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"ok", func(*Config) {}, ""},
		{"negative min", func(c *Config) { c.MinMessageCount = -1 }, "min_message_count"},
		{"zero page", func(c *Config) { c.PageSize = 0 }, "page_size"},
		{"zero export", func(c *Config) { c.ExportLimit = 0 }, "export_limit"},
		{"bad window", func(c *Config) { c.DefaultWindow = "week" }, "default_window"},
		{"bad zone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("Validate() = %v, want field %s", err, tt.field)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := Default()
	if loc, _ := cfg.Location(); loc != time.Local {
		t.Errorf("Local zone = %v", loc)
	}
	cfg.Timezone = "Asia/Shanghai"
	loc, err := cfg.Location()
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	if loc.String() != "Asia/Shanghai" {
		t.Errorf("zone = %v", loc)
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}

func TestResolvePath(t *testing.T) {
	if got := ResolvePath("/x.toml"); got != "/x.toml" {
		t.Errorf("flag = %q", got)
	}
	t.Setenv("WXBAK_CONFIG", "/env.yaml")
	if got := ResolvePath(""); got != "/env.yaml" {
		t.Errorf("env = %q", got)
	}
}
