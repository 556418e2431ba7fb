package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName     = "nutrilog"
	dbFileName     = "nutrilog.db"
	configFileName = "nutrilog.yaml"
	backupDirName  = "backups"
)

// Dir is the per-user directory holding the database, config and backups.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

func DefaultDBPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFileName), nil
}

func DefaultConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// DefaultBackupPath names a timestamped backup next to the database.
func DefaultBackupPath(dbPath, stamp string) string {
	return filepath.Join(filepath.Dir(dbPath), backupDirName, "nutrilog-"+stamp+".db")
}

func EnsureDBDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return nil
}
