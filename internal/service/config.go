package service

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Keys persisted in app_config. They override file and environment settings.
const (
	ConfigLocale           = "locale"
	ConfigBarcodeProviders = "barcode_providers"
)

var configValidators = map[string]func(string) (string, error){
	ConfigLocale:           normalizeLocaleSetting,
	ConfigBarcodeProviders: normalizeProviderList,
}

func (l *Ledger) SetConfig(key, value string) error {
	if err := l.checkReady(); err != nil {
		return err
	}
	key = normalizeName(key)
	validate, ok := configValidators[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (use %s)", key, strings.Join(ConfigKeys(), ", "))
	}
	value, err := validate(value)
	if err != nil {
		return err
	}
	_, err = l.sqldb.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`, key, value, formatTime(l.now()))
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func (l *Ledger) GetConfig(key string) (string, bool, error) {
	if err := l.checkReady(); err != nil {
		return "", false, err
	}
	key = normalizeName(key)
	if key == "" {
		return "", false, fmt.Errorf("config key is required")
	}
	var value string
	err := l.sqldb.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func (l *Ledger) ListConfig() (map[string]string, error) {
	if err := l.checkReady(); err != nil {
		return nil, err
	}
	rows, err := l.sqldb.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}

func ConfigKeys() []string {
	keys := make([]string, 0, len(configValidators))
	for k := range configValidators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeLocaleSetting(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("locale is required")
	}
	return value, nil
}

// ParseProviderList splits a comma separated provider order, dropping
// duplicates.
func ParseProviderList(value string) ([]string, error) {
	out := make([]string, 0, 3)
	seen := map[string]bool{}
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		name := NormalizeBarcodeProvider(part)
		if name == "" {
			return nil, fmt.Errorf("unsupported barcode provider %q", strings.TrimSpace(part))
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one barcode provider is required")
	}
	return out, nil
}

func normalizeProviderList(value string) (string, error) {
	names, err := ParseProviderList(value)
	if err != nil {
		return "", err
	}
	return strings.Join(names, ","), nil
}
