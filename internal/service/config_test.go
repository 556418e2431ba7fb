package service_test

import (
	"testing"

	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetConfigValidatesKeysAndValues(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	_, ok, err := l.GetConfig(service.ConfigLocale)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.SetConfig("Locale", " zh-TW "))
	v, ok, err := l.GetConfig("locale")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "zh-TW", v)

	require.NoError(t, l.SetConfig(service.ConfigBarcodeProviders, "fdc, off, usda"))
	v, _, err = l.GetConfig(service.ConfigBarcodeProviders)
	require.NoError(t, err)
	assert.Equal(t, "usda,openfoodfacts", v)

	assert.ErrorContains(t, l.SetConfig("theme", "dark"), "unknown config key")
	assert.ErrorContains(t, l.SetConfig(service.ConfigBarcodeProviders, "nutritionix"), "unsupported barcode provider")
	assert.Error(t, l.SetConfig(service.ConfigLocale, "  "))

	all, err := l.ListConfig()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"locale": "zh-TW", "barcode_providers": "usda,openfoodfacts"}, all)
}

func TestParseProviderList(t *testing.T) {
	t.Parallel()

	got, err := service.ParseProviderList("off,openfoodfacts, ,upc,usda")
	require.NoError(t, err)
	assert.Equal(t, []string{"openfoodfacts", "upcitemdb", "usda"}, got)

	_, err = service.ParseProviderList(" , ")
	assert.Error(t, err)
	assert.Equal(t, []string{"barcode_providers", "locale"}, service.ConfigKeys())
}
