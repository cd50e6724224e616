package backend

import (
	"context"
	"testing"

	"docoverlay/internal/app"
	"docoverlay/internal/extract"
	"docoverlay/internal/raster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryBuildsServiceExtractor(t *testing.T) {
	t.Setenv(TokenEnv, "secret")
	build := Factory(raster.New(nil))

	ex, err := build(app.Settings{Extractor: app.ExtractorService, ServiceURL: "http://ocr.local:9000/"})
	require.NoError(t, err)
	h, ok := ex.(*extract.HTTPExtractor)
	require.True(t, ok)
	assert.Equal(t, "http://ocr.local:9000", h.BaseURL)

	require.NotNil(t, h.Token)
	tok, err := h.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret", tok)
}

func TestFactoryRejectsInvalidSettings(t *testing.T) {
	_, err := Factory(raster.New(nil))(app.Settings{Extractor: "cloud"})
	assert.ErrorIs(t, err, app.ErrInvalidSettings)
}

func TestTokenUnset(t *testing.T) {
	t.Setenv(TokenEnv, "")
	assert.Nil(t, Token())
}
