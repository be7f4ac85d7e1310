package discovery

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenSession fails every browser interaction, simulating a dead or
// unavailable headless session during live capture.
type brokenSession struct{}

func (brokenSession) NewPage(time.Duration) (playwright.Page, error) {
	return nil, errors.New("browser session closed")
}

func (brokenSession) Cookies() (map[string]string, error) {
	return nil, errors.New("browser session closed")
}

func TestDiscoverFailureIsFatalWithoutFallback(t *testing.T) {
	d := New(brokenSession{}, "https://silpo.ua/category/molochni-234", "test-agent",
		time.Second, filepath.Join(t.TempDir(), "template.json"), false)

	tpl, err := d.Discover()
	require.Error(t, err)
	assert.Nil(t, tpl)

	var derr DiscoveryError
	assert.True(t, errors.As(err, &derr))
}

func TestDiscoverUsesStaticTemplateWhenFallbackEnabled(t *testing.T) {
	d := New(brokenSession{}, "https://silpo.ua/category/molochni-234", "test-agent",
		time.Second, filepath.Join(t.TempDir(), "template.json"), true)

	tpl, err := d.Discover()
	require.NoError(t, err)
	require.NotNil(t, tpl)
	assert.Equal(t, "https://"+EndpointSubstr, tpl.Endpoint)
	assert.Equal(t, "molochni-234", tpl.Body["category"])
}
