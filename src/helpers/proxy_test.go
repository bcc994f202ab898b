package helpers

import (
	"testing"

	"ticker-desk/src/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyManager_Rotation(t *testing.T) {
	pm := NewProxyManager([]string{"10.0.0.1:3128", "", "ftp://bad", "https://10.0.0.2:8443"}, "", logger.NewNop("proxy"))

	require.True(t, pm.HasProxies())

	p, err := pm.GetCurrentProxy()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:3128", p)

	pm.RotateProxy()
	p, _ = pm.GetCurrentProxy()
	assert.Equal(t, "https://10.0.0.2:8443", p)

	pm.RotateProxy()
	p, _ = pm.GetCurrentProxy()
	assert.Equal(t, "http://10.0.0.1:3128", p)
}

func TestProxyManager_NoProxies(t *testing.T) {
	pm := NewProxyManager(nil, "desk-bot/1.0", logger.NewNop("proxy"))

	assert.False(t, pm.HasProxies())
	p, err := pm.GetCurrentProxy()
	require.NoError(t, err)
	assert.Empty(t, p)

	pm.RotateProxy()
	assert.Equal(t, "desk-bot/1.0", pm.GetUserAgent())
}

func TestProxyManager_RandomUserAgent(t *testing.T) {
	pm := NewProxyManager(nil, "", logger.NewNop("proxy"))
	assert.Contains(t, defaultUserAgents, pm.GetUserAgent())
}
