package hostdevice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkforty/go-linkforty/pkg/fingerprint"
)

func TestCollect(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	p := New(WithUserAgent("cli/1.0"), WithAppVersion("2.3.0"), WithScreen(1920, 1080), WithLanguage("de-DE"))
	p.info = func(ctx context.Context) (*host.InfoStat, error) {
		return &host.InfoStat{OS: "linux", Platform: "ubuntu", PlatformVersion: "24.04", KernelArch: "x86_64"}, nil
	}
	p.now = func() time.Time { return time.Now().In(berlin) }

	rec, err := p.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cli/1.0", rec.UserAgent)
	assert.Equal(t, "Europe/Berlin", rec.Timezone)
	assert.Equal(t, "de-DE", rec.Language)
	assert.Equal(t, "1920x1080", rec.ScreenResolution)
	assert.Equal(t, "linux", rec.Platform)
	assert.Equal(t, "ubuntu x86_64", rec.DeviceModel)
	assert.Equal(t, "24.04", rec.OSVersion)
	assert.Equal(t, "2.3.0", rec.AppVersion)
}

func TestCollectFailure(t *testing.T) {
	p := New()
	p.info = func(ctx context.Context) (*host.InfoStat, error) {
		return nil, errors.New("permission denied")
	}
	_, err := p.Collect(context.Background())
	assert.ErrorIs(t, err, fingerprint.ErrUnavailable)
}

func TestLanguageFromEnv(t *testing.T) {
	env := func(values map[string]string) func(string) string {
		return func(key string) string { return values[key] }
	}
	assert.Equal(t, "de-DE", LanguageFromEnv(env(map[string]string{"LANG": "de_DE.UTF-8"})))
	assert.Equal(t, "fr-CA", LanguageFromEnv(env(map[string]string{"LC_ALL": "fr_CA@euro", "LANG": "de_DE"})))
	assert.Equal(t, "en-US", LanguageFromEnv(env(map[string]string{"LANG": "C"})))
	assert.Equal(t, "en-US", LanguageFromEnv(env(nil)))
}
