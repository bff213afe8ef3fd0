// Package hostdevice collects fingerprint signals from the machine the SDK
// runs on. It suits desktop and server hosts where no mobile signal source
// exists.
package hostdevice

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/fingerprint"
	"github.com/shirou/gopsutil/v3/host"
)

// Provider reads OS details through gopsutil.
type Provider struct {
	userAgent        string
	appVersion       string
	screenResolution string
	language         string
	info             func(ctx context.Context) (*host.InfoStat, error)
	now              func() time.Time
}

var _ fingerprint.Provider = (*Provider)(nil)

type Option func(*Provider)

// WithUserAgent sets the user agent reported to the server.
func WithUserAgent(ua string) Option {
	return func(p *Provider) { p.userAgent = ua }
}

// WithAppVersion sets the host application version.
func WithAppVersion(v string) Option {
	return func(p *Provider) { p.appVersion = v }
}

// WithScreen sets the display size, which is not reported by headless hosts.
func WithScreen(width, height int) Option {
	return func(p *Provider) { p.screenResolution = domain.ScreenResolutionOf(width, height) }
}

// WithLanguage overrides the language read from the environment.
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// New builds a provider with the given options.
func New(opts ...Option) *Provider {
	p := &Provider{
		userAgent: "linkforty-go",
		info:      host.InfoWithContext,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Collect implements fingerprint.Provider.
func (p *Provider) Collect(ctx context.Context) (domain.FingerprintRecord, error) {
	info, err := p.info(ctx)
	if err != nil {
		return domain.FingerprintRecord{}, fmt.Errorf("%w: host info: %v", fingerprint.ErrUnavailable, err)
	}
	lang := p.language
	if lang == "" {
		lang = LanguageFromEnv(os.Getenv)
	}
	return domain.FingerprintRecord{
		UserAgent:        p.userAgent,
		Timezone:         p.now().Location().String(),
		Language:         lang,
		ScreenResolution: p.screenResolution,
		Platform:         info.OS,
		DeviceModel:      strings.TrimSpace(info.Platform + " " + info.KernelArch),
		OSVersion:        info.PlatformVersion,
		AppVersion:       p.appVersion,
	}, nil
}

// LanguageFromEnv turns a POSIX locale such as "de_DE.UTF-8" into a BCP 47
// tag. It checks LC_ALL, LC_MESSAGES and LANG in that order.
func LanguageFromEnv(getenv func(string) string) string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		value := getenv(key)
		if value == "" || value == "C" || value == "POSIX" {
			continue
		}
		if dot := strings.IndexAny(value, ".@"); dot >= 0 {
			value = value[:dot]
		}
		return strings.ReplaceAll(value, "_", "-")
	}
	return "en-US"
}
