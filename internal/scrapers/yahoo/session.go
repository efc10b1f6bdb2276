package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"optchain-archive/internal/components/assert"
	"optchain-archive/internal/components/telemetry"
	"optchain-archive/lib/restyutil"
	"strings"
	"sync/atomic"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_session_warm_up = "session.warm-up"
	report_session_fetch   = "session.fetch"
)

const DefaultBaseUrl = "https://finance.yahoo.com"

// DefaultHeaders is the header bundle sent with every request, it presents the
// session as a crawler doing a top level navigation with caching disabled.
//
// accept-encoding is left to the transport so that it can decompress gzip
// responses transparently.
var DefaultHeaders = map[string]string{
	"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.9",
	"accept-language":           "ru,en;q=0.9,uk;q=0.8",
	"cache-control":             "no-cache",
	"pragma":                    "no-cache",
	"sec-fetch-dest":            "document",
	"sec-fetch-mode":            "navigate",
	"sec-fetch-site":            "none",
	"sec-fetch-user":            "?1",
	"upgrade-insecure-requests": "1",
	"user-agent":                "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
}

type SessionOptions struct {
	// BaseUrl is the root of the site, it is also the target of the warm-up request.
	// Defaults to DefaultBaseUrl.
	BaseUrl string
	// Timeout of a single request, defaults to 30 seconds.
	Timeout time.Duration
	// RequestsPerSecond limits outgoing requests, 0 disables the limit.
	RequestsPerSecond float64
	// CloudflareBypass wraps the transport with cloudflare-bp-go.
	CloudflareBypass bool
	// DumpDir, if set, receives a plain text copy of every http exchange.
	// Ignored when Dump is set.
	DumpDir string
	// Dump is shared by every session created with these options so that
	// rebuilding a session keeps the exchanges of the previous one.
	Dump *restyutil.Dump
}

// Session is an http client bound to one cookie jar and one set of headers.
// It is never reconfigured after creation, on failure the owner should Close
// it and create a new one.
type Session struct {
	BaseUrl *url.URL

	http   *resty.Client
	tel    telemetry.API
	closed atomic.Bool
}

// NewSession creates a session and performs the warm-up request against the
// base url, which validates connectivity and collects the initial cookies.
func NewSession(ctx context.Context, opts SessionOptions, tel telemetry.API) (*Session, error) {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("yahoo", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	baseUrl, err := url.Parse(strings.TrimSuffix(opts.BaseUrl, "/"))
	if err != nil {
		return nil, fmt.Errorf("yahoo: parse base url: %w", err)
	}

	httpClient := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeaders(DefaultHeaders)
	httpClient.SetTimeout(opts.Timeout)

	if opts.RequestsPerSecond > 0 {
		// max burst of 1 keeps requests evenly spaced
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)
	if opts.Dump == nil && opts.DumpDir != "" {
		opts.Dump, err = restyutil.NewDump(opts.DumpDir)
		if err != nil {
			return nil, fmt.Errorf("yahoo: create dump dir: %w", err)
		}
	}
	if opts.Dump != nil {
		opts.Dump.Attach(httpClient)
	}

	s := &Session{
		BaseUrl: baseUrl,
		http:    httpClient,
		tel:     tel,
	}

	_, err = s.Fetch(ctx, baseUrl.String())
	if err != nil {
		tel.ReportBroken(report_session_warm_up, err)
		s.Close()
		return nil, err
	}
	tel.ReportDebug("session initialized", baseUrl.String())

	return s, nil
}

// Fetch performs a single GET, any status other than 200 is a *FetchError and
// transport failures are a *TransportError. Nothing is retried.
func (s *Session) Fetch(ctx context.Context, link string) (RawPage, error) {
	if s.closed.Load() {
		return RawPage{}, ErrSessionClosed
	}

	res, err := s.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		s.tel.ReportBroken(report_session_fetch, err, link)
		return RawPage{}, &TransportError{URL: link, Err: err}
	}

	body := res.Body()
	if body == nil {
		body = []byte{}
	}
	page := RawPage{
		URL:        link,
		StatusCode: res.StatusCode(),
		Header:     res.Header(),
		Body:       body,
	}

	if res.StatusCode() != http.StatusOK {
		err := &FetchError{URL: link, StatusCode: res.StatusCode()}
		s.tel.ReportBroken(report_session_fetch, err)
		return page, err
	}
	return page, nil
}

// OptionsChainUrl returns the straddle view of the options chain page of `ticker`.
func (s *Session) OptionsChainUrl(ticker string) string {
	return OptionsChainUrl(s.BaseUrl.String(), ticker)
}

// OptionsChain fetches the options chain page of `ticker`.
func (s *Session) OptionsChain(ctx context.Context, ticker string) (RawPage, error) {
	return s.Fetch(ctx, s.OptionsChainUrl(ticker))
}

// Close releases the connections held by the session, it is safe to call more than once.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.http.GetClient().CloseIdleConnections()
	return nil
}

// OptionsChainUrl formats `{base}/quote/{TICKER}/options?p={TICKER}&straddle=true`.
func OptionsChainUrl(base, ticker string) string {
	return fmt.Sprintf(
		"%s/quote/%s/options?p=%s&straddle=true",
		strings.TrimSuffix(base, "/"),
		url.PathEscape(ticker),
		url.QueryEscape(ticker),
	)
}
