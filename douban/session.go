package douban

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/net/html/charset"

	"github.com/cinesort/cinesort/config"
	"github.com/cinesort/cinesort/models"
)

// RawResult is one fetched page before any extraction.
type RawResult struct {
	HTML       string
	StatusCode int
	FinalURL   string
}

// Fetcher is the transport the bypass loop drives. A fetcher holds identity
// state (headers, cookies) that persists across requests of one query.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*RawResult, error)
	SetCookie(name, value string)
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		// Fallback: if spec generation fails, use HelloChrome_Auto as-is.
		// (Should never happen with a valid utls version.)
		return
	}
	// Replace h2 with http/1.1 only in the ALPN extension so the server
	// never negotiates HTTP/2 (which Go's http.Transport cannot handle
	// over a utls connection).
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// Session is a stateful fetcher impersonating one browser. The fabricated
// identity (user agent, language, referer) is fixed at construction and sent
// unchanged on every request; cookies accumulate as the site sets them and as
// solved proofs are attached.
type Session struct {
	client  *http.Client
	headers map[string]string
	cookies map[string]string
}

// NewSession creates a session with a Chrome-like TLS fingerprint. ALPN is
// locked to http/1.1 to avoid the HTTP/2 framing mismatch that occurs when
// utls negotiates h2 but Go's http.Transport only speaks h1.
func NewSession(cfg config.DoubanConfig) *Session {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("session: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
	return &Session{
		client: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		headers: map[string]string{
			"User-Agent":                cfg.UserAgent,
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language":           "zh-CN,zh;q=0.9,en;q=0.8",
			"Referer":                   "https://www.douban.com/",
			"Upgrade-Insecure-Requests": "1",
		},
		cookies: make(map[string]string),
	}
}

// SetCookie attaches a cookie to every subsequent request of this session.
func (s *Session) SetCookie(name, value string) {
	s.cookies[name] = value
}

// Fetch issues a GET with the session identity and returns the decoded body.
// Cookies set by the response are merged into the session even on error
// statuses, since gate pages hand out tracking cookies of their own.
func (s *Session) Fetch(ctx context.Context, rawURL string) (*RawResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, models.NewAppError(models.ErrCodeConnection, "build request", err)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	for name, value := range s.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := s.client.Do(req)
	if err != nil {
		var netErr net.Error
		if (errors.As(err, &netErr) && netErr.Timeout()) || errors.Is(err, context.DeadlineExceeded) {
			return nil, models.NewAppError(models.ErrCodeTimeout, "request timed out", err)
		}
		return nil, models.NewAppError(models.ErrCodeConnection, "request failed", err)
	}
	defer resp.Body.Close()

	for _, c := range resp.Cookies() {
		s.cookies[c.Name] = c.Value
	}

	if resp.StatusCode >= 400 {
		return nil, models.NewAppError(models.ErrCodeHTTPStatus,
			fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	// Read body with a 10 MB limit, honoring the declared encoding so GBK
	// pages come out as UTF-8.
	const maxBody = 10 << 20
	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, models.NewAppError(models.ErrCodeConnection, "decode body", err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, models.NewAppError(models.ErrCodeConnection, "read body", err)
	}

	return &RawResult{
		HTML:       string(body),
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}
