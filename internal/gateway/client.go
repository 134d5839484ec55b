// Package gateway speaks the ECOMM merchant protocol of TBC's payment
// gateway: form-encoded commands over a mutual-TLS channel, replied to as
// newline-separated key/value pairs.
package gateway

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	errors "github.com/frahmantamala/tbcpay/internal"
	gatewaytypes "github.com/frahmantamala/tbcpay/internal/core/datamodel/gateway"
)

// ECOMM single-letter commands.
const (
	commandStartSMS = "v"
	commandStartDMS = "a"
	commandCapture  = "t"
	commandResult   = "c"
	commandCloseDay = "b"
)

type Config struct {
	MerchantURL     string
	CertificatePath string
	CertificatePass string
	Timeout         time.Duration
}

type Client struct {
	merchantURL string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient builds the gateway client, loading the merchant certificate when
// one is configured. An empty certificate path yields a plain HTTPS client,
// which the bank's sandbox and test doubles accept.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{}
	if cfg.CertificatePath != "" {
		cert, err := loadCertificate(cfg.CertificatePath, cfg.CertificatePass)
		if err != nil {
			return nil, errors.NewCertificateError("failed to load merchant certificate", err)
		}
		transport.TLSClientConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
		}
	}

	return &Client{
		merchantURL: cfg.MerchantURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
	}, nil
}

func (c *Client) StartSMS(ctx context.Context, p gatewaytypes.StartParams) (gatewaytypes.Response, error) {
	form := startForm(commandStartSMS, "SMS", p)
	return c.post(ctx, form)
}

func (c *Client) StartDMS(ctx context.Context, p gatewaytypes.StartParams) (gatewaytypes.Response, error) {
	form := startForm(commandStartDMS, "DMS", p)
	return c.post(ctx, form)
}

func (c *Client) CaptureDMS(ctx context.Context, p gatewaytypes.CaptureParams) (gatewaytypes.Response, error) {
	form := url.Values{}
	form.Set("command", commandCapture)
	form.Set("trans_id", p.TransID)
	form.Set("amount", strconv.FormatInt(p.AmountMinor, 10))
	form.Set("currency", strconv.Itoa(p.Currency))
	form.Set("client_ip_addr", p.ClientIP)
	form.Set("description", p.Description)
	form.Set("msg_type", "DMS")
	return c.post(ctx, form)
}

func (c *Client) QueryResult(ctx context.Context, p gatewaytypes.QueryParams) (gatewaytypes.Response, error) {
	form := url.Values{}
	form.Set("command", commandResult)
	form.Set("trans_id", p.TransID)
	form.Set("client_ip_addr", p.ClientIP)
	return c.post(ctx, form)
}

func (c *Client) CloseBusinessDay(ctx context.Context, p gatewaytypes.CloseParams) (gatewaytypes.Response, error) {
	form := url.Values{}
	form.Set("command", commandCloseDay)
	if p.ClientIP != "" {
		form.Set("client_ip_addr", p.ClientIP)
	}
	return c.post(ctx, form)
}

func startForm(command, msgType string, p gatewaytypes.StartParams) url.Values {
	form := url.Values{}
	form.Set("command", command)
	form.Set("amount", strconv.FormatInt(p.AmountMinor, 10))
	form.Set("currency", strconv.Itoa(p.Currency))
	form.Set("client_ip_addr", p.ClientIP)
	form.Set("description", p.Description)
	form.Set("language", p.Language)
	form.Set("msg_type", msgType)
	return form
}

func (c *Client) post(ctx context.Context, form url.Values) (gatewaytypes.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.merchantURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.NewTransportError("failed to create gateway request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Debug("sending gateway command",
		"command", form.Get("command"),
		"merchant_url", c.merchantURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewTransportError("gateway request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewTransportError("failed to read gateway response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewTransportError(
			fmt.Sprintf("gateway returned status %d", resp.StatusCode), nil)
	}

	parsed := ParseResponse(string(body))

	c.logger.Debug("gateway command completed",
		"command", form.Get("command"),
		"keys", len(parsed))

	return parsed, nil
}

// ParseResponse turns the ECOMM "KEY: value" line format into a Response.
// Unparseable lines are skipped; the gateway pads replies with blank lines.
func ParseResponse(body string) gatewaytypes.Response {
	out := gatewaytypes.Response{}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out
}
