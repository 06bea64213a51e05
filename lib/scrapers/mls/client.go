package mls

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
	"wardroster/lib/restyutil"
	"wardroster/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("wardroster.lib.scrapers.mls")

const (
	DefaultIdentUrl = "https://ident.lds.org"
	DefaultBaseUrl  = "https://www.lds.org"
	DefaultTimeout  = 30 * time.Second

	loginPath = "/sso/UI/Login"
)

type ClientOptions struct {
	// IdentUrl is the identity service that handles the login form.
	IdentUrl string
	// BaseUrl serves the member records pages, reports and photos.
	BaseUrl  string
	Username string
	Password string
	// Credentials is asked for the username and password right before
	// logging in when set, Username and Password are ignored then.
	Credentials func() (username, password string, err error)
	// Timeout applies to every request, DefaultTimeout if zero.
	Timeout time.Duration
	// CloudflareBypass makes requests look like they come from a browser.
	CloudflareBypass bool

	// Tel defaults to telemetry.SlogAPI.
	Tel telemetry.API
	// Output receives full request/response dumps when not nil.
	Output restyutil.InstrumentOutput
}

// Client owns the one authenticated session with MLS. The session is created
// by the first call that needs it and reused until the process exits.
type Client struct {
	http        *resty.Client
	identUrl    *url.URL
	credentials func() (string, string, error)

	authenticated bool
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.IdentUrl == "" {
		opts.IdentUrl = DefaultIdentUrl
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Tel == nil {
		opts.Tel = telemetry.SlogAPI{}
	}

	identUrl, err := url.Parse(opts.IdentUrl)
	if err != nil {
		return nil, fmt.Errorf("ident url: %w", err)
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(
		identUrl.Hostname(),
		baseUrl.Hostname(),
	))
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(
		client,
		"wardroster.lib.scrapers.mls.http",
		telemetry.NewScopedAPI("mls_http", opts.Tel),
		opts.Output,
	)

	credentials := opts.Credentials
	if credentials == nil {
		credentials = func() (string, string, error) {
			return opts.Username, opts.Password, nil
		}
	}

	return &Client{
		http:        client,
		identUrl:    identUrl,
		credentials: credentials,
	}, nil
}

// Authenticate logs in on the first call and does nothing on every call after
// a successful one.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.authenticated {
		return nil
	}

	ctx, span := tracer.Start(ctx, "client:Authenticate")
	defer span.End()

	username, password, err := c.credentials()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get credentials")
		return fmt.Errorf("credentials: %w", err)
	}

	loginUrl := c.identUrl.JoinPath(loginPath).String()

	// sets up the cookies the login form expects
	_, err = c.http.R().
		SetContext(ctx).
		Get(loginUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch login page")
		return fmt.Errorf("fetch login page: %w", err)
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"IDToken1": username,
			"IDToken2": password,
			"IDButton": "Log In",
		}).
		Post(loginUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return fmt.Errorf("login: %w", err)
	}
	if !res.IsSuccess() {
		authErr := &AuthenticationError{
			Status: res.StatusCode(),
			Body:   excerpt(res.Body()),
		}
		span.RecordError(authErr)
		span.SetStatus(codes.Error, "login rejected")
		return authErr
	}

	c.authenticated = true
	return nil
}

type getOptions struct {
	query      map[string]string
	acceptJson bool
}

// get authenticates if needed and then requests `endpoint`, any non-success
// response is turned into an UpstreamError.
func (c *Client) get(ctx context.Context, endpoint string, opts getOptions) (*resty.Response, error) {
	err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	req := c.http.R().
		SetContext(ctx).
		SetQueryParams(opts.query)
	if opts.acceptJson {
		req.SetHeader("accept", "application/json")
	}

	res, err := req.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	if !res.IsSuccess() {
		return nil, &UpstreamError{
			Method: http.MethodGet,
			Url:    res.Request.URL,
			Status: res.StatusCode(),
			Body:   excerpt(res.Body()),
		}
	}
	return res, nil
}
