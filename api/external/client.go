/* client.go
 * Contains the HTTP client used to talk to the Numerai API. Every request goes through get, which applies the
 * rate limit, headers and timeout, and folds transport failures into the status code
 */

package external

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"numerai-bot/api/config"
	"numerai-bot/api/validate"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const userAgent = "NumeraiClient/1.0"

// StatusTransportError is returned in place of an HTTP status when no response was received
const StatusTransportError = 0

// maxResponseBytes caps a decoded response body
var maxResponseBytes int64 = 32 << 20

// Credentials are held for the lifetime of the client
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Client is a Numerai API client. It is safe for concurrent use
type Client struct {
	baseURL     string
	credentials Credentials
	httpClient  *http.Client
	limiter     *rate.Limiter
	validator   *validate.Validator
	now         func() time.Time
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its timeout is left as given
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClock replaces time.Now, used when building the leaderboard filter
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a Client from the Numerai configuration
// Preconditions: Receives NumeraiConfig with a base url, credentials, timeout and rate settings
// Postconditions: Returns a Client, or an error if the credentials or settings are invalid
func NewClient(cfg config.NumeraiConfig, opts ...Option) (*Client, error) {
	credentials := Credentials{Email: cfg.Email, Password: cfg.Password}
	if err := validate.Struct(credentials); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}
	if cfg.Timeout <= 0 || cfg.RequestsPerSecond <= 0 || cfg.Burst < 1 {
		return nil, fmt.Errorf("timeout, requests per second and burst must be positive")
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		credentials: credentials,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		validator:   validate.New(cfg.StrictSchema),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Email returns the account email the client was created with
func (c *Client) Email() string {
	return c.credentials.Email
}

// get performs a single GET request against the API
// Preconditions: Receives context, path relative to the base url (e.g. /competitions) and optional query values
// Postconditions: Returns the body and http.StatusOK on success. On a non-200 response returns nil and that status,
// and when no response could be read returns nil and StatusTransportError
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, int) {
	requestID := uuid.NewString()

	if err := c.limiter.Wait(ctx); err != nil {
		log.Printf("request %s %s: rate limiter: %v", requestID, path, err)
		return nil, StatusTransportError
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Printf("request %s %s: failed to create request: %v", requestID, path, err)
		return nil, StatusTransportError
	}

	// Asking for gzip ourselves means the transport will not inflate the body for us
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Accept-Encoding", "gzip")
	request.Header.Set("X-Request-ID", requestID)

	response, err := c.httpClient.Do(request)
	if err != nil {
		log.Printf("request %s %s: request failed: %v", requestID, path, err)
		return nil, StatusTransportError
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		log.Printf("request %s %s: status code %d", requestID, path, response.StatusCode)
		io.Copy(io.Discard, response.Body)
		return nil, response.StatusCode
	}

	body, err := readBody(response)
	if err != nil {
		log.Printf("request %s %s: failed to read response body: %v", requestID, path, err)
		return nil, StatusTransportError
	}
	return body, http.StatusOK
}

// readBody reads the response body, inflating it if it is gzipped
// Postconditions: Returns an error if the body (after inflating) is larger than maxResponseBytes
func readBody(response *http.Response) ([]byte, error) {
	var reader io.Reader = response.Body
	if response.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(response.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > maxResponseBytes {
		return nil, fmt.Errorf("response body is larger than %d bytes", maxResponseBytes)
	}
	return body, nil
}

// decode runs the validation pass and logs any keys the schema did not expect
func (c *Client) decode(path string, body []byte, schema *validate.Schema, out any) error {
	report, err := c.validator.Decode(body, schema, out)
	if len(report.UnknownKeys) > 0 {
		log.Printf("%s: response has unknown keys: %s", path, strings.Join(report.UnknownKeys, ", "))
	}
	return err
}
