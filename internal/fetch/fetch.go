// Package fetch retrieves vote documents from the Chamber of Deputies
// open-data web service.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBaseURL is the legislative web service of the Chamber of Deputies.
const DefaultBaseURL = "https://opendata.camara.cl/camaradiputados/WServices/WSLegislativo.asmx"

// VotesByYearEndpoint is the operation returning every vote of one year.
const VotesByYearEndpoint = "retornarVotacionesXAnno"

// yearParam is the form parameter carrying the year.
const yearParam = "prmAnno"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; LegisAgent/1.0)"

// maxErrorText bounds the error page text kept in an Error message.
const maxErrorText = 200

// Result holds the raw content of a service response.
type Result struct {
	URL         string
	Body        string
	ContentType string
	StatusCode  int
}

// Error represents an error during a service request.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client calls the legislative web service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Options    *Options
}

// NewClient returns a client for baseURL. Empty baseURL or nil opts use the defaults.
func NewClient(baseURL string, opts *Options) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: opts.Timeout},
		Options:    opts,
	}
}

// VotesByYear returns the raw XML document listing the votes of year.
func (c *Client) VotesByYear(ctx context.Context, year int) (*Result, error) {
	form := url.Values{}
	form.Set(yearParam, strconv.Itoa(year))
	return c.Post(ctx, VotesByYearEndpoint, form)
}

// Post sends form to endpoint and returns the response body. A non-200
// response returns both the result and an *Error.
func (c *Client) Post(ctx context.Context, endpoint string, form url.Values) (*Result, error) {
	urlStr := c.BaseURL + "/" + endpoint

	// Validate URL
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/xml, text/xml")
	req.Header.Set("User-Agent", c.Options.UserAgent)
	for key, value := range c.Options.Headers {
		req.Header.Set(key, value)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: c.Options.Timeout}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	result := &Result{
		URL:         urlStr,
		Body:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("HTTP status %d", resp.StatusCode)
		if detail := ErrorPageText(result); detail != "" {
			msg += ": " + detail
		}
		return result, &Error{
			URL:     urlStr,
			Message: msg,
		}
	}

	return result, nil
}

// ErrorPageText extracts a short description from an HTML error page, such
// as the ASP.NET pages the service returns for bad parameters. Non-HTML
// bodies yield "".
func ErrorPageText(result *Result) string {
	if result == nil || !strings.Contains(strings.ToLower(result.ContentType), "html") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.Body))
	if err != nil {
		return ""
	}

	doc.Find("script, style, noscript").Remove()

	// ASP.NET error pages put the message in the first heading
	for _, selector := range []string{"h2", "h1", "title", "body"} {
		if selection := doc.Find(selector); selection.Length() > 0 {
			text := cleanWhitespace(selection.First().Text())
			if text != "" {
				return truncate(text, maxErrorText)
			}
		}
	}
	return ""
}

// cleanWhitespace collapses runs of whitespace into single spaces.
func cleanWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
