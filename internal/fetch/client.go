package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/swagindex/mcp-server/internal/diag"
)

// DefaultTimeout bounds each request when the client has none configured.
const DefaultTimeout = 30 * time.Second

const (
	defaultAPIBase = "https://api.github.com"
	userAgent      = "swagindex-indexer"
)

// ErrNoStableRelease means no release matched the tag prefix.
var ErrNoStableRelease = errors.New("no stable release found")

// Doer is the subset of *http.Client the client relies on. Tests inject a
// fake so nothing touches the network.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the GitHub API and raw content host.
type Client struct {
	Doer    Doer
	Timeout time.Duration
	Token   string // sent as a bearer token when set
	APIBase string
}

// NewClient wraps doer. A nil doer uses http.DefaultClient.
func NewClient(doer Doer, timeout time.Duration, token, apiBase string) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Client{Doer: doer, Timeout: timeout, Token: token, APIBase: strings.TrimRight(apiBase, "/")}
}

type release struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

type contentEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// LatestRelease returns the version of the newest non-draft, non-prerelease
// release of repo whose tag starts with tagPrefix. The prefix and a leading
// "v" are removed from the tag.
func (c *Client) LatestRelease(ctx context.Context, repo, tagPrefix string, perPage int) (string, error) {
	if perPage <= 0 {
		perPage = 10
	}
	u := fmt.Sprintf("%s/repos/%s/releases?per_page=%d", c.APIBase, repo, perPage)
	body, err := c.get(ctx, u)
	if err != nil {
		return "", err
	}
	var releases []release
	if err := json.Unmarshal(body, &releases); err != nil {
		return "", diag.Malformed(u, err)
	}
	for _, r := range releases {
		if r.Draft || r.Prerelease || !strings.HasPrefix(r.TagName, tagPrefix) {
			continue
		}
		return strings.TrimPrefix(strings.TrimPrefix(r.TagName, tagPrefix), "v"), nil
	}
	return "", diag.Missing(repo, ErrNoStableRelease)
}

// ListVariants returns the directory names listed at a contents API URL,
// with defaultVariant moved first.
func (c *Client) ListVariants(ctx context.Context, contentsURL, defaultVariant string) ([]string, error) {
	body, err := c.get(ctx, contentsURL)
	if err != nil {
		return nil, err
	}
	var entries []contentEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, diag.Malformed(contentsURL, err)
	}
	var dirs []string
	hasDefault := false
	for _, e := range entries {
		if e.Type != "dir" {
			continue
		}
		if e.Name == defaultVariant {
			hasDefault = true
			continue
		}
		dirs = append(dirs, e.Name)
	}
	if hasDefault {
		dirs = append([]string{defaultVariant}, dirs...)
	}
	return dirs, nil
}

// Download saves the body at u to dest, creating parent directories.
func (c *Client) Download(ctx context.Context, u, dest string) error {
	body, err := c.get(ctx, u)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(dest, body, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if c.isAPI(u) {
		req.Header.Set("Accept", "application/vnd.github+json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Doer.Do(req)
	if err != nil {
		return nil, &diag.Error{Kind: diag.KindFetchFailure, Subject: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			URL:            u,
			StatusCode:     resp.StatusCode,
			RateLimitReset: resp.Header.Get("X-RateLimit-Reset"),
		}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &diag.Error{Kind: diag.KindFetchFailure, Subject: u, Err: err}
	}
	return body, nil
}

func (c *Client) isAPI(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	base, err := url.Parse(c.APIBase)
	if err != nil {
		return false
	}
	return parsed.Host == base.Host
}

// Expand fills {version} and {variant} placeholders in a URL template.
func Expand(template, version, variant string) string {
	return strings.NewReplacer("{version}", version, "{variant}", variant).Replace(template)
}
