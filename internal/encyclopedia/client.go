// Package encyclopedia reads page summaries, search hits and images from Wikipedia.
package encyclopedia

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/upstream"
)

// Summary is the lead of an article.
type Summary struct {
	Title   string
	Extract string
	URL     string
}

// Client calls the REST and Action APIs. Every method makes a single attempt.
type Client struct {
	Fetcher    upstream.Fetcher
	RESTBase   string
	ActionBase string
}

// New creates a client using the given fetcher.
func New(fetcher upstream.Fetcher, restBase, actionBase string) *Client {
	return &Client{
		Fetcher:    fetcher,
		RESTBase:   strings.TrimRight(restBase, "/"),
		ActionBase: actionBase,
	}
}

type summaryResponse struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Summary fetches page/summary/{title}.
func (c *Client) Summary(ctx context.Context, title string) (Summary, error) {
	endpoint := c.RESTBase + "/page/summary/" + url.PathEscape(title)

	body, err := c.Fetcher.Get(ctx, endpoint)
	if err != nil {
		return Summary{}, err
	}

	var resp summaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Summary{}, fmt.Errorf("%s: %w", config.ErrUpstreamDecode, err)
	}
	return Summary{
		Title:   resp.Title,
		Extract: resp.Extract,
		URL:     resp.ContentURLs.Desktop.Page,
	}, nil
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// SearchTitle returns the title of the first full-text search hit, or "" when
// nothing matches.
func (c *Client) SearchTitle(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("format", "json")
	params.Set("utf8", "1")

	body, err := c.Fetcher.Get(ctx, c.ActionBase+"?"+params.Encode())
	if err != nil {
		return "", err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrUpstreamDecode, err)
	}
	if len(resp.Query.Search) == 0 {
		return "", nil
	}
	return resp.Query.Search[0].Title, nil
}

type imagesResponse struct {
	Query struct {
		Pages map[string]struct {
			Index    int `json:"index"`
			Original struct {
				Source string `json:"source"`
			} `json:"original"`
		} `json:"pages"`
	} `json:"query"`
}

// Images returns the original image URL of up to limit pages matching query,
// in search rank order.
func (c *Client) Images(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("generator", "search")
	params.Set("gsrsearch", query)
	params.Set("gsrlimit", strconv.Itoa(limit))
	params.Set("prop", "pageimages")
	params.Set("piprop", "original")
	params.Set("origin", "*")

	body, err := c.Fetcher.Get(ctx, c.ActionBase+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp imagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrUpstreamDecode, err)
	}

	type ranked struct {
		index  int
		source string
	}
	hits := make([]ranked, 0, len(resp.Query.Pages))
	for _, p := range resp.Query.Pages {
		if p.Original.Source != "" {
			hits = append(hits, ranked{index: p.Index, source: p.Original.Source})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].index < hits[j].index })

	images := make([]string, 0, len(hits))
	for _, h := range hits {
		if len(images) == limit {
			break
		}
		images = append(images, h.source)
	}
	return images, nil
}
