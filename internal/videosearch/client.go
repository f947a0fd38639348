// Package videosearch proxies live video searches to the YouTube Data API.
package videosearch

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tartampluch/go-countdown/internal/apperr"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/upstream"
)

// Item is one live video.
type Item struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

// Result is the search response.
type Result struct {
	Items []Item `json:"items"`
}

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = apperr.New(apperr.NotConfigured, config.ErrSearchNotConfig)

// ErrMissingQuery is returned for an empty query.
var ErrMissingQuery = apperr.New(apperr.BadRequest, config.ErrSearchQuery)

// Client performs the searches.
type Client struct {
	Fetcher     upstream.Fetcher
	Credentials Credentials
	BaseURL     string
}

// New creates a client.
func New(fetcher upstream.Fetcher, creds Credentials, baseURL string) *Client {
	if baseURL == "" {
		baseURL = config.YouTubeSearchURL
	}
	return &Client{Fetcher: fetcher, Credentials: creds, BaseURL: baseURL}
}

type thumbnail struct {
	URL string `json:"url"`
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				Default *thumbnail `json:"default"`
				Medium  *thumbnail `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Search returns live videos matching query.
//
// A missing key is reported before the query is validated, so an unconfigured
// server answers NotConfigured whatever the request.
func (c *Client) Search(ctx context.Context, query string) (Result, error) {
	var key string
	var ok bool
	if c.Credentials != nil {
		key, ok = c.Credentials.APIKey(ctx)
	}
	if !ok {
		return Result{}, ErrNotConfigured
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, ErrMissingQuery
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("eventType", "live")
	params.Set("maxResults", strconv.Itoa(config.YouTubeMaxResults))
	params.Set("q", query)
	params.Set("key", key)

	body, err := c.Fetcher.Get(ctx, c.BaseURL+"?"+params.Encode())
	if err != nil {
		slog.Warn(config.MsgSearchUpstream,
			config.LogKeyComponent, config.CompVideoSearch,
			config.LogKeyStatus, apperr.HTTPStatus(err),
			config.LogKeyError, err,
		)
		if apperr.KindOf(err) == apperr.Internal {
			return Result{}, apperr.Wrap(apperr.UpstreamFailure, config.ErrUpstreamNetwork, err)
		}
		return Result{}, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Result{}, apperr.Wrap(apperr.UpstreamFailure, config.ErrUpstreamDecode, err)
	}

	items := make([]Item, 0, len(resp.Items))
	for _, it := range resp.Items {
		item := Item{ID: it.ID.VideoID, Title: it.Snippet.Title}
		switch {
		case it.Snippet.Thumbnails.Medium != nil && it.Snippet.Thumbnails.Medium.URL != "":
			item.Thumbnail = it.Snippet.Thumbnails.Medium.URL
		case it.Snippet.Thumbnails.Default != nil:
			item.Thumbnail = it.Snippet.Thumbnails.Default.URL
		}
		items = append(items, item)
	}
	return Result{Items: items}, nil
}
