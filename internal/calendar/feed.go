package calendar

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-countdown/internal/config"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	modified     time.Time // truncated to the second, as sent on the wire
	lastModified string    // RFC1123 format required by HTTP headers
}

// Feed serves the latest rendered calendar per language.
//
// Renders are swapped in whole through an atomic pointer: the feed is read on
// every poll but rebuilt rarely, so readers never take a lock.
type Feed struct {
	items atomic.Pointer[map[string]*cacheItem]

	// Select picks the language of a request. Nil always serves DefaultLanguage.
	Select func(r *http.Request) string
}

// NewFeed creates an empty feed. It answers 503 until the first Update.
func NewFeed(selectLang func(r *http.Request) string) *Feed {
	return &Feed{Select: selectLang}
}

// Update atomically replaces the content served for lang.
func (f *Feed) Update(lang string, data []byte, at time.Time) {
	hash := sha256.Sum256(data)
	modified := at.UTC().Truncate(time.Second)
	item := &cacheItem{
		data:         data,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		modified:     modified,
		lastModified: modified.Format(http.TimeFormat),
	}

	for {
		old := f.items.Load()
		next := make(map[string]*cacheItem, 1)
		if old != nil {
			for k, v := range *old {
				next[k] = v
			}
		}
		next[lang] = item
		if f.items.CompareAndSwap(old, &next) {
			break
		}
	}

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeyLang, lang,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, item.etag,
	)
}

// Ready reports whether at least one language has been rendered.
func (f *Feed) Ready() bool {
	items := f.items.Load()
	return items != nil && len(*items) > 0
}

func (f *Feed) load(lang string) *cacheItem {
	items := f.items.Load()
	if items == nil {
		return nil
	}
	if item, ok := (*items)[lang]; ok {
		return item
	}
	return (*items)[config.DefaultLanguage]
}

// ServeHTTP serves the ICS content of the request's language with HTTP caching
// support.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. Method Validation
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	// 2. Pick the render for the request language
	lang := config.DefaultLanguage
	if f.Select != nil {
		lang = f.Select(r)
	}
	item := f.load(lang)

	// 3. Readiness Check
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	// 4. Set Response Headers
	h := w.Header()
	h.Set(config.HeaderContentType, config.MimeTextCalendar)
	h.Set(config.HeaderXContentType, config.MimeNoSniff)
	h.Set(config.HeaderCacheControl, config.CacheControlPrivate)
	h.Add(config.HeaderVary, config.HeaderAcceptLanguage)
	h.Set(config.HeaderETag, item.etag)
	h.Set(config.HeaderLastModified, item.lastModified)

	// 5. Conditional Requests (Browser Caching)
	if item.notModified(r) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	// 6. Serve Content
	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyLang, lang,
				config.LogKeyError, err,
			)
		}
	}
}

// notModified evaluates the request preconditions against the item.
// If-None-Match takes precedence; If-Modified-Since is only read without it.
func (c *cacheItem) notModified(r *http.Request) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		for _, tag := range strings.Split(match, ",") {
			tag = strings.TrimPrefix(strings.TrimSpace(tag), "W/")
			if tag == "*" || tag == c.etag {
				return true
			}
		}
		return false
	}

	since := r.Header.Get(config.HeaderIfModifiedSince)
	if since == "" {
		return false
	}
	clientTime, err := http.ParseTime(since)
	if err != nil {
		return false
	}
	return !c.modified.After(clientTime)
}
