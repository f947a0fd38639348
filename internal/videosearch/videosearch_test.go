package videosearch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-countdown/internal/apperr"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/upstream"
	"github.com/tartampluch/go-countdown/internal/videosearch"
	"github.com/zalando/go-keyring"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	args := m.Called(ctx, rawURL)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

// -----------------------------------------------------------------------------
// Credentials
// -----------------------------------------------------------------------------

func TestCredentials_Chain(t *testing.T) {
	keyring.MockInit()

	key, ok := videosearch.DefaultCredentials("from-env").APIKey(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "from-env", key)

	_, ok = videosearch.DefaultCredentials("").APIKey(context.Background())
	assert.False(t, ok, "empty keyring and no configured key")

	require.NoError(t, keyring.Set(config.KeyringService, config.KeyringUser, "from-keyring"))
	key, ok = videosearch.DefaultCredentials("").APIKey(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "from-keyring", key)

	key, _ = videosearch.DefaultCredentials("from-env").APIKey(context.Background())
	assert.Equal(t, "from-env", key, "configured key wins over the keyring")
}

func TestCredentials_KeyringErrorIsUnavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("no secret service"))
	t.Cleanup(keyring.MockInit)

	_, ok := videosearch.KeyringKey{Service: config.KeyringService, User: config.KeyringUser}.APIKey(context.Background())
	assert.False(t, ok)
}

// -----------------------------------------------------------------------------
// Search
// -----------------------------------------------------------------------------

func TestSearch_NotConfiguredWinsOverMissingQuery(t *testing.T) {
	fetcher := new(MockFetcher)
	c := videosearch.New(fetcher, videosearch.StaticKey(""), "")

	for _, q := range []string{"", "New Year live Japan"} {
		_, err := c.Search(context.Background(), q)
		require.Error(t, err)
		assert.Equal(t, apperr.NotConfigured, apperr.KindOf(err))
		assert.Equal(t, http.StatusNotImplemented, apperr.HTTPStatus(err))
		assert.Equal(t, config.ErrSearchNotConfig, apperr.Message(err))
	}
	fetcher.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSearch_MissingQuery(t *testing.T) {
	fetcher := new(MockFetcher)
	c := videosearch.New(fetcher, videosearch.StaticKey("k"), "")

	_, err := c.Search(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.HTTPStatus(err))
	assert.Equal(t, config.ErrSearchQuery, apperr.Message(err))
	fetcher.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSearch_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "snippet", q.Get("part"))
		assert.Equal(t, "video", q.Get("type"))
		assert.Equal(t, "live", q.Get("eventType"))
		assert.Equal(t, "8", q.Get("maxResults"))
		assert.Equal(t, "New Year live Japan", q.Get("q"))
		assert.Equal(t, "secret", q.Get("key"))

		_, _ = w.Write([]byte(`{"items":[
			{"id":{"videoId":"a1"},"snippet":{"title":"Tokyo live","thumbnails":{"default":{"url":"d1"},"medium":{"url":"m1"}}}},
			{"id":{"videoId":"b2"},"snippet":{"title":"Osaka live","thumbnails":{"default":{"url":"d2"}}}},
			{"id":{"videoId":"c3"},"snippet":{"title":"No thumbs","thumbnails":{}}}
		]}`))
	}))
	defer ts.Close()

	c := videosearch.New(upstream.NewHTTPFetcher("videosearch-success", time.Second, nil), videosearch.StaticKey("secret"), ts.URL)
	res, err := c.Search(context.Background(), "New Year live Japan")

	require.NoError(t, err)
	assert.Equal(t, []videosearch.Item{
		{ID: "a1", Title: "Tokyo live", Thumbnail: "m1"},
		{ID: "b2", Title: "Osaka live", Thumbnail: "d2"},
		{ID: "c3", Title: "No thumbs"},
	}, res.Items)
}

func TestSearch_UpstreamStatusPropagates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quotaExceeded"}}`))
	}))
	defer ts.Close()

	c := videosearch.New(upstream.NewHTTPFetcher("videosearch-403", time.Second, nil), videosearch.StaticKey("secret"), ts.URL)
	_, err := c.Search(context.Background(), "q")

	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperr.HTTPStatus(err))
	assert.Contains(t, apperr.Message(err), "quotaExceeded")
}

func TestSearch_TransportError(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	c := videosearch.New(fetcher, videosearch.StaticKey("secret"), "https://example.invalid/search")
	_, err := c.Search(context.Background(), "q")

	require.Error(t, err)
	assert.Equal(t, apperr.UpstreamFailure, apperr.KindOf(err))
	assert.Equal(t, http.StatusBadGateway, apperr.HTTPStatus(err))
	fetcher.AssertExpectations(t)
}

func TestSearch_EmptyItems(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Get", mock.Anything, mock.Anything).Return([]byte(`{}`), nil)

	res, err := videosearch.New(fetcher, videosearch.StaticKey("k"), "").Search(context.Background(), "q")

	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}
