package remote

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"design-system-api/internal/cache"
	"design-system-api/internal/kvstore"

	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

func newTestFetcher(t *testing.T, handler http.HandlerFunc) (*Fetcher, *int32, string) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	c := cache.NewExpiring(kvstore.NewMemoryStore(0), cache.Options{})
	return NewFetcher("GitHub", srv.Client(), c, nil, nil), &hits, srv.URL
}

func TestFetch_CachesSuccessfulResponse(t *testing.T) {
	f, hits, base := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"antd","count":3}`))
	})

	for i := 0; i < 3; i++ {
		got, err := Fetch[payload](context.Background(), f, base+"/x", "key")
		require.NoError(t, err)
		require.Equal(t, payload{Name: "antd", Count: 3}, got)
	}
	require.EqualValues(t, 1, atomic.LoadInt32(hits))
}

func TestFetch_SendsHeaders(t *testing.T) {
	var accept string
	f, _, base := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`[]`))
	})
	f.Headers["Accept"] = "application/vnd.github+json"

	_, err := Fetch[[]payload](context.Background(), f, base, "list")
	require.NoError(t, err)
	require.Equal(t, "application/vnd.github+json", accept)
}

func TestFetch_403IsRateLimit(t *testing.T) {
	f, _, base := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := Fetch[payload](context.Background(), f, base, "key")
	require.Error(t, err)
	require.True(t, IsRateLimited(err))
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	require.Contains(t, err.Error(), "rate limit")
	require.True(t, f.Cache.IsExpired("key"))
}

func TestFetch_OtherStatusIsFetchError(t *testing.T) {
	f, _, base := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := Fetch[payload](context.Background(), f, base, "key")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, http.StatusInternalServerError, fe.StatusCode)
	require.False(t, IsRateLimited(err))
	require.Equal(t, "GitHub API error: 500 Internal Server Error", err.Error())
}

func TestFetch_InvalidPayload(t *testing.T) {
	cases := map[string]string{
		"malformed":      `{"name":`,
		"missing name":   `{"count":1}`,
		"wrong shape":    `[1,2,3]`,
		"negative count": `{"name":"a","count":-1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			f, _, base := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := Fetch[payload](context.Background(), f, base, "key")
			require.ErrorIs(t, err, ErrInvalidPayload)
			require.True(t, f.Cache.IsExpired("key"))
		})
	}
}

func TestFetch_ValidatesSliceElements(t *testing.T) {
	f, _, base := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"a"},{"name":""}]`))
	})
	_, err := Fetch[[]payload](context.Background(), f, base, "key")
	require.ErrorIs(t, err, ErrInvalidPayload)
	require.Contains(t, err.Error(), "item 1")
}

func TestFetch_TransportError(t *testing.T) {
	c := cache.NewExpiring(kvstore.NewMemoryStore(0), cache.Options{})
	f := NewFetcher("npm", nil, c, nil, nil)
	_, err := Fetch[payload](context.Background(), f, "http://127.0.0.1:1/unreachable", "key")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Zero(t, fe.StatusCode)
	require.NotNil(t, errors.Unwrap(err))
}

func TestRaw_ReturnsText(t *testing.T) {
	var accept string
	f, _, base := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		_, _ = w.Write([]byte("# Button"))
	})
	text, err := f.Raw(context.Background(), base, "application/vnd.github.raw+json")
	require.NoError(t, err)
	require.Equal(t, "# Button", text)
	require.Equal(t, "application/vnd.github.raw+json", accept)
}

func TestFetch_BodyOverLimit(t *testing.T) {
	f, _, base := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"button","count":1}`))
	})
	f.MaxBody = 8

	_, err := Fetch[payload](context.Background(), f, base, "k")
	require.ErrorIs(t, err, ErrResponseTooLarge)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Contains(t, err.Error(), "over 8 bytes")

	f.MaxBody = 0
	got, err := Fetch[payload](context.Background(), f, base, "k")
	require.NoError(t, err)
	require.Equal(t, payload{Name: "button", Count: 1}, got)
}

func TestReadBody(t *testing.T) {
	body := []byte("hello")
	got, err := readBody(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	require.Equal(t, body, got)

	_, err = readBody(bytes.NewReader(body), 2)
	require.ErrorIs(t, err, ErrResponseTooLarge)
}
