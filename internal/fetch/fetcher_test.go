package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchReturnsBody(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := New(Config{Timeout: 5 * time.Second})
	body, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, []byte("<html>ok</html>"), body)
	require.Equal(t, DefaultUserAgent, gotUA)
}

func TestFetchNonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(Config{Timeout: 5 * time.Second})
	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	require.Equal(t, srv.URL, fetchErr.URL)
}

func TestFetchCanceledContext(t *testing.T) {
	t.Parallel()

	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(Config{Timeout: 5 * time.Second})
	_, err := c.Fetch(ctx, srv.URL)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
}
