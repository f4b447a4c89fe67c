package archive_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinchodeluca/scann-url/internal/archive"
	"github.com/tinchodeluca/scann-url/internal/logger"
)

func TestObjectKey(t *testing.T) {
	t.Parallel()

	page := archive.Page{
		RunID:       "abc",
		ProductName: "Samsung 990 PRO",
		FetchedAt:   time.Date(2024, 3, 7, 23, 30, 0, 0, time.UTC),
	}
	assert.Equal(t, "2024/03/07/samsung-990-pro-abc.html", archive.ObjectKey(page))
}

type objectRequest struct {
	method string
	path   string
	body   string
	url    string
}

func newS3Server(t *testing.T) (*httptest.Server, func() []objectRequest) {
	t.Helper()

	var (
		mu   sync.Mutex
		reqs []objectRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, objectRequest{
			method: r.Method,
			path:   r.URL.Path,
			body:   string(body),
			url:    r.Header.Get("X-Amz-Meta-Url"),
		})
		mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []objectRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]objectRequest(nil), reqs...)
	}
}

func newArchiver(t *testing.T, srv *httptest.Server) *archive.MinioArchiver {
	t.Helper()

	a, err := archive.NewMinioArchiver(archive.Config{
		Enabled:   true,
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "access",
		SecretKey: "secret",
		Region:    "us-east-1",
	}.WithDefaults(), logger.NewNop())
	require.NoError(t, err)
	return a
}

func TestMinioArchiver_Archive(t *testing.T) {
	t.Parallel()

	srv, requests := newS3Server(t)
	a := newArchiver(t, srv)

	err := a.Archive(context.Background(), archive.Page{
		RunID:       "run1",
		ProductName: "SSD",
		URL:         "https://example.com/ssd",
		StatusCode:  http.StatusOK,
		HTML:        []byte("<html>no price</html>"),
		FetchedAt:   time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	got := requests()
	require.NotEmpty(t, got)
	last := got[len(got)-1]
	assert.Equal(t, http.MethodPut, last.method)
	assert.Equal(t, "/pricewatch-pages/2024/03/07/ssd-run1.html", last.path)
	assert.Contains(t, last.body, "<html>no price</html>")
	assert.Equal(t, "https://example.com/ssd", last.url)
}

func TestMinioArchiver_ArchiveEmptyPage(t *testing.T) {
	t.Parallel()

	srv, requests := newS3Server(t)
	a := newArchiver(t, srv)

	err := a.Archive(context.Background(), archive.Page{RunID: "run1", ProductName: "SSD"})
	require.Error(t, err)
	assert.Empty(t, requests())
}

func TestMinioArchiver_EnsureBucketExisting(t *testing.T) {
	t.Parallel()

	srv, requests := newS3Server(t)
	a := newArchiver(t, srv)

	require.NoError(t, a.EnsureBucket(context.Background()))
	got := requests()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodHead, got[0].method)
}
