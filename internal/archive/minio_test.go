package archive

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects in memory and answers the PUT and GET calls minio-go makes.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.Header().Set("ETag", `"etag"`)
		w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	mc, err := minio.New(u.Host, &minio.Options{
		Creds:        credentials.NewStaticV4("key", "secret", ""),
		Region:       defaultRegion,
		BucketLookup: minio.BucketLookupPath,
	})
	require.NoError(t, err)
	return New(mc, "search-results"), fake
}

func TestObjectKey(t *testing.T) {
	id := uuid.MustParse("7f1f3c1e-5c7b-4d0c-9a55-0d8f5f0b1a11")
	at := time.Date(2024, 3, 9, 23, 0, 0, 0, time.FixedZone("x", -2*3600))
	assert.Equal(t, "searches/2024/03/10/7f1f3c1e-5c7b-4d0c-9a55-0d8f5f0b1a11.json", ObjectKey(id, at))
}

func TestPut(t *testing.T) {
	client, fake := newTestClient(t)
	id := uuid.New()

	key, err := client.Put(context.Background(), id, []byte(`[{"title":"Cafe"}]`))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, id.String()+".json"))
	assert.Contains(t, fake.objects, "/search-results/"+key)
}

func TestGet(t *testing.T) {
	client, fake := newTestClient(t)
	fake.objects["/search-results/searches/2024/01/01/abc.json"] = []byte(`[{"title":"Cafe"}]`)

	data, err := client.Get(context.Background(), "searches/2024/01/01/abc.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title":"Cafe"}]`, string(data))
}

func TestGet_Missing(t *testing.T) {
	client, _ := newTestClient(t)
	_, err := client.Get(context.Background(), "searches/none.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsNoSuchKey(t *testing.T) {
	assert.False(t, IsNoSuchKey(nil))
	assert.True(t, IsNoSuchKey(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, IsNoSuchKey(errors.New("The specified key does not exist.")))
	assert.False(t, IsNoSuchKey(errors.New("connection refused")))
}
