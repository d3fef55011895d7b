package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShikimoriClient_FetchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/animes", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "updated", r.URL.Query().Get("order"))
		w.Write([]byte(`[{"id": 5114, "russian": "Стальной алхимик", "name": "Fullmetal Alchemist"}]`))
	}))
	defer server.Close()

	client := NewShikimoriClient(server.URL, "test-agent")
	items, err := client.FetchPage(context.Background(), PageParams{Page: 2, Limit: 50, Order: OrderUpdated})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "5114", items[0].ID)
	assert.Equal(t, "Стальной алхимик", items[0].Title)
}

func TestShikimoriClient_FetchDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/animes/5114", r.URL.Path)
		w.Write([]byte(`{
			"id": 5114,
			"name": "Fullmetal Alchemist: Brotherhood",
			"russian": "Стальной алхимик",
			"score": "9.1",
			"status": "released",
			"kind": "tv",
			"rating": "r",
			"episodes": 64,
			"episodes_aired": 64,
			"aired_on": "2009-04-05",
			"image": {"original": "/system/animes/original/5114.jpg"},
			"genres": [{"name": "Action", "russian": "Экшен"}],
			"studios": [{"name": "Bones"}]
		}`))
	}))
	defer server.Close()

	client := NewShikimoriClient(server.URL, "test-agent")
	record, err := client.FetchDetail(context.Background(), "5114")

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "5114", record.ID)
	assert.Equal(t, "Стальной алхимик", record.Title)
	assert.Equal(t, "Fullmetal Alchemist: Brotherhood", record.TitleEn)
	assert.Equal(t, 9.1, record.Score)
	assert.Equal(t, 64, record.Episodes)
	assert.Equal(t, server.URL+"/system/animes/original/5114.jpg", record.PosterURL)
	assert.Equal(t, []Genre{{Name: "Action", Native: "Экшен"}}, record.Genres)
	assert.Equal(t, []string{"Bones"}, record.Studios)
	assert.Equal(t, 2009, record.Year())
}

func TestShikimoriClient_FetchDetail_Absent(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewShikimoriClient(server.URL, "test-agent")
	record, err := client.FetchDetail(context.Background(), "99999")

	require.NoError(t, err)
	assert.Nil(t, record)
	// 404 is a definitive answer, not a transient failure.
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestShikimoriClient_RetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"id": 1, "name": "Test", "score": "7.0"}`))
	}))
	defer server.Close()

	client := NewShikimoriClient(server.URL, "test-agent")
	record, err := client.FetchDetail(context.Background(), "1")

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestShikimoriClient_RetryExhaustion(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewShikimoriClient(server.URL, "test-agent")
	_, err := client.FetchDetail(context.Background(), "1")

	assert.Error(t, err)
	// Initial attempt plus two retries.
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
