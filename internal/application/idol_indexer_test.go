package application

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/idol-catalog/internal/domain"
	"github.com/oksasatya/idol-catalog/internal/domain/entity"
	"github.com/oksasatya/idol-catalog/pkg/events"
	"github.com/oksasatya/idol-catalog/pkg/helpers"
)

type esCall struct {
	Method string
	Path   string
	Body   string
}

// fakeES answers like an Elasticsearch node and records each request.
func fakeES(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) (*elasticsearch.Client, *[]esCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []esCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, esCall{Method: r.Method, Path: r.URL.Path, Body: string(b)})
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handle(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := helpers.NewESClient([]string{srv.URL}, "", "")
	require.NoError(t, err)
	return es, &calls
}

func TestNewIdolIndexer_DisabledWithoutClient(t *testing.T) {
	assert.Nil(t, NewIdolIndexer(nil, "idols", nil))
}

func TestIdolIndexer_HandleUpsertAndDelete(t *testing.T) {
	es, calls := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"result":"not_found"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})
	x := NewIdolIndexer(es, "idols", helpers.NopLogger())
	ctx := context.Background()

	idol := entity.NewIdol("aespa")
	require.NoError(t, idol.AddMember(&entity.Member{Name: "karina"}))
	idol.AssignID(7)

	require.NoError(t, x.Handle(ctx, events.Upserted(idol)))
	require.NoError(t, x.Handle(ctx, events.Deleted(7)))

	require.Len(t, *calls, 2)
	put := (*calls)[0]
	assert.Equal(t, "/idols/_doc/7", put.Path)
	var doc events.IdolDoc
	require.NoError(t, json.Unmarshal([]byte(put.Body), &doc))
	assert.Equal(t, "aespa", doc.Name)
	assert.Equal(t, []string{"karina"}, doc.MemberNames)

	del := (*calls)[1]
	assert.Equal(t, http.MethodDelete, del.Method)
	assert.Equal(t, "/idols/_doc/7", del.Path)

	assert.ErrorIs(t, x.Handle(ctx, events.IdolEvent{Type: "idol.renamed"}), domain.ErrInvalidArgument)
	assert.ErrorIs(t, x.Handle(ctx, events.IdolEvent{Type: events.IdolUpserted, IdolID: 1}), domain.ErrInvalidArgument)
}

func TestIdolIndexer_PutFailure(t *testing.T) {
	es, _ := fakeES(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})
	x := NewIdolIndexer(es, "idols", helpers.NopLogger())
	err := x.Put(context.Background(), &events.IdolDoc{ID: 1, Name: "aespa"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestIdolIndexer_Search(t *testing.T) {
	es, calls := fakeES(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{"id":1,"name":"aespa","cnt_member":3,"member_names":["karina","giselle","winter"],"created_at":"` +
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339) + `"}}]}}`))
	})
	x := NewIdolIndexer(es, "idols", helpers.NopLogger())

	hits, err := x.Search(context.Background(), "karina", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "aespa", hits[0].Name)
	assert.Equal(t, 3, hits[0].CntMember)

	require.Len(t, *calls, 1)
	assert.Equal(t, "/idols/_search", (*calls)[0].Path)
	assert.True(t, strings.Contains((*calls)[0].Body, `"multi_match"`))
	assert.True(t, strings.Contains((*calls)[0].Body, `"size":10`))
}
