package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alextreichler/embroiderystore/internal/cache"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, cache.NewMemory(), time.Minute)
}

func TestValidCategories_Cached(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/products/valid-categories", r.URL.Path)
		fmt.Fprint(w, `{"categories":["Flowers","Animals"]}`)
	}))

	for i := 0; i < 3; i++ {
		cats, err := c.ValidCategories(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"Flowers", "Animals"}, cats)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestListProducts_BareArrayAndBearer(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "Flowers & Leaves", r.URL.Query().Get("category"))
		fmt.Fprint(w, `[{"_id":"p1","name":"Rose","price":12.5,"categories":["Flowers & Leaves"]}]`)
	}))

	products, err := c.As("tok").ListProducts(context.Background(), "Flowers & Leaves")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Rose", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("12.5")))
}

func TestGetProduct_WrappedObject(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/p1", r.URL.Path)
		fmt.Fprint(w, `{"product":{"_id":"p1","name":"Rose","machine_files":{"DST":{"file_url":"http://a/1.dst","file_name":"rose.dst"}}}}`)
	}))

	p, err := c.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "http://a/1.dst", p.Files["DST"].FileURL.Raw)
}

func TestUpdateOrderStatus_SendsJSON(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/orders/o1/status", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Mail Sent", body["status"])
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.UpdateOrderStatus(context.Background(), "o1", "Mail Sent"))
}

func TestProductInput_Encode(t *testing.T) {
	in := ProductInput{
		Name:       "Rose",
		Categories: []string{"Flowers"},
		Price:      decimal.RequireFromString("9.9"),
		Image:      "data:image/jpeg;base64,AAAA",
		Files:      []DesignFile{{Format: "DST", Name: "rose.dst", Data: []byte("stitches")}},
	}
	body, ct, err := in.Encode()
	require.NoError(t, err)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Rose", r.FormValue("name"))
		assert.Equal(t, `["Flowers"]`, r.FormValue("categories"))
		assert.Equal(t, "9.90", r.FormValue("price"))
		assert.Equal(t, "DST", r.FormValue("machine_types"))
		f, hdr, err := r.FormFile("files_DST")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "rose.dst", hdr.Filename)
		assert.Equal(t, "stitches", string(data))
		fmt.Fprint(w, `{"product":{"_id":"new"}}`)
	}))

	p, err := c.CreateProduct(context.Background(), body, ct)
	require.NoError(t, err)
	assert.Equal(t, "new", p.ID)
}

func TestErrors_ServerMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message":"Product name already exists"}`)
	}))

	_, err := c.ListProducts(context.Background(), "")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusConflict))
	assert.Equal(t, KindServer, Classify(err))
	assert.Equal(t, "Product name already exists", UserMessage(err, "fallback"))
}

func TestErrors_Network(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, nil, 0)
	_, err := c.ListOrders(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, KindNetwork, Classify(err))
	assert.Contains(t, UserMessage(err, "x"), "Network error")
}

func TestErrors_Timeout(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	c.HTTP.Timeout = 20 * time.Millisecond

	_, err := c.ListOrders(context.Background(), true)
	require.Error(t, err)
	assert.Equal(t, KindTimeout, Classify(err))
}

func TestClassify_Generic(t *testing.T) {
	assert.Equal(t, KindGeneric, Classify(errors.New("odd")))
	assert.Equal(t, "fallback", UserMessage(errors.New("odd"), "fallback"))
}
