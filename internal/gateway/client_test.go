package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestClient(h http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(h)
	c := NewClient(srv.URL, "test-key", "service-staff-token")
	return c, srv
}

func TestListSendsFilterLimitAndToken(t *testing.T) {
	var gotQuery map[string][]string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		assert.Equal(t, "/v1/orders", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		_ = json.NewEncoder(w).Encode(listResponse{})
	})
	defer srv.Close()

	_, err := List[testRecord](context.Background(), c, EntityOrders, ListOptions{
		Filter:    Filter{"orderID": "O1"},
		Limit:     50,
		NextToken: "tok-1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"O1"}, gotQuery["filter.orderID"])
	assert.Equal(t, []string{"50"}, gotQuery["limit"])
	assert.Equal(t, []string{"tok-1"}, gotQuery["nextToken"])
}

func TestListAllWalksEveryPage(t *testing.T) {
	pages := map[string]listResponse{
		"": {
			Items:     []json.RawMessage{[]byte(`{"id":"a"}`), []byte(`{"id":"b"}`)},
			NextToken: "t1",
		},
		"t1": {
			Items:     []json.RawMessage{[]byte(`{"id":"c"}`)},
			NextToken: "t2",
		},
		"t2": {
			Items: []json.RawMessage{[]byte(`{"id":"d"}`)},
		},
	}
	var calls int
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(pages[r.URL.Query().Get("nextToken")])
	})
	defer srv.Close()

	all, err := ListAll[testRecord](context.Background(), c, EntityOrders, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	ids := make([]string, 0, len(all))
	for _, r := range all {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
}

func TestListAllSinglePage(t *testing.T) {
	var calls int
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(listResponse{Items: []json.RawMessage{[]byte(`{"id":"only"}`)}})
	})
	defer srv.Close()

	all, err := ListAll[testRecord](context.Background(), c, EntityOrders, nil, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	require.Len(t, all, 1)
	assert.Equal(t, "only", all[0].ID)
}

func TestGetAbsentRecordIsNotAnError(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"item":null}`))
	})
	defer srv.Close()

	rec, err := Get[testRecord](context.Background(), c, EntityProducts, "missing", AuthAPIKey)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestUpdateUsesStaffBearerToken(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"item":{"id":"O1","name":"n"}}`))
	})
	defer srv.Close()

	rec, err := Update[testRecord](context.Background(), c, EntityOrders, "O1",
		map[string]any{"status": "Preparing"}, AuthStaff)
	require.NoError(t, err)
	assert.Equal(t, "Bearer service-staff-token", gotAuth)
	assert.Equal(t, "Preparing", gotBody["status"])
	assert.Equal(t, "O1", rec.ID)
}

func TestUpdatePrefersSessionTokenFromContext(t *testing.T) {
	var gotAuth string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"item":{"id":"O1"}}`))
	})
	defer srv.Close()

	ctx := WithStaffToken(context.Background(), "session-token")
	_, err := Update[testRecord](ctx, c, EntityOrders, "O1", map[string]any{"status": "Confirmed"}, AuthStaff)
	require.NoError(t, err)
	assert.Equal(t, "Bearer session-token", gotAuth)
}

func TestErrorResponseSurfacesMessage(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"staff token required"}`))
	})
	defer srv.Close()

	_, err := Update[testRecord](context.Background(), c, EntityOrders, "O1", nil, AuthAPIKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "staff token required")
}
