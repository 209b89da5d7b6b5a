package restclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method string
	uri    string
	header http.Header
	body   string
}

func newServer(t *testing.T, status int, reply string) (*httptest.Server, *[]captured) {
	t.Helper()
	var reqs []captured
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		reqs = append(reqs, captured{method: r.Method, uri: r.URL.RequestURI(), header: r.Header.Clone(), body: string(b)})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(ts.Close)
	return ts, &reqs
}

type mutableToken struct{ value string }

func (m *mutableToken) Token() string { return m.value }

func TestClient_PostSendsJSONWithDefaultHeadersAndAPIKey(t *testing.T) {
	ts, reqs := newServer(t, http.StatusOK, `{"ok":true}`)
	c := New(ts.URL+"/", APIKeyAuth{Key: "secret"}, WithHeader("User-Agent", "agent/1"))

	resp, err := c.Post(context.Background(), "sms/2/text/advanced", map[string]string{"text": "M"})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, `{"ok":true}`, string(resp.Body))

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/sms/2/text/advanced", got.uri)
	assert.Equal(t, "App secret", got.header.Get("Authorization"))
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.Equal(t, "agent/1", got.header.Get("User-Agent"))
	assert.JSONEq(t, `{"text":"M"}`, got.body)
}

func TestClient_GetHasNoContentTypeAndAppendsQuery(t *testing.T) {
	ts, reqs := newServer(t, http.StatusOK, `{}`)
	c := New(ts.URL+"/", nil)

	_, err := c.Get(context.Background(), "api/list?embed=true", url.Values{"limit": {"5"}})
	require.NoError(t, err)

	_, err = c.Delete(context.Background(), "api/item/1", nil)
	require.NoError(t, err)

	require.Len(t, *reqs, 2)
	assert.Equal(t, "/api/list?embed=true&limit=5", (*reqs)[0].uri)
	assert.Empty(t, (*reqs)[0].header.Get("Content-Type"))
	assert.Empty(t, (*reqs)[0].header.Get("Authorization"))
	assert.Equal(t, http.MethodDelete, (*reqs)[1].method)
}

func TestClient_NonOKIsNotAnError(t *testing.T) {
	ts, _ := newServer(t, http.StatusUnauthorized, `{"error":"denied"}`)
	c := New(ts.URL+"/", APIKeyAuth{Key: "k"})

	resp, err := c.Put(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBearerAuth_ReadsTokenPerRequest(t *testing.T) {
	ts, reqs := newServer(t, http.StatusOK, `{}`)
	tok := &mutableToken{value: "first"}
	c := New(ts.URL+"/", BearerAuth{Source: tok})

	_, err := c.Get(context.Background(), "a", nil)
	require.NoError(t, err)
	tok.value = "second"
	_, err = c.Get(context.Background(), "b", nil)
	require.NoError(t, err)

	require.Len(t, *reqs, 2)
	assert.Equal(t, "Bearer first", (*reqs)[0].header.Get("Authorization"))
	assert.Equal(t, "Bearer second", (*reqs)[1].header.Get("Authorization"))
}

func TestBearerAuth_StaticTokenAndMissingSource(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, BearerAuth{Source: StaticToken("abc")}.Authenticate(req))
	assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))

	assert.Error(t, BearerAuth{}.Authenticate(req))
}

func TestResponse_DecodeJSON(t *testing.T) {
	r := &Response{StatusCode: 200, Body: []byte(`{"name":"box"}`)}
	var v struct {
		Name string `json:"name"`
	}
	require.NoError(t, r.DecodeJSON(&v))
	assert.Equal(t, "box", v.Name)

	bad := &Response{StatusCode: 200, Body: []byte(`not json`)}
	assert.Error(t, bad.DecodeJSON(&v))

	var nilResp *Response
	assert.False(t, nilResp.OK())
}
