package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/keycalc/internal/session"
)

func newServer(t *testing.T) (*Server, *test.Hook) {
	t.Helper()
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return New(session.NewStore(time.Hour, l), l, "test"), hook
}

func request(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func create(t *testing.T, s *Server) string {
	t.Helper()
	w := request(t, s, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	st := decode[State](t, w)
	require.NotEmpty(t, st.ID)
	return st.ID
}

func TestCreate(t *testing.T) {
	s, _ := newServer(t)
	w := request(t, s, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	st := decode[State](t, w)
	assert.NotEmpty(t, st.ID)
	assert.Equal(t, "0", st.Buffer)
	assert.Empty(t, st.Preview)
	assert.Empty(t, st.History)
	assert.Empty(t, st.LastResult)
	assert.Nil(t, st.Committed)

	w = request(t, s, http.MethodGet, "/api/v1/sessions/"+st.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, st, decode[State](t, w))
}

func TestAppendCommit(t *testing.T) {
	s, hook := newServer(t)
	id := create(t, s)
	base := "/api/v1/sessions/" + id

	for _, tok := range []string{"7", "+", "3"} {
		w := request(t, s, http.MethodPost, base+"/append", `{"token":"`+tok+`"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	st := decode[State](t, request(t, s, http.MethodGet, base, ""))
	assert.Equal(t, "7+3", st.Buffer)
	assert.Equal(t, "10", st.Preview)

	w := request(t, s, http.MethodPost, base+"/commit", "")
	require.Equal(t, http.StatusOK, w.Code)
	st = decode[State](t, w)
	require.NotNil(t, st.Committed)
	assert.True(t, *st.Committed)
	assert.Equal(t, "10", st.Buffer)
	assert.Equal(t, "10", st.LastResult)
	assert.Equal(t, "7+3 =", st.History)
	assert.Empty(t, st.Preview)
	assert.Empty(t, st.Error)

	e := hook.LastEntry()
	require.NotNil(t, e)
	assert.Equal(t, "HTTP request", e.Message)
	var found bool
	for _, e := range hook.AllEntries() {
		if e.Message == "commit" {
			found = true
			assert.Equal(t, "7+3", e.Data["expression"])
			assert.Equal(t, "10", e.Data["result"])
		}
	}
	assert.True(t, found, "commit not logged")
}

func TestCommitRejected(t *testing.T) {
	s, hook := newServer(t)
	id := create(t, s)
	base := "/api/v1/sessions/" + id

	w := request(t, s, http.MethodPost, base+"/keys", `{"keys":["5","/","0"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = request(t, s, http.MethodPost, base+"/commit", "")
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[State](t, w)
	require.NotNil(t, st.Committed)
	assert.False(t, *st.Committed)
	assert.NotEmpty(t, st.Error)
	assert.Equal(t, "5÷0", st.Buffer)
	assert.Empty(t, st.LastResult)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Message == "commit rejected" {
			warned = true
			assert.Equal(t, logrus.WarnLevel, e.Level)
		}
	}
	assert.True(t, warned, "rejected commit not logged")
}

func TestKeys(t *testing.T) {
	s, _ := newServer(t)
	id := create(t, s)
	base := "/api/v1/sessions/" + id

	w := request(t, s, http.MethodPost, base+"/keys", `{"keys":["5","0","%","Enter"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[State](t, w)
	require.NotNil(t, st.Committed)
	assert.True(t, *st.Committed)
	assert.Equal(t, "0.5", st.Buffer)
	assert.Equal(t, "50% =", st.History)

	w = request(t, s, http.MethodPost, base+"/keys", `{"keys":["*","4","Shift","Backspace","2"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	st = decode[State](t, w)
	assert.Nil(t, st.Committed)
	assert.Equal(t, "0.5×2", st.Buffer)
	assert.Equal(t, "1", st.Preview)

	w = request(t, s, http.MethodPost, base+"/keys", `{"keys":["/","0","=","Escape","4","="]}`)
	require.Equal(t, http.StatusOK, w.Code)
	st = decode[State](t, w)
	require.NotNil(t, st.Committed)
	assert.True(t, *st.Committed)
	assert.Empty(t, st.Error)
	assert.Equal(t, "4", st.Buffer)
	assert.Equal(t, "4 =", st.History)
}

func TestClear(t *testing.T) {
	s, _ := newServer(t)
	id := create(t, s)
	base := "/api/v1/sessions/" + id

	request(t, s, http.MethodPost, base+"/keys", `{"keys":["1","2","+","3","Enter","-","4"]}`)
	w := request(t, s, http.MethodPost, base+"/clear", `{"kind":"backspace"}`)
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[State](t, w)
	assert.Equal(t, "15-", st.Buffer)
	assert.Equal(t, "15", st.LastResult)

	w = request(t, s, http.MethodPost, base+"/clear", `{"kind":"full"}`)
	require.Equal(t, http.StatusOK, w.Code)
	st = decode[State](t, w)
	assert.Equal(t, State{ID: id, Buffer: "0"}, st)
}

func TestDelete(t *testing.T) {
	s, _ := newServer(t)
	id := create(t, s)
	w := request(t, s, http.MethodDelete, "/api/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = request(t, s, http.MethodDelete, "/api/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = request(t, s, http.MethodGet, "/api/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrors(t *testing.T) {
	s, _ := newServer(t)
	id := create(t, s)
	base := "/api/v1/sessions/" + id
	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown-get", http.MethodGet, "/api/v1/sessions/nope", "", http.StatusNotFound},
		{"unknown-commit", http.MethodPost, "/api/v1/sessions/nope/commit", "", http.StatusNotFound},
		{"unknown-append", http.MethodPost, "/api/v1/sessions/nope/append", `{"token":"1"}`, http.StatusNotFound},
		{"append-empty", http.MethodPost, base + "/append", `{}`, http.StatusBadRequest},
		{"append-malformed", http.MethodPost, base + "/append", `{"token":`, http.StatusBadRequest},
		{"clear-kind", http.MethodPost, base + "/clear", `{"kind":"some"}`, http.StatusBadRequest},
		{"clear-missing", http.MethodPost, base + "/clear", `{}`, http.StatusBadRequest},
		{"keys-empty", http.MethodPost, base + "/keys", `{"keys":[]}`, http.StatusBadRequest},
		{"keys-blank", http.MethodPost, base + "/keys", `{"keys":["1",""]}`, http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := request(t, s, c.method, c.path, c.body)
			require.Equal(t, c.status, w.Code, w.Body.String())
			body := decode[ErrorBody](t, w)
			assert.Equal(t, c.status, body.Status)
			assert.NotEmpty(t, body.Message)
		})
	}
	// Failed requests leave the session alone.
	st := decode[State](t, request(t, s, http.MethodGet, base, ""))
	assert.Equal(t, "0", st.Buffer)
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t)
	create(t, s)
	w := request(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 1, body["sessions"])
}

func TestRun(t *testing.T) {
	s, _ := newServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
