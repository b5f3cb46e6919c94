// internal/api/client_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type recordedQuery struct {
	path       string
	key        string
	selections string
	from       string
}

func newServer(t *testing.T, handler func(q recordedQuery) string) (*httptest.Server, *[]recordedQuery) {
	t.Helper()
	var mu sync.Mutex
	var seen []recordedQuery

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := recordedQuery{
			path:       r.URL.Path,
			key:        r.URL.Query().Get("key"),
			selections: r.URL.Query().Get("selections"),
			from:       r.URL.Query().Get("from"),
		}
		mu.Lock()
		seen = append(seen, q)
		mu.Unlock()
		_, _ = w.Write([]byte(handler(q)))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newClient(t *testing.T, base string, keys ...string) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: base, Keys: keys, RequestsPerMinute: 60000})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	return c
}

func TestFetch_Success(t *testing.T) {
	srv, seen := newServer(t, func(recordedQuery) string {
		return `{"territory":{"ABC":{"sector":3,"faction":"42"}}}`
	})
	c := newClient(t, srv.URL, "k1")

	res := c.Fetch(context.Background(), Request{
		Section:    "faction",
		ID:         "42",
		Selections: []string{"territory", "basic"},
		From:       1700,
	})
	if !res.OK {
		t.Fatalf("expected ok, status=%q", res.Status)
	}

	var p TerritoryPayload
	if err := json.Unmarshal(res.Payload, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Territory["ABC"].Faction != 42 {
		t.Fatalf("faction id not decoded from string: %d", p.Territory["ABC"].Faction)
	}

	q := (*seen)[0]
	if q.path != "/faction/42" || q.selections != "territory,basic" || q.from != "1700" || q.key != "k1" {
		t.Fatalf("unexpected query: %+v", q)
	}
}

func TestFetch_ErrorEnvelopeDisablesKeyAndRotates(t *testing.T) {
	srv, seen := newServer(t, func(q recordedQuery) string {
		if q.key == "bad" {
			return `{"error":{"code":2,"error":"Incorrect key"}}`
		}
		return `{"timestamp":123}`
	})
	c := newClient(t, srv.URL, "bad", "good")

	res := c.Fetch(context.Background(), Request{Section: "torn", Selections: []string{"timestamp"}})
	if res.OK {
		t.Fatalf("expected failure")
	}
	if res.Code != 2 {
		t.Fatalf("code=%d", res.Code)
	}

	var apiErr *Error
	if !errors.As(res.Err(), &apiErr) || apiErr.Code() != 2 {
		t.Fatalf("Err() should expose code 2, got %v", res.Err())
	}

	for i := 0; i < 3; i++ {
		if res := c.Fetch(context.Background(), Request{Section: "torn"}); !res.OK {
			t.Fatalf("fetch %d failed: %s", i, res.Status)
		}
	}
	for _, q := range (*seen)[1:] {
		if q.key != "good" {
			t.Fatalf("disabled key reused: %+v", q)
		}
	}
	if c.UsableKeys() != 1 {
		t.Fatalf("usable keys=%d", c.UsableKeys())
	}
}

func TestFetch_NonKeyErrorKeepsKey(t *testing.T) {
	srv, _ := newServer(t, func(recordedQuery) string {
		return `{"error":{"code":5,"error":"Too many requests"}}`
	})
	c := newClient(t, srv.URL, "k1")

	if res := c.Fetch(context.Background(), Request{Section: "torn"}); res.OK || res.Code != 5 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if c.UsableKeys() != 1 {
		t.Fatalf("rate-limit error must not disable the key")
	}
}

func TestFetch_HTTPStatusIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, "k1")
	res := c.Fetch(context.Background(), Request{Section: "torn"})
	if res.OK {
		t.Fatalf("expected failure")
	}

	var apiErr *Error
	if !errors.As(res.Err(), &apiErr) || apiErr.Code() != CodeTransport {
		t.Fatalf("expected transport code, got %v", res.Err())
	}
}

func TestID_Decode(t *testing.T) {
	cases := map[string]ID{
		`123`:   123,
		`"456"`: 456,
		`""`:    0,
		`null`:  0,
	}
	for in, want := range cases {
		var got ID
		if err := json.Unmarshal([]byte(in), &got); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if got != want {
			t.Fatalf("%s: got %d want %d", in, got, want)
		}
	}
}
