package mailbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPClient_ListMessages(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":1,"subject":"KICKOFF: hi","from":"alice"}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret")
	msgs, err := c.ListMessages(context.Background(), "exp-001")
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/threads/exp-001/messages" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth = %q", gotAuth)
	}
	if len(msgs) != 1 || msgs[0].ID != 1 || msgs[0].From != "alice" {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestHTTPClient_Send(t *testing.T) {
	var got SendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/messages" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		_, _ = w.Write([]byte(`{"id":42}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	id, err := c.Send(context.Background(), SendRequest{
		ThreadID:    "exp-001",
		Subject:     "COMPILED: v1 artifact",
		Body:        "doc",
		AckRequired: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if id != 42 {
		t.Errorf("id = %d", id)
	}
	if got.ThreadID != "exp-001" || !got.AckRequired {
		t.Errorf("request = %+v", got)
	}
}

func TestHTTPClient_ErrorStatusIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "thread gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	_, err := c.ListMessages(context.Background(), "exp-001")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "thread gone") {
		t.Errorf("err = %v", err)
	}
}
