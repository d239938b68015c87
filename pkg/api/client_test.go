package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Error(_ context.Context, msg string) {
	n.mu.Lock()
	n.messages = append(n.messages, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type fakeSession struct {
	mu       sync.Mutex
	token    string
	expired  int
	redirect string
}

func (s *fakeSession) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *fakeSession) Expire(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expired++
	s.redirect = "/login"
}

func newTestClient(t *testing.T, baseURL string, sess *fakeSession, n *recordingNotifier) *Client {
	t.Helper()

	client, err := NewClient(Config{
		BaseURL:  baseURL,
		Tokens:   sess,
		Session:  sess,
		Notifier: n,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresAbsoluteURL(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for empty base url")
	}
	if _, err := NewClient(Config{BaseURL: "/relative"}); err == nil {
		t.Fatal("expected error for relative base url")
	}
}

func TestSendPrefixesBasePathAndAttachesToken(t *testing.T) {
	var gotPath, gotAuth, gotQuery, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		gotRequestID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))
	defer srv.Close()

	sess := &fakeSession{token: "secret"}
	client := newTestClient(t, srv.URL, sess, &recordingNotifier{})

	var out []map[string]any
	err := client.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/candidates/",
		Query:  map[string][]string{"status": {"new"}},
	}, &out)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if gotPath != "/api/candidates/" {
		t.Fatalf("path = %q, want /api/candidates/", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotQuery != "status=new" {
		t.Fatalf("query = %q", gotQuery)
	}
	if gotRequestID == "" {
		t.Fatal("missing X-Request-ID")
	}
	if len(out) != 1 {
		t.Fatalf("decoded %d items, want 1", len(out))
	}
}

func TestSendWithoutTokenOmitsAuthorization(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSession{}, &recordingNotifier{})
	if _, err := client.Send(context.Background(), Request{Path: "/jobs/"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sawAuth {
		t.Fatal("authorization header sent without a token")
	}
}

func TestSendEncodesJSONBody(t *testing.T) {
	var body map[string]any
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSession{}, &recordingNotifier{})
	err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/jobs/",
		Body:   map[string]string{"title": "Go engineer"},
	}, nil)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if contentType != "application/json" {
		t.Fatalf("content type = %q", contentType)
	}
	if body["title"] != "Go engineer" {
		t.Fatalf("body = %v", body)
	}
}

func TestSendEncodesMultipartForm(t *testing.T) {
	var fields map[string]string
	var fileBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fields = map[string]string{
			"first_name": r.FormValue("first_name"),
			"email":      r.FormValue("email"),
		}
		f, _, err := r.FormFile("resume")
		if err == nil {
			b, _ := io.ReadAll(f)
			fileBody = string(b)
		}
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSession{}, &recordingNotifier{})
	form := (&Form{}).
		Add("first_name", "Ada").
		Add("email", "ada@example.com").
		AddFile("resume", "cv.pdf", strings.NewReader("%PDF"))

	var out struct {
		ID int64 `json:"id"`
	}
	if err := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/candidates/", Form: form}, &out); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if fields["first_name"] != "Ada" || fields["email"] != "ada@example.com" {
		t.Fatalf("fields = %v", fields)
	}
	if fileBody != "%PDF" {
		t.Fatalf("file body = %q", fileBody)
	}
	if out.ID != 7 {
		t.Fatalf("id = %d", out.ID)
	}
}

func TestUnauthorizedExpiresSessionOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Not authenticated"}`))
	}))
	defer srv.Close()

	sess := &fakeSession{token: "stale"}
	notifier := &recordingNotifier{}
	client := newTestClient(t, srv.URL, sess, notifier)

	_, err := client.Send(context.Background(), Request{Path: "/candidates/"})
	if err == nil {
		t.Fatal("expected failure")
	}
	if kind, _ := KindOf(err); kind != KindUnauthorized {
		t.Fatalf("kind = %v, want unauthorized", kind)
	}
	if sess.token != "" {
		t.Fatal("token not cleared")
	}
	if sess.expired != 1 || sess.redirect != "/login" {
		t.Fatalf("expired=%d redirect=%q", sess.expired, sess.redirect)
	}
	got := notifier.all()
	if len(got) != 1 || got[0] != MsgSessionExpired {
		t.Fatalf("notifications = %v", got)
	}
}

func TestValidationDetailListNotifiesEachMessageInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","email"],"msg":"A"},{"loc":["body","title"],"msg":"B"}]}`))
	}))
	defer srv.Close()

	notifier := &recordingNotifier{}
	client := newTestClient(t, srv.URL, &fakeSession{}, notifier)

	_, err := client.Send(context.Background(), Request{Method: http.MethodPost, Path: "/jobs/", Body: map[string]string{}})
	if err == nil {
		t.Fatal("expected failure")
	}

	got := notifier.all()
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("notifications = %v, want [A B]", got)
	}
}

func TestInterceptionNotifications(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   Kind
		want   []string
	}{
		{"forbidden", http.StatusForbidden, `{"detail":"nope"}`, KindForbidden, []string{MsgForbidden}},
		{"server error", http.StatusInternalServerError, `{"detail":"boom"}`, KindServer, []string{MsgServerError}},
		{"bad gateway", http.StatusBadGateway, ``, KindServer, []string{MsgServerError}},
		{"validation string", http.StatusUnprocessableEntity, `{"detail":"email taken"}`, KindValidation, []string{"email taken"}},
		{"validation empty", http.StatusUnprocessableEntity, `{}`, KindValidation, []string{MsgValidation}},
		{"not found", http.StatusNotFound, `{"detail":"Candidate not found"}`, KindClient, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			notifier := &recordingNotifier{}
			sess := &fakeSession{token: "t"}
			client := newTestClient(t, srv.URL, sess, notifier)

			_, err := client.Send(context.Background(), Request{Path: "/jobs/1"})
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *Error", err)
			}
			if apiErr.Kind != tt.kind || apiErr.StatusCode != tt.status {
				t.Fatalf("kind=%v status=%d", apiErr.Kind, apiErr.StatusCode)
			}
			got := notifier.all()
			if len(got) != len(tt.want) {
				t.Fatalf("notifications = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("notifications = %v, want %v", got, tt.want)
				}
			}
			if sess.expired != 0 {
				t.Fatal("session expired on non-401 response")
			}
		})
	}
}

func TestNotFoundKeepsDetailForCaller(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Candidate not found"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeSession{}, &recordingNotifier{})
	_, err := client.Send(context.Background(), Request{Path: "/candidates/9"})
	if got := DetailMessage(err); got != "Candidate not found" {
		t.Fatalf("detail = %q", got)
	}
}

func TestNetworkFailureNotifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	notifier := &recordingNotifier{}
	client := newTestClient(t, url, &fakeSession{}, notifier)

	_, err := client.Send(context.Background(), Request{Path: "/jobs/"})
	if kind, ok := KindOf(err); !ok || kind != KindNetwork {
		t.Fatalf("err = %v, want network error", err)
	}
	got := notifier.all()
	if len(got) != 1 || got[0] != MsgNetworkError {
		t.Fatalf("notifications = %v", got)
	}
}

func TestCancelledCallerIsNotNotified(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	notifier := &recordingNotifier{}
	client := newTestClient(t, srv.URL, &fakeSession{}, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Send(ctx, Request{Path: "/jobs/"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got := notifier.all(); len(got) != 0 {
		t.Fatalf("notifications = %v, want none", got)
	}
}
