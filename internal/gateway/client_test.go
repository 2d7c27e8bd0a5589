package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nhle/taskdue/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, "proj-1"), srv
}

func TestRequestHeaders(t *testing.T) {
	var gotProject, gotSession string
	client, _ := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotProject = r.Header.Get("X-Appwrite-Project")
			gotSession = r.Header.Get("X-Appwrite-Session")
			w.Write([]byte(`{}`))
		}))

	client.SetSession("tok-1")
	docs := NewDatabases(client, "db-1")
	var out model.Task
	if err := docs.GetDocument(context.Background(), "tasks", "t1", &out); err != nil {
		t.Fatalf("get: %v", err)
	}

	if gotProject != "proj-1" {
		t.Errorf("project header = %q", gotProject)
	}
	if gotSession != "tok-1" {
		t.Errorf("session header = %q", gotSession)
	}
}

func TestEmptySessionOmitsHeader(t *testing.T) {
	var sawHeader bool
	client, _ := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			_, sawHeader = r.Header["X-Appwrite-Session"]
			w.Write([]byte(`{}`))
		}))

	client.SetSession("tok-1")
	client.SetSession("")
	docs := NewDatabases(client, "db-1")
	var out model.Task
	if err := docs.GetDocument(context.Background(), "tasks", "t1", &out); err != nil {
		t.Fatalf("get: %v", err)
	}

	if sawHeader {
		t.Error("de-authenticated client still sent a session header")
	}
}

func TestConflictClassification(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"Document with the requested ID already exists.","code":409,"type":"document_already_exists"}`))
		}))

	docs := NewDatabases(client, "db-1")
	err := docs.CreateDocument(
		context.Background(), "completions", "abc_def",
		map[string]string{"taskId": "t1"}, nil,
	)
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if !IsConflict(err) {
		t.Errorf("IsConflict = false for %v", err)
	}
	if IsUnauthorized(err) || IsNotFound(err) {
		t.Errorf("conflict misclassified: %v", err)
	}
}

func TestUnauthorizedClassification(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Unauthorized","code":401,"type":"general_unauthorized_scope"}`))
		}))

	account := NewAccount(client)
	_, err := account.CurrentUser(context.Background())
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	if !IsUnauthorized(err) {
		t.Errorf("IsUnauthorized = false for %v", err)
	}
}

func TestListDocumentsQueriesAndEnvelope(t *testing.T) {
	var gotQueries []string
	client, _ := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotQueries = r.URL.Query()["queries[]"]
			w.Write([]byte(`{
				"total": 2,
				"documents": [
					{"$id":"t1","userId":"u1","title":"a","dueDate":"2024-02-01","priority":"low"},
					{"$id":"t2","userId":"u1","title":"b","dueDate":"2024-03-01","priority":"high"}
				]
			}`))
		}))

	docs := NewDatabases(client, "db-1")
	var tasks []model.Task
	err := docs.ListDocuments(context.Background(), "tasks", []Query{
		QueryEqual("userId", "u1"),
		QueryOrderAsc("dueDate"),
		QueryLimit(1000),
	}, &tasks)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(tasks) != 2 || tasks[0].ID != "t1" || tasks[1].Priority != model.PriorityHigh {
		t.Errorf("tasks = %+v", tasks)
	}

	if len(gotQueries) != 3 {
		t.Fatalf("queries[] count = %d, want 3", len(gotQueries))
	}
	var q Query
	if err := json.Unmarshal([]byte(gotQueries[0]), &q); err != nil {
		t.Fatalf("unmarshaling query: %v", err)
	}
	if q.Method != "equal" || q.Attribute != "userId" {
		t.Errorf("first query = %+v", q)
	}
}

func TestRetryOn429(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{"$id":"t1"}`))
		}))

	docs := NewDatabases(client, "db-1")
	var out model.Task
	if err := docs.GetDocument(context.Background(), "tasks", "t1", &out); err != nil {
		t.Fatalf("get after retry: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestCreateEmailSessionReturnsSecret(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/account/sessions/email" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			w.Write([]byte(`{"$id":"sess-1","userId":"u1","secret":"tok-abc"}`))
		}))

	account := NewAccount(client)
	token, err := account.CreateEmailSession(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if token != "tok-abc" {
		t.Errorf("token = %q, want tok-abc", token)
	}
}
