package httpfetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"quizmaster/internal/domain"
)

const validQuizJSON = `{
	"title": "Genetics",
	"description": "Test your knowledge",
	"topic": "Molecular Basis of Inheritance",
	"duration": 15,
	"correct_answer_marks": "4.0",
	"negative_marks": "1.0",
	"max_mistake_count": 9,
	"questions": [
		{
			"id": 101,
			"description": "Pick one",
			"options": [
				{"id": 1, "description": "a", "is_correct": false},
				{"id": 2, "description": "b", "is_correct": true}
			]
		}
	]
}`

func TestFetchQuizParsesAndCaches(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(validQuizJSON))
	}))
	defer server.Close()

	repo := NewRepository(server.Client(), server.URL, "", time.Minute)

	doc, err := repo.FetchQuiz(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if doc.Title != "Genetics" || doc.CorrectAnswerMarks != 4 {
		t.Fatalf("unexpected document: %+v", doc)
	}

	// Second fetch hits the cache.
	if _, err := repo.FetchQuiz(context.Background()); err != nil {
		t.Fatalf("fetch 2: %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected one upstream request, got %d", got)
	}
}

func TestFetchQuizRoutesThroughProxy(t *testing.T) {
	target := "https://api.example.com/quiz"
	var sawURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawURL = r.URL.String()
		w.Write([]byte(validQuizJSON))
	}))
	defer server.Close()

	repo := NewRepository(server.Client(), target, server.URL+"/raw?url=", time.Minute)
	if _, err := repo.FetchQuiz(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	want := "/raw?url=" + url.QueryEscape(target)
	if sawURL != want {
		t.Fatalf("expected proxied request %q, got %q", want, sawURL)
	}
}

func TestFetchQuizSurfacesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	repo := NewRepository(server.Client(), server.URL, "", time.Minute)
	_, err := repo.FetchQuiz(context.Background())
	if !errors.Is(err, domain.ErrQuizUnavailable) {
		t.Fatalf("expected ErrQuizUnavailable, got %v", err)
	}
}

func TestFetchQuizRejectsInvalidDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "", "duration": 0, "questions": []}`))
	}))
	defer server.Close()

	repo := NewRepository(server.Client(), server.URL, "", time.Minute)
	_, err := repo.FetchQuiz(context.Background())
	if !errors.Is(err, domain.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestFetchQuizDoesNotCacheFailures(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(validQuizJSON))
	}))
	defer server.Close()

	repo := NewRepository(server.Client(), server.URL, "", time.Minute)

	if _, err := repo.FetchQuiz(context.Background()); err == nil {
		t.Fatalf("expected first fetch to fail")
	}
	// The caller retried by calling again; a failure is never cached.
	doc, err := repo.FetchQuiz(context.Background())
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if doc.Title != "Genetics" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}
