package httpfetch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"quizmaster/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Repository fetches the quiz document over HTTP and caches it with a TTL.
// The quiz API does not send CORS headers, so the request can be routed
// through a proxy that wraps the target URL as a query parameter.
type Repository struct {
	client   *http.Client
	quizURL  string
	proxyURL string
	ttl      time.Duration
	clock    func() time.Time
	sf       singleflight.Group
	rnd      *rand.Rand

	mu     sync.RWMutex
	cached domain.QuizDocument
	expiry time.Time
	loaded bool
}

func NewRepository(client *http.Client, quizURL, proxyURL string, ttl time.Duration) *Repository {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Repository{
		client:   client,
		quizURL:  quizURL,
		proxyURL: proxyURL,
		ttl:      ttl,
		clock:    time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FetchQuiz returns the quiz document, from cache when fresh. Concurrent
// callers share a single outbound request. There is no automatic retry: a
// failed load surfaces as ErrQuizUnavailable and the caller stays in its
// loading state.
func (r *Repository) FetchQuiz(ctx context.Context) (domain.QuizDocument, error) {
	now := r.clock()

	r.mu.RLock()
	if r.loaded && r.expiry.After(now) {
		doc := r.cached
		r.mu.RUnlock()
		return doc, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(r.quizURL, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.loaded && r.expiry.After(now) {
			doc := r.cached
			r.mu.RUnlock()
			return doc, nil
		}
		r.mu.RUnlock()

		doc, err := r.fetch(ctx)
		if err != nil {
			return domain.QuizDocument{}, err
		}

		r.mu.Lock()
		r.cached = doc
		r.expiry = now.Add(r.ttlWithJitter())
		r.loaded = true
		r.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return domain.QuizDocument{}, err
	}
	return result.(domain.QuizDocument), nil
}

func (r *Repository) fetch(ctx context.Context) (domain.QuizDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.requestURL(), nil)
	if err != nil {
		return domain.QuizDocument{}, fmt.Errorf("%w: %v", domain.ErrQuizUnavailable, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.QuizDocument{}, fmt.Errorf("%w: %v", domain.ErrQuizUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.QuizDocument{}, fmt.Errorf("%w: status %d", domain.ErrQuizUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return domain.QuizDocument{}, fmt.Errorf("%w: read body: %v", domain.ErrQuizUnavailable, err)
	}
	return domain.ParseQuizDocument(body)
}

// requestURL wraps the quiz URL with the CORS proxy when one is configured.
func (r *Repository) requestURL() string {
	if r.proxyURL == "" {
		return r.quizURL
	}
	return r.proxyURL + url.QueryEscape(r.quizURL)
}

func (r *Repository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
