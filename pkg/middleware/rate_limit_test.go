package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestMemberRateLimiter_Allow(t *testing.T) {
	limiter := NewMemberRateLimiter(3, time.Minute, DefaultMemberExtractor, testLogger())
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		if !limiter.Allow("u1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.Allow("u1") {
		t.Error("fourth request within the window should be refused")
	}

	// Other members have their own budget.
	if !limiter.Allow("u2") {
		t.Error("a different member should not be affected")
	}
}

func TestMemberRateLimiter_WindowSlides(t *testing.T) {
	limiter := NewMemberRateLimiter(1, 20*time.Millisecond, DefaultMemberExtractor, testLogger())
	defer limiter.Stop()

	if !limiter.Allow("u1") {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow("u1") {
		t.Fatal("second request inside the window should be refused")
	}

	time.Sleep(30 * time.Millisecond)
	if !limiter.Allow("u1") {
		t.Error("request after the window should be allowed again")
	}
}

func TestMemberRateLimiter_ConcurrentAccess(t *testing.T) {
	limiter := NewMemberRateLimiter(50, time.Minute, DefaultMemberExtractor, testLogger())
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("u1") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("allowed = %d, want exactly the limit of 50", allowed)
	}
}

func TestMemberRateLimit_Middleware(t *testing.T) {
	limiter := NewMemberRateLimiter(1, time.Minute, DefaultMemberExtractor, testLogger())
	defer limiter.Stop()

	handler := MemberRateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(HeaderMemberID, "u1")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}

	// Requests without a member id bypass the limiter; identity enforcement
	// rejects them separately.
	anon := httptest.NewRequest(http.MethodPost, "/", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, anon)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d for anonymous request", rec.Code, http.StatusOK)
	}
}
