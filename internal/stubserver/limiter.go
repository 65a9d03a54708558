package stubserver

import (
	"sync"
	"time"
)

// loginLimiter throttles repeated failed logins per login name. After
// maxFailures failed attempts the name is blocked until the window expires;
// a successful login resets the counter.
type loginLimiter struct {
	mu          sync.Mutex
	maxFailures int
	window      time.Duration
	now         func() time.Time
	attempts    map[string]*loginAttempts
}

type loginAttempts struct {
	failures     int
	blockedUntil time.Time
}

func newLoginLimiter(maxFailures int, window time.Duration) *loginLimiter {
	return &loginLimiter{
		maxFailures: maxFailures,
		window:      window,
		now:         time.Now,
		attempts:    map[string]*loginAttempts{},
	}
}

// allow reports whether a login attempt for name may proceed and, when
// blocked, how long until the block expires.
func (l *loginLimiter) allow(name string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.attempts[name]
	if !ok {
		return true, 0
	}
	if left := a.blockedUntil.Sub(l.now()); left > 0 {
		return false, left
	}
	return true, 0
}

// success resets the failure counter after a successful login.
func (l *loginLimiter) success(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, name)
}

// failure records a failed attempt and places a temporary block once the
// threshold is reached.
func (l *loginLimiter) failure(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.attempts[name]
	if !ok {
		a = &loginAttempts{}
		l.attempts[name] = a
	}
	a.failures++
	if a.failures >= l.maxFailures {
		a.blockedUntil = l.now().Add(l.window)
		a.failures = 0
	}
}
