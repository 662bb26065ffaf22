package utils

import (
	"context"
	"sync"
	"time"
)

const loginFailPrefix = "admin:loginfail:"

type failWindow struct {
	count   int
	expires time.Time
}

var (
	loginFails   = map[string]failWindow{}
	loginFailsMu sync.Mutex
)

// LoginLocked reports whether ip has reached max failed logins within the lockout window.
func LoginLocked(ip string, max int) bool {
	if max <= 0 {
		return false
	}
	return loginFailCount(ip) >= max
}

// LoginFailRecord counts a failed login for ip; the window restarts after lockout.
func LoginFailRecord(ip string, lockout time.Duration) int {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		key := loginFailPrefix + ip
		n, err := rc.Incr(ctx, key).Result()
		if err == nil {
			if n == 1 {
				_ = rc.Expire(ctx, key, lockout).Err()
			}
			return int(n)
		}
	}
	loginFailsMu.Lock()
	defer loginFailsMu.Unlock()
	w := loginFails[ip]
	if time.Now().After(w.expires) {
		w = failWindow{expires: time.Now().Add(lockout)}
	}
	w.count++
	loginFails[ip] = w
	return w.count
}

// LoginFailReset clears the counter after a successful login.
func LoginFailReset(ip string) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		_ = rc.Del(ctx, loginFailPrefix+ip).Err()
	}
	loginFailsMu.Lock()
	delete(loginFails, ip)
	loginFailsMu.Unlock()
}

func loginFailCount(ip string) int {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		if n, err := rc.Get(ctx, loginFailPrefix+ip).Int(); err == nil {
			return n
		}
	}
	loginFailsMu.Lock()
	defer loginFailsMu.Unlock()
	w, ok := loginFails[ip]
	if !ok {
		return 0
	}
	if time.Now().After(w.expires) {
		delete(loginFails, ip)
		return 0
	}
	return w.count
}
