// Package ratelimiter はログインなどの操作の頻度をキー単位で制限します。
package ratelimiter

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Limiter は固定ウィンドウ方式のキー単位レートリミッターです。
// ウィンドウ内の呼び出し回数がlimitを超えるとAllowはfalseを返します。
type Limiter struct {
	limit  int           // ウィンドウあたりの上限
	window time.Duration // どの単位でリセットするか

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	count       int
	windowStart time.Time
}

// New は新しいLimiterのインスタンスを生成します。
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*entry),
	}
}

// Allow はキーに対する呼び出しが上限内かを返し、カウントを進めます。
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.entries[key]
	if !ok || now.Sub(e.windowStart) >= l.window {
		// ウィンドウを過ぎたらカウントリセット
		l.entries[key] = &entry{count: 1, windowStart: now}
		return true
	}

	e.count++
	return e.count <= l.limit
}

// Middleware はクライアントIPをキーとするGinミドルウェアを返します。
// 上限超過時は429を返して処理を打ち切ります。
func Middleware(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
