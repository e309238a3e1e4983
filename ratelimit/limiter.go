// Package ratelimit реализует простой лимитер с фиксированным окном.
// Состояние живёт в памяти процесса, устаревшие окна вычищаются при
// каждом обращении.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter отвечает на вопрос «пускать ли ещё одну попытку для ключа».
// Allow только проверяет, Hit фиксирует состоявшуюся попытку.
type Limiter interface {
	Allow(key string) bool
	Hit(key string)
}

type window struct {
	start time.Time
	count int
}

type FixedWindow struct {
	mu       sync.Mutex
	windows  map[string]*window
	interval time.Duration
	max      int
	now      func() time.Time
}

func NewFixedWindow(interval time.Duration, max int) *FixedWindow {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if max <= 0 {
		max = 10
	}
	return &FixedWindow{
		windows:  make(map[string]*window),
		interval: interval,
		max:      max,
		now:      time.Now,
	}
}

func (l *FixedWindow) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep()
	w, ok := l.windows[key]
	if !ok {
		return true
	}
	return w.count < l.max
}

func (l *FixedWindow) Hit(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.interval {
		l.windows[key] = &window{start: now, count: 1}
		return
	}
	w.count++
}

// sweep выкидывает истёкшие окна. Вызывается под мьютексом.
func (l *FixedWindow) sweep() {
	now := l.now()
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.interval {
			delete(l.windows, key)
		}
	}
}
