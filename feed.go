package main

import (
	"sync"
)

// Feed fans out table-change notifications to subscribers. A notification
// carries only the table name; subscribers are expected to re-read the table.
type Feed struct {
	mu       sync.Mutex
	subs     map[string]map[*Subscription]struct{}
	forwards []func(table string)
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscription receives at most one pending signal on C; further changes
// before the signal is consumed are folded into it.
type Subscription struct {
	Table string
	C     <-chan struct{}

	c    chan struct{}
	feed *Feed
	once sync.Once
}

func (f *Feed) Subscribe(table string) *Subscription {
	c := make(chan struct{}, 1)
	s := &Subscription{Table: table, C: c, c: c, feed: f}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[table] == nil {
		f.subs[table] = make(map[*Subscription]struct{})
	}
	f.subs[table][s] = struct{}{}
	return s
}

// Unsubscribe is idempotent. C is not closed so a pending receive on it
// must select on something else to exit.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		f := s.feed
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs[s.Table], s)
		if len(f.subs[s.Table]) == 0 {
			delete(f.subs, s.Table)
		}
	})
}

// OnNotify registers fn to be called for every local notification, after
// local subscribers have been signalled.
func (f *Feed) OnNotify(fn func(table string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forwards = append(f.forwards, fn)
}

// Notify signals every subscriber of table and runs the OnNotify hooks.
func (f *Feed) Notify(table string) {
	feedNotifications.WithLabelValues(table, "local").Inc()
	f.deliver(table)

	f.mu.Lock()
	forwards := append([]func(string){}, f.forwards...)
	f.mu.Unlock()
	for _, fn := range forwards {
		fn(table)
	}
}

// deliver signals local subscribers only; used for notifications that
// originated on another instance.
func (f *Feed) deliver(table string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.subs[table] {
		select {
		case s.c <- struct{}{}:
		default:
		}
	}
}

// Subscribers reports how many subscriptions are open for table.
func (f *Feed) Subscribers(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[table])
}
