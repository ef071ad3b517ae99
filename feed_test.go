package main

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestFeedNotifiesOnlyWatchedTable(t *testing.T) {
	f := NewFeed()
	qs := f.Subscribe(tableQuestions)
	ss := f.Subscribe(tableStudents)
	defer qs.Unsubscribe()
	defer ss.Unsubscribe()

	f.Notify(tableQuestions)

	select {
	case <-qs.C:
	default:
		t.Fatal("questions subscriber not signalled")
	}
	select {
	case <-ss.C:
		t.Fatal("students subscriber signalled for questions change")
	default:
	}
}

func TestFeedCoalescesPendingSignals(t *testing.T) {
	f := NewFeed()
	s := f.Subscribe(tableQuestions)
	defer s.Unsubscribe()

	for i := 0; i < 5; i++ {
		f.Notify(tableQuestions)
	}
	<-s.C
	select {
	case <-s.C:
		t.Fatal("expected a single pending signal")
	default:
	}

	f.Notify(tableQuestions)
	select {
	case <-s.C:
	default:
		t.Fatal("signal after drain was lost")
	}
}

func TestFeedUnsubscribe(t *testing.T) {
	f := NewFeed()
	a := f.Subscribe(tableStudents)
	b := f.Subscribe(tableStudents)
	require.Equal(t, 2, f.Subscribers(tableStudents))

	a.Unsubscribe()
	a.Unsubscribe()
	assert.Equal(t, 1, f.Subscribers(tableStudents))

	f.Notify(tableStudents)
	select {
	case <-a.C:
		t.Fatal("unsubscribed channel signalled")
	default:
	}
	<-b.C

	b.Unsubscribe()
	assert.Equal(t, 0, f.Subscribers(tableStudents))
}

func TestFeedForwardsLocalNotifications(t *testing.T) {
	f := NewFeed()
	var mu sync.Mutex
	var got []string
	f.OnNotify(func(table string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, table)
	})

	f.Notify(tableQuestions)
	f.deliver(tableStudents) // remote deliveries are not forwarded again
	f.Notify(tableStudents)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{tableQuestions, tableStudents}, got)
}

func TestFeedConcurrentPublishers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := NewFeed()
	s := f.Subscribe(tableQuestions)
	defer s.Unsubscribe()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Notify(tableQuestions)
			sub := f.Subscribe(tableQuestions)
			sub.Unsubscribe()
		}()
	}
	wg.Wait()

	<-s.C
	assert.Equal(t, 1, f.Subscribers(tableQuestions))
}

func TestChangeMessageRoundTrip(t *testing.T) {
	payload, err := encodeChange("node-1", tableStudents)
	require.NoError(t, err)

	m, err := decodeChange(string(payload))
	require.NoError(t, err)
	assert.Equal(t, changeMessage{Origin: "node-1", Table: tableStudents}, m)

	_, err = decodeChange(`{"origin":"x"}`)
	assert.Error(t, err)
	_, err = decodeChange(`not json`)
	assert.Error(t, err)
}
