package notify

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

type subscriber[E any] struct {
	id      int
	handler func(E)
	comment string
}

type MultiplexerSender[E any] struct {
	m *Multiplexer[E]
}

// Send delivers e to every subscriber, in subscription order, before returning.
func (ms *MultiplexerSender[E]) Send(e E) {
	ms.m.send(e)
}

func NewMultiplexerSender[E any](comment string) (*MultiplexerSender[E], *Multiplexer[E]) {
	m := &Multiplexer[E]{
		comment: comment,
	}
	return &MultiplexerSender[E]{m: m}, m
}

type Multiplexer[E any] struct {
	comment         string
	subscribersLock sync.Mutex
	subscribers     []subscriber[E]
	nextID          int
}

// Subscribe registers handler and returns an ID for Unsubscribe.
// handler runs on the sender's goroutine and must not call back into the multiplexer.
func (m *Multiplexer[E]) Subscribe(comment string, handler func(E)) int {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	m.nextID++
	m.subscribers = append(m.subscribers, subscriber[E]{
		id:      m.nextID,
		handler: handler,
		comment: comment,
	})
	return m.nextID
}

func (m *Multiplexer[E]) Unsubscribe(id int) {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	i := slices.IndexFunc(m.subscribers, func(sub subscriber[E]) bool { return sub.id == id })
	if i == -1 {
		panic("already unsubscribed")
	}
	m.subscribers = slices.Delete(m.subscribers, i, i+1)
}

func (m *Multiplexer[E]) send(e E) {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	for _, sub := range m.subscribers {
		m.deliver(sub, e)
	}
}

func (m *Multiplexer[E]) deliver(sub subscriber[E], e E) {
	defer func() {
		if r := recover(); r != nil {
			zap.S().Errorf("multiplexer %s: subscriber %s panicked: %v (event %#v)", m.comment, sub.comment, r, e)
		}
	}()
	sub.handler(e)
}
