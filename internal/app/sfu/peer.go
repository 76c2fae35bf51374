package sfu

import (
	"sync"

	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
)

// Peer is the per-room, per-user bundle of engine resources. The peer
// owns what it holds: closing the peer closes every transport,
// producer, and consumer it accumulated.
type Peer struct {
	UserID domain.UserID

	mu         sync.Mutex
	transports []core.MediaTransport
	producers  []core.MediaProducer
	consumers  []core.MediaConsumer
}

func newPeer(uid domain.UserID) *Peer {
	return &Peer{UserID: uid}
}

func (p *Peer) addTransport(t core.MediaTransport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transports = append(p.transports, t)
}

func (p *Peer) addProducer(pr core.MediaProducer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.producers = append(p.producers, pr)
}

func (p *Peer) addConsumer(c core.MediaConsumer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.consumers = append(p.consumers, c)
}

func (p *Peer) transport(id string) (core.MediaTransport, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.transports {
		if t.ID() == id {
			return t, true
		}
	}
	return nil, false
}

func (p *Peer) producer(id string) (core.MediaProducer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pr := range p.producers {
		if pr.ID() == id {
			return pr, true
		}
	}
	return nil, false
}

// close releases every owned resource. Consumers and producers go
// before their transports.
func (p *Peer) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.consumers {
		c.Close()
	}
	for _, pr := range p.producers {
		pr.Close()
	}
	for _, t := range p.transports {
		t.Close()
	}
	p.consumers = nil
	p.producers = nil
	p.transports = nil
}
