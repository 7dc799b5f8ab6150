package server

import (
	"log"
	"sync"
)

// TopicRun is the pool topic every attached watcher of the active run
// joins.
const TopicRun = "run"

// Pool tracks connections that asked to receive pushed updates, grouped
// by topic. A connection that fails a write is closed and dropped.
type Pool struct {
	log *log.Logger
	mu  sync.RWMutex
	m   map[string]map[*SyncConn]struct{}
}

func NewPool(l *log.Logger) *Pool {
	return &Pool{
		log: l,
		m:   make(map[string]map[*SyncConn]struct{}),
	}
}

// AddConnection subscribes conn to topic.
func (p *Pool) AddConnection(topic string, conn *SyncConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	conns, ok := p.m[topic]
	if !ok {
		conns = make(map[*SyncConn]struct{})
		p.m[topic] = conns
	}
	conns[conn] = struct{}{}
}

// RemoveConnection drops conn from every topic. It does not close it.
func (p *Pool) RemoveConnection(conn *SyncConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for topic, conns := range p.m {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(p.m, topic)
		}
	}
}

// Count returns the number of connections subscribed to topic.
func (p *Pool) Count(topic string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.m[topic])
}

// Broadcast writes data as one frame to every connection on topic and
// returns how many writes succeeded.
func (p *Pool) Broadcast(topic string, data []byte) int {
	p.mu.RLock()
	conns := make([]*SyncConn, 0, len(p.m[topic]))
	for c := range p.m[topic] {
		conns = append(conns, c)
	}
	p.mu.RUnlock()

	var (
		sent   int
		failed []*SyncConn
	)
	for _, c := range conns {
		if err := c.Write(data); err != nil {
			if p.log != nil {
				p.log.Printf("Dropping watcher on %s: %v", topic, err)
			}
			failed = append(failed, c)
			continue
		}
		sent++
	}
	for _, c := range failed {
		p.RemoveConnection(c)
		_ = c.Conn.Close()
	}
	return sent
}
