package api

import (
	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/internal/server"
	"github.com/tasched/tasched/pkg/taschlib"
)

// Broadcaster pushes every engine event to the attached connections.
type Broadcaster struct {
	pool *server.Pool
}

func NewBroadcaster(pool *server.Pool) *Broadcaster {
	return &Broadcaster{pool: pool}
}

func (b *Broadcaster) Handle(e taschlib.Event) error {
	b.pool.Broadcast(server.TopicRun, server.MakeResult(common.UPDATE_EVENT, e))
	return nil
}
