package api

import (
	"encoding/json"

	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/internal/server"
)

// attachHandler subscribes the connection to run events. The reply is the
// current snapshot; every later event arrives as an UPDATE_EVENT push
// until the connection closes.
// The connection joins the pool before the snapshot is taken so no event
// falls between the two; a duplicate is reconciled by the watcher.
func (s *Api) attachHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	if sconn != nil {
		pool.AddConnection(server.TopicRun, sconn)
	}
	utype, res, err := s.status(common.UPDATE_ATTACH)
	if err != nil {
		if sconn != nil {
			pool.RemoveConnection(sconn)
		}
		return utype, nil, err
	}
	return utype, res, nil
}
