package api

import (
	"encoding/json"

	"github.com/tasched/tasched/common"
	"github.com/tasched/tasched/internal/server"
)

func (s *Api) historyHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.HistoryParams
	if len(body) > 0 {
		if err := json.Unmarshal(body, &m); err != nil {
			return common.UPDATE_HISTORY, nil, err
		}
	}
	entries, err := s.store.History(m.ScheduleID, m.Limit)
	if err != nil {
		return common.UPDATE_HISTORY, nil, err
	}
	if entries == nil {
		entries = []*common.HistoryEntry{}
	}
	return common.UPDATE_HISTORY, &common.HistoryResponse{Entries: entries}, nil
}
