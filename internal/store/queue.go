package store

import (
	"sort"

	"github.com/tdzio/tdz/internal/model"
)

const (
	queueFile    = "queue.json"
	sessionsFile = "queue_sessions.json"
)

// AddQueueItem appends a backlog item to the planning queue.
func (s *Store) AddQueueItem(item model.QueueItem) error {
	if item.TaskName == "" {
		return model.Validationf("queue item needs a task name")
	}
	return saveItem(s, queueFile, model.KindQueue, item.ID, item)
}

// GetQueueItem loads one queue item.
func (s *Store) GetQueueItem(id string) (model.QueueItem, error) {
	return loadItem[model.QueueItem](s, queueFile, model.KindQueue, id)
}

// DeleteQueueItem removes a queue item. Open sessions on it are left in
// place for audit.
func (s *Store) DeleteQueueItem(id string) error {
	return deleteItem[model.QueueItem](s, queueFile, model.KindQueue, id)
}

// ListQueue returns queue items, optionally filtered by status, oldest
// first so the backlog reads top-down.
func (s *Store) ListQueue(status model.QueueStatus) ([]model.QueueItem, error) {
	items, err := listItems[model.QueueItem](s, queueFile)
	if err != nil {
		return nil, err
	}
	out := make([]model.QueueItem, 0, len(items))
	for _, k := range sortedKeys(items) {
		item := items[k]
		if status != "" && item.Status != status {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// StartSession opens a timed session on a queue item and moves the item
// to active. At most one session per item may be open.
func (s *Store) StartSession(itemID string) (model.QueueSession, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := readCollection[model.QueueItem](s.path(queueFile))
	if err != nil {
		return model.QueueSession{}, err
	}
	item, ok := items[itemID]
	if !ok {
		return model.QueueSession{}, model.NotFound("queue item", itemID)
	}
	sessions, err := readCollection[model.QueueSession](s.path(sessionsFile))
	if err != nil {
		return model.QueueSession{}, err
	}
	for _, sess := range sessions {
		if sess.QueueItemID == itemID && sess.Open() {
			return model.QueueSession{}, model.Conflictf("queue item %s already has an open session", itemID)
		}
	}

	sess := model.QueueSession{
		SessionID:   model.NewID(),
		QueueItemID: itemID,
		StartTime:   model.Now(),
	}
	sessions[sess.SessionID] = sess
	if err := writeCollection(s.path(sessionsFile), sessions); err != nil {
		return model.QueueSession{}, err
	}

	item.Status = model.QueueActive
	item.UpdatedAt = model.Now()
	items[itemID] = item
	if err := writeCollection(s.path(queueFile), items); err != nil {
		return model.QueueSession{}, err
	}
	s.emit(model.KindQueue, itemID, OpUpsert)
	return sess, nil
}

// EndSession closes an open session, records its duration, and moves
// the queue item to complete.
func (s *Store) EndSession(sessionID string) (model.QueueSession, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := readCollection[model.QueueSession](s.path(sessionsFile))
	if err != nil {
		return model.QueueSession{}, err
	}
	sess, ok := sessions[sessionID]
	if !ok {
		return model.QueueSession{}, model.NotFound("session", sessionID)
	}
	if !sess.Open() {
		return model.QueueSession{}, model.Conflictf("session %s is already closed", sessionID)
	}
	now := model.Now()
	dur := int64(now.Sub(sess.StartTime).Seconds())
	sess.EndTime = &now
	sess.DurationSeconds = &dur
	sessions[sessionID] = sess
	if err := writeCollection(s.path(sessionsFile), sessions); err != nil {
		return model.QueueSession{}, err
	}

	items, err := readCollection[model.QueueItem](s.path(queueFile))
	if err != nil {
		return model.QueueSession{}, err
	}
	if item, ok := items[sess.QueueItemID]; ok {
		item.Status = model.QueueComplete
		item.UpdatedAt = now
		items[sess.QueueItemID] = item
		if err := writeCollection(s.path(queueFile), items); err != nil {
			return model.QueueSession{}, err
		}
		s.emit(model.KindQueue, item.ID, OpUpsert)
	}
	return sess, nil
}

// ListSessions returns sessions for one queue item, or all when itemID
// is empty, ordered by start time.
func (s *Store) ListSessions(itemID string) ([]model.QueueSession, error) {
	sessions, err := listItems[model.QueueSession](s, sessionsFile)
	if err != nil {
		return nil, err
	}
	out := make([]model.QueueSession, 0, len(sessions))
	for _, k := range sortedKeys(sessions) {
		sess := sessions[k]
		if itemID != "" && sess.QueueItemID != itemID {
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}
