// Package audit persists an append-only trail of search activity. Entries
// travel through an asynq queue so the HTTP request path never waits on the
// audit store.
package audit

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskRecordEntry = "audit.record"

const TaskCleanup = "audit.cleanup"

type RecordEntryPayload struct {
	Kind       string            `json:"kind"`
	ActorID    string            `json:"actorId"`
	Payload    map[string]string `json:"payload"`
	OccurredAt time.Time         `json:"occurredAt"`
}

type CleanupPayload struct {
	Before time.Time `json:"before"`
}

func NewRecordEntryTask(payload RecordEntryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecordEntry, data), nil
}

func ParseRecordEntryPayload(task *asynq.Task) (RecordEntryPayload, error) {
	var payload RecordEntryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RecordEntryPayload{}, err
	}
	return payload, nil
}

func NewCleanupTask(payload CleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCleanup, data), nil
}

func ParseCleanupPayload(task *asynq.Task) (CleanupPayload, error) {
	var payload CleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CleanupPayload{}, err
	}
	return payload, nil
}
