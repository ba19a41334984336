package model

import "time"

const SyncStateID = "ticket_sync_state"

// SyncState records how far the projection has replicated the system of record.
type SyncState struct {
	ID                string    `json:"id" bson:"_id"`
	LastSyncTimestamp time.Time `json:"last_sync_timestamp" bson:"last_sync_timestamp"`
}
