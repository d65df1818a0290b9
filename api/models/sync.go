package models

import "github.com/alex-pricope/teacher-evaluation-system/storage"

type SyncStatusResponse struct {
	Enabled    bool   `json:"enabled"`
	Token      string `json:"token"`
	LastSynced string `json:"lastSynced"`
	Syncing    bool   `json:"syncing"`
}

type SyncJoinRequest struct {
	Token string `json:"token" binding:"required"`
}

type SyncRunResponse struct {
	Ran bool `json:"ran"`
	SyncStatusResponse
}

func TransformSyncConfig(cfg storage.SyncConfig, syncing bool) SyncStatusResponse {
	return SyncStatusResponse{
		Enabled:    cfg.Enabled,
		Token:      cfg.Token,
		LastSynced: cfg.LastSynced,
		Syncing:    syncing,
	}
}
