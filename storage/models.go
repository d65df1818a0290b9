package storage

import "github.com/alex-pricope/teacher-evaluation-system/scoring"

// SyncConfig is the device's remote sync session.
type SyncConfig struct {
	Enabled    bool   `dynamodbav:"Enabled" json:"enabled"`
	Token      string `dynamodbav:"Token" json:"token"`
	LastSynced string `dynamodbav:"LastSynced" json:"lastSynced"`
}

type syncConfigRecord struct {
	Key string `dynamodbav:"PK"`
	SyncConfig
}

// overrideRecord stores one candidate's operator corrections under its identity key.
type overrideRecord struct {
	Key string `dynamodbav:"PK"`
	scoring.Override
}
