package trello

import "context"

// API defines the interface for interacting with the Trello API
type API interface {
	GetBoard(ctx context.Context, boardID string) (*Board, error)
	GetPluginData(ctx context.Context, boardID string) ([]PluginData, error)
}

// Ensure Client implements the API interface
var _ API = (*Client)(nil)
