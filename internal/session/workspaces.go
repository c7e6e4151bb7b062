package session

import "context"

// Workspaces is the part of Store the HTTP handlers depend on.
type Workspaces interface {
	Get(ctx context.Context, id string) (*Workspace, error)
	Save(ctx context.Context, ws *Workspace) error
}

var _ Workspaces = (*Store)(nil)
