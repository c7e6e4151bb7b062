// Package session keeps per-browser workspace state in SQLite: which CSV files
// were uploaded, their headers, and which model configuration is loaded.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Workspace is the state one browser session works against.
type Workspace struct {
	ID             string    `json:"id"`
	FeaturePath    string    `json:"feature_path"`
	TargetPath     string    `json:"target_path"`
	FeatureHeaders []string  `json:"feature_headers"`
	TargetHeaders  []string  `json:"target_headers"`
	LoadedModel    string    `json:"loaded_model"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasTables reports whether both feature and target CSVs are uploaded.
func (w *Workspace) HasTables() bool {
	return w.FeaturePath != "" && w.TargetPath != ""
}

// SetTable records an uploaded CSV of the given kind ("feature" or "target").
func (w *Workspace) SetTable(kind, path string, headers []string) {
	switch kind {
	case "feature":
		w.FeaturePath, w.FeatureHeaders = path, headers
	case "target":
		w.TargetPath, w.TargetHeaders = path, headers
	}
}

// ClearTable forgets an uploaded CSV of the given kind.
func (w *Workspace) ClearTable(kind string) {
	w.SetTable(kind, "", nil)
}

type workspaceRow struct {
	ID                 string `db:"id"`
	FeaturePath        string `db:"feature_path"`
	TargetPath         string `db:"target_path"`
	FeatureHeadersJSON string `db:"feature_headers_json"`
	TargetHeadersJSON  string `db:"target_headers_json"`
	LoadedModel        string `db:"loaded_model"`
	UpdatedAt          int64  `db:"updated_at"`
}

// Store wraps a SQLite connection holding workspaces.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates the workspace database at path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	store := &Store{conn: conn}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workspaces (
		id TEXT PRIMARY KEY,
		feature_path TEXT NOT NULL DEFAULT '',
		target_path TEXT NOT NULL DEFAULT '',
		feature_headers_json TEXT NOT NULL DEFAULT '[]',
		target_headers_json TEXT NOT NULL DEFAULT '[]',
		loaded_model TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Get returns the workspace with the given ID, or an empty one if it was
// never saved.
func (s *Store) Get(ctx context.Context, id string) (*Workspace, error) {
	var row workspaceRow
	err := s.conn.GetContext(ctx, &row, "SELECT * FROM workspaces WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return &Workspace{ID: id}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workspace %s: %w", id, err)
	}

	ws := &Workspace{
		ID:          row.ID,
		FeaturePath: row.FeaturePath,
		TargetPath:  row.TargetPath,
		LoadedModel: row.LoadedModel,
		UpdatedAt:   time.Unix(row.UpdatedAt, 0),
	}
	if err := json.Unmarshal([]byte(row.FeatureHeadersJSON), &ws.FeatureHeaders); err != nil {
		return nil, fmt.Errorf("decode feature headers of %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(row.TargetHeadersJSON), &ws.TargetHeaders); err != nil {
		return nil, fmt.Errorf("decode target headers of %s: %w", id, err)
	}
	return ws, nil
}

// Save writes the workspace, replacing any previous state.
func (s *Store) Save(ctx context.Context, ws *Workspace) error {
	featureJSON, err := json.Marshal(nonNil(ws.FeatureHeaders))
	if err != nil {
		return err
	}
	targetJSON, err := json.Marshal(nonNil(ws.TargetHeaders))
	if err != nil {
		return err
	}
	ws.UpdatedAt = time.Now()

	_, err = s.conn.ExecContext(ctx, `INSERT OR REPLACE INTO workspaces
		(id, feature_path, target_path, feature_headers_json, target_headers_json, loaded_model, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ws.ID, ws.FeaturePath, ws.TargetPath, string(featureJSON), string(targetJSON), ws.LoadedModel, ws.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save workspace %s: %w", ws.ID, err)
	}
	return nil
}

// Prune deletes workspaces not saved since before.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.conn.ExecContext(ctx, "DELETE FROM workspaces WHERE updated_at < ?", before.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune workspaces: %w", err)
	}
	return res.RowsAffected()
}

func nonNil(headers []string) []string {
	if headers == nil {
		return []string{}
	}
	return headers
}
