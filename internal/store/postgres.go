package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/currentspace/mychat-api/internal/models"
)

//go:embed scripts/initdb.sql
var bootstrapFS embed.FS

// PostgresStore keeps one conversation row per session id, JSONB value plus
// an expiry column that stands in for the original key-value TTL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := ensureBootstrapped(pingCtx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT conversation FROM chat_history
		WHERE session_id = $1 AND expires_at > now()`, sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	var conv models.Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	return conv.Messages, nil
}

func (s *PostgresStore) Put(ctx context.Context, sessionID string, messages []models.ChatMessage, ttl time.Duration) error {
	raw, err := json.Marshal(models.Conversation{
		Messages:    messages,
		LastUpdated: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chat_history (session_id, conversation, last_updated, expires_at)
		VALUES ($1, $2, now(), now() + $3::interval)
		ON CONFLICT (session_id) DO UPDATE
		SET conversation = EXCLUDED.conversation,
		    last_updated = EXCLUDED.last_updated,
		    expires_at   = EXCLUDED.expires_at`,
		sessionID, raw, fmt.Sprintf("%d seconds", int(ttl.Seconds())))
	if err != nil {
		return fmt.Errorf("put conversation: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RunSweeper deletes expired rows every interval until ctx is done. Expired
// rows are already invisible to Get; this just keeps the table small.
func (s *PostgresStore) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_history WHERE expires_at < now()`); err != nil {
				log.Printf("history sweep failed: %v", err)
			}
		}
	}
}

func ensureBootstrapped(ctx context.Context, db *sql.DB) error {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (
		  SELECT 1 FROM information_schema.tables
		  WHERE table_name = 'mychat_meta'
		)`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("meta table check failed: %w", err)
	}

	if !exists {
		return runBootstrap(ctx, db)
	}

	var hasVersion bool
	if err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM mychat_meta WHERE version = 1)`).Scan(&hasVersion); err != nil {
		return fmt.Errorf("meta version check failed: %w", err)
	}
	if !hasVersion {
		return runBootstrap(ctx, db)
	}

	return nil
}

func runBootstrap(ctx context.Context, db *sql.DB) error {
	sqlBytes, err := bootstrapFS.ReadFile("scripts/initdb.sql")
	if err != nil {
		return fmt.Errorf("read initdb.sql: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("exec bootstrap: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bootstrap: %w", err)
	}
	return nil
}
