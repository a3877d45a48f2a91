package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
)

const recordsSchema = `CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	record_type TEXT NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres persists records as tagged JSON payloads in a single table and
// implements the backend contract over it.
type Postgres struct {
	db       *sqlx.DB
	logger   *zap.Logger
	onChange ChangeHandler
	onError  ErrorHandler
}

// NewPostgres builds the backend around an open connection pool.
func NewPostgres(db *sqlx.DB, logger *zap.Logger) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{db: db, logger: logger}
}

// Initialize ensures the schema, wires the handlers and reports the initial
// snapshot.
func (p *Postgres) Initialize(ctx context.Context, onChange ChangeHandler, onError ErrorHandler) error {
	if _, err := p.db.ExecContext(ctx, recordsSchema); err != nil {
		return fmt.Errorf("ensure records table: %w", err)
	}
	p.onChange = onChange
	p.onError = onError

	records, err := p.loadAll(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if p.onChange != nil {
		p.onChange(records)
	}
	return nil
}

// Create implements Backend. The backend assigns the identity.
func (p *Postgres) Create(ctx context.Context, rec models.Record) (models.Record, error) {
	stored, err := models.Clone(rec)
	if err != nil {
		return nil, err
	}
	stored.Meta().ID = uuid.NewString()

	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", stored.Type(), err)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO records (id, record_type, payload, created_at) VALUES ($1, $2, $3, $4)`,
		stored.Meta().ID, string(stored.Type()), payload, stored.Meta().CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	p.notify(ctx)
	return stored, nil
}

// Update implements Backend.
func (p *Postgres) Update(ctx context.Context, rec models.Record) (models.Record, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", rec.Type(), err)
	}
	result, err := p.db.ExecContext(ctx,
		`UPDATE records SET payload = $1, updated_at = $2 WHERE id = $3`,
		payload, time.Now().UTC(), rec.Meta().ID)
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, fmt.Errorf("record %s no longer exists", rec.Meta().ID)
	}

	p.notify(ctx)
	return rec, nil
}

// Delete implements Backend.
func (p *Postgres) Delete(ctx context.Context, rec models.Record) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, rec.Meta().ID); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	p.notify(ctx)
	return nil
}

// notify re-reads the full snapshot and hands it to the change handler. A
// failed reload goes to the error handler; the consumer keeps its last
// known-good collection.
func (p *Postgres) notify(ctx context.Context) {
	if p.onChange == nil {
		return
	}
	records, err := p.loadAll(ctx)
	if err != nil {
		p.logger.Error("snapshot reload failed", zap.Error(err))
		if p.onError != nil {
			p.onError(err)
		}
		return
	}
	p.onChange(records)
}

func (p *Postgres) loadAll(ctx context.Context) ([]models.Record, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT payload FROM records ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		rec, err := models.Decode(payload)
		if err != nil {
			// A corrupt row must not take the whole dashboard down.
			p.logger.Warn("skipping undecodable record row", zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
