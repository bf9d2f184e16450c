package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// notifyChannel carries the name of the changed collection as its payload.
const notifyChannel = "catalog_changed"

const schema = `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id         TEXT NOT NULL,
		data       JSONB NOT NULL,
		PRIMARY KEY (collection, id)
	)
`

// Postgres implements Store on a single jsonb documents table. Writes notify
// the catalog_changed channel inside the same transaction; each subscription
// holds a dedicated LISTEN connection and re-reads the full collection per
// notification, so consumers always see whole snapshots.
type Postgres struct {
	pool   *pgxpool.Pool
	dsn    string
	logger zerolog.Logger
}

// PostgresOptions bounds the connection pool.
type PostgresOptions struct {
	MaxConnections int
	MinConnections int
}

// NewPostgres connects, verifies the connection and ensures the documents
// table exists.
func NewPostgres(ctx context.Context, dsn string, opts PostgresOptions, logger zerolog.Logger) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if opts.MaxConnections > 0 {
		poolConfig.MaxConns = int32(opts.MaxConnections)
	}
	if opts.MinConnections > 0 {
		poolConfig.MinConns = int32(opts.MinConnections)
	}
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure documents table: %w", err)
	}

	logger = logger.With().Str("store", "postgres").Logger()
	logger.Info().Msg("postgres store initialised")

	return &Postgres{pool: pool, dsn: dsn, logger: logger}, nil
}

// Close releases the connection pool. Outstanding subscriptions hold their
// own connections and are cancelled independently.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Subscribe delivers the current collection state immediately, then re-reads
// and re-delivers it whenever a write to the collection is notified. Delivery
// stops without retry if the listening connection fails.
func (p *Postgres) Subscribe(ctx context.Context, spec CollectionSpec, fn SnapshotFunc) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)

	conn, err := pgx.Connect(subCtx, p.dsn)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open listen connection: %w", err)
	}

	if _, err := conn.Exec(subCtx, "LISTEN "+notifyChannel); err != nil {
		conn.Close(ctx)
		cancel()
		return nil, fmt.Errorf("failed to listen on %s: %w", notifyChannel, err)
	}

	snapshot, err := p.readCollection(subCtx, spec)
	if err != nil {
		conn.Close(ctx)
		cancel()
		return nil, err
	}
	fn(snapshot)

	logger := p.logger.With().Str("collection", spec.Name).Logger()

	go func() {
		defer conn.Close(context.Background())
		for {
			notification, err := conn.WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() == nil {
					logger.Error().Err(err).Msg("subscription stalled")
				}
				return
			}
			if notification.Payload != spec.Name {
				continue
			}
			snapshot, err := p.readCollection(subCtx, spec)
			if err != nil {
				logger.Error().Err(err).Msg("failed to re-read collection after change")
				return
			}
			fn(snapshot)
		}
	}()

	return cancel, nil
}

func (p *Postgres) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	id := uuid.NewString()
	err = p.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
			collection, id, data,
		); err != nil {
			return fmt.Errorf("failed to insert document: %w", err)
		}
		return notifyTx(ctx, tx, collection)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	return p.inTx(ctx, func(tx pgx.Tx) error {
		if err := updateTx(ctx, tx, collection, id, data); err != nil {
			return err
		}
		return notifyTx(ctx, tx, collection)
	})
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	return p.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM documents WHERE collection = $1 AND id = $2`,
			collection, id,
		); err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		return notifyTx(ctx, tx, collection)
	})
}

func (p *Postgres) QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, data FROM documents WHERE collection = $1 AND data->>$2 = $3`,
		collection, field, fmt.Sprintf("%v", value),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func (p *Postgres) NewBatch() Batch {
	return &postgresBatch{store: p}
}

type postgresOp struct {
	delete     bool
	collection string
	id         string
	fields     map[string]any
}

type postgresBatch struct {
	store *Postgres
	ops   []postgresOp
}

func (b *postgresBatch) Update(collection, id string, fields map[string]any) {
	b.ops = append(b.ops, postgresOp{collection: collection, id: id, fields: fields})
}

func (b *postgresBatch) Delete(collection, id string) {
	b.ops = append(b.ops, postgresOp{delete: true, collection: collection, id: id})
}

// Commit runs every staged op in one transaction, notifying each touched
// collection once.
func (b *postgresBatch) Commit(ctx context.Context) error {
	return b.store.inTx(ctx, func(tx pgx.Tx) error {
		changed := make(map[string]bool)
		for _, op := range b.ops {
			if op.delete {
				if _, err := tx.Exec(ctx,
					`DELETE FROM documents WHERE collection = $1 AND id = $2`,
					op.collection, op.id,
				); err != nil {
					return fmt.Errorf("failed to delete document: %w", err)
				}
			} else {
				data, err := json.Marshal(op.fields)
				if err != nil {
					return fmt.Errorf("failed to encode document: %w", err)
				}
				if err := updateTx(ctx, tx, op.collection, op.id, data); err != nil {
					return err
				}
			}
			changed[op.collection] = true
		}
		for collection := range changed {
			if err := notifyTx(ctx, tx, collection); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Postgres) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func updateTx(ctx context.Context, tx pgx.Tx, collection, id string, data []byte) error {
	tag, err := tx.Exec(ctx,
		`UPDATE documents SET data = data || $3::jsonb WHERE collection = $1 AND id = $2`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

func notifyTx(ctx context.Context, tx pgx.Tx, collection string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, collection); err != nil {
		return fmt.Errorf("failed to notify collection change: %w", err)
	}
	return nil
}

func (p *Postgres) readCollection(ctx context.Context, spec CollectionSpec) ([]Document, error) {
	query := `SELECT id, data FROM documents WHERE collection = $1`
	args := []any{spec.Name}
	if spec.OrderBy != "" {
		query += ` ORDER BY data->>$2 ASC`
		args = append(args, spec.OrderBy)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", spec.Name, err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func scanDocuments(rows pgx.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		fields := make(map[string]any)
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}
