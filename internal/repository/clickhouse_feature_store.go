package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"TazeAI/internal/domain/models"
	pkgch "TazeAI/pkg/clickhouse"
	applogger "TazeAI/pkg/logger"
)

// CHFeatureStore implements FeatureStore backed by ClickHouse.
type CHFeatureStore struct {
	db       *sql.DB
	database string
	now      func() time.Time
	l        *applogger.Logger
}

// NewCHFeatureStore stores into the tables of the client's database, which
// must already carry the schema (Client.InitSchema).
func NewCHFeatureStore(ch *pkgch.Client) *CHFeatureStore {
	return &CHFeatureStore{db: ch.DB(), database: ch.Database(), now: time.Now, l: applogger.NewNop()}
}

// SetLogger injects a structured logger.
func (s *CHFeatureStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *CHFeatureStore) table(name string) string { return s.database + "." + name }

func (s *CHFeatureStore) SaveRawSnapshot(ctx context.Context, symbol string, bundle *models.ProviderBundle) (string, error) {
	if bundle == nil {
		return "", fmt.Errorf("save raw snapshot %s: nil bundle", symbol)
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	payload, err := json.Marshal(bundle)
	if err != nil {
		return "", fmt.Errorf("save raw snapshot %s: %w", symbol, err)
	}
	ts := s.now().UTC()
	q := fmt.Sprintf("INSERT INTO %s (symbol, snapshot_ts, payload) VALUES (?, ?, ?)", s.table(pkgch.BronzeTable))
	if _, err := s.db.ExecContext(ctx, q, symbol, ts, string(payload)); err != nil {
		s.l.Error("clickhouse save_raw_snapshot error", applogger.String("symbol", symbol), applogger.Error(err))
		return "", fmt.Errorf("save raw snapshot %s: %w", symbol, err)
	}
	return snapshotLocator(pkgch.BronzeTable, symbol, ts), nil
}

func (s *CHFeatureStore) LatestRawSnapshot(ctx context.Context, symbol string) (*models.ProviderBundle, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	q := fmt.Sprintf(`
        SELECT payload
        FROM %s
        WHERE symbol = ?
        ORDER BY snapshot_ts DESC
        LIMIT 1
    `, s.table(pkgch.BronzeTable))
	var payload string
	err := s.db.QueryRowContext(ctx, q, symbol).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("raw snapshot %s: %w", symbol, models.ErrDataUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("raw snapshot %s: %w", symbol, err)
	}
	var bundle models.ProviderBundle
	if err := json.Unmarshal([]byte(payload), &bundle); err != nil {
		return nil, fmt.Errorf("raw snapshot %s: %w", symbol, err)
	}
	return &bundle, nil
}

// SaveFeatureTable writes the table as one batch in a single transaction,
// so a snapshot is either stored whole or not at all.
func (s *CHFeatureStore) SaveFeatureTable(ctx context.Context, rows []models.FeatureRow) (string, error) {
	symbol, err := tableSymbol(rows)
	if err != nil {
		return "", fmt.Errorf("save feature table: %w", err)
	}
	rows = models.SortRows(rows)
	ts := s.now().UTC()
	start := time.Now()

	if err := s.insertSilver(ctx, symbol, ts, rows); err != nil {
		s.l.Error("clickhouse save_feature_table error",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(rows)),
			applogger.Error(err),
		)
		return "", fmt.Errorf("save feature table %s: %w", symbol, err)
	}
	s.l.Info("clickhouse save_feature_table ok",
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(rows)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return snapshotLocator(pkgch.SilverTable, symbol, ts), nil
}

func (s *CHFeatureStore) insertSilver(ctx context.Context, symbol string, ts time.Time, rows []models.FeatureRow) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q := fmt.Sprintf("INSERT INTO %s (symbol, snapshot_ts, date, features)", s.table(pkgch.SilverTable))
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range rows {
		features, err := encodeFeatures(&rows[i])
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, symbol, ts, rows[i].Date, features); err != nil {
			return fmt.Errorf("append %s: %w", rows[i].Date.Format(dateLayout), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *CHFeatureStore) LoadConsolidatedDataset(ctx context.Context) (models.FeatureDataset, error) {
	start := time.Now()
	silver := s.table(pkgch.SilverTable)
	q := fmt.Sprintf(`
        SELECT symbol, date, features
        FROM %s
        WHERE (symbol, snapshot_ts) IN (
            SELECT symbol, max(snapshot_ts) FROM %s GROUP BY symbol
        )
        ORDER BY symbol ASC, date ASC
    `, silver, silver)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		s.l.Error("clickhouse load_dataset query error", applogger.Error(err))
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	defer rows.Close()

	ds := models.FeatureDataset{}
	for rows.Next() {
		var (
			row      models.FeatureRow
			features string
		)
		if err := rows.Scan(&row.Symbol, &row.Date, &features); err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}
		if err := decodeFeatures(&row, features); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", row.Symbol, row.Date.Format(dateLayout), err)
		}
		row.Date = models.TruncateDay(row.Date)
		ds[row.Symbol] = append(ds[row.Symbol], row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(ds) == 0 {
		return nil, models.ErrNoDataset
	}
	s.l.Info("clickhouse load_dataset ok",
		applogger.Int("symbols", len(ds)),
		applogger.Int("rows", ds.Len()),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return ds, nil
}

func snapshotLocator(table, symbol string, ts time.Time) string {
	return fmt.Sprintf("%s/%s@%s", table, symbol, snapshotStamp(ts))
}
