package repository

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"TazeAI/internal/domain/models"
	applogger "TazeAI/pkg/logger"
)

// Data lake tiers under the store root.
const (
	BronzeDir = "bronze"
	SilverDir = "silver"
	GoldDir   = "gold"
)

const maxStampAttempts = 1000

// FileFeatureStore implements FeatureStore on the local filesystem:
// bronze/<SYMBOL>_<stamp>.json and silver/<SYMBOL>_<stamp>.csv.
type FileFeatureStore struct {
	root string
	now  func() time.Time
	l    *applogger.Logger
}

// NewFileFeatureStore creates the tier directories under root.
func NewFileFeatureStore(root string, l *applogger.Logger) (*FileFeatureStore, error) {
	if root == "" {
		return nil, fmt.Errorf("file store: root is required")
	}
	for _, d := range []string{BronzeDir, SilverDir, GoldDir} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("file store: %w", err)
		}
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &FileFeatureStore{root: root, now: time.Now, l: l}, nil
}

// SetClock overrides the snapshot timestamp source.
func (s *FileFeatureStore) SetClock(now func() time.Time) { s.now = now }

// GoldPath returns a path inside the gold tier.
func (s *FileFeatureStore) GoldPath(name string) string {
	return filepath.Join(s.root, GoldDir, name)
}

func (s *FileFeatureStore) SaveRawSnapshot(ctx context.Context, symbol string, bundle *models.ProviderBundle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if bundle == nil {
		return "", fmt.Errorf("save raw snapshot %s: nil bundle", symbol)
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	payload, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", fmt.Errorf("save raw snapshot %s: %w", symbol, err)
	}
	path, err := s.create(BronzeDir, symbol, ".json", func(f *os.File) error {
		_, err := f.Write(payload)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("save raw snapshot %s: %w", symbol, err)
	}
	s.l.Debug("bronze snapshot written", applogger.String("symbol", symbol), applogger.String("path", path))
	return path, nil
}

func (s *FileFeatureStore) LatestRawSnapshot(ctx context.Context, symbol string) (*models.ProviderBundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	matches, err := filepath.Glob(filepath.Join(s.root, BronzeDir, symbol+"_*.json"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("raw snapshot %s: %w", symbol, models.ErrDataUnavailable)
	}
	sort.Strings(matches)
	b, err := os.ReadFile(matches[len(matches)-1])
	if err != nil {
		return nil, fmt.Errorf("raw snapshot %s: %w", symbol, err)
	}
	var bundle models.ProviderBundle
	if err := json.Unmarshal(b, &bundle); err != nil {
		return nil, fmt.Errorf("raw snapshot %s: %w", symbol, err)
	}
	return &bundle, nil
}

func (s *FileFeatureStore) SaveFeatureTable(ctx context.Context, rows []models.FeatureRow) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	symbol, err := tableSymbol(rows)
	if err != nil {
		return "", fmt.Errorf("save feature table: %w", err)
	}
	rows = models.SortRows(rows)
	cols := tableColumns(rows)
	path, err := s.create(SilverDir, symbol, ".csv", func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(cols); err != nil {
			return err
		}
		for i := range rows {
			if err := w.Write(encodeRecord(&rows[i], cols)); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
	if err != nil {
		return "", fmt.Errorf("save feature table %s: %w", symbol, err)
	}
	s.l.Debug("silver snapshot written",
		applogger.String("symbol", symbol),
		applogger.String("path", path),
		applogger.Int("rows", len(rows)),
	)
	return path, nil
}

func (s *FileFeatureStore) LoadConsolidatedDataset(ctx context.Context) (models.FeatureDataset, error) {
	start := time.Now()
	latest, err := s.latestSilver()
	if err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		return nil, models.ErrNoDataset
	}
	ds := make(models.FeatureDataset, len(latest))
	for symbol, path := range latest {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := readFeatureCSV(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
		}
		if len(rows) > 0 {
			ds[symbol] = models.SortRows(rows)
		}
	}
	s.l.Info("dataset loaded",
		applogger.Int("symbols", len(ds)),
		applogger.Int("rows", ds.Len()),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return ds, nil
}

// latestSilver maps each symbol to its newest silver file.
func (s *FileFeatureStore) latestSilver() (map[string]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, SilverDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.ErrNoDataset
		}
		return nil, err
	}
	out := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		i := strings.LastIndex(name, "_")
		if i <= 0 {
			continue
		}
		symbol := name[:i]
		if prev, ok := out[symbol]; !ok || filepath.Base(prev) < name {
			out[symbol] = filepath.Join(s.root, SilverDir, name)
		}
	}
	return out, nil
}

// create writes a new file named <symbol>_<stamp><ext>. Existing snapshots
// are never replaced: on a name collision the stamp advances by 1ns.
func (s *FileFeatureStore) create(tier, symbol, ext string, write func(*os.File) error) (string, error) {
	t := s.now().UTC()
	for range maxStampAttempts {
		path := filepath.Join(s.root, tier, symbol+"_"+snapshotStamp(t)+ext)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			t = t.Add(time.Nanosecond)
			continue
		}
		if err != nil {
			return "", err
		}
		werr := write(f)
		cerr := f.Close()
		if werr == nil {
			werr = cerr
		}
		if werr != nil {
			_ = os.Remove(path)
			return "", werr
		}
		return path, nil
	}
	return "", fmt.Errorf("no free snapshot name for %s after %d attempts", symbol, maxStampAttempts)
}

func readFeatureCSV(path string) ([]models.FeatureRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	header := records[0]
	rows := make([]models.FeatureRow, 0, len(records)-1)
	for n, rec := range records[1:] {
		row, err := decodeRecord(header, rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
