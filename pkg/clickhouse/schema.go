package clickhouse

import "fmt"

// Table names of the bronze and silver tiers.
const (
	BronzeTable = "bronze_snapshots"
	SilverTable = "silver_features"
)

// Schema returns the idempotent DDL for the feature store in database.
func Schema(database string) []string {
	if database == "" {
		database = "default"
	}
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    symbol      LowCardinality(String),
    snapshot_ts DateTime64(9, 'UTC'),
    payload     String
) ENGINE = MergeTree
ORDER BY (symbol, snapshot_ts)`, database, BronzeTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    symbol      LowCardinality(String),
    snapshot_ts DateTime64(9, 'UTC'),
    date        Date,
    features    String
) ENGINE = MergeTree
ORDER BY (symbol, snapshot_ts, date)`, database, SilverTable),
	}
}
