package database

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Logical keys stored by the client.
const (
	KeyDarkMode = "darkMode"
	KeyHistory  = "history"
)

// GetString returns the value stored under key. ok is false when the key is
// absent.
func (db *DB) GetString(key string) (string, bool, error) {
	query, args, err := sq.Select("value").From("kv").Where(sq.Eq{"name": key}).ToSql()
	if err != nil {
		return "", false, fmt.Errorf("building get %q: %w", key, err)
	}

	var value string
	if err := db.conn.QueryRow(query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading %q: %w", key, err)
	}
	return value, true, nil
}

// SetString stores value under key, replacing any previous value.
func (db *DB) SetString(key, value string) error {
	query, args, err := sq.Insert("kv").
		Columns("name", "value", "updated_at").
		Values(key, value, sq.Expr("datetime('now')")).
		Suffix("ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("building set %q: %w", key, err)
	}
	if _, err := db.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (db *DB) Remove(key string) error {
	query, args, err := sq.Delete("kv").Where(sq.Eq{"name": key}).ToSql()
	if err != nil {
		return fmt.Errorf("building remove %q: %w", key, err)
	}
	if _, err := db.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("removing %q: %w", key, err)
	}
	return nil
}

// Keys returns every stored key in lexical order.
func (db *DB) Keys() ([]string, error) {
	query, args, err := sq.Select("name").From("kv").OrderBy("name").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
