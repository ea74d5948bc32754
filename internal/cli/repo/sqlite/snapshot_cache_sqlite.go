package sqlite

import (
	"ProductManager/internal/cli/model"
	"ProductManager/internal/cli/repo"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned when nothing was cached for the user yet.
var ErrNoSnapshot = errors.New("no cached products: run products or watch while online")

// SnapshotCacheSQLite stores the last product set per user (local SQLite).
type SnapshotCacheSQLite struct {
	db *sql.DB
}

var _ repo.SnapshotCache = (*SnapshotCacheSQLite)(nil)

var userDirRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// OpenForUser opens (and creates if needed) the cache file of userID under base
// and returns the cache together with the database path.
func OpenForUser(base, userID string) (*SnapshotCacheSQLite, string, error) {
	if userID == "" {
		return nil, "", errors.New("empty user id for snapshot cache")
	}
	if !userDirRe.MatchString(userID) || userID == "." || userID == ".." {
		return nil, "", fmt.Errorf("invalid user id: %q", userID)
	}
	dir := filepath.Join(base, userID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, "", err
	}
	dbPath := filepath.Join(dir, "client.sqlite")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, "", err
	}
	return &SnapshotCacheSQLite{db: db}, dbPath, nil
}

// Close closes the database.
func (c *SnapshotCacheSQLite) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Migrate ensures the tables and indexes exist.
func (c *SnapshotCacheSQLite) Migrate() error {
	_, err := c.db.Exec(initialDDL())
	return err
}

// SaveSnapshot replaces the cached set of userID with products.
func (c *SnapshotCacheSQLite) SaveSnapshot(userID string, products []model.Product) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec(`DELETE FROM products WHERE user_id = ?`, userID); err != nil {
		return err
	}
	for i, p := range products {
		if _, err := tx.Exec(`INSERT INTO products(id, user_id, position, name, price, stock, category)
        VALUES(?, ?, ?, ?, ?, ?, ?)`,
			p.ID, userID, i, p.Name, p.Price.String(), p.Stock, p.Category,
		); err != nil {
			return fmt.Errorf("cache product %s: %w", p.ID, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO snapshots(user_id, saved_at) VALUES(?, ?)
        ON CONFLICT(user_id) DO UPDATE SET saved_at = excluded.saved_at`, userID, time.Now().Unix()); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadSnapshot returns the cached set of userID in delivery order.
func (c *SnapshotCacheSQLite) LoadSnapshot(userID string) ([]model.Product, error) {
	var savedAt int64
	err := c.db.QueryRow(`SELECT saved_at FROM snapshots WHERE user_id = ?`, userID).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}

	rows, err := c.db.Query(`SELECT id, name, price, stock, category FROM products
        WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []model.Product{}
	for rows.Next() {
		p := model.Product{UserID: userID}
		var price string
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Stock, &p.Category); err != nil {
			return nil, err
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("cached price of %s: %w", p.ID, err)
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
