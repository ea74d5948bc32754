// Package bootstrap builds the client components from the configuration.
package bootstrap

import (
	"fmt"

	"ProductManager/internal/cli/docstore"
	"ProductManager/internal/cli/repo"
	fsrepo "ProductManager/internal/cli/repo/fs"
	"ProductManager/internal/cli/repo/remote"
	reposqlite "ProductManager/internal/cli/repo/sqlite"
	"ProductManager/internal/cli/service"
	"ProductManager/internal/config"

	"go.uber.org/zap"
)

// Logger is silent unless cfg.Debug is set.
func Logger(cfg *config.Config) *zap.SugaredLogger {
	if !cfg.Debug {
		return zap.NewNop().Sugar()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// AuthService signs in against cfg.ServerURL and keeps the session in cfg.SessionFile.
func AuthService(cfg *config.Config) *service.HTTPAuthService {
	return service.NewHTTPAuthService(cfg.ServerURL, fsrepo.NewSessionFSStore(cfg.SessionFile))
}

// ActiveSession returns the valid stored session.
func ActiveSession(cfg *config.Config) (repo.Session, error) {
	sess, err := AuthService(cfg).Session()
	if err != nil {
		return repo.Session{}, fmt.Errorf("no active user: run login or register: %w", err)
	}
	return sess, nil
}

// OpenSnapshotCache opens and migrates the snapshot cache of userID.
// cleanup closes the database.
func OpenSnapshotCache(cfg *config.Config, userID string) (*reposqlite.SnapshotCacheSQLite, func() error, error) {
	c, _, err := reposqlite.OpenForUser(cfg.ClientDBPath, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("open user db: %w", err)
	}
	if err := c.Migrate(); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("migrate user db: %w", err)
	}
	return c, c.Close, nil
}

// OpenProductRepo builds the remote product repository of the active
// session, feeding its snapshot cache. cleanup must be called when done.
func OpenProductRepo(cfg *config.Config, logger *zap.SugaredLogger) (*remote.ProductRepository, repo.Session, func() error, error) {
	sess, err := ActiveSession(cfg)
	if err != nil {
		return nil, repo.Session{}, nil, err
	}
	cache, cleanup, err := OpenSnapshotCache(cfg, sess.UserID)
	if err != nil {
		return nil, repo.Session{}, nil, err
	}
	r := remote.NewProductRepository(docstore.NewClient(cfg.ServerURL, sess.Token), logger).WithCache(cache)
	return r, sess, cleanup, nil
}
