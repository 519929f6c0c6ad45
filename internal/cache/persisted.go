package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/commons/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/flanksource/reachgrep/jsast"
)

// parsedFile is the row persisted per source file: its content hash and
// its serialized AST. A fresh read whose hash doesn't match means the
// file changed since it was cached, so the row is simply replaced.
type parsedFile struct {
	Path     string `gorm:"primaryKey"`
	Hash     string
	ASTJSON  []byte
	Language string
}

func (parsedFile) TableName() string { return "parsed_files" }

// PersistedCache remembers a file's parsed AST across process runs,
// keyed by absolute path and content hash, in a SQLite database. It is
// optional — the visitor works identically without one, just re-parsing
// every file every run.
type PersistedCache struct {
	db *gorm.DB
}

// OpenPersistedCache opens (creating if necessary) a persisted cache at
// dbPath.
func OpenPersistedCache(dbPath string) (*PersistedCache, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening cache database %s: %w", dbPath, err)
	}

	if err := db.AutoMigrate(&parsedFile{}); err != nil {
		return nil, fmt.Errorf("migrating cache schema: %w", err)
	}

	logger.Debugf("opened AST cache at %s", dbPath)
	return &PersistedCache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *PersistedCache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func hashOf(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached AST for path if a row exists whose hash
// matches src's current content.
func (c *PersistedCache) Lookup(path string, src []byte) (*jsast.Program, bool) {
	var row parsedFile
	if err := c.db.First(&row, "path = ?", path).Error; err != nil {
		return nil, false
	}
	if row.Hash != hashOf(src) {
		return nil, false
	}

	prog, err := jsast.Unmarshal(row.ASTJSON)
	if err != nil {
		logger.Warnf("discarding corrupt cache entry for %s: %v", path, err)
		return nil, false
	}
	return prog, true
}

// Store upserts path's parsed AST, replacing any stale entry.
func (c *PersistedCache) Store(path string, src []byte, prog *jsast.Program) {
	data, err := jsast.Marshal(prog)
	if err != nil {
		logger.Warnf("not caching %s: %v", path, err)
		return
	}

	row := parsedFile{
		Path:     path,
		Hash:     hashOf(src),
		ASTJSON:  data,
		Language: "js",
	}
	err = c.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	if err != nil {
		logger.Warnf("writing cache entry for %s: %v", path, err)
	}
}
