package storage

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// MaxAutoBackups is how many automatic backups are kept.
const MaxAutoBackups = 5

const (
	backupsDirName = "backups"
	backupExt      = ".sqlite3"
	metadataExt    = ".meta.json"
)

// Backup errors.
var (
	ErrBackupNotFound   = errors.New("backup not found")
	ErrBackupExists     = errors.New("backup already exists")
	ErrBackupCorrupted  = errors.New("backup integrity check failed")
	ErrInvalidBackupTag = errors.New("invalid backup tag")
)

// BackupInfo describes a ledger snapshot.
type BackupInfo struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	FileSize      int64     `json:"file_size"`
	Expenses      int       `json:"expenses"`
	Categories    int       `json:"categories"`
	SchemaVersion int       `json:"schema_version"`
	IsAuto        bool      `json:"is_auto"`
}

// BackupManager creates and restores snapshots of the ledger. Snapshots
// live in a backups directory next to the database file, each with a JSON
// metadata file beside it.
type BackupManager struct {
	store *SQLiteStorage
	dir   string
}

// Backups returns the backup manager for this ledger.
func (s *SQLiteStorage) Backups() (*BackupManager, error) {
	dir := filepath.Join(filepath.Dir(s.dbPath), backupsDirName)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}
	return &BackupManager{store: s, dir: dir}, nil
}

// Dir returns the directory holding the backups.
func (bm *BackupManager) Dir() string {
	return bm.dir
}

// Create snapshots the ledger under tag. An empty tag is generated from the
// current time.
func (bm *BackupManager) Create(ctx context.Context, tag, description string) (*BackupInfo, error) {
	return bm.create(ctx, tag, description, false)
}

// Auto takes an automatic snapshot before the named operation and prunes
// automatic snapshots beyond MaxAutoBackups.
func (bm *BackupManager) Auto(ctx context.Context, operation string) (*BackupInfo, error) {
	base := fmt.Sprintf("auto-%s-%s", operation, time.Now().Format("2006-01-02-150405"))
	tag := base
	for n := 2; bm.exists(tag); n++ {
		tag = fmt.Sprintf("%s-%d", base, n)
	}

	info, err := bm.create(ctx, tag, "Automatic backup before "+operation, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create automatic backup: %w", err)
	}

	if err := bm.pruneAuto(ctx); err != nil {
		slog.Warn("Failed to prune old automatic backups", "error", err)
	}

	return info, nil
}

func (bm *BackupManager) create(ctx context.Context, tag, description string, auto bool) (*BackupInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if tag == "" {
		tag = "backup-" + time.Now().Format("2006-01-02-1504")
	}
	if err := validateTag(tag); err != nil {
		return nil, err
	}
	if bm.exists(tag) {
		return nil, fmt.Errorf("%w: %s", ErrBackupExists, tag)
	}

	info := BackupInfo{
		ID:          tag,
		CreatedAt:   time.Now(),
		Description: description,
		IsAuto:      auto,
	}

	var err error
	if info.SchemaVersion, err = bm.store.SchemaVersion(ctx); err != nil {
		return nil, err
	}
	if err := bm.countRows(ctx, &info); err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	path := bm.backupPath(tag)
	if _, err := bm.store.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}
	info.FileSize = stat.Size()

	if err := writeMetadata(bm.metadataPath(tag), info); err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			slog.Error("Failed to remove backup after metadata error", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save backup metadata: %w", err)
	}

	slog.Info("Created backup", "id", tag, "expenses", info.Expenses, "auto", auto)
	return &info, nil
}

// List returns all backups, newest first.
func (bm *BackupManager) List(_ context.Context) ([]BackupInfo, error) {
	entries, err := os.ReadDir(bm.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backups directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), metadataExt) {
			continue
		}
		info, err := readMetadata(filepath.Join(bm.dir, entry.Name()))
		if err != nil {
			slog.Debug("Skipping unreadable backup metadata", "file", entry.Name(), "error", err)
			continue
		}
		backups = append(backups, *info)
	}

	slices.SortFunc(backups, func(a, b BackupInfo) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	return backups, nil
}

// Get returns one backup's metadata.
func (bm *BackupManager) Get(_ context.Context, id string) (*BackupInfo, error) {
	if err := validateTag(id); err != nil {
		return nil, err
	}
	info, err := readMetadata(bm.metadataPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load backup metadata: %w", err)
	}
	return info, nil
}

// Restore replaces the ledger with backup id. It closes the storage the
// manager was created from; callers reopen the ledger afterwards.
func (bm *BackupManager) Restore(ctx context.Context, id string) error {
	if _, err := bm.Get(ctx, id); err != nil {
		return err
	}

	path := bm.backupPath(id)
	if err := verifyIntegrity(ctx, path); err != nil {
		return fmt.Errorf("%w: %v", ErrBackupCorrupted, err)
	}

	dbPath := bm.store.dbPath
	if err := bm.store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	// A clean close folds the WAL back in; anything left over would be
	// replayed onto the restored file.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s file: %w", suffix, err)
		}
	}

	safety := dbPath + ".restore-backup"
	if err := copyFile(dbPath, safety); err != nil {
		return fmt.Errorf("failed to save current database: %w", err)
	}

	if err := copyFile(path, dbPath); err != nil {
		if restoreErr := copyFile(safety, dbPath); restoreErr != nil {
			slog.Error("Failed to put the previous database back", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore backup: %w", err)
	}

	if err := os.Remove(safety); err != nil {
		slog.Warn("Failed to remove temporary copy", "path", safety, "error", err)
	}

	slog.Info("Restored backup", "id", id)
	return nil
}

// Delete removes backup id.
func (bm *BackupManager) Delete(_ context.Context, id string) error {
	if err := validateTag(id); err != nil {
		return err
	}
	if !bm.exists(id) {
		return fmt.Errorf("%w: %s", ErrBackupNotFound, id)
	}

	if err := os.Remove(bm.backupPath(id)); err != nil {
		return fmt.Errorf("failed to remove backup: %w", err)
	}
	if err := os.Remove(bm.metadataPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Debug("Failed to remove backup metadata", "id", id, "error", err)
	}

	slog.Debug("Deleted backup", "id", id)
	return nil
}

func (bm *BackupManager) pruneAuto(ctx context.Context) error {
	backups, err := bm.List(ctx)
	if err != nil {
		return err
	}

	kept := 0
	for _, b := range backups {
		if !b.IsAuto {
			continue
		}
		kept++
		if kept <= MaxAutoBackups {
			continue
		}
		if err := bm.Delete(ctx, b.ID); err != nil {
			slog.Debug("Failed to prune automatic backup", "id", b.ID, "error", err)
		}
	}
	return nil
}

func (bm *BackupManager) countRows(ctx context.Context, info *BackupInfo) error {
	if err := bm.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses").Scan(&info.Expenses); err != nil {
		return err
	}
	return bm.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&info.Categories)
}

func (bm *BackupManager) exists(id string) bool {
	_, err := os.Stat(bm.backupPath(id))
	return err == nil
}

func (bm *BackupManager) backupPath(id string) string {
	return filepath.Join(bm.dir, id+backupExt)
}

func (bm *BackupManager) metadataPath(id string) string {
	return filepath.Join(bm.dir, id+metadataExt)
}

func validateTag(tag string) error {
	if strings.TrimSpace(tag) == "" || strings.ContainsAny(tag, `/\`) || strings.Contains(tag, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidBackupTag, tag)
	}
	return nil
}

func verifyIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return errors.New(result)
	}
	return nil
}

func writeMetadata(path string, info BackupInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readMetadata(path string) (*BackupInfo, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is built from a validated tag
	if err != nil {
		return nil, err
	}

	var info BackupInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// copyFile copies src to dst through a temporary file and a rename.
func copyFile(src, dst string) error {
	source, err := os.Open(src) //nolint:gosec // ledger and backup paths only
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	tmp := dst + ".tmp"
	destination, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // derived from dst
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := destination.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, dst)
}
