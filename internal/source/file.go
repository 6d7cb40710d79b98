package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/sngm3741/offer-finder/api/internal/catalog/domain"
)

// FileSource reads per-company static files `<dir>/<companyId>.json`.
// Decoded datasets are cached until the file changes on disk (see Watch).
type FileSource struct {
	dir    string
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string][]domain.Store
	// versions is bumped by Invalidate; a read only populates the cache if
	// the version it started from is still current.
	versions map[string]uint64

	afterRead func(companyID string)
}

// NewFileSource returns a source over dir.
func NewFileSource(dir string, logger *zap.Logger) *FileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{
		dir:      dir,
		logger:   logger,
		cache:    make(map[string][]domain.Store),
		versions: make(map[string]uint64),
	}
}

// FetchStores implements Source.
func (s *FileSource) FetchStores(ctx context.Context, companyID string) ([]domain.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validCompanyID(companyID) {
		return nil, fmt.Errorf("invalid company id %q", companyID)
	}

	s.mu.RLock()
	cached, ok := s.cache[companyID]
	version := s.versions[companyID]
	s.mu.RUnlock()
	if ok {
		return domain.CloneStores(cached), nil
	}

	data, err := os.ReadFile(s.path(companyID))
	if s.afterRead != nil {
		s.afterRead(companyID)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, companyID)
		}
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	stores, err := decodeDataset(data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.versions[companyID] == version {
		s.cache[companyID] = stores
	}
	s.mu.Unlock()

	return domain.CloneStores(stores), nil
}

// Companies lists the company ids that have a dataset file.
func (s *FileSource) Companies(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return ids, nil
}

// Invalidate drops the cached dataset of one company.
func (s *FileSource) Invalidate(companyID string) {
	s.mu.Lock()
	delete(s.cache, companyID)
	s.versions[companyID]++
	s.mu.Unlock()
}

// Watch invalidates cached datasets whose files change until ctx is done.
// The ready channel, if non-nil, is closed once the watcher is registered.
func (s *FileSource) Watch(ctx context.Context, ready chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}
			companyID := strings.TrimSuffix(filepath.Base(event.Name), ".json")
			s.Invalidate(companyID)
			s.logger.Info("dataset file changed",
				zap.String("company_id", companyID),
				zap.String("op", event.Op.String()))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("dataset watcher error", zap.Error(err))
		}
	}
}

func (s *FileSource) path(companyID string) string {
	return filepath.Join(s.dir, companyID+".json")
}

func validCompanyID(companyID string) bool {
	if companyID == "" || companyID == "." || companyID == ".." {
		return false
	}
	return !strings.ContainsAny(companyID, `/\`)
}
