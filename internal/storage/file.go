package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"landauSwap/internal/model"
)

const lockRetryDelay = 10 * time.Millisecond

// FilePoolStore keeps one JSON document per pool under Dir. Writes go to a
// unique temporary file that is renamed into place. Create and Update hold
// an advisory lock on <id>.lock so that processes sharing Dir see each
// other's versions.
type FilePoolStore struct {
	Dir string

	mu sync.Mutex
}

func NewFilePoolStore(dir string) *FilePoolStore {
	return &FilePoolStore{Dir: dir}
}

func (s *FilePoolStore) path(id string) string {
	return filepath.Join(s.Dir, id+".json")
}

// lockPool takes the cross-process lock of a pool document.
func (s *FilePoolStore) lockPool(ctx context.Context, id string) (func(), error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create pool dir: %w", err)
	}
	fl := flock.New(filepath.Join(s.Dir, id+".lock"))
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock pool %s: %w", id, err)
	}
	if !locked {
		return nil, fmt.Errorf("lock pool %s: not acquired", id)
	}
	return func() { _ = fl.Unlock() }, nil
}

// Create writes a new pool document. Returns ErrAlreadyExists if present.
func (s *FilePoolStore) Create(ctx context.Context, account model.PoolAccount) error {
	if err := validID(account.ID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lockPool(ctx, account.ID)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := os.Stat(s.path(account.ID)); err == nil {
		return ErrAlreadyExists
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat pool: %w", err)
	}
	return s.write(account)
}

// Get reads and validates a pool document.
func (s *FilePoolStore) Get(_ context.Context, id string) (model.PoolAccount, error) {
	if err := validID(id); err != nil {
		return model.PoolAccount{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(s.path(id))
}

// Update rewrites the pool document if the stored version is account.Version-1.
func (s *FilePoolStore) Update(ctx context.Context, account model.PoolAccount) error {
	if err := validID(account.ID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lockPool(ctx, account.ID)
	if err != nil {
		return err
	}
	defer unlock()

	stored, err := s.read(s.path(account.ID))
	if err != nil {
		return err
	}
	if err := CheckVersion(stored.Version, account.Version); err != nil {
		return err
	}
	return s.write(account)
}

// List reads every pool document in Dir, ordered by id.
func (s *FilePoolStore) List(_ context.Context) ([]model.PoolAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read pool dir: %w", err)
	}

	var accounts []model.PoolAccount
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		account, err := s.read(filepath.Join(s.Dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})
	return accounts, nil
}

func (s *FilePoolStore) read(path string) (model.PoolAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.PoolAccount{}, ErrNotFound
		}
		return model.PoolAccount{}, fmt.Errorf("read pool: %w", err)
	}

	var account model.PoolAccount
	if err := json.Unmarshal(data, &account); err != nil {
		return model.PoolAccount{}, fmt.Errorf("parse pool %s: %w", filepath.Base(path), err)
	}
	return account, nil
}

func (s *FilePoolStore) write(account model.PoolAccount) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create pool dir: %w", err)
	}

	data, err := json.MarshalIndent(account, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal pool: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, account.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create pool tmp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write pool tmp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close pool tmp: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("chmod pool tmp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(account.ID)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename pool: %w", err)
	}
	return nil
}

func validID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\.`) {
		return fmt.Errorf("%w: pool id %q", ErrInvalidInput, id)
	}
	return nil
}

var _ PoolStore = (*FilePoolStore)(nil)
