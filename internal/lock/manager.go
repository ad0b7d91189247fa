// Package lock implements the exclusive writer lock that enforces the
// single-writer discipline: only one append may be in flight per
// journal, because the chain-state pointer is a strict sequence point.
package lock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chainlog-project/chainlog/internal/journal"
	"github.com/chainlog-project/chainlog/pkg/errclass"
	"github.com/chainlog-project/chainlog/pkg/fsutil"
	"github.com/chainlog-project/chainlog/pkg/model"
)

// Manager handles writer lock operations for one journal.
type Manager struct {
	journal *journal.Journal
	policy  model.LockPolicy
	mu      sync.Mutex
}

// NewManager creates a lock manager for the journal.
func NewManager(j *journal.Journal, policy model.LockPolicy) *Manager {
	if policy.DefaultLeaseTTL <= 0 {
		policy.DefaultLeaseTTL = 5 * time.Minute
	}
	return &Manager{journal: j, policy: policy}
}

// Acquire attempts to acquire the journal's exclusive writer lock.
func (m *Manager) Acquire(purpose string) (*model.LockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lockPath := m.journal.LockPath()

	// O_CREAT|O_EXCL for atomic acquire
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			rec, readErr := m.readLock(lockPath)
			if readErr != nil {
				return nil, fmt.Errorf("read existing lock: %w", readErr)
			}
			if rec.IsExpired(time.Now()) {
				return nil, errclass.ErrLockConflict.WithMessage("lock exists but expired, use steal")
			}
			return nil, errclass.ErrLockConflict.WithMessagef("journal %s is locked", m.journal.Name)
		}
		return nil, fmt.Errorf("create lock: %w", err)
	}
	defer file.Close()

	now := time.Now().UTC()
	rec := &model.LockRecord{
		JournalName:  m.journal.Name,
		HolderNonce:  uuid.NewString(),
		SessionID:    uuid.NewString(),
		AcquiredAt:   now,
		ExpiresAt:    now.Add(m.policy.DefaultLeaseTTL),
		FencingToken: 1,
		Purpose:      purpose,
	}

	if err := m.writeLock(file, rec); err != nil {
		os.Remove(lockPath)
		return nil, err
	}

	if err := m.writeSession(rec); err != nil {
		os.Remove(lockPath)
		return nil, fmt.Errorf("write session: %w", err)
	}

	return rec, nil
}

// AcquireOrSteal acquires the lock, stealing it if the previous
// holder's lease expired.
func (m *Manager) AcquireOrSteal(purpose string) (*model.LockRecord, error) {
	rec, err := m.Acquire(purpose)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, errclass.ErrLockConflict) {
		return nil, err
	}
	// Conflict: steal succeeds only if the existing lease expired.
	return m.Steal(purpose)
}

// Renew extends the lease on an existing lock.
func (m *Manager) Renew(holderNonce string) (*model.LockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lockPath := m.journal.LockPath()
	rec, err := m.readLock(lockPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errclass.ErrLockNotHeld.WithMessage("no lock held")
		}
		return nil, fmt.Errorf("read lock: %w", err)
	}

	if rec.IsExpired(time.Now()) {
		return nil, errclass.ErrLockExpired.WithMessage("lock has expired")
	}

	if rec.HolderNonce != holderNonce {
		return nil, errclass.ErrLockNotHeld.WithMessage("nonce mismatch")
	}

	rec.ExpiresAt = time.Now().UTC().Add(m.policy.DefaultLeaseTTL)

	if err := m.updateLock(lockPath, rec); err != nil {
		return nil, fmt.Errorf("update lock: %w", err)
	}

	return rec, nil
}

// Steal acquires the lock after the previous holder's lease expired.
// The fencing token is incremented so a resumed stale writer can be
// rejected.
func (m *Manager) Steal(purpose string) (*model.LockRecord, error) {
	m.mu.Lock()

	lockPath := m.journal.LockPath()
	rec, err := m.readLock(lockPath)
	if err != nil {
		m.mu.Unlock()
		if os.IsNotExist(err) {
			// No lock exists, use regular acquire
			return m.Acquire(purpose)
		}
		return nil, fmt.Errorf("read lock: %w", err)
	}
	defer m.mu.Unlock()

	if !rec.IsExpired(time.Now()) {
		return nil, errclass.ErrLockConflict.WithMessage("lock not expired yet")
	}

	now := time.Now().UTC()
	newRec := &model.LockRecord{
		JournalName:  m.journal.Name,
		HolderNonce:  uuid.NewString(),
		SessionID:    uuid.NewString(),
		AcquiredAt:   now,
		ExpiresAt:    now.Add(m.policy.DefaultLeaseTTL),
		FencingToken: rec.FencingToken + 1,
		Purpose:      purpose,
	}

	if err := m.updateLock(lockPath, newRec); err != nil {
		return nil, fmt.Errorf("steal lock: %w", err)
	}

	if err := m.writeSession(newRec); err != nil {
		return nil, fmt.Errorf("write session: %w", err)
	}

	return newRec, nil
}

// Release frees the lock.
func (m *Manager) Release(holderNonce string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lockPath := m.journal.LockPath()
	rec, err := m.readLock(lockPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // already released
		}
		return fmt.Errorf("read lock: %w", err)
	}

	if rec.HolderNonce != holderNonce {
		return errclass.ErrLockNotHeld.WithMessage("cannot release: nonce mismatch")
	}

	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock: %w", err)
	}

	os.Remove(m.journal.SessionPath())

	return nil
}

// ValidateFencing checks if the provided fencing token matches the current lock.
func (m *Manager) ValidateFencing(token int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.readLock(m.journal.LockPath())
	if err != nil {
		if os.IsNotExist(err) {
			return errclass.ErrLockNotHeld.WithMessage("no lock held")
		}
		return fmt.Errorf("read lock: %w", err)
	}

	if rec.FencingToken != token {
		return errclass.ErrFencingMismatch.WithMessagef(
			"expected token %d, got %d", rec.FencingToken, token)
	}

	return nil
}

// Status returns the current lock state.
func (m *Manager) Status() (model.LockState, *model.LockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.readLock(m.journal.LockPath())
	if err != nil {
		if os.IsNotExist(err) {
			return model.LockStateFree, nil, nil
		}
		return model.LockStateFree, nil, fmt.Errorf("read lock: %w", err)
	}

	if rec.IsExpired(time.Now()) {
		return model.LockStateExpired, rec, nil
	}
	return model.LockStateHeld, rec, nil
}

// LoadSession loads the session file for cross-CLI continuity.
func (m *Manager) LoadSession() (*model.LockSession, error) {
	data, err := os.ReadFile(m.journal.SessionPath())
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess model.LockSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &sess, nil
}

func (m *Manager) readLock(path string) (*model.LockRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec model.LockRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse lock: %w", err)
	}
	return &rec, nil
}

func (m *Manager) writeLock(file *os.File, rec *model.LockRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal lock: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("write lock: %w", err)
	}
	return file.Sync()
}

func (m *Manager) updateLock(path string, rec *model.LockRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal lock: %w", err)
	}
	return fsutil.AtomicWrite(path, data, 0644)
}

func (m *Manager) writeSession(rec *model.LockRecord) error {
	sess := &model.LockSession{
		SessionID:   rec.SessionID,
		HolderNonce: rec.HolderNonce,
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return fsutil.AtomicWrite(m.journal.SessionPath(), data, 0644)
}
