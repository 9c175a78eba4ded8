package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dmitrymomot/sealedsession/pkg/async"
	"github.com/dmitrymomot/sealedsession/pkg/logger"
)

// Store is the mutation tracked session of one request. The embedded root
// Node exposes the data; every change reseals the whole graph in the
// background and stages the new cookie. Commit waits for the latest reseal.
type Store struct {
	*Node

	mu      sync.Mutex
	root    map[string]any
	manager *Manager
	jar     *Jar
	ctx     context.Context

	// seq numbers reseals in the order they were started. Only a reseal newer
	// than stagedSeq may stage its cookie.
	seq        uint64
	stagedSeq  uint64
	pending    *async.Future[string]
	pendingSeq uint64
	failure    *resealFailure
}

type resealJob struct {
	seq     uint64
	payload []byte
	err     error
}

type resealFailure struct {
	seq uint64
	err error
}

func newStore(ctx context.Context, m *Manager, jar *Jar) *Store {
	raw, _ := jar.Get(m.config.CookieName)

	s := &Store{
		root:    m.Snapshot(ctx, raw),
		manager: m,
		jar:     jar,
		ctx:     context.WithoutCancel(ctx),
	}
	s.Node = &Node{store: s, obj: s.root}
	return s
}

// Commit waits for the most recent reseal and returns its error. It returns
// nil immediately when nothing is pending. The pending reseal stays tracked
// when ctx ends first.
func (s *Store) Commit(ctx context.Context) error {
	s.mu.Lock()
	f, seq := s.pending, s.pendingSeq
	s.mu.Unlock()

	if f == nil {
		return nil
	}

	_, err := f.AwaitContext(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return err
	}

	s.mu.Lock()
	if s.pending == f {
		s.pending = nil
	}
	if s.failure != nil && s.failure.seq <= seq {
		s.failure = nil
	}
	s.mu.Unlock()

	return err
}

// Pending reports whether a reseal is waiting to be committed.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Replace swaps the whole session for v, which must encode as a JSON object.
// The session is left untouched when v cannot be encoded.
func (s *Store) Replace(v any) error {
	normalized := normalize(v, 0)
	if u, isRaw := normalized.(unserializable); isRaw {
		return errors.Join(ErrSerialize, u.err)
	}
	obj, ok := normalized.(map[string]any)
	if !ok {
		return ErrNotObject
	}
	if _, err := json.Marshal(obj); err != nil {
		return errors.Join(ErrSerialize, err)
	}

	s.mutate(func() {
		clear(s.root)
		for k, item := range obj {
			s.root[k] = item
		}
	})
	return nil
}

// Clear removes every key. The cookie is kept and carries an empty session.
func (s *Store) Clear() {
	s.mutate(func() {
		clear(s.root)
	})
}

// Destroy clears the session and stages a deletion of the cookie. Reseals
// still in flight are discarded.
func (s *Store) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.root)
	s.seq++
	s.stagedSeq = s.seq
	s.pending = async.Resolved("")
	s.pendingSeq = s.seq
	s.failure = nil
	_ = s.jar.Stage(s.manager.expiredCookie())
}

func (s *Store) mutate(apply func()) {
	s.mutateIf(func() bool {
		apply()
		return true
	})
}

// mutateIf reseals only when apply reports a change.
func (s *Store) mutateIf(apply func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if apply() {
		s.resealLocked()
	}
}

// resealLocked encodes the graph as it is now and seals it in the background.
// Must be called with s.mu held.
func (s *Store) resealLocked() {
	if s.failure != nil && s.failure.seq == s.seq {
		s.logSuperseded(s.failure.seq, s.failure.err)
		s.failure = nil
	}

	s.seq++
	job := resealJob{seq: s.seq}
	job.payload, job.err = json.Marshal(s.root)
	if job.err != nil && !errors.Is(job.err, ErrSerialize) {
		job.err = errors.Join(ErrSerialize, job.err)
	}

	s.pending = async.Async(s.ctx, job, s.runReseal)
	s.pendingSeq = job.seq
}

func (s *Store) runReseal(_ context.Context, job resealJob) (string, error) {
	err := job.err
	var token string
	if err == nil {
		token, err = s.manager.sealBytes(job.payload)
	}
	if err == nil {
		err = s.stage(job.seq, token)
	}
	if err != nil {
		s.recordFailure(job.seq, err)
		return "", err
	}
	return token, nil
}

func (s *Store) stage(seq uint64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.stagedSeq {
		return nil
	}
	s.stagedSeq = seq
	return s.jar.Stage(s.manager.sessionCookie(token))
}

// recordFailure keeps the failure of the latest reseal for Commit and logs
// failures of reseals that were already superseded, which nobody awaits.
func (s *Store) recordFailure(seq uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.seq {
		s.logSuperseded(seq, err)
		return
	}
	s.failure = &resealFailure{seq: seq, err: err}
}

func (s *Store) logSuperseded(seq uint64, err error) {
	s.manager.logger.WarnContext(s.ctx, "superseded session reseal failed",
		logger.Component("session"),
		logger.Sequence(seq),
		logger.Error(err),
	)
}

// abandon waits for the pending reseal in the background and logs its
// failure. Used when the handler never reaches the commit gate.
func (s *Store) abandon(timeout time.Duration) {
	s.mu.Lock()
	f := s.pending
	s.pending = nil
	s.mu.Unlock()

	if f == nil {
		return
	}

	go func() {
		if _, err := f.AwaitWithTimeout(timeout); err != nil {
			s.manager.metrics.ObserveCommit(err)
			s.manager.logger.ErrorContext(s.ctx, "abandoned session reseal failed",
				logger.Component("session"),
				logger.Error(err),
			)
		}
	}()
}
