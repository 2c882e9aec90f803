package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/egoavara/ovos-settings/internal/api"
	"github.com/egoavara/ovos-settings/internal/settings"
	"github.com/egoavara/ovos-settings/internal/store"
)

// Remote is the part of the backend the synchronizer writes to
type Remote interface {
	ReplaceSettings(ctx context.Context, id string, doc settings.Value) (settings.Value, error)
	MergeSettings(ctx context.Context, id string, partial settings.Value) (settings.Value, error)
}

// PersistError reports a failed write. The local document keeps the
// optimistic change; only Undo brings back the earlier one.
type PersistError struct {
	Skill string
	Op    string
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s (%s): %v", e.Skill, e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Synchronizer applies mutations to a Store and writes every resulting
// document to the Remote. Writes of one skill leave in the order their
// mutations were applied; a write starts only after the previous write of
// that skill has finished.
type Synchronizer struct {
	store  *store.Store
	remote Remote

	mu     sync.Mutex
	hidden map[string]*settings.Object
	tails  map[string]chan struct{}
}

// New creates a synchronizer over st and remote
func New(st *store.Store, remote Remote) *Synchronizer {
	return &Synchronizer{
		store:  st,
		remote: remote,
		hidden: make(map[string]*settings.Object),
		tails:  make(map[string]chan struct{}),
	}
}

// Store exposes the underlying store for reads
func (s *Synchronizer) Store() *store.Store { return s.store }

// Load installs a freshly fetched document. Hidden runtime keys are set
// aside and object keys are sorted for a stable first display.
func (s *Synchronizer) Load(skill string, doc settings.Value) {
	visible, hidden := api.StripHidden(doc)

	s.mu.Lock()
	s.hidden[skill] = hidden
	s.mu.Unlock()

	s.store.Load(skill, settings.SortKeys(visible))
}

// Pending is an applied mutation whose document has not been sent yet
type Pending struct {
	Skill string
	// Doc is the document as the user sees it after the mutation
	Doc settings.Value
	Op  string

	s    *Synchronizer
	rev  uint64
	send func(ctx context.Context, doc settings.Value) (settings.Value, error)
	wait <-chan struct{}
	done chan struct{}
	once sync.Once
}

// Apply changes the local document right away and reserves the next write
// slot of the skill. The returned Pending must be persisted or discarded,
// otherwise later writes of the same skill never start.
func (s *Synchronizer) Apply(skill string, m Mutation) (*Pending, error) {
	var (
		doc settings.Value
		rev uint64
		err error
	)
	if _, ok := m.(Undo); ok {
		doc, rev, err = s.store.Undo(skill)
	} else {
		doc, rev, err = s.store.Apply(skill, m.apply)
	}
	if err != nil {
		return nil, err
	}

	p := &Pending{Skill: skill, Doc: doc, Op: m.String(), rev: rev}
	p.send = func(ctx context.Context, out settings.Value) (settings.Value, error) {
		return s.remote.ReplaceSettings(ctx, skill, out)
	}
	s.enqueue(p)
	return p, nil
}

// Merge merges partial into the local document and sends it through the
// merge endpoint, so only the new keys travel.
func (s *Synchronizer) Merge(ctx context.Context, skill string, partial settings.Value) (settings.Value, error) {
	if partial.Kind() != settings.KindObject {
		return settings.Value{}, fmt.Errorf("%w: merge body must be an object", settings.ErrInvalidTarget)
	}
	doc, rev, err := s.store.Apply(skill, func(cur settings.Value) (settings.Value, error) {
		return settings.Merge(cur, partial, true), nil
	})
	if err != nil {
		return settings.Value{}, err
	}

	p := &Pending{Skill: skill, Doc: doc, Op: "merge", rev: rev}
	p.send = func(ctx context.Context, _ settings.Value) (settings.Value, error) {
		return s.remote.MergeSettings(ctx, skill, partial)
	}
	s.enqueue(p)
	if err := p.Persist(ctx); err != nil {
		return doc, err
	}
	cur, _ := s.store.Get(skill)
	return cur, nil
}

// Do applies m and persists it, returning the document after the mutation
func (s *Synchronizer) Do(ctx context.Context, skill string, m Mutation) (settings.Value, error) {
	p, err := s.Apply(skill, m)
	if err != nil {
		return settings.Value{}, err
	}
	if err := p.Persist(ctx); err != nil {
		return p.Doc, err
	}
	return p.Doc, nil
}

func (s *Synchronizer) enqueue(p *Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.s = s
	p.wait = s.tails[p.Skill]
	p.done = make(chan struct{})
	s.tails[p.Skill] = p.done
}

func (s *Synchronizer) outbound(skill string, doc settings.Value) settings.Value {
	s.mu.Lock()
	hidden := s.hidden[skill]
	s.mu.Unlock()
	return api.WithHidden(doc, hidden)
}

func (s *Synchronizer) reconcile(p *Pending, doc settings.Value) {
	visible, hidden := api.StripHidden(doc)
	if hidden != nil {
		s.mu.Lock()
		s.hidden[p.Skill] = hidden
		s.mu.Unlock()
	}
	if s.store.Reconcile(p.Skill, p.rev, visible) {
		slog.Debug("reconciled server copy", "skill", p.Skill, "op", p.Op)
	}
}

// Persist waits for earlier writes of the skill, then sends the document.
// A server reply is taken into the store only when nothing changed locally
// since this mutation. Cancelling ctx abandons the write but keeps the slot
// order for later ones.
func (p *Pending) Persist(ctx context.Context) error {
	started := false
	p.once.Do(func() { started = true })
	if !started {
		return fmt.Errorf("persist %s: already persisted or discarded", p.Skill)
	}

	if p.wait != nil {
		select {
		case <-p.wait:
		case <-ctx.Done():
			p.release()
			return &PersistError{Skill: p.Skill, Op: p.Op, Err: ctx.Err()}
		}
	}
	defer close(p.done)

	out, err := p.send(ctx, p.s.outbound(p.Skill, p.Doc))
	if err != nil {
		slog.Warn("persist failed", "skill", p.Skill, "op", p.Op, "err", err)
		return &PersistError{Skill: p.Skill, Op: p.Op, Err: err}
	}
	p.s.reconcile(p, out)
	return nil
}

// Discard gives up the write slot without sending anything
func (p *Pending) Discard() {
	p.once.Do(p.release)
}

// release closes done once every earlier write has finished
func (p *Pending) release() {
	if p.wait == nil {
		close(p.done)
		return
	}
	go func() {
		<-p.wait
		close(p.done)
	}()
}
