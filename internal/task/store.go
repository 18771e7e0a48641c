package task

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tasklist/internal/kv"
	"tasklist/internal/view"
)

const (
	// DefaultKey is the storage key used when Options.Key is empty.
	DefaultKey = "todo.tasks"

	probeKey      = "__todo_test__"
	deletePrompt  = "Delete this task?"
	emptyListText = "No tasks found."
)

// Options configures a Store. The zero value is usable: default key, no
// approver (delete controls refuse), discarded logs.
type Options struct {
	Key      string
	Filter   Filter
	Approver view.Approver
	Logger   *slog.Logger

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

// Store is the task list. It is not safe for concurrent use; callers
// serialize access.
type Store struct {
	target   view.Target
	backend  kv.Backend
	key      string
	approver view.Approver
	log      *slog.Logger
	now      func() time.Time
	newID    func() string

	tasks     []Task
	filter    Filter
	available bool
}

// New builds a store rendering into target and persisting through backend.
// A nil backend, or one that fails the availability probe, leaves the store
// in memory-only mode for its lifetime. Only a missing target is an error;
// a typed nil pointer is not detected, so pointer targets must be non-nil
// unless their methods accept a nil receiver, as view.Recorder's do.
//
// New loads persisted tasks but does not render; call Render once the
// caller is ready to display.
func New(target view.Target, backend kv.Backend, opts Options) (*Store, error) {
	if target == nil {
		return nil, ErrNoTarget
	}
	s := &Store{
		target:   target,
		backend:  backend,
		key:      opts.Key,
		approver: opts.Approver,
		log:      opts.Logger,
		now:      opts.Now,
		newID:    opts.NewID,
		filter:   opts.Filter,
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.filter == "" {
		s.filter = FilterAll
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	s.log = s.log.With("key", s.key)

	s.available = s.probe()
	s.Load()
	return s, nil
}

func (s *Store) probe() bool {
	if s.backend == nil {
		s.log.Info("no storage backend, keeping tasks in memory")
		return false
	}
	if err := s.backend.Set(probeKey, "1"); err != nil {
		s.log.Info("storage unavailable, keeping tasks in memory", "err", err)
		return false
	}
	if err := s.backend.Delete(probeKey); err != nil {
		s.log.Info("storage unavailable, keeping tasks in memory", "err", err)
		return false
	}
	return true
}

// Load replaces the in-memory list with the persisted one. It never fails:
// unreadable or corrupt data leaves an empty list.
func (s *Store) Load() {
	s.tasks = nil
	if !s.available {
		return
	}

	raw, ok, err := s.backend.Get(s.key)
	if err != nil {
		s.log.Warn("failed to read tasks", "err", err)
		return
	}
	if !ok {
		return
	}

	var decoded []Task
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		s.log.Error("discarding corrupt task data", "err", err, "bytes", len(raw))
		if err := s.backend.Delete(s.key); err != nil {
			s.log.Warn("failed to clear corrupt task data", "err", err)
		}
		return
	}
	s.tasks = s.sanitize(decoded)
}

// sanitize drops records without a title (including null elements), trims
// titles, gives id-less records a fresh id and drops repeats of an id already
// seen, keeping the first.
func (s *Store) sanitize(in []Task) []Task {
	out := make([]Task, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t.Title = strings.TrimSpace(t.Title)
		if t.Title == "" {
			s.log.Warn("dropping task without a title", "id", t.ID)
			continue
		}
		if t.ID == "" {
			t.ID = s.newID()
		}
		if _, dup := seen[t.ID]; dup {
			s.log.Warn("dropping task with duplicate id", "id", t.ID)
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Save writes the whole list under the store key. Failures are logged and
// returned; in-memory state is unaffected either way.
func (s *Store) Save() error {
	if !s.available {
		return nil
	}
	tasks := s.tasks
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		s.log.Warn("failed to encode tasks", "err", err)
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.backend.Set(s.key, string(data)); err != nil {
		s.log.Warn("failed to save tasks", "err", err, "count", len(tasks))
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// AddTask creates a task at the front of the list. It returns false, and
// changes nothing, when the trimmed title is empty.
func (s *Store) AddTask(title, description string) (Task, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, false
	}
	t := Task{
		ID:          s.newID(),
		Title:       title,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now(),
	}
	s.tasks = append([]Task{t}, s.tasks...)
	_ = s.Save()
	s.Render()
	return t, true
}

// DeleteTask removes the task with id. It reports whether a task was
// removed; the list is saved and re-rendered either way.
func (s *Store) DeleteTask(id string) bool {
	i := s.indexOf(id)
	if i >= 0 {
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	}
	_ = s.Save()
	s.Render()
	return i >= 0
}

// ToggleTask flips the completion state of the task with id.
func (s *Store) ToggleTask(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	_ = s.Save()
	s.Render()
	return true
}

// SetFilter stores f as given and re-renders.
func (s *Store) SetFilter(f Filter) {
	s.filter = f
	s.Render()
}

func (s *Store) Filter() Filter { return s.filter }

func (s *Store) Key() string { return s.key }

// Available reports whether the store persists to its backend.
func (s *Store) Available() bool { return s.available }

// Tasks returns a copy of the full list, most recent first.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Lookup returns the task with id.
func (s *Store) Lookup(id string) (Task, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

// FilteredTasks projects the list through the active filter, preserving
// order.
func (s *Store) FilteredTasks() []Task {
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if s.filter.matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) Counts() Counts {
	c := Counts{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Pending++
		}
	}
	return c
}

// Render replaces the target's content with the filtered list, or a single
// placeholder when it is empty.
func (s *Store) Render() {
	s.target.Clear()
	tasks := s.FilteredTasks()
	if len(tasks) == 0 {
		s.target.Append(view.Node{Kind: view.KindPlaceholder, Text: emptyListText})
		return
	}
	for _, t := range tasks {
		s.target.Append(s.node(t))
	}
}

func (s *Store) node(t Task) view.Node {
	id := t.ID
	return view.Node{
		Kind:        view.KindTask,
		ID:          id,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		Toggle:      func() bool { return s.ToggleTask(id) },
		Delete: func() bool {
			if s.approver == nil || !s.approver.Approve(deletePrompt) {
				return false
			}
			return s.DeleteTask(id)
		},
	}
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
