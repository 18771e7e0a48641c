// Package task owns the task list: the ordered collection, the active filter,
// persistence through a kv.Backend and rendering into a view.Target.
package task

import (
	"encoding/json"
	"strings"
	"time"
)

// Task is one entry in the list. The JSON shape is the persisted format;
// CreatedAt is optional and older payloads without it still decode.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// UnmarshalJSON decodes a persisted record. createdAt is informational, so a
// value that is not a recognizable timestamp decodes as the zero time instead
// of failing the whole list.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var aux struct {
		plain
		CreatedAt json.RawMessage `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Task(aux.plain)
	t.CreatedAt = parseTimestamp(aux.CreatedAt)
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// parseTimestamp accepts ISO-8601 strings in the common layouts and numbers
// as Unix milliseconds. Anything else is the zero time.
func parseTimestamp(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return time.Time{}
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts
			}
		}
		return time.Time{}
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(int64(ms)).UTC()
	}
	return time.Time{}
}

// Filter selects which tasks are rendered. Any string is accepted; values
// other than the three below behave as FilterAll.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

// Filters lists the recognized filters in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterPending, FilterCompleted}
}

// ParseFilter normalizes user input. It never fails; unrecognized names map
// to FilterAll.
func ParseFilter(s string) Filter {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return FilterAll
	}
	return f
}

func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterPending, FilterCompleted:
		return true
	}
	return false
}

// Effective is the filter actually applied when reading.
func (f Filter) Effective() Filter {
	if !f.Valid() {
		return FilterAll
	}
	return f
}

// Next cycles all -> pending -> completed -> all.
func (f Filter) Next() Filter {
	switch f.Effective() {
	case FilterAll:
		return FilterPending
	case FilterPending:
		return FilterCompleted
	default:
		return FilterAll
	}
}

func (f Filter) matches(t Task) bool {
	switch f.Effective() {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Counts summarizes the list regardless of the active filter.
type Counts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}
