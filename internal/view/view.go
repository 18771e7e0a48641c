// Package view describes what a task list looks like without drawing it.
//
// The task store emits render instructions (Clear, then Append per node) into
// a Target. Terminal, CLI and tool-server front ends each supply their own
// Target and turn the nodes into output.
package view

import "time"

type Kind int

const (
	KindTask Kind = iota
	KindPlaceholder
)

// Control is an action attached to a rendered node. It reports whether the
// action changed anything.
type Control func() bool

// Node is one renderable unit.
type Node struct {
	Kind        Kind
	ID          string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	// Text is set on placeholder nodes.
	Text string

	Toggle Control
	Delete Control
}

// Target is a container that can be emptied and appended to.
type Target interface {
	Clear()
	Append(Node)
}

// Approver answers a yes/no question before a destructive action.
type Approver interface {
	Approve(prompt string) bool
}

type ApproverFunc func(prompt string) bool

func (f ApproverFunc) Approve(prompt string) bool { return f(prompt) }

var (
	AlwaysApprove Approver = ApproverFunc(func(string) bool { return true })
	NeverApprove  Approver = ApproverFunc(func(string) bool { return false })
)

// Recorder is a headless Target that keeps the most recent render. A nil
// *Recorder is valid: it discards appends and reads as empty.
type Recorder struct {
	nodes  []Node
	clears int
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Clear() {
	if r == nil {
		return
	}
	r.nodes = nil
	r.clears++
}

func (r *Recorder) Append(n Node) {
	if r == nil {
		return
	}
	r.nodes = append(r.nodes, n)
}

// Nodes returns the nodes appended since the last Clear.
func (r *Recorder) Nodes() []Node {
	if r == nil {
		return nil
	}
	out := make([]Node, len(r.nodes))
	copy(out, r.nodes)
	return out
}

// Len is the number of nodes currently held.
func (r *Recorder) Len() int {
	if r == nil {
		return 0
	}
	return len(r.nodes)
}

// At returns the node at i, or false when i is out of range.
func (r *Recorder) At(i int) (Node, bool) {
	if r == nil || i < 0 || i >= len(r.nodes) {
		return Node{}, false
	}
	return r.nodes[i], true
}

// Clears counts how many times the target has been emptied.
func (r *Recorder) Clears() int {
	if r == nil {
		return 0
	}
	return r.clears
}

// Empty reports whether the current render is the placeholder alone.
func (r *Recorder) Empty() bool {
	if r == nil {
		return false
	}
	return len(r.nodes) == 1 && r.nodes[0].Kind == KindPlaceholder
}
