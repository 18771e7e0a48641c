// Package cli runs single task commands without the terminal UI.
package cli

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasklist/internal/task"
	"tasklist/internal/view"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitNotFound = 3
)

const shortIDLen = 8

// StoreFactory builds the store a command runs against. The dispatcher
// supplies the target and approver.
type StoreFactory func(target view.Target, approver view.Approver) (*task.Store, error)

type Dispatcher struct {
	factory StoreFactory
	in      *bufio.Reader
	out     io.Writer
	errOut  io.Writer
}

func NewDispatcher(factory StoreFactory, in io.Reader, out, errOut io.Writer) *Dispatcher {
	return &Dispatcher{
		factory: factory,
		in:      bufio.NewReader(in),
		out:     out,
		errOut:  errOut,
	}
}

// Commands reports whether args name a command this package handles.
func Commands(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "add", "list", "ls", "toggle", "done", "rm", "delete", "help", "-h", "--help":
		return true
	}
	return false
}

// Run executes args and returns the process exit code.
func (d *Dispatcher) Run(args []string) int {
	if len(args) == 0 {
		return d.usage()
	}
	switch args[0] {
	case "add":
		return d.add(args[1:])
	case "list", "ls":
		return d.list(args[1:])
	case "toggle", "done":
		return d.toggle(args[1:])
	case "rm", "delete":
		return d.remove(args[1:])
	case "help", "-h", "--help":
		d.printHelp(d.out)
		return ExitOK
	default:
		fmt.Fprintf(d.errOut, "error: unknown command: %s\n", args[0])
		return ExitUsage
	}
}

func (d *Dispatcher) usage() int {
	d.printHelp(d.errOut)
	return ExitUsage
}

func (d *Dispatcher) printHelp(w io.Writer) {
	fmt.Fprint(w, `usage: tasklist [command]

With no command, starts the interactive task list.

commands:
  add <title> [description]   add a task
  list [-filter f]            list tasks (all, pending, completed)
  toggle <id>                 mark a task done or pending
  rm [-y] <id>                delete a task after confirmation
  help                        show this help

<id> may be any unique prefix of a task id.
`)
}

func (d *Dispatcher) open(approver view.Approver) (*task.Store, *view.Recorder, bool) {
	rec := view.NewRecorder()
	s, err := d.factory(rec, approver)
	if err != nil {
		fmt.Fprintf(d.errOut, "error: %s\n", err)
		return nil, nil, false
	}
	return s, rec, true
}

func (d *Dispatcher) parse(name string, args []string, register func(*flag.FlagSet)) ([]string, bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if register != nil {
		register(fs)
	}
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(d.errOut, "error: %s\n", err)
		return nil, false
	}
	return fs.Args(), true
}

func (d *Dispatcher) add(args []string) int {
	rest, ok := d.parse("add", args, nil)
	if !ok {
		return ExitUsage
	}
	if len(rest) == 0 {
		fmt.Fprintln(d.errOut, "error: title required")
		return ExitUsage
	}
	s, _, ok := d.open(nil)
	if !ok {
		return ExitFailure
	}
	t, created := s.AddTask(rest[0], strings.Join(rest[1:], " "))
	if !created {
		fmt.Fprintln(d.errOut, "error: title cannot be empty")
		return ExitUsage
	}
	fmt.Fprintf(d.out, "added %s %s\n", shortID(t.ID), t.Title)
	return ExitOK
}

func (d *Dispatcher) list(args []string) int {
	var filter string
	rest, ok := d.parse("list", args, func(fs *flag.FlagSet) {
		fs.StringVar(&filter, "filter", string(task.FilterAll), "")
	})
	if !ok {
		return ExitUsage
	}
	if len(rest) > 0 && filter == string(task.FilterAll) {
		filter = rest[0]
	}
	s, rec, ok := d.open(nil)
	if !ok {
		return ExitFailure
	}
	s.SetFilter(task.Filter(strings.ToLower(strings.TrimSpace(filter))))
	d.printNodes(rec.Nodes())
	return ExitOK
}

func (d *Dispatcher) printNodes(nodes []view.Node) {
	for _, n := range nodes {
		if n.Kind == view.KindPlaceholder {
			fmt.Fprintln(d.out, n.Text)
			continue
		}
		box := "[ ]"
		if n.Completed {
			box = "[x]"
		}
		fmt.Fprintf(d.out, "%s %s  %s\n", box, shortID(n.ID), n.Title)
		if n.Description != "" {
			fmt.Fprintf(d.out, "              %s\n", n.Description)
		}
	}
}

func (d *Dispatcher) toggle(args []string) int {
	rest, ok := d.parse("toggle", args, nil)
	if !ok {
		return ExitUsage
	}
	if len(rest) != 1 {
		fmt.Fprintln(d.errOut, "error: task id required")
		return ExitUsage
	}
	s, rec, ok := d.open(nil)
	if !ok {
		return ExitFailure
	}
	n, code := d.resolve(s, rec, rest[0])
	if code != ExitOK {
		return code
	}
	if !n.Toggle() {
		fmt.Fprintf(d.errOut, "error: task not found: %s\n", rest[0])
		return ExitNotFound
	}
	state := "done"
	if n.Completed {
		state = "pending"
	}
	fmt.Fprintf(d.out, "%s %s marked %s\n", shortID(n.ID), n.Title, state)
	return ExitOK
}

func (d *Dispatcher) remove(args []string) int {
	var yes bool
	rest, ok := d.parse("rm", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&yes, "y", false, "")
	})
	if !ok {
		return ExitUsage
	}
	if len(rest) != 1 {
		fmt.Fprintln(d.errOut, "error: task id required")
		return ExitUsage
	}

	var approver view.Approver = view.AlwaysApprove
	if !yes {
		approver = view.ApproverFunc(d.prompt)
	}
	s, rec, ok := d.open(approver)
	if !ok {
		return ExitFailure
	}
	n, code := d.resolve(s, rec, rest[0])
	if code != ExitOK {
		return code
	}
	if !n.Delete() {
		fmt.Fprintln(d.out, "delete cancelled")
		return ExitOK
	}
	fmt.Fprintf(d.out, "deleted %s %s\n", shortID(n.ID), n.Title)
	return ExitOK
}

// prompt asks on the dispatcher's input. Anything but y/yes declines,
// including end of input.
func (d *Dispatcher) prompt(question string) bool {
	fmt.Fprintf(d.out, "%s [y/N] ", question)
	line, err := d.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

var errAmbiguous = errors.New("ambiguous task id")

// resolve renders the full list and returns the node whose id equals ref or
// is the only one starting with it.
func (d *Dispatcher) resolve(s *task.Store, rec *view.Recorder, ref string) (view.Node, int) {
	s.SetFilter(task.FilterAll)
	n, err := match(rec.Nodes(), ref)
	switch {
	case errors.Is(err, errAmbiguous):
		fmt.Fprintf(d.errOut, "error: %s: %s\n", err, ref)
		return view.Node{}, ExitUsage
	case err != nil:
		fmt.Fprintf(d.errOut, "error: task not found: %s\n", ref)
		return view.Node{}, ExitNotFound
	}
	return n, ExitOK
}

func match(nodes []view.Node, ref string) (view.Node, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return view.Node{}, errors.New("empty task id")
	}
	var found []view.Node
	for _, n := range nodes {
		if n.Kind != view.KindTask {
			continue
		}
		if n.ID == ref {
			return n, nil
		}
		if strings.HasPrefix(n.ID, ref) {
			found = append(found, n)
		}
	}
	switch len(found) {
	case 0:
		return view.Node{}, errors.New("task not found")
	case 1:
		return found[0], nil
	default:
		return view.Node{}, errAmbiguous
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}
