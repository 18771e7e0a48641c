package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"tasklist/internal/task"
	"tasklist/internal/view"
)

type taskJSON struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

type listJSON struct {
	Filter string      `json:"filter"`
	Counts task.Counts `json:"counts"`
	Tasks  []taskJSON  `json:"tasks"`
}

// HandleAddTask creates a task.
// Parameters:
//   - title (string, required)
//   - description (string, optional)
func (ts *TaskServer) HandleAddTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	title, _ := args["title"].(string)
	desc, _ := args["description"].(string)

	ts.mu.Lock()
	defer ts.mu.Unlock()

	t, ok := ts.store.AddTask(title, desc)
	if !ok {
		return mcp.NewToolResultError("Title cannot be empty"), nil
	}
	ts.log.Info("task added", "id", t.ID)
	return mcp.NewToolResultText(fmt.Sprintf("Added task %s: %s", t.ID, t.Title)), nil
}

// HandleListTasks returns the rendered list as JSON. An optional filter
// applies to this call only.
func (ts *TaskServer) HandleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if raw, ok := args["filter"].(string); ok && strings.TrimSpace(raw) != "" {
		prev := ts.store.Filter()
		ts.store.SetFilter(task.Filter(strings.ToLower(strings.TrimSpace(raw))))
		defer ts.store.SetFilter(prev)
	}

	out := listJSON{
		Filter: string(ts.store.Filter().Effective()),
		Counts: ts.store.Counts(),
		Tasks:  []taskJSON{},
	}
	for _, n := range ts.list.Nodes() {
		if n.Kind != view.KindTask {
			continue
		}
		tj := taskJSON{ID: n.ID, Title: n.Title, Description: n.Description, Completed: n.Completed}
		if !n.CreatedAt.IsZero() {
			created := n.CreatedAt
			tj.CreatedAt = &created
		}
		out.Tasks = append(out.Tasks, tj)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode tasks: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// HandleToggleTask flips a task between pending and done.
func (ts *TaskServer) HandleToggleTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, _ := request.GetArguments()["id"].(string)

	ts.mu.Lock()
	defer ts.mu.Unlock()

	n, errResult := ts.resolve(ref)
	if errResult != nil {
		return errResult, nil
	}
	if !n.Toggle() {
		return mcp.NewToolResultError(fmt.Sprintf("Task not found: %s", ref)), nil
	}
	state := "done"
	if n.Completed {
		state = "pending"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Marked %s %s", n.ID, state)), nil
}

// HandleDeleteTask removes a task through its delete control. The control's
// approval passes only when confirm is true.
func (ts *TaskServer) HandleDeleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	ref, _ := args["id"].(string)
	confirm, _ := args["confirm"].(bool)

	ts.mu.Lock()
	defer ts.mu.Unlock()

	n, errResult := ts.resolve(ref)
	if errResult != nil {
		return errResult, nil
	}

	ts.confirm = confirm
	deleted := n.Delete()
	ts.confirm = false

	if !deleted {
		return mcp.NewToolResultError("Delete not confirmed. Call again with confirm=true."), nil
	}
	ts.log.Info("task deleted", "id", n.ID)
	return mcp.NewToolResultText(fmt.Sprintf("Deleted task %s: %s", n.ID, n.Title)), nil
}

// HandleSetFilter stores the filter used by later list_tasks calls.
func (ts *TaskServer) HandleSetFilter(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := request.GetArguments()["filter"].(string)
	if !ok {
		return mcp.NewToolResultError("Missing required parameter: filter"), nil
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.store.SetFilter(task.Filter(strings.ToLower(strings.TrimSpace(raw))))
	return mcp.NewToolResultText("Showing " + string(ts.store.Filter().Effective()) + " tasks"), nil
}

// resolve finds the node for ref, an exact id or a unique prefix, across the
// whole list. The active filter is restored before returning. Callers hold
// mu.
func (ts *TaskServer) resolve(ref string) (view.Node, *mcp.CallToolResult) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return view.Node{}, mcp.NewToolResultError("Missing required parameter: id")
	}

	prev := ts.store.Filter()
	ts.store.SetFilter(task.FilterAll)
	nodes := ts.list.Nodes()
	ts.store.SetFilter(prev)

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
		return view.Node{}, mcp.NewToolResultError(fmt.Sprintf("Task not found: %s", ref))
	case 1:
		return found[0], nil
	default:
		return view.Node{}, mcp.NewToolResultError(fmt.Sprintf("Ambiguous task id: %s matches %d tasks", ref, len(found)))
	}
}
