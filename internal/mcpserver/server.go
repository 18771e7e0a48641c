package mcpserver

import (
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"tasklist/internal/kv"
	"tasklist/internal/task"
	"tasklist/internal/view"
)

const (
	serverName    = "tasklist"
	serverVersion = "1.0.0"
)

// TaskServer owns the store the tools operate on. Tool calls may arrive on
// separate goroutines, so every handler holds mu while touching the store.
type TaskServer struct {
	mu      sync.Mutex
	store   *task.Store
	list    *view.Recorder
	log     *slog.Logger
	confirm bool
}

// NewTaskServer builds the store over backend. opts.Approver is replaced by
// the server's own approval, which only passes during a confirmed
// delete_task call.
func NewTaskServer(backend kv.Backend, opts task.Options) (*TaskServer, error) {
	ts := &TaskServer{list: view.NewRecorder(), log: opts.Logger}
	if ts.log == nil {
		ts.log = slog.New(slog.DiscardHandler)
	}
	opts.Approver = view.ApproverFunc(func(string) bool { return ts.confirm })
	store, err := task.New(ts.list, backend, opts)
	if err != nil {
		return nil, err
	}
	store.Render()
	ts.store = store
	if !store.Available() {
		ts.log.Warn("storage unavailable, tool calls will not persist")
	}
	return ts, nil
}

// NewServer creates the MCP server with every task tool registered.
func NewServer(ts *TaskServer) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)

	s.AddTool(addTaskTool(), ts.HandleAddTask)
	s.AddTool(listTasksTool(), ts.HandleListTasks)
	s.AddTool(toggleTaskTool(), ts.HandleToggleTask)
	s.AddTool(deleteTaskTool(), ts.HandleDeleteTask)
	s.AddTool(setFilterTool(), ts.HandleSetFilter)

	return s
}
