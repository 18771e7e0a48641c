// Package mcpserver exposes the task list as Model Context Protocol tools.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// addTaskTool returns a tool definition for creating a task.
func addTaskTool() mcp.Tool {
	return mcp.NewTool("add_task",
		mcp.WithDescription("Add a task to the front of the list. Blank titles are rejected."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title")),
		mcp.WithString("description",
			mcp.Description("Optional longer description")),
	)
}

// listTasksTool returns a tool definition for listing tasks.
func listTasksTool() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks, most recent first, through the active filter. Returns JSON with the filter, counts and tasks."),
		mcp.WithString("filter",
			mcp.Description("Filter for this call only: all, pending or completed")),
	)
}

func toggleTaskTool() mcp.Tool {
	return mcp.NewTool("toggle_task",
		mcp.WithDescription("Mark a task done, or pending again if it was done."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task id or a unique prefix of it")),
	)
}

// deleteTaskTool returns a tool definition for deleting a task. The caller
// approves the deletion by passing confirm=true.
func deleteTaskTool() mcp.Tool {
	return mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task. Nothing is removed unless confirm is true."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task id or a unique prefix of it")),
		mcp.WithBoolean("confirm",
			mcp.Description("Set to true to approve the deletion")),
	)
}

func setFilterTool() mcp.Tool {
	return mcp.NewTool("set_filter",
		mcp.WithDescription("Set the filter used by list_tasks. Unknown values behave as all."),
		mcp.WithString("filter",
			mcp.Required(),
			mcp.Enum("all", "pending", "completed"),
			mcp.Description("all, pending or completed")),
	)
}
