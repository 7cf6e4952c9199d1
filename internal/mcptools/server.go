// Package mcptools exposes the backup to MCP clients as read-only tools.
package mcptools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/matheus3301/wxbak/internal/conversation"
)

// Tools holds the state shared by the tool handlers.
type Tools struct {
	root     string
	index    *conversation.Indexer
	minCount int
}

// New returns the tool set for the backup at root.
func New(root string, index *conversation.Indexer, minCount int) *Tools {
	return &Tools{root: root, index: index, minCount: minCount}
}

// NewMCPServer creates an MCP server with every tool registered.
func NewMCPServer(name, version string, t *Tools) *server.MCPServer {
	s := server.NewMCPServer(name, version)

	listAccountsTool := mcp.NewTool("list_accounts",
		mcp.WithDescription("List the WeChat accounts found in the backup, with their md5 keys"),
	)

	listConversationsTool := mcp.NewTool("list_conversations",
		mcp.WithDescription("List an account's conversations, most recently active first"),
		mcp.WithString("user_md5",
			mcp.Required(),
			mcp.Description("md5 key of the account, from list_accounts"),
		),
		mcp.WithNumber("min_count",
			mcp.Description("Hide conversations with at most this many messages (default from config)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of conversations to return (default 50)"),
		),
	)

	getMessagesTool := mcp.NewTool("get_messages",
		mcp.WithDescription("Retrieve formatted messages of one conversation, newest first"),
		mcp.WithString("user_md5",
			mcp.Required(),
			mcp.Description("md5 key of the account"),
		),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("Conversation table name, from list_conversations"),
		),
		mcp.WithString("start_date",
			mcp.Description("Optional first day, YYYY-MM-DD"),
		),
		mcp.WithString("end_date",
			mcp.Description("Optional last day, YYYY-MM-DD"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of messages to return (default 100)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of messages to skip (default 0)"),
		),
		mcp.WithBoolean("all",
			mcp.Description("Search the whole history instead of the latest active day when no dates are given (default false)"),
		),
	)

	s.AddTool(listAccountsTool, t.listAccountsHandler)
	s.AddTool(listConversationsTool, t.listConversationsHandler)
	s.AddTool(getMessagesTool, t.getMessagesHandler)

	return s
}

// Serve runs s over stdin/stdout until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
