package mcptools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/matheus3301/wxbak/internal/conversation"
	"github.com/matheus3301/wxbak/internal/identity"
	"github.com/matheus3301/wxbak/internal/store"
)

const defaultConversationLimit = 50

func (t *Tools) listAccountsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(identity.ListAccounts(t.root))
}

func (t *Tools) listConversationsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments
	hash, ok := args["user_md5"].(string)
	if !ok {
		return mcp.NewToolResultError("user_md5 must be a string"), nil
	}
	minCount := t.minCount
	if n, ok := args["min_count"].(float64); ok {
		minCount = int(n)
	}
	limit := defaultConversationLimit
	if n, ok := args["limit"].(float64); ok && n > 0 {
		limit = int(n)
	}

	chats, err := t.index.List(ctx, t.root, hash, minCount)
	if err != nil {
		return toolError(err)
	}
	if len(chats) > limit {
		chats = chats[:limit]
	}
	return jsonResult(chats)
}

func (t *Tools) getMessagesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments
	q := conversation.Query{Root: t.root}

	var ok bool
	if q.AccountHash, ok = args["user_md5"].(string); !ok {
		return mcp.NewToolResultError("user_md5 must be a string"), nil
	}
	if q.Table, ok = args["table"].(string); !ok {
		return mcp.NewToolResultError("table must be a string"), nil
	}
	if s, ok := args["start_date"].(string); ok {
		q.Start = s
	}
	if s, ok := args["end_date"].(string); ok {
		q.End = s
	}
	if n, ok := args["limit"].(float64); ok {
		q.Limit = int(n)
	}
	if n, ok := args["offset"].(float64); ok {
		q.Offset = int(n)
	}
	if all, ok := args["all"].(bool); ok && all {
		q.Window = conversation.AllMessages
	}

	page, err := t.index.Messages(ctx, q)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(page)
}

// toolError reports caller mistakes and missing tables to the model as a
// tool result; anything else fails the call.
func toolError(err error) (*mcp.CallToolResult, error) {
	var inputErr *conversation.InputError
	if errors.As(err, &inputErr) || errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
