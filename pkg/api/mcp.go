package api

import (
	"github.com/hazyhaar/rolodex/pkg/contacts"
	"github.com/hazyhaar/rolodex/pkg/kit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the contact engine MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, store *contacts.Store) {
	registerSearchContacts(srv, store)
	registerLookupPhone(srv, store)
	registerDecodeLookupKey(srv, store)
}

func registerSearchContacts(srv *server.MCPServer, store *contacts.Store) {
	tool := mcp.NewTool("search_contacts",
		mcp.WithDescription("Search contacts by name prefix. Matches display names, family-first variants, nicknames (with cluster expansion, so 'Bob' finds 'Robert'), organizations and email local parts."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The name prefix to search for")),
		mcp.WithString("types", mcp.Description("Comma-separated index type filter (exact,variant,collation,phonetic,nickname,email)")),
	)

	kit.RegisterMCPTool(srv, tool, searchEndpoint(store),
		func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
			args := req.GetArguments()
			query, _ := args["query"].(string)
			filter, _ := args["types"].(string)
			types, err := parseNameTypes(filter)
			if err != nil {
				return nil, err
			}
			return &kit.MCPDecodeResult{Request: &searchReq{Prefix: query, Types: types}}, nil
		})
}

func registerLookupPhone(srv *server.MCPServer, store *contacts.Store) {
	tool := mcp.NewTool("lookup_phone",
		mcp.WithDescription("Find contacts matching a phone number. Tolerates formatting, keypad letters, and a missing country or area code on either side unless strict is set."),
		mcp.WithString("number", mcp.Required(), mcp.Description("The phone number as dialed or displayed")),
		mcp.WithBoolean("strict", mcp.Description("Exact normalized matches only, no suffix heuristic")),
	)

	kit.RegisterMCPTool(srv, tool, phoneEndpoint(store),
		func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
			args := req.GetArguments()
			number, _ := args["number"].(string)
			strict, _ := args["strict"].(bool)
			return &kit.MCPDecodeResult{Request: &phoneReq{Number: number, Strict: strict}}, nil
		})
}

func registerDecodeLookupKey(srv *server.MCPServer, store *contacts.Store) {
	tool := mcp.NewTool("decode_lookup_key",
		mcp.WithDescription("Resolve a portable contact lookup key to the current aggregate contact, surviving id reassignment and re-aggregation."),
		mcp.WithString("key", mcp.Required(), mcp.Description("The lookup key to resolve")),
	)

	kit.RegisterMCPTool(srv, tool, resolveKeyEndpoint(store),
		func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
			args := req.GetArguments()
			key, _ := args["key"].(string)
			return &kit.MCPDecodeResult{Request: &resolveReq{Key: key}}, nil
		})
}
