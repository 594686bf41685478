package handler

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/armchr/vectorapi/internal/config"
	"github.com/armchr/vectorapi/internal/controller"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Tool argument structs. The SDK derives JSON schemas from these and
// rejects malformed arguments before they reach the handlers.

type ListCollectionsArgs struct{}

type AddDocumentsArgs struct {
	FilePath         string `json:"file_path" jsonschema:"path of the document file to ingest"`
	Collection       string `json:"collection" jsonschema:"name of the target collection"`
	EmbeddingService string `json:"embedding_service" jsonschema:"embedding provider to use: openai, ollama, lmstudio or internal"`
	ChunkSize        int    `json:"chunk_size,omitempty" jsonschema:"chunk size in characters (optional)"`
	ChunkOverlap     int    `json:"chunk_overlap,omitempty" jsonschema:"overlap between consecutive chunks in characters (optional)"`
}

type SearchArgs struct {
	Query            string `json:"query" jsonschema:"text to search for"`
	Collection       string `json:"collection" jsonschema:"name of the collection to search"`
	EmbeddingService string `json:"embedding_service" jsonschema:"embedding provider to use: openai, ollama, lmstudio or internal"`
	Limit            int    `json:"limit,omitempty" jsonschema:"maximum number of results (default 10)"`
}

type DeleteCollectionArgs struct {
	Collection string `json:"collection" jsonschema:"name of the collection to delete"`
}

// MCPHandler exposes the document tools over the Model Context Protocol.
type MCPHandler struct {
	docs   *controller.DocumentController
	cfg    *config.Config
	logger *zap.Logger
}

// NewMCPServer builds an MCP server with the four document tools registered.
func NewMCPServer(docs *controller.DocumentController, cfg *config.Config, logger *zap.Logger) *mcp.Server {
	h := &MCPHandler{docs: docs, cfg: cfg, logger: logger}

	server := mcp.NewServer(&mcp.Implementation{Name: "vectorapi", Version: "0.2.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_collections",
		Description: "List all collections in the vector store",
	}, h.ListCollections)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_documents",
		Description: "Split a document file into chunks, embed them and store them in a collection",
	}, h.AddDocuments)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search",
		Description: "Search a collection for chunks similar to a query",
	}, h.Search)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_collection",
		Description: "Delete a collection and all of its stored chunks",
	}, h.DeleteCollection)

	return server
}

func (h *MCPHandler) ListCollections(ctx context.Context, req *mcp.CallToolRequest, args ListCollectionsArgs) (*mcp.CallToolResult, any, error) {
	names, err := h.docs.ListCollections(ctx)
	if err != nil {
		return errorResult(err), nil, nil
	}
	if len(names) == 0 {
		return textResult("No collections found."), nil, nil
	}
	return textResult("Collections:\n" + strings.Join(names, "\n")), nil, nil
}

func (h *MCPHandler) AddDocuments(ctx context.Context, req *mcp.CallToolRequest, args AddDocumentsArgs) (*mcp.CallToolResult, any, error) {
	content, err := os.ReadFile(args.FilePath)
	if err != nil {
		return errorResult(fmt.Errorf("failed to read file %s: %w", args.FilePath, err)), nil, nil
	}

	result, err := h.docs.AddDocuments(ctx, controller.IngestRequest{
		Content:      string(content),
		Source:       args.FilePath,
		Collection:   args.Collection,
		Embedding:    h.cfg.EmbeddingConfigFor(args.EmbeddingService),
		ChunkSize:    args.ChunkSize,
		ChunkOverlap: args.ChunkOverlap,
	})
	if err != nil {
		return errorResult(err), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Added %d chunks from %s to collection %q.", result.ChunksWritten, args.FilePath, args.Collection)
	if result.CollectionCreated {
		fmt.Fprintf(&b, "\nCollection %q was created.", args.Collection)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(&b, "\nWarning: %s", w)
	}
	return textResult(b.String()), nil, nil
}

func (h *MCPHandler) Search(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	results, err := h.docs.Search(ctx, controller.SearchRequest{
		Query:      args.Query,
		Collection: args.Collection,
		Embedding:  h.cfg.EmbeddingConfigFor(args.EmbeddingService),
		Limit:      args.Limit,
	})
	if err != nil {
		return errorResult(err), nil, nil
	}
	return textResult(results), nil, nil
}

func (h *MCPHandler) DeleteCollection(ctx context.Context, req *mcp.CallToolRequest, args DeleteCollectionArgs) (*mcp.CallToolResult, any, error) {
	if err := h.docs.DeleteCollection(ctx, args.Collection); err != nil {
		return errorResult(err), nil, nil
	}
	return textResult(fmt.Sprintf("Deleted collection %q.", args.Collection)), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}
