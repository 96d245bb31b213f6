// server/mcpserver/server.go
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/ViniZap4/carnet-server/filesystem"
	"github.com/ViniZap4/carnet-server/search"
)

// Server exposes the note operations of one root as MCP tools.
type Server struct {
	root string
	log  zerolog.Logger
	mcp  *server.MCPServer
}

func NewServer(root, version string, log zerolog.Logger) *Server {
	s := &Server{
		root: root,
		log:  log,
		mcp: server.NewMCPServer("carnet", version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithPromptCapabilities(false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// ServeStdio serves the protocol on stdin and stdout until stdin closes.
func (s *Server) ServeStdio() error {
	s.log.Info().Str("root", s.root).Msg("mcp server starting")
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("list_tree",
		mcp.WithDescription("List the folders and markdown notes of the workspace as a tree"),
	), s.listTree)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the content of a markdown note"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path, relative to the workspace root")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("write_note",
		mcp.WithDescription("Replace the content of a markdown note, creating it if needed"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path, relative to the workspace root")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New content of the note")),
	), s.writeNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a markdown note; any extension given is replaced by .md"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Note name")),
		mcp.WithString("dir", mcp.Description("Folder to create the note in, created if missing")),
		mcp.WithString("content", mcp.Description("Initial content")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("create_folder",
		mcp.WithDescription("Create a folder"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Folder name")),
		mcp.WithString("parent", mcp.Description("Existing parent folder, the root when empty")),
	), s.createFolder)

	s.mcp.AddTool(mcp.NewTool("rename_path",
		mcp.WithDescription("Rename a note or folder in place; notes keep their extension"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the note or folder")),
		mcp.WithString("new_name", mcp.Required(), mcp.Description("New name")),
	), s.renamePath)

	s.mcp.AddTool(mcp.NewTool("delete_path",
		mcp.WithDescription("Delete a note, or a folder with everything in it"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the note or folder")),
	), s.deletePath)

	s.mcp.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Search folder names, note names and note contents; glob patterns match paths"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text, fuzzy name or glob pattern")),
	), s.search)
}

func (s *Server) fail(op string, err error) (*mcp.CallToolResult, error) {
	s.log.Warn().Err(err).Str("tool", op).Msg("tool failed")
	return mcp.NewToolResultError(err.Error()), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listTree(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodes, err := filesystem.ListTree(s.root)
	if err != nil {
		return s.fail("list_tree", err)
	}
	return jsonResult(nodes)
}

func (s *Server) readNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := filesystem.ReadNote(s.root, path)
	if err != nil {
		return s.fail("read_note", err)
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) writeNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := filesystem.WriteNote(s.root, path, content); err != nil {
		return s.fail("write_note", err)
	}
	s.log.Info().Str("tool", "write_note").Str("path", path).Msg("done")
	return mcp.NewToolResultText("written " + path), nil
}

func (s *Server) createNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := filesystem.CreateNote(s.root, req.GetString("dir", ""), name)
	if err != nil {
		return s.fail("create_note", err)
	}
	if content := req.GetString("content", ""); content != "" {
		if err := filesystem.WriteNote(s.root, path, content); err != nil {
			return s.fail("create_note", err)
		}
	}
	s.log.Info().Str("tool", "create_note").Str("path", path).Msg("done")
	return mcp.NewToolResultText(path), nil
}

func (s *Server) createFolder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := filesystem.CreateFolder(s.root, req.GetString("parent", ""), name)
	if err != nil {
		return s.fail("create_folder", err)
	}
	s.log.Info().Str("tool", "create_folder").Str("path", path).Msg("done")
	return mcp.NewToolResultText(path), nil
}

func (s *Server) renamePath(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newName, err := req.RequireString("new_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newPath, err := filesystem.RenamePath(s.root, path, newName)
	if err != nil {
		return s.fail("rename_path", err)
	}
	s.log.Info().Str("tool", "rename_path").Str("path", path).Str("new_path", newPath).Msg("done")
	return mcp.NewToolResultText(newPath), nil
}

func (s *Server) deletePath(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := filesystem.DeletePath(s.root, path); err != nil {
		return s.fail("delete_path", err)
	}
	s.log.Info().Str("tool", "delete_path").Str("path", path).Msg("done")
	return mcp.NewToolResultText("deleted " + path), nil
}

func (s *Server) search(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := search.Search(ctx, s.root, query)
	if err != nil {
		return s.fail("search", err)
	}
	return jsonResult(results)
}
