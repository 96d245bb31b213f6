// server/mcpserver/resources.go
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ViniZap4/carnet-server/filesystem"
)

// WorkspaceURI names the resource holding the note tree.
const WorkspaceURI = "file://workspace"

func (s *Server) registerResources() {
	s.mcp.AddResource(mcp.NewResource(WorkspaceURI, "Current Workspace",
		mcp.WithResourceDescription("File tree of the current workspace: "+s.root),
		mcp.WithMIMEType("application/json"),
	), s.readWorkspace)
}

func (s *Server) readWorkspace(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	nodes, err := filesystem.ListTree(s.root)
	if err != nil {
		s.log.Warn().Err(err).Str("resource", WorkspaceURI).Msg("resource failed")
		return nil, err
	}
	data, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      WorkspaceURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("organize_notes",
		mcp.WithPromptDescription("Help organize and structure markdown notes"),
		mcp.WithArgument("topic", mcp.ArgumentDescription("The topic or theme to organize notes around")),
	), s.organizeNotes)

	s.mcp.AddPrompt(mcp.NewPrompt("create_outline",
		mcp.WithPromptDescription("Create a structured outline for a new document"),
		mcp.WithArgument("title", mcp.ArgumentDescription("Title of the document"), mcp.RequiredArgument()),
		mcp.WithArgument("type", mcp.ArgumentDescription("Type of document (article, report, notes, etc.)")),
	), s.createOutline)

	s.mcp.AddPrompt(mcp.NewPrompt("summarize_notes",
		mcp.WithPromptDescription("Create a summary of existing notes"),
		mcp.WithArgument("files", mcp.ArgumentDescription("Comma-separated notes to summarize, all notes when empty")),
	), s.summarizeNotes)
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}

func (s *Server) organizeNotes(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := "Look at the notes of the workspace (resource " + WorkspaceURI + ", tool list_tree) " +
		"and propose a folder structure. Use create_folder and rename_path to apply it once I agree."
	if topic := strings.TrimSpace(req.Params.Arguments["topic"]); topic != "" {
		text += " Organize them around the topic: " + topic + "."
	}
	return userPrompt("Organize notes", text), nil
}

func (s *Server) createOutline(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	title := strings.TrimSpace(req.Params.Arguments["title"])
	if title == "" {
		return nil, errors.New("title is required")
	}
	kind := strings.TrimSpace(req.Params.Arguments["type"])
	if kind == "" {
		kind = "document"
	}
	text := fmt.Sprintf("Write a structured markdown outline for a %s titled %q, "+
		"with headings and short bullet points, then save it with create_note.", kind, title)
	return userPrompt("Create outline", text), nil
}

func (s *Server) summarizeNotes(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := "Read every note of the workspace with read_note and write a concise summary of each."
	if files := strings.TrimSpace(req.Params.Arguments["files"]); files != "" {
		text = "Read these notes with read_note and write a concise summary of each: " + files + "."
	}
	return userPrompt("Summarize notes", text), nil
}
