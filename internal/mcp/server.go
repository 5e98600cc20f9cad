// Package mcp provides an MCP (Model Context Protocol) server that exposes
// pulse functionality as MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/codelens-hq/pulse/internal/core"
	"github.com/codelens-hq/pulse/pkg/models"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the pulse engine and exposes it as MCP tools.
type Server struct {
	server *gomcp.Server
	engine *core.Engine
}

// NewServer creates a new MCP server over the given engine.
func NewServer(engine *core.Engine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{engine: engine}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "pulse", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type getDeveloperStatesInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"narrow to a single developer's state"`
}

type taskOutput struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Priority string `json:"priority"`
	FilePath string `json:"file_path"`
	Elapsed  string `json:"elapsed"`
}

type developerStateOutput struct {
	ID                string       `json:"id"`
	DisplayName       string       `json:"display_name"`
	Status            string       `json:"status"`
	StatusMessage     string       `json:"status_message"`
	CurrentTasks      []taskOutput `json:"current_tasks"`
	InteractionsToday int          `json:"interactions_today"`
	CompletedToday    int          `json:"completed_today"`
	LastActive        string       `json:"last_active"`
}

type getDeveloperStatesOutput struct {
	States []developerStateOutput `json:"states"`
	Count  int                    `json:"count"`
}

type getTimelineInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"analyze a single developer's stream; empty analyzes the whole team"`
}

type getDigestInput struct {
	UserID string `json:"user_id" jsonschema:"required,the developer to generate the digest for"`
}

type getCollisionsInput struct {
	ProjectID string `json:"project_id" jsonschema:"required,the project to detect work collisions in"`
}

type collisionOutput struct {
	Type       string   `json:"type"`
	Users      []string `json:"users"`
	Resource   string   `json:"resource"`
	Confidence float64  `json:"confidence"`
	Suggestion string   `json:"suggestion"`
}

type getCollisionsOutput struct {
	Collisions []collisionOutput `json:"collisions"`
	Count      int               `json:"count"`
}

type getTeamMetricsInput struct{}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_developer_states",
		Description: "Get every active developer's live activity status, status message, current tasks, and daily totals.",
	}, s.handleGetDeveloperStates)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_timeline",
		Description: "Get the categorized activity timeline with summary, patterns, and recommendations, for one developer or the whole team.",
	}, s.handleGetTimeline)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_digest",
		Description: "Generate (or serve from cache) the narrative insight digest for one developer.",
	}, s.handleGetDigest)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_collisions",
		Description: "Detect pairs of developers working on the same files or feature areas within a project.",
	}, s.handleGetCollisions)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_team_metrics",
		Description: "Get daily-window team metrics: interaction totals, active developers, files in flight, and success rate.",
	}, s.handleGetTeamMetrics)
}

// --- Tool handlers ---

func (s *Server) handleGetDeveloperStates(ctx context.Context, _ *gomcp.CallToolRequest, input getDeveloperStatesInput) (*gomcp.CallToolResult, getDeveloperStatesOutput, error) {
	if err := s.engine.Refresh(ctx); err != nil {
		// Stale states still serve; surface nothing fatal.
		_ = err
	}

	var states []models.DeveloperState
	if input.UserID != "" {
		state, ok := s.engine.DeveloperState(input.UserID)
		if ok {
			states = []models.DeveloperState{state}
		}
	} else {
		states = s.engine.DeveloperStates()
	}

	out := getDeveloperStatesOutput{
		States: make([]developerStateOutput, len(states)),
		Count:  len(states),
	}
	for i, st := range states {
		out.States[i] = stateToOutput(st)
	}
	return nil, out, nil
}

func (s *Server) handleGetTimeline(ctx context.Context, _ *gomcp.CallToolRequest, input getTimelineInput) (*gomcp.CallToolResult, models.TimelineAnalysis, error) {
	if err := s.engine.Refresh(ctx); err != nil {
		_ = err
	}
	return nil, s.engine.TimelineAnalysis(input.UserID), nil
}

func (s *Server) handleGetDigest(ctx context.Context, _ *gomcp.CallToolRequest, input getDigestInput) (*gomcp.CallToolResult, models.DigestResult, error) {
	if input.UserID == "" {
		return errorResult("user_id is required"), models.DigestResult{}, nil
	}
	if err := s.engine.Refresh(ctx); err != nil {
		_ = err
	}

	digest, err := s.engine.Digest(ctx, input.UserID, models.DigestOptions{})
	if err != nil {
		return errorResult(fmt.Sprintf("generating digest for %s: %s", input.UserID, err)), models.DigestResult{}, nil
	}
	return nil, *digest, nil
}

func (s *Server) handleGetCollisions(ctx context.Context, _ *gomcp.CallToolRequest, input getCollisionsInput) (*gomcp.CallToolResult, getCollisionsOutput, error) {
	if input.ProjectID == "" {
		return errorResult("project_id is required"), getCollisionsOutput{}, nil
	}
	if err := s.engine.Refresh(ctx); err != nil {
		_ = err
	}

	collisions := s.engine.Collisions(input.ProjectID)
	out := getCollisionsOutput{
		Collisions: make([]collisionOutput, len(collisions)),
		Count:      len(collisions),
	}
	for i, c := range collisions {
		out.Collisions[i] = collisionOutput{
			Type:       string(c.Type),
			Users:      c.Users,
			Resource:   c.Resource,
			Confidence: c.Confidence,
			Suggestion: c.Suggestion,
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetTeamMetrics(ctx context.Context, _ *gomcp.CallToolRequest, _ getTeamMetricsInput) (*gomcp.CallToolResult, models.TeamMetrics, error) {
	if err := s.engine.Refresh(ctx); err != nil {
		_ = err
	}
	return nil, s.engine.TeamMetrics(), nil
}

// --- Helpers ---

func stateToOutput(st models.DeveloperState) developerStateOutput {
	tasks := make([]taskOutput, len(st.CurrentTasks))
	for i, t := range st.CurrentTasks {
		tasks[i] = taskOutput{
			ID:       t.ID,
			Title:    t.Title,
			Priority: string(t.Priority),
			FilePath: t.FilePath,
			Elapsed:  t.Elapsed,
		}
	}
	return developerStateOutput{
		ID:                st.ID,
		DisplayName:       st.DisplayName,
		Status:            string(st.Status),
		StatusMessage:     st.StatusMessage,
		CurrentTasks:      tasks,
		InteractionsToday: st.InteractionsToday,
		CompletedToday:    st.CompletedToday,
		LastActive:        st.LastActive.Format(time.RFC3339),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
