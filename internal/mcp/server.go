package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sowferyowman/BiomechFit-app/internal/session"
)

// New creates an MCP server with all tools and resources registered. Batch
// analyses run through sessions so they share the registry's analyzer
// options and frame observer.
func New(sessions *session.Registry, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("BiomechFit", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("BiomechFit exercise form analysis. Compute joint angles from pose keypoints and score recorded sets of squat, deadlift, bench press, overhead press and row."),
	)

	h := &handlers{sessions: sessions, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolComputeAngle, Handler: h.computeAngle},
		server.ServerTool{Tool: toolAnalyzeFrames, Handler: h.analyzeFrames},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	sessions *session.Registry
	log      *slog.Logger
}

// --- Resource definitions ---

var resExerciseCatalog = mcp.NewResource(
	"biomechfit://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Supported exercises with their required joints, primary angle and stage thresholds"),
	mcp.WithMIMEType("application/json"),
)
