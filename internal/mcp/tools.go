package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sowferyowman/BiomechFit-app/internal/analysis"
	"github.com/sowferyowman/BiomechFit-app/internal/models"
	"github.com/sowferyowman/BiomechFit-app/internal/pose"
)

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the supported exercises with the joints each one needs, the angle that drives its repetition counter and the stage thresholds."),
)

var toolComputeAngle = mcp.NewTool("compute_angle",
	mcp.WithDescription("Compute the interior angle in degrees (0-180) at vertex B formed by points A, B and C, using normalized image coordinates."),
	mcp.WithNumber("ax", mcp.Required(), mcp.Description("X of point A")),
	mcp.WithNumber("ay", mcp.Required(), mcp.Description("Y of point A")),
	mcp.WithNumber("bx", mcp.Required(), mcp.Description("X of vertex B")),
	mcp.WithNumber("by", mcp.Required(), mcp.Description("Y of vertex B")),
	mcp.WithNumber("cx", mcp.Required(), mcp.Description("X of point C")),
	mcp.WithNumber("cy", mcp.Required(), mcp.Description("Y of point C")),
)

var toolAnalyzeFrames = mcp.NewTool("analyze_frames",
	mcp.WithDescription("Score a recorded set. Returns completed reps, per-rep scores, the average score, a 1-5 grade and feedback."),
	mcp.WithString("workout", mcp.Required(), mcp.Description("Exercise name (e.g. 'Squat', 'Bench Press', 'overhead_press')")),
	mcp.WithString("frames", mcp.Required(), mcp.Description("JSON array of frames. Each frame is a list of 33 pose landmarks {x, y, z, visibility} (null when absent) or an object keyed by joint name (e.g. left_knee).")),
	mcp.WithNumber("target_reps", mcp.Description("Stop after this many reps. Defaults to the server setting.")),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(models.Catalog())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) computeAngle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var coords [6]float64
	for i, name := range []string{"ax", "ay", "bx", "by", "cx", "cy"} {
		v, err := req.RequireFloat(name)
		if err != nil {
			return mcp.NewToolResultError(name + " parameter is required"), nil
		}
		coords[i] = v
	}

	a := pose.Point{X: coords[0], Y: coords[1]}
	b := pose.Point{X: coords[2], Y: coords[3]}
	c := pose.Point{X: coords[4], Y: coords[5]}
	if !a.Finite() || !b.Finite() || !c.Finite() {
		return mcp.NewToolResultError("coordinates must be finite"), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]float64{"angle": pose.Angle(a, b, c)})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) analyzeFrames(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workout, err := req.RequireString("workout")
	if err != nil {
		return mcp.NewToolResultError("workout parameter is required"), nil
	}
	raw, err := req.RequireString("frames")
	if err != nil {
		return mcp.NewToolResultError("frames parameter is required"), nil
	}

	var frames []pose.LandmarkSet
	if err := json.Unmarshal([]byte(raw), &frames); err != nil {
		return mcp.NewToolResultError("invalid frames: " + err.Error()), nil
	}

	sum, err := h.sessions.Analyze(workout, req.GetInt("target_reps", 0), frames)
	if err != nil {
		var ae *analysis.Error
		if errors.As(err, &ae) {
			return mcp.NewToolResultError(ae.Issue()), nil
		}
		h.log.Error("mcp analyze_frames", "error", err)
		return mcp.NewToolResultError("analysis failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sum)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
