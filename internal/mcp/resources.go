// ABOUTME: MCP resource implementations for vitals.
// ABOUTME: Provides vitals://recent, vitals://today, and vitals://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// vitals://recent - Last 10 readings across all kinds
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "vitals://recent",
		Name:        "Recent Vitals",
		Description: "Last 10 measurements across all kinds",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	// vitals://today - Everything recorded today
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "vitals://today",
		Name:        "Today's Vitals",
		Description: "All measurements recorded today",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// vitals://summary - Latest of each kind, statistics and BMI
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "vitals://summary",
		Name:        "Vitals Summary Dashboard",
		Description: "Latest value for each kind plus statistics and BMI",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	recent, err := s.svc.Recent(ctx, s.session.UserID, tracker.DefaultRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}

	result := map[string]interface{}{
		"measurements": toOutputs(recent),
	}
	return jsonResource("vitals://recent", result)
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	// Get today's start time (midnight)
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	history, err := s.svc.History(ctx, s.session.UserID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}

	byKind := make(map[string][]measurementOutput)
	total := 0
	for _, k := range models.AllKinds {
		var today []*models.Measurement
		for _, m := range history[k] {
			if !m.Timestamp.Before(todayStart) {
				today = append(today, m)
			}
		}
		if len(today) > 0 {
			byKind[string(k)] = toOutputs(today)
			total += len(today)
		}
	}

	result := map[string]interface{}{
		"date":         todayStart.Format("2006-01-02"),
		"measurements": byKind,
		"count":        total,
	}
	return jsonResource("vitals://today", result)
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	latest, err := s.svc.Dashboard(ctx, s.session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	latestOut := make(map[string]interface{})
	for _, k := range models.AllKinds {
		if m := latest[k]; m != nil {
			latestOut[string(k)] = map[string]interface{}{
				"display":     m.Display(),
				"values":      m.Values,
				"recorded_at": m.Timestamp.Format(time.RFC3339),
			}
		}
	}

	result := map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"latest":       latestOut,
	}

	report, err := s.svc.Statistics(ctx, s.session.UserID)
	switch {
	case err == nil:
		result["statistics"] = report.Entries
	case tracker.Informational(err):
		result["statistics"] = tracker.UserMessage(err)
	default:
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}

	bmi, err := s.svc.ComputeBMI(ctx, s.session.UserID)
	if err == nil {
		result["bmi"] = map[string]interface{}{
			"value":    bmi.Display,
			"category": bmi.Category,
		}
	} else {
		result["bmi"] = tracker.UserMessage(err)
	}

	return jsonResource("vitals://summary", result)
}

func toOutputs(list []*models.Measurement) []measurementOutput {
	out := make([]measurementOutput, 0, len(list))
	for _, m := range list {
		out = append(out, toMeasurementOutput(m))
	}
	return out
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
