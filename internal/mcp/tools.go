// ABOUTME: MCP tool implementations for vitals measurements and advice.
// ABOUTME: Record, list, summarize, compute BMI, and browse the advice feed.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/tracker"
	"github.com/harperreed/vitals/internal/validation"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// add_measurement
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_measurement",
		Description: "Record a vital sign (ritmo_cardiaco, presion_arterial, nivel_azucar, colesterol, oxigeno_sangre, peso, altura)",
	}, s.handleAddMeasurement)

	// list_measurements
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_measurements",
		Description: "List recent measurements, optionally for one kind",
	}, s.handleListMeasurements)

	// dashboard
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "dashboard",
		Description: "Get the latest reading of every kind",
	}, s.handleDashboard)

	// statistics
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "statistics",
		Description: "Get average, minimum, maximum and count per metric",
	}, s.handleStatistics)

	// compute_bmi
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "compute_bmi",
		Description: "Compute body mass index from the latest weight and height",
	}, s.handleComputeBMI)

	// list_advice
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_advice",
		Description: "Search health advice by text and topic",
	}, s.handleListAdvice)

	// delete_measurement
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_measurement",
		Description: "Delete a measurement by kind and ID prefix (admin only)",
	}, s.handleDeleteMeasurement)
}

// Tool input/output types

type addMeasurementInput struct {
	Kind       string `json:"kind" jsonschema:"Measurement kind, e.g. peso or presion_arterial"`
	Value      string `json:"value,omitempty" jsonschema:"Reading for single-value kinds"`
	Systolic   string `json:"systolic,omitempty" jsonschema:"Systolic pressure for presion_arterial"`
	Diastolic  string `json:"diastolic,omitempty" jsonschema:"Diastolic pressure for presion_arterial"`
	RecordedAt string `json:"recorded_at,omitempty" jsonschema:"Timestamp (ISO 8601), defaults to now"`
}

type measurementOutput struct {
	ID         string             `json:"id"`
	Kind       string             `json:"kind"`
	Values     map[string]float64 `json:"values"`
	Display    string             `json:"display"`
	RecordedAt string             `json:"recorded_at"`
	Message    string             `json:"message,omitempty"`
}

type listMeasurementsInput struct {
	Kind  string `json:"kind,omitempty" jsonschema:"Only list this kind"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 10)"`
}

type listMeasurementsOutput struct {
	Measurements []measurementOutput `json:"measurements"`
	Message      string              `json:"message,omitempty"`
}

type emptyInput struct{}

type dashboardOutput struct {
	Latest map[string]*measurementOutput `json:"latest"`
}

type statOutput struct {
	Label   string `json:"label"`
	Unit    string `json:"unit"`
	Count   int    `json:"count"`
	Average string `json:"average"`
	Min     string `json:"min"`
	Max     string `json:"max"`
}

type statisticsOutput struct {
	Stats   []statOutput `json:"stats"`
	Message string       `json:"message,omitempty"`
}

type bmiOutput struct {
	BMI      string  `json:"bmi,omitempty"`
	Category string  `json:"category,omitempty"`
	Style    string  `json:"style,omitempty"`
	WeightKg float64 `json:"weight_kg,omitempty"`
	HeightCm float64 `json:"height_cm,omitempty"`
	WeightAt string  `json:"weight_at,omitempty"`
	HeightAt string  `json:"height_at,omitempty"`
	Message  string  `json:"message,omitempty"`
}

type listAdviceInput struct {
	Query string `json:"query,omitempty" jsonschema:"Text to search in title and body"`
	Topic string `json:"topic,omitempty" jsonschema:"Topic filter, 'todos' for all"`
}

type adviceOutput struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Topic    string `json:"topic"`
	Date     string `json:"date"`
	ImageURL string `json:"image_url,omitempty"`
}

type listAdviceOutput struct {
	Advice []adviceOutput `json:"advice"`
	Topics []string       `json:"topics"`
}

type deleteMeasurementInput struct {
	Kind string `json:"kind" jsonschema:"Measurement kind"`
	ID   string `json:"id" jsonschema:"Measurement ID or prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleAddMeasurement(ctx context.Context, req *mcp.CallToolRequest, input addMeasurementInput) (*mcp.CallToolResult, measurementOutput, error) {
	kind, err := models.ParseKind(input.Kind)
	if err != nil {
		return nil, measurementOutput{}, err
	}

	var raw map[string]string
	if kind == models.KindBloodPressure {
		raw, err = validation.RawFor(kind, input.Systolic, input.Diastolic)
	} else {
		raw, err = validation.RawFor(kind, input.Value)
	}
	if err != nil {
		return nil, measurementOutput{}, err
	}

	at := time.Now()
	if input.RecordedAt != "" {
		t, err := time.Parse(time.RFC3339, input.RecordedAt)
		if err != nil {
			t, err = time.ParseInLocation("2006-01-02 15:04", input.RecordedAt, time.Local)
		}
		if err != nil {
			return nil, measurementOutput{}, fmt.Errorf("invalid recorded_at: %s", input.RecordedAt)
		}
		at = t
	}

	m, err := s.svc.SubmitAt(ctx, s.session.UserID, kind, raw, at)
	if err != nil {
		return nil, measurementOutput{}, errors.New(tracker.UserMessage(err))
	}

	out := toMeasurementOutput(m)
	out.Message = fmt.Sprintf("%s guardado: %s (ID: %s)", kind.Title(), m.Display(), out.ID)
	return nil, out, nil
}

func (s *Server) handleListMeasurements(ctx context.Context, req *mcp.CallToolRequest, input listMeasurementsInput) (*mcp.CallToolResult, listMeasurementsOutput, error) {
	if input.Limit <= 0 {
		input.Limit = tracker.DefaultRecentLimit
	}

	var list []*models.Measurement
	var err error
	if input.Kind != "" {
		kind, perr := models.ParseKind(input.Kind)
		if perr != nil {
			return nil, listMeasurementsOutput{}, perr
		}
		list, err = s.svc.KindHistory(ctx, s.session.UserID, kind, input.Limit)
	} else {
		list, err = s.svc.Recent(ctx, s.session.UserID, input.Limit)
	}
	if err != nil {
		return nil, listMeasurementsOutput{}, fmt.Errorf("failed to list measurements: %w", err)
	}

	out := listMeasurementsOutput{Measurements: make([]measurementOutput, 0, len(list))}
	for _, m := range list {
		out.Measurements = append(out.Measurements, toMeasurementOutput(m))
	}
	if len(list) == 0 {
		out.Message = "No measurements found."
	}
	return nil, out, nil
}

func (s *Server) handleDashboard(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, dashboardOutput, error) {
	latest, err := s.svc.Dashboard(ctx, s.session.UserID)
	if err != nil {
		return nil, dashboardOutput{}, fmt.Errorf("failed to load dashboard: %w", err)
	}

	out := dashboardOutput{Latest: make(map[string]*measurementOutput, len(latest))}
	for _, k := range models.AllKinds {
		if m := latest[k]; m != nil {
			mo := toMeasurementOutput(m)
			out.Latest[string(k)] = &mo
		} else {
			out.Latest[string(k)] = nil
		}
	}
	return nil, out, nil
}

func (s *Server) handleStatistics(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, statisticsOutput, error) {
	report, err := s.svc.Statistics(ctx, s.session.UserID)
	if tracker.Informational(err) {
		return nil, statisticsOutput{Stats: []statOutput{}, Message: tracker.UserMessage(err)}, nil
	}
	if err != nil {
		return nil, statisticsOutput{}, fmt.Errorf("failed to compute statistics: %w", err)
	}

	out := statisticsOutput{Stats: make([]statOutput, 0, len(report.Entries))}
	for _, st := range report.Entries {
		out.Stats = append(out.Stats, statOutput{
			Label:   st.Label,
			Unit:    st.Unit,
			Count:   st.Count,
			Average: st.Average,
			Min:     st.Min,
			Max:     st.Max,
		})
	}
	return nil, out, nil
}

func (s *Server) handleComputeBMI(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, bmiOutput, error) {
	res, err := s.svc.ComputeBMI(ctx, s.session.UserID)
	if tracker.Informational(err) || errors.Is(err, tracker.ErrInvalidHeight) {
		return nil, bmiOutput{Message: tracker.UserMessage(err)}, nil
	}
	if err != nil {
		return nil, bmiOutput{}, fmt.Errorf("failed to compute bmi: %w", err)
	}

	return nil, bmiOutput{
		BMI:      res.Display,
		Category: res.Category,
		Style:    res.Style,
		WeightKg: res.WeightKg,
		HeightCm: res.HeightCm,
		WeightAt: res.WeightAt.Format("2006-01-02 15:04"),
		HeightAt: res.HeightAt.Format("2006-01-02 15:04"),
	}, nil
}

func (s *Server) handleListAdvice(ctx context.Context, req *mcp.CallToolRequest, input listAdviceInput) (*mcp.CallToolResult, listAdviceOutput, error) {
	list, err := s.svc.ListAdvice(ctx, input.Query, input.Topic)
	if err != nil {
		return nil, listAdviceOutput{}, fmt.Errorf("failed to list advice: %w", err)
	}
	topics, err := s.svc.Topics(ctx)
	if err != nil {
		return nil, listAdviceOutput{}, fmt.Errorf("failed to list topics: %w", err)
	}

	out := listAdviceOutput{Advice: make([]adviceOutput, 0, len(list)), Topics: topics}
	for _, a := range list {
		out.Advice = append(out.Advice, adviceOutput{
			ID:       a.ID.String()[:8],
			Title:    a.Title,
			Body:     a.Body,
			Topic:    a.Topic,
			Date:     a.Timestamp.Format("2006-01-02"),
			ImageURL: s.svc.ImageURL(a),
		})
	}
	return nil, out, nil
}

func (s *Server) handleDeleteMeasurement(ctx context.Context, req *mcp.CallToolRequest, input deleteMeasurementInput) (*mcp.CallToolResult, simpleOutput, error) {
	kind, err := models.ParseKind(input.Kind)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	m, err := s.svc.DeleteMeasurement(ctx, s.session, kind, input.ID)
	if err != nil {
		return nil, simpleOutput{}, errors.New(tracker.UserMessage(err))
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted %s: %s", kind, m.ID.String()[:8]),
	}, nil
}

func toMeasurementOutput(m *models.Measurement) measurementOutput {
	return measurementOutput{
		ID:         m.ID.String()[:8],
		Kind:       string(m.Kind),
		Values:     m.Values,
		Display:    m.Display(),
		RecordedAt: m.Timestamp.Format(time.RFC3339),
	}
}
