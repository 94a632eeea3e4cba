package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-workforce-insights/pkg/dashboard"
	"github.com/goliatone/go-workforce-insights/pkg/form"
	"github.com/goliatone/go-workforce-insights/pkg/prediction"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	captionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	toneColors = map[prediction.Tone]lipgloss.Color{
		prediction.ToneHigh:     lipgloss.Color("#DC2626"),
		prediction.ToneElevated: lipgloss.Color("#EA580C"),
		prediction.ToneLow:      lipgloss.Color("#16A34A"),
	}
)

// Health renders the service badges on one line.
func Health(snap dashboard.Snapshot) string {
	parts := make([]string, 0, len(prediction.Services()))
	for _, service := range prediction.Services() {
		status, ok := snap.Health[service]
		if !ok {
			status = prediction.HealthChecking
		}
		parts = append(parts, fmt.Sprintf("%s API: %s", service.Label(), status.Label()))
	}
	return captionStyle.Render(strings.Join(parts, "   "))
}

// Attrition renders both attrition panels, or the form error with field
// messages labelled from model.
func Attrition(state dashboard.AttritionState, model form.FormModel) string {
	if state.Error != "" {
		return errorBox("Attrition prediction failed", state.Error, form.MapFieldErrors(model, state.FieldErrors).Messages(model))
	}
	if state.Result == nil {
		return boxStyle.Render(captionStyle.Render("Submit the form to see predictions"))
	}

	lr := state.Result.LogisticRegression
	rf := state.Result.RandomForest
	return lipgloss.JoinHorizontal(lipgloss.Top,
		panel(prediction.ServiceLogisticRegression.Title(), lr.RecommendedActionLevel, lr.ProbabilityOfAttrition, lr.PredictionBinary),
		" ",
		panel(prediction.ServiceRandomForest.Title(), rf.RecommendedRiskLevel, rf.ProbabilityOfAttrition, rf.BinaryPrediction),
	)
}

// Productivity renders the productivity panel, or the form error.
func Productivity(state dashboard.ProductivityState, model form.FormModel) string {
	if state.Error != "" {
		return errorBox("Productivity prediction failed", state.Error, form.MapFieldErrors(model, state.FieldErrors).Messages(model))
	}
	if state.Result == nil {
		return boxStyle.Render(captionStyle.Render("Submit the form to see productivity prediction"))
	}

	lines := []string{
		titleStyle.Render(prediction.ServiceProductivity.Title()),
		captionStyle.Render("Predicted Productivity Score"),
		prediction.FormatDecimal(state.Result.PredictedProductivityScore),
	}
	if features := state.Result.Features(); len(features) > 0 {
		lines = append(lines, "", captionStyle.Render("Engineered Features"))
		for _, feature := range features {
			lines = append(lines, fmt.Sprintf("%s: %s", feature.Label, feature.Text))
		}
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func panel(title, level string, probability float64, binary int) string {
	risk := lipgloss.NewStyle().Bold(true).Foreground(toneColors[prediction.RiskTone(level)])
	prob := lipgloss.NewStyle().Foreground(toneColors[prediction.ProbabilityTone(probability)])

	lines := []string{
		titleStyle.Render(title),
		captionStyle.Render("Risk Level"),
		risk.Render(level),
		captionStyle.Render("Attrition Probability"),
		prob.Render(prediction.FormatPercent(probability)),
		captionStyle.Render("Binary Prediction"),
		prediction.YesNo(binary),
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func errorBox(title, message string, details []string) string {
	lines := []string{errorStyle.Bold(true).Render(title), errorStyle.Render(message)}
	for _, detail := range details {
		lines = append(lines, "  "+detail)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
