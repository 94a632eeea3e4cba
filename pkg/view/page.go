// Package view turns dashboard snapshots into pages: the data a template
// renders, the templates themselves, and the renderers that write them out.
package view

import (
	"fmt"
	"strconv"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-workforce-insights/pkg/dashboard"
	"github.com/goliatone/go-workforce-insights/pkg/form"
	"github.com/goliatone/go-workforce-insights/pkg/prediction"
)

// Page copy.
const (
	PageTitle    = "Employee Prediction Dashboard"
	PageSubtitle = "Predict attrition risk and productivity using multiple ML models"

	AttritionHeading    = "Employee Information"
	ProductivityHeading = "Assignment 3: Productivity Prediction"

	AttritionEmpty    = "Submit the form to see predictions"
	ProductivityEmpty = "Submit the form to see productivity prediction"

	AttritionSubmit           = "Predict Attrition Risk"
	AttritionSubmitting       = "Predicting..."
	ProductivitySubmit        = "Predict Productivity"
	ProductivitySubmitting    = "Predicting productivity..."
	defaultRefreshWhileActive = "1"
)

// Forms holds the form models rendered on the page.
type Forms struct {
	Attrition    form.FormModel
	Productivity form.FormModel
}

// Page is the template data of the dashboard.
type Page struct {
	Title        string        `json:"title"`
	Subtitle     string        `json:"subtitle"`
	Refresh      string        `json:"refresh,omitempty"`
	Theme        ThemeContext  `json:"theme"`
	Health       []HealthBadge `json:"health"`
	Attrition    FormView      `json:"attrition"`
	Productivity FormView      `json:"productivity"`

	LogisticRegression ResultPanel       `json:"logistic_regression"`
	RandomForest       ResultPanel       `json:"random_forest"`
	ProductivityResult ProductivityPanel `json:"productivity_result"`

	Snapshot dashboard.Snapshot `json:"-"`
}

// HealthBadge is the liveness indicator of one service.
type HealthBadge struct {
	Service string `json:"service"`
	Label   string `json:"label"`
	Status  string `json:"status"`
	Text    string `json:"text"`
}

// FormView is a form with its current values, messages and submit state.
type FormView struct {
	ID          string      `json:"id"`
	Heading     string      `json:"heading"`
	Action      string      `json:"action"`
	Method      string      `json:"method"`
	Loading     bool        `json:"loading"`
	SubmitLabel string      `json:"submit_label"`
	Error       string      `json:"error,omitempty"`
	Fields      []FieldView `json:"fields"`
}

// FieldView is a single input with its current value.
type FieldView struct {
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Widget      string       `json:"widget"`
	Value       string       `json:"value"`
	Placeholder string       `json:"placeholder,omitempty"`
	Step        string       `json:"step,omitempty"`
	Min         string       `json:"min,omitempty"`
	Max         string       `json:"max,omitempty"`
	Required    bool         `json:"required"`
	Options     []OptionView `json:"options,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// OptionView is a select option.
type OptionView struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// ResultPanel renders one attrition model result. Probability is kept raw
// so templates format and colour it through filters.
type ResultPanel struct {
	Title       string  `json:"title"`
	Empty       string  `json:"empty"`
	Ready       bool    `json:"ready"`
	Level       string  `json:"level,omitempty"`
	Probability float64 `json:"probability"`
	Binary      int     `json:"binary"`
}

// ProductivityPanel renders the productivity result.
type ProductivityPanel struct {
	Title    string               `json:"title"`
	Empty    string               `json:"empty"`
	Ready    bool                 `json:"ready"`
	Score    float64              `json:"score"`
	Features []prediction.Feature `json:"features,omitempty"`
}

// NewPage builds the page for snap. cfg may be nil.
func NewPage(snap dashboard.Snapshot, forms Forms, cfg *theme.RendererConfig) Page {
	page := Page{
		Title:    PageTitle,
		Subtitle: PageSubtitle,
		Theme:    buildThemeContext(cfg),
		Snapshot: snap,
	}

	checking := false
	for _, service := range prediction.Services() {
		status, ok := snap.Health[service]
		if !ok {
			status = prediction.HealthChecking
		}
		if status == prediction.HealthChecking {
			checking = true
		}
		page.Health = append(page.Health, HealthBadge{
			Service: string(service),
			Label:   service.Label() + " API",
			Status:  string(status),
			Text:    status.Label(),
		})
	}
	if checking || snap.Busy() {
		page.Refresh = defaultRefreshWhileActive
	}

	page.Attrition = buildFormView("attrition", AttritionHeading, forms.Attrition, snap.Attrition.Data.Values(),
		snap.Attrition.FieldErrors, snap.Attrition.Error, snap.Attrition.Loading(), AttritionSubmit, AttritionSubmitting)
	page.Productivity = buildFormView("productivity", ProductivityHeading, forms.Productivity, snap.Productivity.Data.Values(),
		snap.Productivity.FieldErrors, snap.Productivity.Error, snap.Productivity.Loading(), ProductivitySubmit, ProductivitySubmitting)

	page.LogisticRegression = ResultPanel{Title: prediction.ServiceLogisticRegression.Title(), Empty: AttritionEmpty}
	page.RandomForest = ResultPanel{Title: prediction.ServiceRandomForest.Title(), Empty: AttritionEmpty}
	if result := snap.Attrition.Result; result != nil {
		page.LogisticRegression.Ready = true
		page.LogisticRegression.Level = result.LogisticRegression.RecommendedActionLevel
		page.LogisticRegression.Probability = result.LogisticRegression.ProbabilityOfAttrition
		page.LogisticRegression.Binary = result.LogisticRegression.PredictionBinary

		page.RandomForest.Ready = true
		page.RandomForest.Level = result.RandomForest.RecommendedRiskLevel
		page.RandomForest.Probability = result.RandomForest.ProbabilityOfAttrition
		page.RandomForest.Binary = result.RandomForest.BinaryPrediction
	}

	page.ProductivityResult = ProductivityPanel{Title: prediction.ServiceProductivity.Title(), Empty: ProductivityEmpty}
	if result := snap.Productivity.Result; result != nil {
		page.ProductivityResult.Ready = true
		page.ProductivityResult.Score = result.PredictedProductivityScore
		page.ProductivityResult.Features = result.Features()
	}
	return page
}

func buildFormView(id, heading string, model form.FormModel, values map[string]any, fieldErrors map[string][]string,
	message string, loading bool, submit, submitting string) FormView {
	view := FormView{
		ID:          id,
		Heading:     heading,
		Action:      model.Endpoint,
		Method:      model.Method,
		Loading:     loading,
		SubmitLabel: submit,
		Error:       message,
	}
	if loading {
		view.SubmitLabel = submitting
	}

	for _, field := range model.Fields {
		value := formatValue(values[field.Name])
		fv := FieldView{
			Name:        field.Name,
			Label:       field.Label,
			Widget:      string(field.Widget),
			Value:       value,
			Placeholder: field.Placeholder,
			Step:        field.Step,
			Min:         field.Min,
			Max:         field.Max,
			Required:    field.Required,
		}
		if messages := fieldErrors[field.Name]; len(messages) > 0 {
			fv.Error = messages[0]
		}
		for _, option := range field.Options {
			fv.Options = append(fv.Options, OptionView{Value: option, Selected: option == value})
		}
		view.Fields = append(view.Fields, fv)
	}
	return view
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
