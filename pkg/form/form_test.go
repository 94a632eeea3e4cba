package form_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-workforce-insights/pkg/contract"
	"github.com/goliatone/go-workforce-insights/pkg/form"
)

func ptr[T any](v T) *T { return &v }

func productivityOperation() contract.Operation {
	return contract.Operation{
		ID:      "submitProductivity",
		Method:  "post",
		Path:    "/productivity",
		Summary: "Predict Productivity",
		RequestBody: contract.Schema{
			Type:     "object",
			Required: []string{"login_time", "total_tasks_completed"},
			Order:    []string{"login_time", "total_tasks_completed"},
			Properties: map[string]contract.Schema{
				"login_time": {
					Type:    "number",
					Title:   "Login Time (0-24)",
					Minimum: ptr(0.0),
					Maximum: ptr(24.0),
					Default: float64(9),
				},
				"total_tasks_completed": {Type: "integer", Minimum: ptr(0.0)},
				"shift": {
					Type:  "string",
					Enum:  []any{"day", "night"},
					Hints: map[string]string{"placeholder": "pick one"},
				},
			},
		},
	}
}

func TestBuilder_Build(t *testing.T) {
	model, err := form.NewBuilder().Build(productivityOperation())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := form.FormModel{
		OperationID: "submitProductivity",
		Endpoint:    "/productivity",
		Method:      "POST",
		Summary:     "Predict Productivity",
		Fields: []form.Field{
			{
				Name:     "login_time",
				Type:     form.FieldTypeNumber,
				Widget:   form.WidgetNumber,
				Required: true,
				Label:    "Login Time (0-24)",
				Step:     "any",
				Min:      "0",
				Max:      "24",
				Default:  float64(9),
				Validations: []form.ValidationRule{
					{Kind: form.ValidationRuleMin, Params: map[string]string{"value": "0"}},
					{Kind: form.ValidationRuleMax, Params: map[string]string{"value": "24"}},
				},
			},
			{
				Name:     "total_tasks_completed",
				Type:     form.FieldTypeInteger,
				Widget:   form.WidgetNumber,
				Required: true,
				Label:    "Total Tasks Completed",
				Step:     "1",
				Min:      "0",
				Validations: []form.ValidationRule{
					{Kind: form.ValidationRuleMin, Params: map[string]string{"value": "0"}},
				},
			},
			{
				Name:        "shift",
				Type:        form.FieldTypeString,
				Widget:      form.WidgetSelect,
				Label:       "Shift",
				Placeholder: "pick one",
				Options:     []string{"day", "night"},
			},
		},
	}
	if diff := cmp.Diff(want, model); diff != "" {
		t.Fatalf("form model mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_CustomLabeler(t *testing.T) {
	builder := form.NewBuilder(form.WithLabeler(func(name string) string { return "<" + name + ">" }))
	model, err := builder.Build(productivityOperation())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	field, ok := model.Field("total_tasks_completed")
	if !ok {
		t.Fatalf("field missing")
	}
	if field.Label != "<total_tasks_completed>" {
		t.Fatalf("unexpected label %q", field.Label)
	}
	titled, _ := model.Field("login_time")
	if titled.Label != "Login Time (0-24)" {
		t.Fatalf("title should win over labeler, got %q", titled.Label)
	}
}

func TestBuilder_RejectsInvalidOperations(t *testing.T) {
	cases := map[string]func(*contract.Operation){
		"missing id":     func(op *contract.Operation) { op.ID = "" },
		"missing path":   func(op *contract.Operation) { op.Path = "" },
		"missing method": func(op *contract.Operation) { op.Method = "" },
		"scalar body":    func(op *contract.Operation) { op.RequestBody = contract.Schema{Type: "string"} },
		"unsupported type": func(op *contract.Operation) {
			op.RequestBody.Properties["tags"] = contract.Schema{Type: "array"}
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			op := productivityOperation()
			mutate(&op)
			if _, err := form.NewBuilder().Build(op); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"years_at_company": "Years At Company",
		"jobRole":          "Job Role",
		"weekly-absences":  "Weekly Absences",
		"assignment1":      "Assignment 1",
	}
	for input, want := range cases {
		if got := form.DefaultLabeler(input); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestMapIssues(t *testing.T) {
	model, err := form.NewBuilder().Build(productivityOperation())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	issues := contract.Issues{
		{Path: "/login_time", Field: "login_time", Message: "value must be an integer"},
		{Path: "/login_time", Field: "login_time", Message: " value must be an integer "},
		{Path: "/shift", Message: "value is not one of the allowed values"},
		{Path: "/department", Field: "department", Message: "not accepted"},
		{Message: "payload rejected"},
	}

	mapped := form.MapIssues(model, issues)
	want := form.ErrorMapping{
		Fields: map[string][]string{
			"login_time": {"value must be an integer"},
			"shift":      {"value is not one of the allowed values"},
		},
		Form: []string{"department: not accepted", "payload rejected"},
	}
	if diff := cmp.Diff(want, mapped); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}

	if got := mapped.First("shift"); got != "value is not one of the allowed values" {
		t.Fatalf("unexpected first message %q", got)
	}

	wantMessages := []string{
		"Login Time (0-24): value must be an integer",
		"Shift: value is not one of the allowed values",
		"department: not accepted",
		"payload rejected",
	}
	if diff := cmp.Diff(wantMessages, mapped.Messages(model)); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestMapIssues_Empty(t *testing.T) {
	mapped := form.MapIssues(form.FormModel{}, nil)
	if !mapped.Empty() {
		t.Fatalf("expected empty mapping, got %+v", mapped)
	}
}

func TestMapFieldErrors(t *testing.T) {
	model, err := form.NewBuilder().Build(productivityOperation())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	mapped := form.MapFieldErrors(model, map[string][]string{
		"shift":      {"value is not one of the allowed values"},
		"login_time": {"value must be an integer", "value must be an integer"},
		"badge":      {"unknown"},
	})
	want := form.ErrorMapping{
		Fields: map[string][]string{
			"login_time": {"value must be an integer"},
			"shift":      {"value is not one of the allowed values"},
		},
		Form: []string{"badge: unknown"},
	}
	if diff := cmp.Diff(want, mapped); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
}
