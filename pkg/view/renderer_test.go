package view_test

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-workforce-insights/pkg/dashboard"
	"github.com/goliatone/go-workforce-insights/pkg/employee"
	"github.com/goliatone/go-workforce-insights/pkg/prediction"
	"github.com/goliatone/go-workforce-insights/pkg/render/template/pongo"
	"github.com/goliatone/go-workforce-insights/pkg/view"
)

func renderHTML(t *testing.T, page view.Page) string {
	t.Helper()

	renderer, err := view.NewHTMLRenderer()
	if err != nil {
		t.Fatalf("new html renderer: %v", err)
	}
	var buf bytes.Buffer
	if err := renderer.Render(&buf, page); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func assertContains(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, out)
		}
	}
}

func TestHTMLRenderer_IdlePage(t *testing.T) {
	selector, err := view.NewThemeSelector()
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}
	selection, err := selector.Select("", "")
	if err != nil {
		t.Fatalf("select: %v", err)
	}

	out := renderHTML(t, view.NewPage(idleSnapshot(), testForms(), view.RendererConfig(selection)))

	assertContains(t, out,
		"<title>Employee Prediction Dashboard</title>",
		`<link rel="stylesheet" href="/assets/themes/insights/insights.css">`,
		"--risk-high: #dc2626;",
		`data-service="assignment1">Assignment 1 API: ✓ Online`,
		`data-service="assignment2">Assignment 2 API: ✗ Offline`,
		`<form method="post" action="/attrition">`,
		`<input id="attrition-age" name="age" type="number" value="30" step="1" min="18" max="70" required>`,
		`<option value="IT" selected>IT</option>`,
		`<option value="R&amp;D">R&amp;D</option>`,
		`placeholder="e.g., Developer"`,
		"Predict Attrition Risk</button>",
		"Predict Productivity</button>",
		"Submit the form to see predictions",
		"Submit the form to see productivity prediction",
	)
	if strings.Contains(out, `http-equiv="refresh"`) {
		t.Fatalf("settled idle page must not auto-refresh")
	}
}

func TestHTMLRenderer_ResultsAndErrors(t *testing.T) {
	snap := idleSnapshot()
	snap.Attrition.Status = dashboard.StatusSuccess
	snap.Attrition.Result = &prediction.Attrition{
		LogisticRegression: prediction.LogisticRegression{ProbabilityOfAttrition: 0.72, RecommendedActionLevel: prediction.ActionHighRisk, PredictionBinary: 1},
		RandomForest:       prediction.RandomForest{ProbabilityOfAttrition: 0.2, RecommendedRiskLevel: prediction.RiskLowMonitor},
	}
	snap.Productivity.Status = dashboard.StatusError
	snap.Productivity.Error = "<b>model</b> unavailable"
	snap.Productivity.FieldErrors = map[string][]string{employee.FieldLogoutTime: {"must be after login time"}}

	out := renderHTML(t, view.NewPage(snap, testForms(), nil))

	assertContains(t, out,
		`<div class="risk tone-high">`,
		`<div class="risk-level">HIGH_RISK</div>`,
		`<div class="stat-value tone-high">72.00%</div>`,
		`<div class="stat-value">Yes</div>`,
		`<div class="risk tone-low">`,
		`<div class="stat-value tone-low">20.00%</div>`,
		`<div class="stat-value">No</div>`,
		`<div class="alert" role="alert">model unavailable</div>`,
		`<p class="field-error">must be after login time</p>`,
	)
}

func TestHTMLRenderer_Productivity(t *testing.T) {
	snap := idleSnapshot()
	snap.Productivity.Status = dashboard.StatusSuccess
	snap.Productivity.Result = &prediction.Productivity{
		PredictedProductivityScore: 7.25,
		EngineeredFeatures:         map[string]float64{"tasks_per_hour": 2.5},
	}
	snap.Attrition.Status = dashboard.StatusLoading

	out := renderHTML(t, view.NewPage(snap, testForms(), nil))

	assertContains(t, out,
		`<meta http-equiv="refresh" content="1">`,
		`<div class="stat-value score">7.25</div>`,
		"<dt>Tasks Per Hour</dt><dd>2.50</dd>",
		"disabled>Predicting...</button>",
	)
}

func TestJSONRenderer_WritesSnapshot(t *testing.T) {
	snap := idleSnapshot()
	page := view.NewPage(snap, testForms(), nil)

	var buf bytes.Buffer
	if err := (view.JSONRenderer{}).Render(&buf, page); err != nil {
		t.Fatalf("render json: %v", err)
	}

	var got dashboard.Snapshot
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestHTMLRenderer_CustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"summary.tpl": {Data: []byte(`{{ title }}: {{ 0.355|percent }} {{ 0.355|prob_tone }}`)},
	}
	page := view.Page{Title: "Insights"}

	renderer, err := view.NewHTMLRenderer(view.WithTemplatesFS(files), view.WithEntryTemplate("summary"))
	if err != nil {
		t.Fatalf("new html renderer: %v", err)
	}
	var buf bytes.Buffer
	if err := renderer.Render(&buf, page); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := buf.String(); got != "Insights: 35.50% elevated" {
		t.Fatalf("unexpected output %q", got)
	}

	engine, err := pongo.New(pongo.WithName("custom"), pongo.WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	renderer, err = view.NewHTMLRenderer(view.WithTemplateRenderer(engine), view.WithEntryTemplate("summary.tpl"))
	if err != nil {
		t.Fatalf("new html renderer with engine: %v", err)
	}
	buf.Reset()
	if err := renderer.Render(&buf, page); err != nil {
		t.Fatalf("render with engine: %v", err)
	}
	if got := buf.String(); got != "Insights: 35.50% elevated" {
		t.Fatalf("unexpected output with engine %q", got)
	}

	renderer, _ = view.NewHTMLRenderer(view.WithTemplatesFS(files), view.WithEntryTemplate("missing"))
	if err := renderer.Render(io.Discard, page); err == nil {
		t.Fatalf("expected error for a missing entry template")
	}
}

type stubRenderer struct{ name string }

func (s stubRenderer) Name() string                      { return s.name }
func (s stubRenderer) ContentType() string               { return "text/plain" }
func (s stubRenderer) Render(io.Writer, view.Page) error { return nil }

func TestRegistry(t *testing.T) {
	registry, err := view.NewDefaultRegistry()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	if diff := cmp.Diff([]string{view.FormatHTML, view.FormatJSON}, registry.List()); diff != "" {
		t.Fatalf("renderer names mismatch (-want +got):\n%s", diff)
	}
	if !registry.Has(view.FormatHTML) || registry.Has("pdf") {
		t.Fatalf("unexpected Has results")
	}

	if err := registry.Register(stubRenderer{name: view.FormatJSON}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := registry.Register(stubRenderer{}); err == nil {
		t.Fatalf("expected error for unnamed renderer")
	}
	if err := registry.Register(stubRenderer{name: "text"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	renderer, err := registry.Get("text")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if renderer.ContentType() != "text/plain" {
		t.Fatalf("unexpected renderer %T", renderer)
	}
	if _, err := registry.Get("pdf"); err == nil {
		t.Fatalf("expected missing renderer error")
	}
}
