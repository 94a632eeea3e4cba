package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	insights "github.com/goliatone/go-workforce-insights"
	"github.com/goliatone/go-workforce-insights/internal/web"
	"github.com/goliatone/go-workforce-insights/pkg/client"
	"github.com/goliatone/go-workforce-insights/pkg/dashboard"
	"github.com/goliatone/go-workforce-insights/pkg/employee"
	"github.com/goliatone/go-workforce-insights/pkg/form"
	"github.com/goliatone/go-workforce-insights/pkg/prediction"
	"github.com/goliatone/go-workforce-insights/pkg/testsupport"
	"github.com/goliatone/go-workforce-insights/pkg/view"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	t       *testing.T
	handler http.Handler
	store   *dashboard.Store
	cookies []*http.Cookie

	logReg       *testsupport.FakeService
	forest       *testsupport.FakeService
	productivity *testsupport.FakeService
}

type stateBody struct {
	State  dashboard.Snapshot  `json:"state"`
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}

func newHarness(t *testing.T, logRegOptions ...testsupport.FakeOption) *harness {
	t.Helper()
	return newHarnessWith(t, nil, logRegOptions...)
}

func newHarnessWith(t *testing.T, serverOptions []web.Option, logRegOptions ...testsupport.FakeOption) *harness {
	t.Helper()

	h := &harness{t: t}
	h.logReg = testsupport.NewFakeService(t, append([]testsupport.FakeOption{
		testsupport.WithPrediction(http.StatusOK, map[string]any{
			"probability_of_attrition": 0.72,
			"recommended_action_level": "HIGH_RISK",
			"logreg_prediction_binary": 1,
		}),
	}, logRegOptions...)...)
	h.forest = testsupport.NewFakeService(t, testsupport.WithPrediction(http.StatusOK, map[string]any{
		"probability_of_attrition": 0.4,
		"recommended_risk_level":   "LOW_RISK_MONITOR",
		"binary_prediction":        0,
	}))
	h.productivity = testsupport.NewFakeService(t, testsupport.Unhealthy(), testsupport.WithPrediction(http.StatusOK, map[string]any{
		"predicted_productivity_score": 7.5,
		"engineered_features":          map[string]any{"work_hours": 8},
	}))

	predictor := client.New(
		client.WithBaseURL(prediction.ServiceLogisticRegression, h.logReg.URL()),
		client.WithBaseURL(prediction.ServiceRandomForest, h.forest.URL()),
		client.WithBaseURL(prediction.ServiceProductivity, h.productivity.URL()),
	)
	set := insights.MustLoadContracts(context.Background())
	forms, err := insights.BuildForms(set)
	if err != nil {
		t.Fatalf("build forms: %v", err)
	}

	h.store = dashboard.NewStore(insights.NewFactory(predictor))
	server, err := web.New(h.store, forms, serverOptions...)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	h.handler = server.Handler()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.store.Run(ctx, 0)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

func (h *harness) do(method, target string, body string, contentType string) *httptest.ResponseRecorder {
	h.t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
	}
	for _, cookie := range h.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == web.SessionCookie {
			h.cookies = []*http.Cookie{cookie}
			if cookie.MaxAge < 0 {
				h.cookies = nil
			}
		}
	}
	return rec
}

func (h *harness) state() stateBody {
	h.t.Helper()
	rec := h.do(http.MethodGet, "/api/state", "", "")
	if rec.Code != http.StatusOK {
		h.t.Fatalf("state: unexpected status %d", rec.Code)
	}
	return decodeState(h.t, rec)
}

func (h *harness) wait() {
	h.t.Helper()
	id := h.cookies[0].Value
	dash, ok := h.store.Get(id)
	if !ok {
		h.t.Fatalf("session %s not found", id)
	}
	if err := dash.Wait(context.Background()); err != nil {
		h.t.Fatalf("wait: %v", err)
	}
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateBody {
	t.Helper()
	var out stateBody
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestPage_OpensSessionAndRenders(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if len(h.cookies) != 1 || h.cookies[0].Value == "" {
		t.Fatalf("expected a session cookie")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	for _, fragment := range []string{
		"<title>Employee Prediction Dashboard</title>",
		`<form method="post" action="/attrition">`,
		`<form method="post" action="/productivity">`,
		`placeholder="e.g., Executive, Manager, Lead"`,
	} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("page missing %q", fragment)
		}
	}

	first := h.cookies[0].Value
	h.do(http.MethodGet, "/", "", "")
	h.wait()
	if h.cookies[0].Value != first || h.store.Len() != 1 {
		t.Fatalf("the session should be reused across requests")
	}

	health := h.state().State.Health
	want := map[prediction.Service]prediction.HealthStatus{
		prediction.ServiceLogisticRegression: prediction.HealthOnline,
		prediction.ServiceRandomForest:       prediction.HealthOnline,
		prediction.ServiceProductivity:       prediction.HealthOffline,
	}
	if diff := cmp.Diff(want, health); diff != "" {
		t.Fatalf("health mismatch (-want +got):\n%s", diff)
	}

	rec = h.do(http.MethodGet, "/?format=json", "", "")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected json content type %q", ct)
	}
	if rec := h.do(http.MethodGet, "/?format=pdf", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown format should 404, got %d", rec.Code)
	}
}

func TestFormPost_BlankJobRoleStaysLocal(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodGet, "/", "", "")

	values := url.Values{employee.FieldAge: {"41"}, employee.FieldJobRole: {"  "}}
	rec := h.do(http.MethodPost, "/attrition", values.Encode(), "application/x-www-form-urlencoded")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	h.wait()

	state := h.state().State.Attrition
	if state.Status != dashboard.StatusError || state.Error != employee.MessageJobRoleRequired {
		t.Fatalf("unexpected attrition state %+v", state)
	}
	if state.Data.Age != 41 {
		t.Fatalf("posted fields should be applied, age=%d", state.Data.Age)
	}
	if h.logReg.PredictCalls() != 0 || h.forest.PredictCalls() != 0 {
		t.Fatalf("no prediction request may be sent for a blank job role")
	}
}

func TestFormPost_SubmitsAttrition(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodGet, "/", "", "")

	values := url.Values{
		employee.FieldJobRole:    {"Engineer"},
		employee.FieldDepartment: {"Finance"},
		employee.FieldGender:     {"Other"},
	}
	rec := h.do(http.MethodPost, "/attrition", values.Encode(), "application/x-www-form-urlencoded")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	h.wait()

	state := h.state().State
	if state.Attrition.Status != dashboard.StatusSuccess || state.Attrition.Result == nil {
		t.Fatalf("expected attrition success, got %+v", state.Attrition)
	}
	if state.Productivity.Status != dashboard.StatusIdle {
		t.Fatalf("productivity must stay untouched, got %s", state.Productivity.Status)
	}

	var sent map[string]any
	h.forest.Requests()[0].Decode(t, &sent)
	if sent["department"] != "R&D" || sent["gender"] != "Male" {
		t.Fatalf("random forest should receive remapped categories, got %v", sent)
	}

	page := h.do(http.MethodGet, "/", "", "").Body.String()
	if !strings.Contains(page, "72.00%") || !strings.Contains(page, "40.00%") {
		t.Fatalf("both attrition panels should render")
	}
}

func TestAPI_SubmitWaitsAndReportsServerError(t *testing.T) {
	h := newHarness(t, testsupport.WithPrediction(http.StatusInternalServerError, map[string]any{"error": "model unavailable"}))

	rec := h.do(http.MethodPost, "/api/attrition?wait=true", `{"fields":{"job_role":"Analyst"}}`, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	state := decodeState(t, rec).State.Attrition
	if state.Error != "model unavailable" || state.Result != nil {
		t.Fatalf("expected verbatim service error and no result, got %+v", state)
	}
}

func TestAPI_SubmitAccepted(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/productivity", "", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeState(t, rec).State.Productivity.Generation; got != 1 {
		t.Fatalf("expected first generation, got %d", got)
	}
	h.wait()

	result := h.state().State.Productivity.Result
	if result == nil || result.PredictedProductivityScore != 7.5 {
		t.Fatalf("unexpected productivity result %+v", result)
	}
}

func TestAPI_ValidationErrors(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/productivity", `{"fields":{"login_time":"17","logout_time":"9"}}`, "application/json")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body := decodeState(t, rec)
	if body.Error != employee.MessageLogoutBeforeLogin {
		t.Fatalf("unexpected error %q", body.Error)
	}
	if diff := cmp.Diff([]string{employee.MessageLogoutBeforeLogin}, body.Fields[employee.FieldLogoutTime]); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if h.productivity.PredictCalls() != 0 {
		t.Fatalf("invalid submissions must not reach the service")
	}

	rec = h.do(http.MethodPost, "/api/productivity", `{"fields":{"salary":"1"}}`, "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown fields should be rejected, got %d", rec.Code)
	}
	rec = h.do(http.MethodPost, "/api/attrition", `{"fields":`, "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed json should be rejected, got %d", rec.Code)
	}
}

func TestAPI_PatchFields(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPatch, "/api/attrition/fields", `{"name":"monthly_income","value":"52000.5"}`, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if got := decodeState(t, rec).State.Attrition.Data.MonthlyIncome; got != 52000.5 {
		t.Fatalf("unexpected income %v", got)
	}

	rec = h.do(http.MethodPatch, "/api/productivity/fields", `{"name":"weekly_absences","value":""}`, "application/json")
	if got := decodeState(t, rec).State.Productivity.Data.WeeklyAbsences; got != 0 {
		t.Fatalf("blank numeric input should coerce to zero, got %d", got)
	}

	if rec := h.do(http.MethodPatch, "/api/attrition/fields", `{"name":"salary","value":"1"}`, "application/json"); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field should 400, got %d", rec.Code)
	}
	if rec := h.do(http.MethodPatch, "/api/attrition/fields", `{"value":"1"}`, "application/json"); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing name should 400, got %d", rec.Code)
	}
}

func TestAPI_Contract(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/api/contract/productivity", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var model form.FormModel
	if err := json.Unmarshal(rec.Body.Bytes(), &model); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(employee.ProductivityFieldNames(), model.FieldNames()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	if rec := h.do(http.MethodGet, "/api/contract/payroll", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown form should 404, got %d", rec.Code)
	}
}

func TestReset_DiscardsSession(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodPatch, "/api/attrition/fields", `{"name":"job_role","value":"Lead"}`, "application/json")
	h.wait()

	rec := h.do(http.MethodPost, "/reset", "", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if len(h.cookies) != 0 {
		t.Fatalf("reset should clear the session cookie")
	}
	if h.store.Len() != 0 {
		t.Fatalf("reset should close the session, %d left", h.store.Len())
	}

	if got := h.state().State.Attrition.Data.JobRole; got != "" {
		t.Fatalf("a fresh session should start from defaults, got job role %q", got)
	}
}

func TestHealthzAndAssets(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response %d %q", rec.Code, rec.Body.String())
	}
	if len(h.cookies) != 0 {
		t.Fatalf("healthz must not open a session")
	}

	rec = h.do(http.MethodGet, "/assets/themes/insights/insights.css", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "var(--") {
		t.Fatalf("unexpected stylesheet response %d", rec.Code)
	}
}

func TestServerOptions(t *testing.T) {
	selector, err := view.NewThemeSelector(view.DefaultManifest())
	if err != nil {
		t.Fatalf("theme selector: %v", err)
	}
	h := newHarnessWith(t, []web.Option{
		web.WithSecureCookies(true),
		web.WithThemeSelector(selector),
		web.WithTheme(view.DefaultThemeName, "dark"),
		web.WithAssets("/static/", fstest.MapFS{"extra.css": {Data: []byte("body{}")}}),
	})

	rec := h.do(http.MethodGet, "/", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if len(h.cookies) != 1 || !h.cookies[0].Secure || !h.cookies[0].HttpOnly {
		t.Fatalf("expected a secure http-only session cookie, got %+v", h.cookies)
	}
	if !strings.Contains(rec.Body.String(), `data-variant="dark"`) {
		t.Fatalf("configured variant should be the default")
	}

	rec = h.do(http.MethodGet, "/?variant=sepia", "", "")
	if !strings.Contains(rec.Body.String(), `data-variant="dark"`) {
		t.Fatalf("unknown variants should fall back to the configured one")
	}

	rec = h.do(http.MethodGet, "/static/extra.css", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Fatalf("unexpected asset response %d %q", rec.Code, rec.Body.String())
	}
}

func TestNew_RequiresStore(t *testing.T) {
	if _, err := web.New(nil, view.Forms{}); err == nil {
		t.Fatalf("expected error without store")
	}
}
