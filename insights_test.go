package insights

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-workforce-insights/pkg/client"
	"github.com/goliatone/go-workforce-insights/pkg/contract"
	"github.com/goliatone/go-workforce-insights/pkg/dashboard"
	"github.com/goliatone/go-workforce-insights/pkg/employee"
	"github.com/goliatone/go-workforce-insights/pkg/form"
	"github.com/goliatone/go-workforce-insights/pkg/prediction"
	"github.com/goliatone/go-workforce-insights/pkg/testsupport"
)

func TestBuildForms_BundledContracts(t *testing.T) {
	forms, err := BuildForms(MustLoadContracts(context.Background()))
	if err != nil {
		t.Fatalf("build forms: %v", err)
	}

	if forms.Attrition.Endpoint != "/attrition" || forms.Attrition.Method != "POST" {
		t.Fatalf("unexpected attrition endpoint %s %s", forms.Attrition.Method, forms.Attrition.Endpoint)
	}
	if diff := cmp.Diff(employee.FieldNames(), forms.Attrition.FieldNames()); diff != "" {
		t.Fatalf("attrition fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(employee.ProductivityFieldNames(), forms.Productivity.FieldNames()); diff != "" {
		t.Fatalf("productivity fields mismatch (-want +got):\n%s", diff)
	}

	department, ok := forms.Attrition.Field(employee.FieldDepartment)
	if !ok {
		t.Fatalf("department field missing")
	}
	if department.Widget != form.WidgetSelect {
		t.Fatalf("department should render as a select, got %s", department.Widget)
	}
	if diff := cmp.Diff([]string{"IT", "Sales", "HR", "Finance", "R&D"}, department.Options); diff != "" {
		t.Fatalf("department options mismatch (-want +got):\n%s", diff)
	}

	jobRole, _ := forms.Attrition.Field(employee.FieldJobRole)
	if jobRole.Label != "Job Role" || jobRole.Placeholder != "e.g., Executive, Manager, Lead" || !jobRole.Required {
		t.Fatalf("unexpected job role field %+v", jobRole)
	}
	age, _ := forms.Attrition.Field(employee.FieldAge)
	if age.Widget != form.WidgetNumber || age.Min != "18" {
		t.Fatalf("unexpected age field %+v", age)
	}
}

func TestBuildForms_OptionsMatchEmployeeEnums(t *testing.T) {
	forms, err := BuildForms(MustLoadContracts(context.Background()))
	if err != nil {
		t.Fatalf("build forms: %v", err)
	}

	want := map[string][]string{
		employee.FieldGender:     names(employee.Genders()),
		employee.FieldEducation:  names(employee.EducationLevels()),
		employee.FieldDepartment: names(employee.Departments()),
		employee.FieldOvertime:   names(employee.OvertimeOptions()),
	}
	for name, options := range want {
		field, ok := forms.Attrition.Field(name)
		if !ok {
			t.Fatalf("%s field missing", name)
		}
		if diff := cmp.Diff(options, field.Options); diff != "" {
			t.Fatalf("%s options mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func names[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, value := range values {
		out[i] = string(value)
	}
	return out
}

func TestBuildForms_MissingOperation(t *testing.T) {
	set, err := contract.NewSet(nil)
	if err != nil {
		t.Fatalf("new set: %v", err)
	}
	if _, err := BuildForms(set); err == nil {
		t.Fatalf("expected error for a set without dashboard operations")
	}
}

func TestNewFactory_SendsPayloadsAsEntered(t *testing.T) {
	logReg := testsupport.NewFakeService(t)
	forest := testsupport.NewFakeService(t)
	productivity := testsupport.NewFakeService(t)
	predictor := client.New(
		client.WithBaseURL(prediction.ServiceLogisticRegression, logReg.URL()),
		client.WithBaseURL(prediction.ServiceRandomForest, forest.URL()),
		client.WithBaseURL(prediction.ServiceProductivity, productivity.URL()),
	)
	factory := NewFactory(predictor)

	first, second := factory(), factory()
	if first == second {
		t.Fatalf("factory must build a dashboard per session")
	}
	t.Cleanup(first.Close)
	t.Cleanup(second.Close)

	for name, value := range map[string]string{
		employee.FieldJobRole:    "Lead",
		employee.FieldDepartment: string(employee.DepartmentRnD),
	} {
		if err := first.UpdateEmployeeField(name, value); err != nil {
			t.Fatalf("update %s: %v", name, err)
		}
	}
	if err := first.UpdateProductivityField(employee.FieldLoginTime, "9.5"); err != nil {
		t.Fatalf("update login time: %v", err)
	}
	if err := first.SubmitAttrition(context.Background()); err != nil {
		t.Fatalf("submit attrition: %v", err)
	}
	if err := first.SubmitProductivity(context.Background()); err != nil {
		t.Fatalf("submit productivity: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := first.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}

	for _, fake := range []*testsupport.FakeService{logReg, forest} {
		requests := fake.Requests()
		if len(requests) != 1 {
			t.Fatalf("expected one attrition request per service, got %d", len(requests))
		}
		var sent map[string]any
		requests[0].Decode(t, &sent)
		if sent["department"] != "R&D" {
			t.Fatalf("unexpected department %v", sent["department"])
		}
	}
	requests := productivity.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected one productivity request, got %d", len(requests))
	}
	var sent map[string]any
	requests[0].Decode(t, &sent)
	if sent["login_time"] != 9.5 {
		t.Fatalf("unexpected login time %v", sent["login_time"])
	}
}

func TestNewFactory_OptInContractValidation(t *testing.T) {
	set := MustLoadContracts(context.Background())
	logReg := testsupport.NewFakeService(t)
	predictor := client.New(client.WithBaseURL(prediction.ServiceLogisticRegression, logReg.URL()))
	dash := NewFactory(predictor, dashboard.WithValidator(set))()
	t.Cleanup(dash.Close)

	if err := dash.UpdateEmployeeField(employee.FieldJobRole, "Analyst"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := dash.UpdateEmployeeField(employee.FieldPerformanceRating, "5"); err != nil {
		t.Fatalf("update: %v", err)
	}

	err := dash.SubmitAttrition(context.Background())
	verr, ok := dashboard.AsValidationError(err)
	if !ok {
		t.Fatalf("expected contract validation error, got %v", err)
	}
	if diff := cmp.Diff([]string{"number must be at most 4"}, verr.Fields[employee.FieldPerformanceRating]); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if logReg.PredictCalls() != 0 {
		t.Fatalf("rejected payloads must not be sent")
	}
}
