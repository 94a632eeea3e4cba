// Package insights assembles the employee prediction dashboard: the bundled
// contracts, the forms derived from them, and the per-session controllers
// that call the prediction services.
package insights

import (
	"fmt"

	"github.com/goliatone/go-workforce-insights/pkg/contract"
	"github.com/goliatone/go-workforce-insights/pkg/dashboard"
	"github.com/goliatone/go-workforce-insights/pkg/form"
	"github.com/goliatone/go-workforce-insights/pkg/view"
)

// BuildForms derives the attrition and productivity forms from the dashboard
// submit operations of set.
func BuildForms(set *contract.Set, options ...form.Option) (view.Forms, error) {
	builder := form.NewBuilder(options...)

	attrition, err := buildForm(builder, set, contract.OperationSubmitAttrition)
	if err != nil {
		return view.Forms{}, err
	}
	productivity, err := buildForm(builder, set, contract.OperationSubmitProductivity)
	if err != nil {
		return view.Forms{}, err
	}
	return view.Forms{Attrition: attrition, Productivity: productivity}, nil
}

func buildForm(builder *form.Builder, set *contract.Set, operationID string) (form.FormModel, error) {
	op, err := set.Operation(operationID)
	if err != nil {
		return form.FormModel{}, fmt.Errorf("insights: %w", err)
	}
	model, err := builder.Build(op)
	if err != nil {
		return form.FormModel{}, fmt.Errorf("insights: build form %s: %w", operationID, err)
	}
	return model, nil
}

// NewFactory returns a session factory whose dashboards call predictor.
// Payloads are sent as entered; pass dashboard.WithValidator to check them
// against the service contracts first.
func NewFactory(predictor dashboard.Predictor, options ...dashboard.Option) dashboard.Factory {
	return func() *dashboard.Dashboard {
		return dashboard.New(predictor, options...)
	}
}
