package dashboard

import (
	"context"
	"maps"

	"github.com/goliatone/go-workforce-insights/pkg/employee"
	"github.com/goliatone/go-workforce-insights/pkg/prediction"
)

// Status is the phase of a form submission.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// FormState is the rendered state of one form: the record being edited, the
// submission phase, and either the result or the error of the last
// submission. Result and Error are never both set.
type FormState[D any, R any] struct {
	Data        D                   `json:"data"`
	Status      Status              `json:"status"`
	Error       string              `json:"error,omitempty"`
	FieldErrors map[string][]string `json:"field_errors,omitempty"`
	Result      *R                  `json:"result,omitempty"`
	Generation  uint64              `json:"generation"`
}

// Loading reports whether a submission is in flight.
func (s FormState[D, R]) Loading() bool {
	return s.Status == StatusLoading
}

// AttritionState is the state of the employee form. Its result pairs the
// logistic regression and random forest predictions.
type AttritionState = FormState[employee.Data, prediction.Attrition]

// ProductivityState is the state of the productivity form.
type ProductivityState = FormState[employee.Productivity, prediction.Productivity]

// Snapshot is an immutable copy of the whole dashboard.
type Snapshot struct {
	Attrition    AttritionState                                 `json:"attrition"`
	Productivity ProductivityState                              `json:"productivity"`
	Health       map[prediction.Service]prediction.HealthStatus `json:"health"`
}

// Busy reports whether either form is loading.
func (s Snapshot) Busy() bool {
	return s.Attrition.Loading() || s.Productivity.Loading()
}

// record owns the mutable state of one form. It is only modified through
// begin, succeed and fail while the dashboard mutex is held.
type record[D any, R any] struct {
	state  FormState[D, R]
	cancel context.CancelFunc
}

func newRecord[D any, R any](data D) *record[D, R] {
	return &record[D, R]{state: FormState[D, R]{Data: data, Status: StatusIdle}}
}

// begin starts a submission: prior output is cleared, the generation advances
// and any superseded request is cancelled.
func (r *record[D, R]) begin(cancel context.CancelFunc) uint64 {
	if r.cancel != nil {
		r.cancel()
	}
	r.cancel = cancel
	r.state.Generation++
	r.state.Status = StatusLoading
	r.state.Error = ""
	r.state.FieldErrors = nil
	r.state.Result = nil
	return r.state.Generation
}

// succeed stores result when generation is still current.
func (r *record[D, R]) succeed(generation uint64, result R) bool {
	if generation != r.state.Generation {
		return false
	}
	r.release()
	r.state.Status = StatusSuccess
	r.state.Result = &result
	return true
}

// fail stores the failure when generation is still current.
func (r *record[D, R]) fail(generation uint64, message string, fields map[string][]string) bool {
	if generation != r.state.Generation {
		return false
	}
	r.release()
	r.state.Status = StatusError
	r.state.Error = message
	r.state.FieldErrors = fields
	r.state.Result = nil
	return true
}

func (r *record[D, R]) release() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *record[D, R]) snapshot(cloneResult func(R) R) FormState[D, R] {
	out := r.state
	out.FieldErrors = cloneFieldErrors(r.state.FieldErrors)
	if r.state.Result != nil {
		result := *r.state.Result
		if cloneResult != nil {
			result = cloneResult(result)
		}
		out.Result = &result
	}
	return out
}

func cloneFieldErrors(in map[string][]string) map[string][]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func cloneAttrition(in prediction.Attrition) prediction.Attrition {
	if in.LogisticRegression.InputData != nil {
		echo := *in.LogisticRegression.InputData
		in.LogisticRegression.InputData = &echo
	}
	return in
}

func cloneProductivity(in prediction.Productivity) prediction.Productivity {
	in.EngineeredFeatures = maps.Clone(in.EngineeredFeatures)
	return in
}
