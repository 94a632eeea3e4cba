// Package dashboard holds the view state of one dashboard session and the
// transitions that move each form between idle, loading, success and error.
package dashboard

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-workforce-insights/pkg/client"
	"github.com/goliatone/go-workforce-insights/pkg/contract"
	"github.com/goliatone/go-workforce-insights/pkg/employee"
	"github.com/goliatone/go-workforce-insights/pkg/prediction"
	"github.com/goliatone/go-workforce-insights/pkg/remap"
)

// Predictor is the request adapter the dashboard drives. *client.Client
// satisfies it.
type Predictor interface {
	PredictAssignment1(ctx context.Context, data employee.Data) (prediction.LogisticRegression, error)
	PredictAssignment2(ctx context.Context, data employee.Data) (prediction.RandomForest, error)
	PredictAssignment3(ctx context.Context, data employee.Productivity) (prediction.Productivity, error)
	CheckHealth(ctx context.Context, service prediction.Service) bool
}

var _ Predictor = (*client.Client)(nil)

// Logger receives diagnostic output.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithValidator checks outgoing payloads against the service contracts
// before any request is sent.
func WithValidator(validator contract.Validator) Option {
	return func(d *Dashboard) {
		d.validator = validator
	}
}

// WithLogger routes diagnostic output to logger.
func WithLogger(logger Logger) Option {
	return func(d *Dashboard) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithEmployee seeds the attrition form.
func WithEmployee(data employee.Data) Option {
	return func(d *Dashboard) {
		d.attrition.state.Data = data
	}
}

// WithProductivity seeds the productivity form.
func WithProductivity(data employee.Productivity) Option {
	return func(d *Dashboard) {
		d.productivity.state.Data = data
	}
}

var serviceOperations = map[prediction.Service]string{
	prediction.ServiceLogisticRegression: contract.OperationPredictLogisticRegression,
	prediction.ServiceRandomForest:       contract.OperationPredictRandomForest,
	prediction.ServiceProductivity:       contract.OperationPredictProductivity,
}

// Dashboard is the controller of one session. Submissions run in the
// background; the latest submission of a form always wins and supersedes
// any request still in flight for that form.
type Dashboard struct {
	predictor Predictor
	validator contract.Validator
	logger    Logger

	base context.Context
	stop context.CancelFunc

	mu           sync.Mutex
	attrition    *record[employee.Data, prediction.Attrition]
	productivity *record[employee.Productivity, prediction.Productivity]
	health       map[prediction.Service]prediction.HealthStatus
	mounted      bool
	inflight     int
	idle         chan struct{}
}

// New constructs a Dashboard with default form values. Health is reported as
// checking until Mount runs.
func New(predictor Predictor, options ...Option) *Dashboard {
	base, stop := context.WithCancel(context.Background())
	d := &Dashboard{
		predictor:    predictor,
		logger:       nopLogger{},
		base:         base,
		stop:         stop,
		attrition:    newRecord[employee.Data, prediction.Attrition](employee.Default()),
		productivity: newRecord[employee.Productivity, prediction.Productivity](employee.DefaultProductivity()),
		health:       make(map[prediction.Service]prediction.HealthStatus, len(prediction.Services())),
		idle:         closedChannel(),
	}
	for _, service := range prediction.Services() {
		d.health[service] = prediction.HealthChecking
	}
	for _, opt := range options {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Mount probes every service once. Later calls are no-ops: health is never
// refreshed for the lifetime of the dashboard.
func (d *Dashboard) Mount(ctx context.Context) {
	d.mu.Lock()
	if d.mounted || d.base.Err() != nil {
		d.mu.Unlock()
		return
	}
	d.mounted = true
	d.mu.Unlock()

	for _, service := range prediction.Services() {
		runCtx, release := d.detach(ctx)
		d.track()
		go func(service prediction.Service) {
			defer d.untrack()
			defer release()
			status := prediction.HealthFromProbe(d.predictor.CheckHealth(runCtx, service))
			d.mu.Lock()
			d.health[service] = status
			d.mu.Unlock()
		}(service)
	}
}

// UpdateEmployeeField applies a single attrition form edit.
func (d *Dashboard) UpdateEmployeeField(name, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attrition.state.Data.ApplyField(name, value)
}

// UpdateProductivityField applies a single productivity form edit.
func (d *Dashboard) UpdateProductivityField(name, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.productivity.state.Data.ApplyField(name, value)
}

// SubmitAttrition validates the employee record and, when valid, asks both
// attrition services for a prediction. The two requests are joined: a
// failure in either discards both results. A rejected submission returns a
// *ValidationError; otherwise the outcome lands in the state asynchronously.
func (d *Dashboard) SubmitAttrition(ctx context.Context) error {
	if d.base.Err() != nil {
		return ErrClosed
	}
	runCtx, release := d.detach(ctx)

	d.mu.Lock()
	data := d.attrition.state.Data
	generation := d.attrition.begin(release)
	d.mu.Unlock()

	if err := d.validateAttrition(runCtx, data); err != nil {
		d.mu.Lock()
		d.attrition.fail(generation, err.Message, err.Fields)
		d.mu.Unlock()
		return err
	}

	d.track()
	go func() {
		defer d.untrack()
		result, err := d.predictAttrition(runCtx, data)

		d.mu.Lock()
		defer d.mu.Unlock()
		if err != nil {
			if !d.attrition.fail(generation, failureMessage(err, FallbackAttritionMessage), nil) {
				return
			}
			d.logger.Printf("dashboard: attrition prediction failed: %v", err)
			return
		}
		d.attrition.succeed(generation, result)
	}()
	return nil
}

// SubmitProductivity validates the productivity record and, when valid, asks
// the productivity service for a prediction.
func (d *Dashboard) SubmitProductivity(ctx context.Context) error {
	if d.base.Err() != nil {
		return ErrClosed
	}
	runCtx, release := d.detach(ctx)

	d.mu.Lock()
	data := d.productivity.state.Data
	generation := d.productivity.begin(release)
	d.mu.Unlock()

	if err := d.validateProductivity(runCtx, data); err != nil {
		d.mu.Lock()
		d.productivity.fail(generation, err.Message, err.Fields)
		d.mu.Unlock()
		return err
	}

	d.track()
	go func() {
		defer d.untrack()
		result, err := d.predictor.PredictAssignment3(runCtx, data)

		d.mu.Lock()
		defer d.mu.Unlock()
		if err != nil {
			if !d.productivity.fail(generation, failureMessage(err, FallbackProductivityMessage), nil) {
				return
			}
			d.logger.Printf("dashboard: productivity prediction failed: %v", err)
			return
		}
		d.productivity.succeed(generation, result)
	}()
	return nil
}

func (d *Dashboard) predictAttrition(ctx context.Context, data employee.Data) (prediction.Attrition, error) {
	var out prediction.Attrition
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		result, err := d.predictor.PredictAssignment1(groupCtx, data)
		if err != nil {
			return err
		}
		out.LogisticRegression = result
		return nil
	})
	group.Go(func() error {
		result, err := d.predictor.PredictAssignment2(groupCtx, data)
		if err != nil {
			return err
		}
		out.RandomForest = result
		return nil
	})
	if err := group.Wait(); err != nil {
		return prediction.Attrition{}, err
	}
	return out, nil
}

func (d *Dashboard) validateAttrition(ctx context.Context, data employee.Data) *ValidationError {
	if err := data.Validate(); err != nil {
		return localValidationError(err)
	}
	var fields map[string][]string
	var issues contract.Issues
	for _, check := range []struct {
		service prediction.Service
		payload employee.Data
	}{
		{prediction.ServiceLogisticRegression, data},
		{prediction.ServiceRandomForest, remap.ForRandomForest(data)},
	} {
		found := d.contractIssues(ctx, check.service, check.payload)
		for _, issue := range found {
			if !containsIssue(issues, issue) {
				issues = append(issues, issue)
			}
		}
		fields = mergeFieldErrors(fields, found.ByField())
	}
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Message: issues.Error(), Fields: fields}
}

func (d *Dashboard) validateProductivity(ctx context.Context, data employee.Productivity) *ValidationError {
	if err := data.Validate(); err != nil {
		return localValidationError(err)
	}
	issues := d.contractIssues(ctx, prediction.ServiceProductivity, data)
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Message: issues.Error(), Fields: mergeFieldErrors(nil, issues.ByField())}
}

func (d *Dashboard) contractIssues(ctx context.Context, service prediction.Service, payload any) contract.Issues {
	if d.validator == nil {
		return nil
	}
	err := d.validator.Validate(ctx, serviceOperations[service], payload)
	if err == nil || errors.Is(err, contract.ErrUnknownOperation) {
		return nil
	}
	if issues, ok := contract.AsIssues(err); ok {
		return issues
	}
	d.logger.Printf("dashboard: %s contract validation skipped: %v", service, err)
	return nil
}

func containsIssue(issues contract.Issues, issue contract.Issue) bool {
	for _, existing := range issues {
		if existing.Field == issue.Field && existing.Message == issue.Message {
			return true
		}
	}
	return false
}

func localValidationError(err error) *ValidationError {
	var local *employee.ValidationError
	if errors.As(err, &local) {
		return &ValidationError{
			Message: local.Message,
			Fields:  map[string][]string{local.Field: {local.Message}},
		}
	}
	return &ValidationError{Message: err.Error()}
}

// failureMessage picks the text shown for a failed submission. Messages
// reported by a service are shown verbatim.
func failureMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Snapshot returns a copy of the current state.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	health := make(map[prediction.Service]prediction.HealthStatus, len(d.health))
	for service, status := range d.health {
		health[service] = status
	}
	return Snapshot{
		Attrition:    d.attrition.snapshot(cloneAttrition),
		Productivity: d.productivity.snapshot(cloneProductivity),
		Health:       health,
	}
}

// Wait blocks until no submission or health probe is in flight.
func (d *Dashboard) Wait(ctx context.Context) error {
	d.mu.Lock()
	idle := d.idle
	d.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels every in-flight request. Later submissions fail with
// ErrClosed.
func (d *Dashboard) Close() {
	d.stop()
}

// detach derives a request context that keeps the values of ctx but not its
// deadline, so a submission outlives the HTTP request that triggered it. The
// context ends when the dashboard closes or release is called.
func (d *Dashboard) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(d.base, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (d *Dashboard) track() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inflight == 0 {
		d.idle = make(chan struct{})
	}
	d.inflight++
}

func (d *Dashboard) untrack() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inflight--
	if d.inflight == 0 {
		close(d.idle)
	}
}

func closedChannel() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
