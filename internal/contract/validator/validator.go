package validator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-workforce-insights/internal/contract/parser"
	pkgcontract "github.com/goliatone/go-workforce-insights/pkg/contract"
)

// Validator implements pkgcontract.Validator by visiting payloads with the
// kin-openapi request schemas of the registered documents.
type Validator struct {
	mu      sync.RWMutex
	options pkgcontract.ParserOptions
	schemas map[string]*openapi3.Schema
}

var _ pkgcontract.Validator = (*Validator)(nil)

// New constructs an empty Validator. Documents are registered with Add.
func New(options pkgcontract.ParserOptions) *Validator {
	return &Validator{
		options: options,
		schemas: make(map[string]*openapi3.Schema),
	}
}

// Add indexes the request body schema of every operation in doc.
func (v *Validator) Add(ctx context.Context, doc pkgcontract.Document) error {
	spec, err := parser.Load(ctx, doc, v.options)
	if err != nil {
		return err
	}
	if spec.Paths == nil {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, operation := range item.Operations() {
			if operation == nil || operation.OperationID == "" {
				continue
			}
			ref := parser.RequestSchema(operation.RequestBody)
			if ref == nil || ref.Value == nil {
				continue
			}
			if _, exists := v.schemas[operation.OperationID]; exists {
				return fmt.Errorf("contract validator: operation %q declared twice", operation.OperationID)
			}
			v.schemas[operation.OperationID] = ref.Value
		}
	}
	return nil
}

// Validate checks payload against the request schema of operationID and
// returns pkgcontract.Issues describing every violation.
func (v *Validator) Validate(ctx context.Context, operationID string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	v.mu.RLock()
	schema, ok := v.schemas[operationID]
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w %q", pkgcontract.ErrUnknownOperation, operationID)
	}

	value, err := normalise(payload)
	if err != nil {
		return fmt.Errorf("contract validator: encode payload: %w", err)
	}

	if err := schema.VisitJSON(value, openapi3.MultiErrors(), openapi3.VisitAsRequest()); err != nil {
		var issues pkgcontract.Issues
		collectIssues(err, &issues)
		if len(issues) == 0 {
			return fmt.Errorf("contract validator: %w", err)
		}
		return issues
	}
	return nil
}

// normalise converts typed payloads into the generic JSON shape kin-openapi
// expects.
func normalise(payload any) (any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func collectIssues(err error, out *pkgcontract.Issues) {
	switch e := err.(type) {
	case openapi3.MultiError:
		for _, inner := range e {
			collectIssues(inner, out)
		}
		return
	case *openapi3.SchemaError:
		*out = append(*out, issueFromSchemaError(e))
		return
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		*out = append(*out, issueFromSchemaError(schemaErr))
		return
	}
	*out = append(*out, pkgcontract.Issue{Message: strings.TrimSpace(err.Error())})
}

func issueFromSchemaError(err *openapi3.SchemaError) pkgcontract.Issue {
	segments := err.JSONPointer()
	path := ""
	if len(segments) > 0 {
		escaped := make([]string, 0, len(segments))
		for _, segment := range segments {
			segment = strings.ReplaceAll(segment, "~", "~0")
			escaped = append(escaped, strings.ReplaceAll(segment, "/", "~1"))
		}
		path = "/" + strings.Join(escaped, "/")
	}

	message := strings.TrimSpace(err.Reason)
	if message == "" {
		message = fmt.Sprintf("doesn't match schema %q", err.SchemaField)
	}
	return pkgcontract.Issue{
		Path:    path,
		Field:   pkgcontract.FieldPathFromPointer(path),
		Message: message,
	}
}
