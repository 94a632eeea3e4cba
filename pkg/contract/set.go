package contract

import (
	"context"
	"fmt"
	"sort"
)

// Operation ids declared by the bundled contracts.
const (
	OperationSubmitAttrition    = "submitAttrition"
	OperationSubmitProductivity = "submitProductivity"

	OperationPredictLogisticRegression = "predictLogisticRegression"
	OperationPredictRandomForest       = "predictRandomForest"
	OperationPredictProductivity       = "predictProductivity"
)

// Set is the merged view over every loaded contract.
type Set struct {
	operations map[string]Operation
	validator  Validator
}

// NewSet merges operation maps. Duplicate operation ids across documents are
// rejected.
func NewSet(validator Validator, groups ...map[string]Operation) (*Set, error) {
	merged := make(map[string]Operation)
	for _, group := range groups {
		for id, op := range group {
			if _, exists := merged[id]; exists {
				return nil, fmt.Errorf("contract: operation %q declared twice", id)
			}
			merged[id] = op
		}
	}
	return &Set{operations: merged, validator: validator}, nil
}

// Operation returns the operation registered under id.
func (s *Set) Operation(id string) (Operation, error) {
	if s == nil {
		return Operation{}, fmt.Errorf("%w %q", ErrUnknownOperation, id)
	}
	op, ok := s.operations[id]
	if !ok {
		return Operation{}, fmt.Errorf("%w %q", ErrUnknownOperation, id)
	}
	return op, nil
}

// OperationIDs lists the registered operations sorted by id.
func (s *Set) OperationIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.operations))
	for id := range s.operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks payload against the request schema of operationID. A Set
// without a validator accepts every payload.
func (s *Set) Validate(ctx context.Context, operationID string, payload any) error {
	if s == nil || s.validator == nil {
		return nil
	}
	return s.validator.Validate(ctx, operationID, payload)
}

var _ Validator = (*Set)(nil)
