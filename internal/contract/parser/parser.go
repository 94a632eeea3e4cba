package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	pkgcontract "github.com/goliatone/go-workforce-insights/pkg/contract"
)

// Parser implements pkgcontract.Parser using kin-openapi.
type Parser struct {
	options pkgcontract.ParserOptions
}

var _ pkgcontract.Parser = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options pkgcontract.ParserOptions) *Parser {
	return &Parser{options: options}
}

// Operations converts a Document into a map keyed by operationId.
func (p *Parser) Operations(ctx context.Context, doc pkgcontract.Document) (map[string]pkgcontract.Operation, error) {
	spec, err := Load(ctx, doc, p.options)
	if err != nil {
		return nil, err
	}

	operations := make(map[string]pkgcontract.Operation)
	if spec.Paths != nil {
		for path, item := range spec.Paths.Map() {
			if item == nil {
				continue
			}
			server := pickServer(spec.Servers, item.Servers, nil)
			for method, operation := range item.Operations() {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				p.collectOperation(operations, strings.ToUpper(method), path, server, operation)
			}
		}
	}

	if len(operations) == 0 && !p.options.AllowPartialDocuments {
		return nil, errors.New("contract parser: no operations extracted")
	}

	return operations, nil
}

// Load decodes the raw document with kin-openapi and, when reference
// resolution is enabled, validates it. The validator reuses this to obtain the
// kin-openapi schemas it visits.
func Load(ctx context.Context, doc pkgcontract.Document, options pkgcontract.ParserOptions) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("contract parser: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context: ctx,
	}

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("contract parser: load %s: %w", doc.Location(), err)
	}

	if spec.Paths == nil || spec.Paths.Len() == 0 {
		if !options.AllowPartialDocuments {
			return nil, fmt.Errorf("contract parser: %s does not contain any paths", doc.Location())
		}
	}

	if options.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("contract parser: validate %s: %w", doc.Location(), err)
		}
	}
	return spec, nil
}

func (p *Parser) collectOperation(target map[string]pkgcontract.Operation, method, path, server string, operation *openapi3.Operation) {
	if operation == nil {
		return
	}
	opID := operation.OperationID
	if opID == "" {
		opID = strings.ToLower(method) + ":" + path
	}

	op, err := pkgcontract.NewOperation(opID, method, path, extractRequestSchema(operation.RequestBody), extractResponseSchemas(operation.Responses))
	if err != nil {
		return
	}
	op.Summary = operation.Summary
	op.Description = operation.Description
	op.Server = server
	if operation.Servers != nil {
		op.Server = pickServer(nil, nil, *operation.Servers)
		if op.Server == "" {
			op.Server = server
		}
	}
	target[opID] = op
}

// RequestSchema returns the kin-openapi request schema of an operation,
// preferring JSON bodies.
func RequestSchema(requestBody *openapi3.RequestBodyRef) *openapi3.SchemaRef {
	if requestBody == nil || requestBody.Value == nil {
		return nil
	}
	content := requestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded"} {
		if mt, ok := content[mediaType]; ok && mt != nil {
			return mt.Schema
		}
	}
	for _, mt := range content {
		if mt != nil {
			return mt.Schema
		}
	}
	return nil
}

func extractRequestSchema(requestBody *openapi3.RequestBodyRef) pkgcontract.Schema {
	if requestBody != nil && requestBody.Value == nil {
		return pkgcontract.Schema{Ref: requestBody.Ref}
	}
	return convertSchema(RequestSchema(requestBody))
}

func extractResponseSchemas(responses *openapi3.Responses) map[string]pkgcontract.Schema {
	if responses == nil || responses.Len() == 0 {
		return nil
	}
	result := make(map[string]pkgcontract.Schema)
	for status, ref := range responses.Map() {
		if ref == nil || ref.Value == nil {
			continue
		}
		content := ref.Value.Content
		if len(content) == 0 {
			continue
		}
		var schema pkgcontract.Schema
		if mt, ok := content["application/json"]; ok {
			schema = convertSchema(mt.Schema)
		} else {
			for _, mt := range content {
				schema = convertSchema(mt.Schema)
				break
			}
		}
		if schema.Description == "" && ref.Value.Description != nil {
			schema.Description = *ref.Value.Description
		}
		result[status] = schema
	}
	return result
}

func pickServer(docServers, pathServers, opServers openapi3.Servers) string {
	for _, group := range []openapi3.Servers{opServers, pathServers, docServers} {
		for _, server := range group {
			if server != nil && server.URL != "" {
				return server.URL
			}
		}
	}
	return ""
}
