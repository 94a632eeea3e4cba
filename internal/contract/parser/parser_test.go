package parser

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgcontract "github.com/goliatone/go-workforce-insights/pkg/contract"
)

const fixture = `openapi: 3.0.3
info:
  title: fixture
  version: '1'
servers:
  - url: http://localhost:9000
paths:
  /predict:
    post:
      operationId: predict
      summary: Predict
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Input'
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                type: object
                properties:
                  score: {type: number}
  /other:
    servers:
      - url: http://localhost:9100
    get:
      responses:
        '200': {description: ok}
components:
  schemas:
    Input:
      type: object
      required: [hours]
      x-field-order: [hours, unknown, label]
      properties:
        label:
          type: string
          title: Label
          maxLength: 12
          x-form:
            placeholder: e.g. morning
        hours:
          type: integer
          minimum: 0
          maximum: 24
          default: 8
`

func TestParser_Operations(t *testing.T) {
	doc := pkgcontract.MustNewDocument(pkgcontract.SourceFromFS("fixture.yaml"), []byte(fixture))
	p := New(pkgcontract.NewParserOptions())

	ops, err := p.Operations(context.Background(), doc)
	if err != nil {
		t.Fatalf("operations: %v", err)
	}

	predict, ok := ops["predict"]
	if !ok {
		t.Fatalf("predict operation missing: %v", ops)
	}
	if predict.Server != "http://localhost:9000" || predict.Method != "POST" || predict.Summary != "Predict" {
		t.Fatalf("unexpected predict metadata: %+v", predict)
	}

	zero, hours, maxLen := float64(0), float64(24), 12
	want := pkgcontract.Schema{
		Ref:      "#/components/schemas/Input",
		Type:     "object",
		Required: []string{"hours"},
		Order:    []string{"hours", "label"},
		Properties: map[string]pkgcontract.Schema{
			"label": {
				Type:      "string",
				Title:     "Label",
				MaxLength: &maxLen,
				Hints:     map[string]string{"placeholder": "e.g. morning"},
			},
			"hours": {
				Type:    "integer",
				Minimum: &zero,
				Maximum: &hours,
				Default: float64(8),
			},
		},
	}
	if diff := cmp.Diff(want, predict.RequestBody); diff != "" {
		t.Fatalf("request schema mismatch (-want +got):\n%s", diff)
	}
	if !predict.HasResponse("200") {
		t.Fatalf("expected 200 response schema")
	}

	other, ok := ops["get:/other"]
	if !ok {
		t.Fatalf("expected generated id for operation without operationId: %v", ops)
	}
	if other.Server != "http://localhost:9100" {
		t.Fatalf("path-level server not applied: %q", other.Server)
	}
}

func TestParser_RejectsEmptyDocuments(t *testing.T) {
	doc := pkgcontract.MustNewDocument(pkgcontract.SourceFromFS("empty.yaml"), []byte("openapi: 3.0.3\ninfo: {title: x, version: '1'}\npaths: {}\n"))

	if _, err := New(pkgcontract.NewParserOptions()).Operations(context.Background(), doc); err == nil {
		t.Fatalf("expected error for document without paths")
	}

	partial := New(pkgcontract.NewParserOptions(pkgcontract.WithPartialDocuments(true)))
	ops, err := partial.Operations(context.Background(), doc)
	if err != nil {
		t.Fatalf("partial documents should be accepted: %v", err)
	}
	if len(ops) != 0 {
		t.Fatalf("expected no operations, got %d", len(ops))
	}
}

func TestParser_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := pkgcontract.MustNewDocument(pkgcontract.SourceFromFS("fixture.yaml"), []byte(fixture))
	if _, err := New(pkgcontract.NewParserOptions()).Operations(ctx, doc); err == nil {
		t.Fatalf("expected context error")
	}
}
