package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-workforce-insights/pkg/dashboard"
	"github.com/goliatone/go-workforce-insights/pkg/employee"
	"github.com/goliatone/go-workforce-insights/pkg/view"
)

// maxWait bounds how long an API submission with ?wait=true blocks.
const maxWait = 60 * time.Second

// fieldUpdate is the body of the field PATCH routes.
type fieldUpdate struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value"`
}

// submission is the optional body of the API submit routes. Fields are
// applied before submitting.
type submission struct {
	Fields map[string]string `json:"fields"`
}

// stateResponse wraps a snapshot with the outcome of the request.
type stateResponse struct {
	State  dashboard.Snapshot  `json:"state"`
	Error  string              `json:"error,omitempty"`
	Fields map[string][]string `json:"fields,omitempty"`
}

type formKind struct {
	fieldNames []string
	apply      func(*dashboard.Dashboard, string, string) error
	submit     func(*dashboard.Dashboard, *gin.Context) error
}

var (
	attritionForm = formKind{
		fieldNames: employee.FieldNames(),
		apply:      (*dashboard.Dashboard).UpdateEmployeeField,
		submit: func(d *dashboard.Dashboard, c *gin.Context) error {
			return d.SubmitAttrition(c.Request.Context())
		},
	}
	productivityForm = formKind{
		fieldNames: employee.ProductivityFieldNames(),
		apply:      (*dashboard.Dashboard).UpdateProductivityField,
		submit: func(d *dashboard.Dashboard, c *gin.Context) error {
			return d.SubmitProductivity(c.Request.Context())
		},
	}
)

func (s *Server) page(c *gin.Context) {
	format := c.DefaultQuery("format", view.FormatHTML)
	renderer, err := s.renderers.Get(format)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	page := s.pageFor(c, dashboardFrom(c))
	c.Header("Content-Type", renderer.ContentType())
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if err := renderer.Render(c.Writer, page); err != nil {
		s.logger.Printf("web: render %s: %v", format, err)
	}
}

func (s *Server) submitAttritionForm(c *gin.Context) {
	s.submitForm(c, attritionForm)
}

func (s *Server) submitProductivityForm(c *gin.Context) {
	s.submitForm(c, productivityForm)
}

// submitForm applies the posted fields and submits. Validation failures are
// part of the state, so the browser is always sent back to the page.
func (s *Server) submitForm(c *gin.Context, kind formKind) {
	dash := dashboardFrom(c)
	for _, name := range kind.fieldNames {
		value, ok := c.GetPostForm(name)
		if !ok {
			continue
		}
		if err := kind.apply(dash, name, value); err != nil {
			s.logger.Printf("web: apply %s: %v", name, err)
		}
	}

	if err := kind.submit(dash, c); err != nil {
		if errors.Is(err, dashboard.ErrClosed) {
			c.String(http.StatusServiceUnavailable, "session closed")
			return
		}
		if _, ok := dashboard.AsValidationError(err); !ok {
			s.logger.Printf("web: submit: %v", err)
		}
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) reset(c *gin.Context) {
	if id, err := c.Cookie(SessionCookie); err == nil {
		s.store.Delete(id)
	}
	s.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) state(c *gin.Context) {
	c.JSON(http.StatusOK, stateResponse{State: dashboardFrom(c).Snapshot()})
}

func (s *Server) patchAttritionField(c *gin.Context) {
	s.patchField(c, attritionForm)
}

func (s *Server) patchProductivityField(c *gin.Context) {
	s.patchField(c, productivityForm)
}

func (s *Server) patchField(c *gin.Context, kind formKind) {
	var req fieldUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request data: " + err.Error()})
		return
	}

	dash := dashboardFrom(c)
	if err := kind.apply(dash, req.Name, req.Value); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, employee.ErrUnknownField) {
			status = http.StatusBadRequest
		}
		c.JSON(status, stateResponse{State: dash.Snapshot(), Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, stateResponse{State: dash.Snapshot()})
}

func (s *Server) submitAttritionAPI(c *gin.Context) {
	s.submitAPI(c, attritionForm)
}

func (s *Server) submitProductivityAPI(c *gin.Context) {
	s.submitAPI(c, productivityForm)
}

// submitAPI applies the optional fields and submits. The response carries
// the loading state (202) unless ?wait=true asks to block until the outcome
// is known (200).
func (s *Server) submitAPI(c *gin.Context, kind formKind) {
	var req submission
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request data: " + err.Error()})
		return
	}

	dash := dashboardFrom(c)
	for name := range req.Fields {
		if !slices.Contains(kind.fieldNames, name) {
			err := fmt.Errorf("%w %q", employee.ErrUnknownField, name)
			c.JSON(http.StatusBadRequest, stateResponse{State: dash.Snapshot(), Error: err.Error()})
			return
		}
	}
	for _, name := range kind.fieldNames {
		if value, ok := req.Fields[name]; ok {
			if err := kind.apply(dash, name, value); err != nil {
				c.JSON(http.StatusBadRequest, stateResponse{State: dash.Snapshot(), Error: err.Error()})
				return
			}
		}
	}

	if err := kind.submit(dash, c); err != nil {
		if errors.Is(err, dashboard.ErrClosed) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		resp := stateResponse{State: dash.Snapshot(), Error: err.Error()}
		if verr, ok := dashboard.AsValidationError(err); ok {
			resp.Error = verr.Message
			resp.Fields = verr.Fields
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		ctx, cancel := context.WithTimeout(c.Request.Context(), maxWait)
		defer cancel()
		if err := dash.Wait(ctx); err != nil {
			c.JSON(http.StatusGatewayTimeout, stateResponse{State: dash.Snapshot(), Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, stateResponse{State: dash.Snapshot()})
		return
	}
	c.JSON(http.StatusAccepted, stateResponse{State: dash.Snapshot()})
}

func (s *Server) contract(c *gin.Context) {
	switch c.Param("form") {
	case "attrition":
		c.JSON(http.StatusOK, s.forms.Attrition)
	case "productivity":
		c.JSON(http.StatusOK, s.forms.Productivity)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown form " + strconv.Quote(c.Param("form"))})
	}
}
