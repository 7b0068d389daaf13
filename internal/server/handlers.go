package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/piwi3910/LayCut/internal/engine"
	"github.com/piwi3910/LayCut/internal/export"
	"github.com/piwi3910/LayCut/internal/importer"
	"github.com/piwi3910/LayCut/internal/model"
	"go.uber.org/zap"
)

const formatJSON = "json"

type exportFormat struct {
	contentType string
	filename    string // prefix; the plan id and extension are appended
	ext         string
	write       func(io.Writer, model.PlanResponse) error
}

var exportFormats = map[string]exportFormat{
	"pdf":     {"application/pdf", "cutting-plan", "pdf", export.WritePDF},
	"xlsx":    {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "cutting-plan", "xlsx", export.WriteXLSX},
	"tickets": {"application/pdf", "bundle-tickets", "pdf", export.WriteTickets},
}

// handleOptimize computes a plan and returns it as JSON or as an export file.
func (s *Server) handleOptimize(c *gin.Context) {
	format := c.DefaultQuery("format", formatJSON)
	ef, known := exportFormats[format]
	if format != formatJSON && !known {
		s.fail(c, fmt.Errorf("%w: unknown format %q", engine.ErrInvalidInput, format))
		return
	}

	req, ok := s.bindPlanRequest(c)
	if !ok {
		return
	}

	plan, err := s.optimizer.Plan(req)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.observePlan(plan)
	s.log.Info("Cutting plan computed",
		zap.String("plan_id", plan.PlanID),
		zap.String("priority", string(plan.Priority)),
		zap.Int("orders", plan.TotalOrderQuantity),
		zap.Int("cuts", plan.TotalCuts),
		zap.Int("waste", plan.TotalWaste),
		zap.String("request_id", c.GetString(requestIDKey)))

	if format == formatJSON {
		c.JSON(http.StatusOK, plan)
		return
	}

	s.writeExport(c, ef, format, plan)
}

// handleCompare plans the request under the default what-if scenarios.
func (s *Server) handleCompare(c *gin.Context) {
	req, ok := s.bindPlanRequest(c)
	if !ok {
		return
	}

	scenarios := engine.BuildDefaultScenarios(s.optimizer.Settings.WithPriority(req.Priority), req.Constraints())
	results, err := engine.CompareScenarios(scenarios, req.Orders)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// handleImport parses an uploaded order sheet into an order set.
func (s *Server) handleImport(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		s.fail(c, fmt.Errorf("%w: multipart field \"file\" is required: %v", engine.ErrInvalidInput, err))
		return
	}
	f, err := header.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.fail(c, err)
		return
	}

	result := importer.ImportBytes(header.Filename, data)
	status := http.StatusOK
	if len(result.Orders) == 0 {
		status = http.StatusBadRequest
	}
	s.log.Info("Order sheet imported",
		zap.String("file", header.Filename),
		zap.Int("sizes", len(result.Orders)),
		zap.Int("errors", len(result.Errors)),
		zap.Int("warnings", len(result.Warnings)))
	c.JSON(status, result)
}

func (s *Server) writeExport(c *gin.Context, ef exportFormat, format string, plan model.PlanResponse) {
	var buf bytes.Buffer
	if err := ef.write(&buf, plan); err != nil {
		s.fail(c, fmt.Errorf("export %s: %w", format, err))
		return
	}
	name := fmt.Sprintf("%s-%s.%s", ef.filename, shortID(plan.PlanID), ef.ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, ef.contentType, buf.Bytes())
}

func (s *Server) bindPlanRequest(c *gin.Context) (model.PlanRequest, bool) {
	var req model.PlanRequest
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxBodyBytes)
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", engine.ErrInvalidInput, err))
		return model.PlanRequest{}, false
	}
	return req, true
}

// fail maps err to a status code, counts it and writes {"error": ...}.
func (s *Server) fail(c *gin.Context, err error) {
	s.metrics.observeError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	if errors.Is(err, engine.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
