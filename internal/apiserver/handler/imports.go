package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flowsight/flowsight/internal/apiserver/middleware"
	"github.com/flowsight/flowsight/internal/common/cnst"
	"github.com/flowsight/flowsight/internal/common/dto"
	"github.com/flowsight/flowsight/internal/imports"
)

// readImportUpload pulls the CSV text and import type out of a
// multipart form. A nil return means the response has been written.
func (h *Handler) readImportUpload(c *gin.Context) (cnst.ImportType, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return "", "", false
	}

	importType := cnst.ImportType(c.PostForm("type"))
	if !importType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid import type"})
		return "", "", false
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return "", "", false
	}
	defer f.Close()

	text, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return "", "", false
	}

	return importType, string(text), true
}

// validated runs parse+normalize+validate and converts the outcome to
// the wire shape. rows carries the typed rows for the importer.
type validated struct {
	summary dto.ValidationSummary
	users   []imports.UserRow
	orders  []imports.OrderRow
	subs    []imports.SubscriptionRow
}

func runValidation(importType cnst.ImportType, parsed *imports.Parsed) validated {
	var v validated
	switch importType {
	case cnst.ImportUsers:
		res := imports.ValidateUsers(parsed.Headers, parsed.Rows)
		v.users = res.Rows
		v.summary = toSummary(res.Valid, res.Errors, res.Warnings, len(res.Rows))
	case cnst.ImportOrders:
		res := imports.ValidateOrders(parsed.Headers, parsed.Rows)
		v.orders = res.Rows
		v.summary = toSummary(res.Valid, res.Errors, res.Warnings, len(res.Rows))
	case cnst.ImportSubscriptions:
		res := imports.ValidateSubscriptions(parsed.Headers, parsed.Rows)
		v.subs = res.Rows
		v.summary = toSummary(res.Valid, res.Errors, res.Warnings, len(res.Rows))
	}
	return v
}

func toSummary(valid bool, errs, warns []imports.ValidationError, validRows int) dto.ValidationSummary {
	return dto.ValidationSummary{
		Valid:         valid,
		Errors:        toIssues(errs),
		Warnings:      toIssues(warns),
		ValidRowCount: validRows,
	}
}

func toIssues(in []imports.ValidationError) []dto.ValidationIssue {
	out := make([]dto.ValidationIssue, len(in))
	for i, e := range in {
		out[i] = dto.ValidationIssue{Row: e.Row, Field: e.Field, Message: e.Message}
	}
	return out
}

// ValidateImport is the dry run: parse and validate an upload without
// writing anything.
func (h *Handler) ValidateImport(c *gin.Context) {
	importType, text, ok := h.readImportUpload(c)
	if !ok {
		return
	}

	parsed := imports.Parse(text)
	if len(parsed.Errors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "CSV parsing failed",
			"details": parsed.Errors,
		})
		return
	}

	v := runValidation(importType, parsed)

	preview := make([]map[string]string, 0, 5)
	for i, row := range parsed.Rows {
		if i == 5 {
			break
		}
		preview = append(preview, row)
	}

	c.JSON(http.StatusOK, dto.ValidateResponse{
		Success:    true,
		Validation: v.summary,
		Preview:    preview,
		TotalRows:  len(parsed.Rows),
	})
}

// ProcessImport parses, validates and imports an upload. Parsing or
// validation failures reject the whole file before any write.
func (h *Handler) ProcessImport(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	importType, text, ok := h.readImportUpload(c)
	if !ok {
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		return
	}
	ws, err := h.resolver.WorkspaceForUser(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		return
	}

	parsed := imports.Parse(text)
	if len(parsed.Errors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "CSV parsing failed",
			"details": parsed.Errors,
		})
		return
	}

	v := runValidation(importType, parsed)
	if !v.summary.Valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Validation failed",
			"validation": v.summary,
		})
		return
	}

	var result *imports.Result
	switch importType {
	case cnst.ImportUsers:
		result = h.importer.ImportUsers(c.Request.Context(), ws.ID, v.users)
	case cnst.ImportOrders:
		result = h.importer.ImportOrders(c.Request.Context(), ws.ID, v.orders)
	case cnst.ImportSubscriptions:
		result = h.importer.ImportSubscriptions(c.Request.Context(), ws.ID, v.subs)
	}

	if !result.Success {
		c.JSON(http.StatusNotFound, gin.H{"error": result.Errors[0]})
		return
	}

	if result.Imported > 0 {
		h.recordActivity(c.Request.Context(), user.ID, ws.ID, "data_import",
			fmt.Sprintf("Imported %d %s from CSV", result.Imported, importType))
		h.ai.InvalidateSummary(c.Request.Context(), ws.ID)
	}

	c.JSON(http.StatusOK, dto.ProcessResponse{
		Success: true,
		Result: dto.ImportResultPayload{
			Imported: result.Imported,
			Skipped:  result.Skipped,
			Errors:   result.Errors,
		},
		Message: fmt.Sprintf("Successfully imported %d %s", result.Imported, importType),
	})
}

// ImportTemplate serves an example CSV for the given type.
func (h *Handler) ImportTemplate(c *gin.Context) {
	importType := cnst.ImportType(c.Query("type"))
	if !importType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(importType)+".csv"))
	c.Data(http.StatusOK, "text/csv", []byte(imports.Template(importType)))
}
