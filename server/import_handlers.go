package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"importserver/fileparse"
	"importserver/importer"
	"importserver/mapping"
	"importserver/parsers"
	"importserver/server/middleware"
)

// importFunc — один доменный конвейер импорта.
type importFunc func(rows []parsers.RawRow, fm mapping.FieldMapping) *importer.Result

func (s *Server) importFuncs() map[string]importFunc {
	return map[string]importFunc{
		"clients":           s.importer.ImportClients,
		"products":          s.importer.ImportProducts,
		"suppliers":         s.importer.ImportSuppliers,
		"supplier-invoices": s.importer.ImportSupplierInvoices,
		"supplier-payments": s.importer.ImportSupplierPayments,
		"sales-invoices":    s.importer.ImportSalesInvoices,
		"client-payments":   s.importer.ImportClientPayments,
		"expenses":          s.importer.ImportExpenses,
		"fiches":            s.importer.ImportFiches,
	}
}

// handleImport принимает multipart-форму: файл "file" (xlsx или csv) и поле
// "mapping" с JSON-объектом логическое-поле -> имя колонки.
func (s *Server) handleImport(c *gin.Context) {
	domain := c.Param("domain")
	run, ok := s.importFuncs()[domain]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   true,
			"message": fmt.Sprintf("unknown import domain %q", domain),
		})
		return
	}

	fm, err := parseMappingField(c.PostForm("mapping"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": err.Error()})
		return
	}

	parsed, filename, err := s.parseUploadedFile(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": err.Error()})
		return
	}

	result := run(parsed.Rows, fm)

	s.logger.Info("импорт завершен",
		"domain", domain,
		"file", filename,
		"rows", len(parsed.Rows),
		"success", result.Success,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"request_id", middleware.FromGin(c),
	)

	c.JSON(http.StatusOK, gin.H{"domain": domain, "result": result})
}

// handlePreview возвращает заголовки и первые строки файла — для настройки
// маппинга на клиенте.
func (s *Server) handlePreview(c *gin.Context) {
	parsed, filename, err := s.parseUploadedFile(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": err.Error()})
		return
	}

	const previewRows = 10
	rows := parsed.Rows
	if len(rows) > previewRows {
		rows = rows[:previewRows]
	}

	c.JSON(http.StatusOK, gin.H{
		"file":      filename,
		"headers":   parsed.Headers,
		"rows":      rows,
		"row_count": len(parsed.Rows),
	})
}

func (s *Server) parseUploadedFile(c *gin.Context) (*fileparse.Parsed, string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("file field is required: %w", err)
	}
	if fileHeader.Size > s.cfg.MaxUploadBytes {
		return nil, "", fmt.Errorf("file exceeds the %d byte limit", s.cfg.MaxUploadBytes)
	}

	data, err := readUpload(fileHeader)
	if err != nil {
		return nil, "", err
	}

	parsed, err := fileparse.ParseUpload(fileHeader.Filename, data)
	if err != nil {
		return nil, "", err
	}
	return parsed, fileHeader.Filename, nil
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

func parseMappingField(raw string) (mapping.FieldMapping, error) {
	if raw == "" {
		return nil, fmt.Errorf("mapping field is required")
	}
	var fm mapping.FieldMapping
	if err := json.Unmarshal([]byte(raw), &fm); err != nil {
		return nil, fmt.Errorf("invalid mapping json: %w", err)
	}
	if len(fm) == 0 {
		return nil, fmt.Errorf("mapping is empty")
	}
	return fm, nil
}
