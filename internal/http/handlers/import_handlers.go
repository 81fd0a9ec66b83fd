package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rogerio-castellano/eshop/internal/models"
	"go.uber.org/zap"
)

const maxImportBytes = 10 << 20

type csvRow struct {
	Name     string
	Quantity string
}

func parseCSV(file io.Reader) ([]csvRow, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, errors.New("invalid CSV header")
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"name", "quantity"} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("CSV header is missing the %q column", col)
		}
	}

	var rows []csvRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %v", err)
		}

		rows = append(rows, csvRow{
			Name:     record[index["name"]],
			Quantity: record[index["quantity"]],
		})
	}
	return rows, nil
}

func validateRow(r csvRow) (ProductRequest, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return ProductRequest{}, errors.New("missing name")
	}
	q, err := strconv.Atoi(strings.TrimSpace(r.Quantity))
	if err != nil || q < 0 {
		return ProductRequest{}, errors.New("invalid quantity")
	}
	return ProductRequest{Name: name, Quantity: q}, nil
}

// ImportProductsHandler godoc
// @Summary Import products via CSV
// @Description Every valid row creates a product; invalid rows are reported and skipped
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file with name and quantity columns"
// @Success 200 {object} ImportProductsResult
// @Failure 400 {string} string "Invalid file"
// @Router /products/import [post]
// @Security BearerAuth
func (s *Server) ImportProductsHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	records, err := parseCSV(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var imported int
	errorsList := []ProductValidationError{}

	for i, rec := range records {
		rowNum := i + 2 // header is row 1

		req, err := validateRow(rec)
		if err != nil {
			errorsList = append(errorsList, ProductValidationError{Field: fmt.Sprintf("row %d", rowNum), Description: err.Error()})
			continue
		}

		now := timestamp()
		if _, err := s.products.Create(r.Context(), models.Product{Name: req.Name, Quantity: req.Quantity, CreatedAt: now, UpdatedAt: now}); err != nil {
			s.lggr.Error("Could not import product", zap.Int("row", rowNum), zap.Error(err))
			errorsList = append(errorsList, ProductValidationError{Field: fmt.Sprintf("row %d", rowNum), Description: "could not store product"})
			continue
		}
		imported++
	}

	s.lggr.Info("Products imported", zap.Int("imported", imported), zap.Int("rejected", len(errorsList)))
	s.writeJSON(w, http.StatusOK, ImportProductsResult{
		ImportedProductsCount: imported,
		Errors:                errorsList,
	})
}
