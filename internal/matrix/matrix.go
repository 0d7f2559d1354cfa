// Package matrix renders the normalized test-case model into the Excel
// data matrix consumed by a data-driven test runner: one row per
// operation, one column per variable of the shared variable universe.
package matrix

import (
	"fmt"
	"strings"

	"github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/internal/models"
	"github.com/xuri/excelize/v2"
)

// Style carries the sheet's formatting configuration: the background
// colors of the three cell bands and the zero-based column at which the
// variable columns start.
type Style struct {
	CaseColor     string
	VariableColor string
	OptionalColor string
	RequiredColor string
	StartColumn   int
}

// DefaultStyle returns the standard color coding: sand for the test
// case band, grey for the variable header band, green for optional and
// red for required variable cells.
func DefaultStyle() Style {
	return Style{
		CaseColor:     "#f9e4b7",
		VariableColor: "#bbbbbb",
		OptionalColor: "#99ee99",
		RequiredColor: "#ee9999",
		StartColumn:   6,
	}
}

// Dimensions is the bounding size of the rendered sheet.
type Dimensions struct {
	Rows int
	Cols int
}

// Renderer writes the test-case matrix to an Excel workbook.
type Renderer struct {
	style Style
}

// NewRenderer creates a matrix renderer with the given style.
func NewRenderer(style Style) *Renderer {
	return &Renderer{style: style}
}

// fixedHeaders are the leading columns; their order is part of the
// output contract and matches the script renderer's argument list.
var fixedHeaders = []string{
	"*** Test Case ***",
	"[Documentation]",
	"[Tags]",
	"${API_CALL}",
	"${API_OPERATION}",
	"${EXPECTED_STATUS_CODE}",
}

// WriteFile renders the model and saves the workbook to path.
func (r *Renderer) WriteFile(m *models.Model, addExampleData bool, path string) (Dimensions, error) {
	f, dims, err := r.Render(m, addExampleData)
	if err != nil {
		return dims, err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return dims, fmt.Errorf("cannot write Excel file %s: %w", path, err)
	}
	return dims, nil
}

// Render populates an in-memory workbook from the model. All cells use
// text formatting; header cells are bold italic. Variable cells carry
// the optional or required band color, and enum-constrained variables
// get a list data validation regardless of example-data mode.
func (r *Renderer) Render(m *models.Model, addExampleData bool) (*excelize.File, Dimensions, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	styles, err := r.buildStyles(f)
	if err != nil {
		f.Close()
		return nil, Dimensions{}, err
	}

	dims := Dimensions{
		Rows: len(m.Cases) + 1,
		Cols: r.style.StartColumn + len(m.Variables),
	}

	if err := r.writeHeader(f, sheet, m, styles); err != nil {
		f.Close()
		return nil, Dimensions{}, err
	}
	if err := r.writeCases(f, sheet, m, addExampleData, styles); err != nil {
		f.Close()
		return nil, Dimensions{}, err
	}

	// Manual column widths, excelize has no autofit either.
	lastCol, _ := excelize.ColumnNumberToName(dims.Cols)
	_ = f.SetColWidth(sheet, "A", "B", 50)
	_ = f.SetColWidth(sheet, "C", lastCol, 25)

	return f, dims, nil
}

type cellStyles struct {
	headerCase     int
	headerVariable int
	caseData       int
	variableBlank  int
	optional       int
	required       int
}

func (r *Renderer) buildStyles(f *excelize.File) (cellStyles, error) {
	var styles cellStyles
	var err error

	if styles.headerCase, err = newStyle(f, r.style.CaseColor, true); err != nil {
		return styles, err
	}
	if styles.headerVariable, err = newStyle(f, r.style.VariableColor, true); err != nil {
		return styles, err
	}
	if styles.caseData, err = newStyle(f, r.style.CaseColor, false); err != nil {
		return styles, err
	}
	if styles.variableBlank, err = newStyle(f, r.style.VariableColor, false); err != nil {
		return styles, err
	}
	if styles.optional, err = newStyle(f, r.style.OptionalColor, false); err != nil {
		return styles, err
	}
	if styles.required, err = newStyle(f, r.style.RequiredColor, false); err != nil {
		return styles, err
	}

	return styles, nil
}

// newStyle creates a text-formatted ("@" number format) cell style with
// the given background fill, bold italic for header bands.
func newStyle(f *excelize.File, color string, header bool) (int, error) {
	style := &excelize.Style{
		NumFmt: 49,
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{strings.TrimPrefix(color, "#")},
		},
	}
	if header {
		style.Font = &excelize.Font{Bold: true, Italic: true}
	}

	id, err := f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("cannot create cell style: %w", err)
	}
	return id, nil
}

func (r *Renderer) writeHeader(f *excelize.File, sheet string, m *models.Model, styles cellStyles) error {
	for col, header := range fixedHeaders {
		if err := writeCell(f, sheet, col, 0, header, styles.headerCase); err != nil {
			return err
		}
	}

	for i, variable := range m.Variables {
		content := "${" + variable + "}"
		if err := writeCell(f, sheet, r.style.StartColumn+i, 0, content, styles.headerVariable); err != nil {
			return err
		}
	}

	return nil
}

func (r *Renderer) writeCases(f *excelize.File, sheet string, m *models.Model, addExampleData bool, styles cellStyles) error {
	// Background-fill the whole variable region first so untouched
	// cells keep the variable band color. Cell content written below
	// overrides the style per cell.
	if len(m.Cases) > 0 && len(m.Variables) > 0 {
		topLeft := cellName(r.style.StartColumn, 1)
		bottomRight := cellName(r.style.StartColumn+len(m.Variables)-1, len(m.Cases))
		if err := f.SetCellStyle(sheet, topLeft, bottomRight, styles.variableBlank); err != nil {
			return fmt.Errorf("cannot style variable region: %w", err)
		}
	}

	for i, tc := range m.Cases {
		row := i + 1

		fixed := []string{
			tc.OperationID,
			tc.Summary,
			strings.Join(tc.Tags, ","),
			tc.OperationID,
			strings.ToUpper(tc.Method),
			tc.ExpectedStatus,
		}
		for col, content := range fixed {
			if err := writeCell(f, sheet, col, row, content, styles.caseData); err != nil {
				return err
			}
		}

		for _, prop := range tc.Properties {
			col := m.VariableColumn(prop.Name)
			if col < 0 {
				// Unknown variable names are skipped, not fatal.
				continue
			}

			style := styles.optional
			if tc.Required[prop.Name] {
				style = styles.required
			}

			content := ""
			if addExampleData {
				content = prop.Spec.Example
			}

			if err := writeCell(f, sheet, r.style.StartColumn+col, row, content, style); err != nil {
				return err
			}

			if len(prop.Spec.Enum) > 0 {
				if err := addEnumValidation(f, sheet, r.style.StartColumn+col, row, prop.Spec.Enum); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// addEnumValidation restricts a single cell to the enum's literal
// values via a drop-down list. Free-text entries stay allowed: the
// validation shows no error.
func addEnumValidation(f *excelize.File, sheet string, col, row int, values []string) error {
	dv := excelize.NewDataValidation(true)
	dv.Sqref = cellName(col, row)
	if err := dv.SetDropList(values); err != nil {
		return fmt.Errorf("cannot build enum drop list: %w", err)
	}
	dv.ShowErrorMessage = false

	if err := f.AddDataValidation(sheet, dv); err != nil {
		return fmt.Errorf("cannot add enum validation: %w", err)
	}
	return nil
}

func writeCell(f *excelize.File, sheet string, col, row int, value string, style int) error {
	cell := cellName(col, row)
	if err := f.SetCellStr(sheet, cell, value); err != nil {
		return fmt.Errorf("cannot write cell %s: %w", cell, err)
	}
	if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
		return fmt.Errorf("cannot style cell %s: %w", cell, err)
	}
	return nil
}

// cellName converts zero-based coordinates to an Excel cell reference.
func cellName(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col+1, row+1)
	return cell
}
