package matrix

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleModel() *models.Model {
	m := &models.Model{Variables: []string{"age", "name", "Status"}}
	m.Upsert(models.TestCase{
		OperationID:    "listPets",
		Method:         "get",
		Path:           "/pets",
		Summary:        "List all pets",
		Tags:           []string{"pets", "smoke"},
		ExpectedStatus: "200",
	})
	m.Upsert(models.TestCase{
		OperationID:    "createPet",
		Method:         "post",
		Path:           "/pets",
		Summary:        "Create a pet",
		ExpectedStatus: "201",
		Properties: []models.Property{
			{Name: "name", Spec: models.PropertySpec{Example: "doggie"}},
			{Name: "Status", Spec: models.PropertySpec{Enum: []string{"available", "pending", "sold"}}},
			{Name: "age"},
		},
		Required: map[string]bool{"name": true},
	})
	return m
}

func renderToFile(t *testing.T, m *models.Model, addExampleData bool) (*excelize.File, Dimensions) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "matrix.xlsx")
	dims, err := NewRenderer(DefaultStyle()).WriteFile(m, addExampleData, path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	return f, dims
}

func cellValue(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()

	value, err := f.GetCellValue(f.GetSheetName(0), cell)
	require.NoError(t, err)
	return value
}

func TestRenderDimensions(t *testing.T) {
	_, dims := renderToFile(t, sampleModel(), false)

	assert.Equal(t, 3, dims.Rows)
	assert.Equal(t, 9, dims.Cols)
}

func TestHeaderRow(t *testing.T) {
	f, _ := renderToFile(t, sampleModel(), false)

	assert.Equal(t, "*** Test Case ***", cellValue(t, f, "A1"))
	assert.Equal(t, "[Documentation]", cellValue(t, f, "B1"))
	assert.Equal(t, "[Tags]", cellValue(t, f, "C1"))
	assert.Equal(t, "${API_CALL}", cellValue(t, f, "D1"))
	assert.Equal(t, "${API_OPERATION}", cellValue(t, f, "E1"))
	assert.Equal(t, "${EXPECTED_STATUS_CODE}", cellValue(t, f, "F1"))

	// Variable columns follow the frozen universe order.
	assert.Equal(t, "${age}", cellValue(t, f, "G1"))
	assert.Equal(t, "${name}", cellValue(t, f, "H1"))
	assert.Equal(t, "${Status}", cellValue(t, f, "I1"))
}

func TestCaseRows(t *testing.T) {
	f, _ := renderToFile(t, sampleModel(), false)

	assert.Equal(t, "listPets", cellValue(t, f, "A2"))
	assert.Equal(t, "List all pets", cellValue(t, f, "B2"))
	assert.Equal(t, "pets,smoke", cellValue(t, f, "C2"))
	assert.Equal(t, "listPets", cellValue(t, f, "D2"))
	assert.Equal(t, "GET", cellValue(t, f, "E2"))
	assert.Equal(t, "200", cellValue(t, f, "F2"))

	assert.Equal(t, "createPet", cellValue(t, f, "A3"))
	assert.Equal(t, "POST", cellValue(t, f, "E3"))
	assert.Equal(t, "201", cellValue(t, f, "F3"))
}

func TestExampleDataOnlyWhenRequested(t *testing.T) {
	f, _ := renderToFile(t, sampleModel(), false)
	assert.Equal(t, "", cellValue(t, f, "H3"))

	f, _ = renderToFile(t, sampleModel(), true)
	assert.Equal(t, "doggie", cellValue(t, f, "H3"))
}

func TestEnumValidationAttached(t *testing.T) {
	// The drop-down list is attached independent of example-data mode.
	for _, addExampleData := range []bool{false, true} {
		f, _ := renderToFile(t, sampleModel(), addExampleData)

		validations, err := f.GetDataValidations(f.GetSheetName(0))
		require.NoError(t, err)
		require.Len(t, validations, 1)
		assert.Equal(t, "I3", validations[0].Sqref)
		assert.Contains(t, validations[0].Formula1, "available")
	}
}

func fillColor(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()

	styleID, err := f.GetCellStyle(f.GetSheetName(0), cell)
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotEmpty(t, style.Fill.Color)
	return strings.ToLower(style.Fill.Color[0])
}

func TestVariableCellFillPartition(t *testing.T) {
	f, _ := renderToFile(t, sampleModel(), false)

	// createPet: name is required, age and Status are optional.
	assert.Contains(t, fillColor(t, f, "H3"), "ee9999")
	assert.Contains(t, fillColor(t, f, "G3"), "99ee99")
	assert.Contains(t, fillColor(t, f, "I3"), "99ee99")

	// listPets has no body, so its variable cells keep the blank band.
	assert.Contains(t, fillColor(t, f, "G2"), "bbbbbb")
}

func TestUnknownVariableIsSkipped(t *testing.T) {
	m := sampleModel()
	m.Cases[1].Properties = append(m.Cases[1].Properties, models.Property{Name: "ghost"})

	f, dims := renderToFile(t, m, false)
	assert.Equal(t, 9, dims.Cols)
	assert.Equal(t, "createPet", cellValue(t, f, "A3"))
}

func TestEmptyModel(t *testing.T) {
	m := &models.Model{Variables: []string{}}
	_, dims := renderToFile(t, m, false)

	assert.Equal(t, 1, dims.Rows)
	assert.Equal(t, 6, dims.Cols)
}
