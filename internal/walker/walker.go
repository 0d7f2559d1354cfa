// Package walker traverses a resolved OpenAPI document and normalizes it
// into the flat test-case model consumed by the renderers.
package walker

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/internal/models"
	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v2 "github.com/pb33f/libopenapi/datamodel/high/v2"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/utils"
	"go.yaml.in/yaml/v4"
)

// jsonMediaType is the only request body media type we inspect.
const jsonMediaType = "application/json"

// Walker wraps a parsed OpenAPI document.
type Walker struct {
	document libopenapi.Document
}

// Load reads and parses an OpenAPI specification file (JSON or YAML,
// Swagger v2 or OpenAPI v3). The document is expected to be fully
// resolved; no external references are fetched.
func Load(filePath string) (*Walker, error) {
	specBytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI file: %w", err)
	}

	document, err := libopenapi.NewDocument(specBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}

	return &Walker{document: document}, nil
}

// Walk traverses every path and method of the document and returns the
// normalized model: server URLs, one test case per operation, and the
// deduplicated, case-insensitively sorted variable set.
//
// An operation without an operationId aborts the whole walk: without it
// the generated test case has no stable identity.
func (w *Walker) Walk() (*models.Model, error) {
	info := w.document.GetSpecInfo()
	if info != nil && info.SpecType == utils.OpenApi2 {
		return w.walkV2()
	}
	return w.walkV3()
}

func (w *Walker) walkV3() (*models.Model, error) {
	docModel, errs := w.document.BuildV3Model()
	if errs != nil {
		return nil, fmt.Errorf("failed to build v3 model: %v", errs)
	}

	model := &models.Model{}
	for _, server := range docModel.Model.Servers {
		if server != nil && server.URL != "" {
			model.Servers = append(model.Servers, server.URL)
		}
	}

	paths := docModel.Model.Paths
	if paths == nil || paths.PathItems == nil {
		model.Variables = []string{}
		return model, nil
	}

	varset := map[string]bool{}
	for pair := paths.PathItems.First(); pair != nil; pair = pair.Next() {
		path := pair.Key()
		item := pair.Value()
		if item == nil {
			continue
		}

		// GetOperations preserves the document's method order, so the
		// matrix rows and script blocks come out in source order.
		for opPair := item.GetOperations().First(); opPair != nil; opPair = opPair.Next() {
			op := opPair.Value()
			if op == nil {
				continue
			}
			tc, err := w.caseFromV3(path, strings.ToUpper(opPair.Key()), op)
			if err != nil {
				return nil, err
			}
			for _, prop := range tc.Properties {
				varset[prop.Name] = true
			}
			model.Upsert(tc)
		}
	}

	model.Variables = sortedVariables(varset)
	return model, nil
}

func (w *Walker) caseFromV3(path, method string, op *v3.Operation) (models.TestCase, error) {
	if op.OperationId == "" {
		return models.TestCase{}, fmt.Errorf("no operationId present for %s %s, cannot continue", method, path)
	}

	tc := models.TestCase{
		OperationID: op.OperationId,
		Method:      method,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
	}
	if op.Tags != nil {
		tc.Tags = append(tc.Tags, op.Tags...)
	}

	if op.RequestBody != nil && op.RequestBody.Content != nil {
		for pair := op.RequestBody.Content.First(); pair != nil; pair = pair.Next() {
			if pair.Key() != jsonMediaType {
				continue
			}
			media := pair.Value()
			if media == nil {
				continue
			}
			if media.Schema != nil {
				tc.Properties, tc.Required = bodySchema(media.Schema.Schema())
			}
			tc.Example = nodeStringMap(media.Example)
			break
		}
	}

	if op.Responses != nil && op.Responses.Codes != nil {
		if first := op.Responses.Codes.First(); first != nil {
			tc.ExpectedStatus = coerceStatus(first.Key())
		}
	}

	return tc, nil
}

func (w *Walker) walkV2() (*models.Model, error) {
	docModel, errs := w.document.BuildV2Model()
	if errs != nil {
		return nil, fmt.Errorf("failed to build v2 model: %v", errs)
	}

	model := &models.Model{}
	if url := v2ServerURL(&docModel.Model); url != "" {
		model.Servers = append(model.Servers, url)
	}

	paths := docModel.Model.Paths
	if paths == nil || paths.PathItems == nil {
		model.Variables = []string{}
		return model, nil
	}

	varset := map[string]bool{}
	for pair := paths.PathItems.First(); pair != nil; pair = pair.Next() {
		path := pair.Key()
		item := pair.Value()
		if item == nil {
			continue
		}

		for opPair := item.GetOperations().First(); opPair != nil; opPair = opPair.Next() {
			op := opPair.Value()
			if op == nil {
				continue
			}
			tc, err := w.caseFromV2(path, strings.ToUpper(opPair.Key()), op)
			if err != nil {
				return nil, err
			}
			for _, prop := range tc.Properties {
				varset[prop.Name] = true
			}
			model.Upsert(tc)
		}
	}

	model.Variables = sortedVariables(varset)
	return model, nil
}

func (w *Walker) caseFromV2(path, method string, op *v2.Operation) (models.TestCase, error) {
	if op.OperationId == "" {
		return models.TestCase{}, fmt.Errorf("no operationId present for %s %s, cannot continue", method, path)
	}

	tc := models.TestCase{
		OperationID: op.OperationId,
		Method:      method,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
	}
	if op.Tags != nil {
		tc.Tags = append(tc.Tags, op.Tags...)
	}

	// Swagger 2 carries the request body as an "in: body" parameter.
	for _, param := range op.Parameters {
		if param == nil || param.In != "body" || param.Schema == nil {
			continue
		}
		tc.Properties, tc.Required = bodySchema(param.Schema.Schema())
		break
	}

	if op.Responses != nil && op.Responses.Codes != nil {
		if first := op.Responses.Codes.First(); first != nil {
			tc.ExpectedStatus = coerceStatus(first.Key())
		}
	}

	return tc, nil
}

// v2ServerURL reconstructs a base URL from the Swagger 2 host, scheme
// and basePath fields.
func v2ServerURL(doc *v2.Swagger) string {
	if doc.Host == "" {
		return ""
	}
	scheme := "https"
	if len(doc.Schemes) > 0 {
		scheme = doc.Schemes[0]
		for _, s := range doc.Schemes {
			if s == "https" {
				scheme = s
				break
			}
		}
	}
	return scheme + "://" + doc.Host + doc.BasePath
}

// bodySchema flattens a request body schema into the ordered property
// list and the required-name set.
func bodySchema(schema *base.Schema) ([]models.Property, map[string]bool) {
	if schema == nil {
		return nil, nil
	}

	var required map[string]bool
	if len(schema.Required) > 0 {
		required = make(map[string]bool, len(schema.Required))
		for _, name := range schema.Required {
			required[name] = true
		}
	}

	var properties []models.Property
	if schema.Properties != nil {
		for pair := schema.Properties.First(); pair != nil; pair = pair.Next() {
			spec := models.PropertySpec{}
			if proxy := pair.Value(); proxy != nil {
				if ps := proxy.Schema(); ps != nil {
					spec.Enum = nodeValues(ps.Enum)
					spec.Example = nodeValue(ps.Example)
				}
			}
			properties = append(properties, models.Property{Name: pair.Key(), Spec: spec})
		}
	}

	return properties, required
}

// coerceStatus validates that the first listed response code is an
// integer. Non-numeric codes (e.g. "default") yield an empty string so
// the test's own status default applies downstream.
func coerceStatus(code string) string {
	if _, err := strconv.Atoi(code); err != nil {
		return ""
	}
	return code
}

// sortedVariables freezes the variable universe: deduplicated names in
// case-insensitive ascending order, ties broken case-sensitively.
func sortedVariables(varset map[string]bool) []string {
	variables := make([]string, 0, len(varset))
	for name := range varset {
		variables = append(variables, name)
	}
	sort.Slice(variables, func(i, j int) bool {
		li, lj := strings.ToLower(variables[i]), strings.ToLower(variables[j])
		if li == lj {
			return variables[i] < variables[j]
		}
		return li < lj
	})
	return variables
}

// nodeValue renders a scalar yaml node as its literal text.
func nodeValue(node *yaml.Node) string {
	if node == nil {
		return ""
	}
	return node.Value
}

// nodeValues renders a list of scalar yaml nodes (enum entries).
func nodeValues(nodes []*yaml.Node) []string {
	if len(nodes) == 0 {
		return nil
	}
	values := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if node != nil {
			values = append(values, node.Value)
		}
	}
	return values
}

// nodeStringMap flattens a yaml mapping node into literal key/value
// pairs. Nested values are ignored; the example object is informational.
func nodeStringMap(node *yaml.Node) map[string]string {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	result := make(map[string]string, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		value := node.Content[i+1]
		if key == nil || value == nil {
			continue
		}
		result[key.Value] = value.Value
	}
	return result
}
