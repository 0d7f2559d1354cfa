// Package robot renders the normalized test-case model into the Robot
// Framework DataDriver artifacts: the test suite file and the shared
// includes resource. Both renderers write to an io.Writer; the caller
// owns the files.
package robot

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/internal/models"
	"github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/internal/templates"
)

// BaseURLSentinel is substituted into the includes file when no server
// URL matches the expected API URL pattern. It is part of the output
// contract: the generated file must flag the manual followup.
const BaseURLSentinel = "BASE_URL_NOT_FOUND_AND_NEEDS_TO_BE_SET_MANUALLY"

// timestampFormat is the creation timestamp written into the header and
// includes files.
const timestampFormat = "02-Jan-2006 15:04:05"

// baseURLPattern extracts the trailing two path segments of an
// api.<host> server URL as the Robot base path.
var baseURLPattern = regexp.MustCompile(`https:\/\/api.*(\/.*\/.*)`)

// pathParameterPattern finds {name} placeholders in a path template.
var pathParameterPattern = regexp.MustCompile(`\{(.*?)\}`)

// ArgumentsLine builds the DataDriver argument list: the three fixed
// arguments followed by one token per variable, in the frozen variable
// order shared with the matrix columns.
func ArgumentsLine(variables []string) string {
	var sb strings.Builder
	sb.WriteString("${API_CALL}  ${API_OPERATION}  ${EXPECTED_STATUS_CODE}")
	for _, variable := range variables {
		sb.WriteString("  ${")
		sb.WriteString(variable)
		sb.WriteString("}")
	}
	return sb.String()
}

// RenderIncludes writes the includes resource file. The base path is
// derived from the first server URL matching the api.<host> pattern;
// without a match the sentinel string is written instead.
func RenderIncludes(w io.Writer, servers []string, includesTemplate, specName string, now time.Time) error {
	baseURL := BaseURLSentinel
	for _, server := range servers {
		if matches := baseURLPattern.FindStringSubmatch(server); matches != nil {
			baseURL = matches[1]
			break
		}
	}

	content := includesTemplate
	content = strings.ReplaceAll(content, templates.TokenRobotBaseURL, baseURL)
	content = strings.ReplaceAll(content, templates.TokenOpenAPIFilename, specName)
	content = strings.ReplaceAll(content, templates.TokenDatetimeCreation, now.Format(timestampFormat))

	if _, err := io.WriteString(w, content); err != nil {
		return fmt.Errorf("cannot write includes content: %w", err)
	}
	return nil
}

// RenderScript writes the test suite: the substituted header, one
// keyword block per test case in model order, and the footer verbatim
// when one was supplied.
func RenderScript(w io.Writer, m *models.Model, set templates.RenderSet, specName string, now time.Time) error {
	argumentsLine := ArgumentsLine(m.Variables)

	header := set.Header
	header = strings.ReplaceAll(header, templates.TokenDataDriverArguments, argumentsLine)
	header = strings.ReplaceAll(header, templates.TokenOpenAPIFilename, specName)
	header = strings.ReplaceAll(header, templates.TokenDatetimeCreation, now.Format(timestampFormat))
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("cannot write suite header: %w", err)
	}

	for _, tc := range m.Cases {
		if _, err := io.WriteString(w, renderCase(tc, set, argumentsLine)); err != nil {
			return fmt.Errorf("cannot write keyword block for %s: %w", tc.OperationID, err)
		}
	}

	if set.Footer != "" {
		if _, err := io.WriteString(w, set.Footer); err != nil {
			return fmt.Errorf("cannot write suite footer: %w", err)
		}
	}

	return nil
}

// renderCase substitutes one test case into the matching keyword
// template. Operations with a JSON request body use the body-bearing
// template plus the payload builder statements; all others use the
// bodyless template.
func renderCase(tc models.TestCase, set templates.RenderSet, argumentsLine string) string {
	block := set.KeywordWithoutBody
	if tc.HasBody() {
		block = set.KeywordWithBody
	}

	urlParameters, path := rewritePathParameters(tc.Path)
	method := strings.ToUpper(tc.Method)

	block = strings.ReplaceAll(block, templates.TokenOperation, method)
	block = strings.ReplaceAll(block, templates.TokenOperationID, tc.OperationID)
	block = strings.ReplaceAll(block, templates.TokenDocumentation, tc.Summary)
	block = strings.ReplaceAll(block, templates.TokenDataDriverArguments, argumentsLine)
	block = strings.ReplaceAll(block, templates.TokenURLParameters, urlParameters)

	if tc.HasBody() {
		block = strings.ReplaceAll(block, templates.TokenSchemaGeneratorString, payloadStatements(tc.Properties))
	}

	block = strings.ReplaceAll(block, templates.TokenHTTPOperation, method)
	block = strings.ReplaceAll(block, templates.TokenAPIPath, path)

	return block
}

// rewritePathParameters handles {name} placeholders in a path template.
// Each placeholder becomes a Set Test Variable statement binding the
// parameter name as its own default value, and the path is rewritten to
// Robot's ${name} variable syntax. A test that never overrides the
// variable therefore sends the literal parameter name.
func rewritePathParameters(path string) (string, string) {
	if !strings.Contains(path, "{") {
		return "", path
	}

	var sb strings.Builder
	sb.WriteString("\n")
	for _, match := range pathParameterPattern.FindAllStringSubmatch(path, -1) {
		name := match[1]
		sb.WriteString("    Set Test Variable  ${")
		sb.WriteString(name)
		sb.WriteString("}  ")
		sb.WriteString(name)
		sb.WriteString("\n")
	}

	return sb.String(), strings.ReplaceAll(path, "{", "${")
}

// payloadStatements emits one conditional dictionary insert per body
// property, in the document's property order. Unset variables
// contribute nothing to the outgoing payload.
func payloadStatements(properties []models.Property) string {
	var sb strings.Builder
	for _, prop := range properties {
		sb.WriteString("    ${JsonDictionary}=  Add Variable To Dict If Value Is Not None  VARIABLE_NAME=")
		sb.WriteString(prop.Name)
		sb.WriteString("  VARIABLE_VALUE=${")
		sb.WriteString(prop.Name)
		sb.WriteString("}  OUTPUT_DICT=${JsonDictionary}\n")
	}
	return sb.String()
}
