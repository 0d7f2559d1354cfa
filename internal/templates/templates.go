// Package templates loads the raw text templates for the Robot
// Framework renderers and the Jira ticket mirror. Templates are plain
// strings carrying literal REPLACE_*_REPLACE tokens; nothing here is a
// text/template, the renderers substitute tokens verbatim.
package templates

import (
	"fmt"
	"os"
	"path/filepath"
)

// Placeholder tokens shared between the shipped templates and the
// renderers.
const (
	TokenDataDriverArguments   = "REPLACE_DATA_DRIVER_ARGUMENTS_REPLACE"
	TokenOpenAPIFilename       = "REPLACE_OPENAPI_FILENAME_REPLACE"
	TokenDatetimeCreation      = "REPLACE_DATETIME_CREATION_REPLACE"
	TokenRobotBaseURL          = "REPLACE_ROBOT_BASE_URL_REPLACE"
	TokenOperation             = "REPLACE_OPERATION_REPLACE"
	TokenOperationID           = "REPLACE_OPERATIONID_REPLACE"
	TokenDocumentation         = "REPLACE_DOCUMENTATION_REPLACE"
	TokenURLParameters         = "REPLACE_URL_PARAMETERS_REPLACE"
	TokenSchemaGeneratorString = "REPLACE_SCHEMA_GENERATOR_STRING_REPLACE"
	TokenHTTPOperation         = "REPLACE_HTTP_OPERATION_REPLACE"
	TokenAPIPath               = "REPLACE_API_PATH_REPLACE"
	TokenDescription           = "REPLACE_DESCRIPTION_REPLACE"
	TokenTestCaseName          = "REPLACE_TEST_CASE_NAME_REPLACE"
	TokenAPIName               = "REPLACE_API_NAME_REPLACE"
)

// Default template file names within the template directory.
const (
	FileIncludes           = "template_robot_generic_includes.robot"
	FileHeader             = "template_robot_header.robot"
	FileFooter             = "template_robot_footer.robot"
	FileKeywordWithBody    = "template_robot_keyword_with_request_body.robot"
	FileKeywordWithoutBody = "template_robot_keyword_without_request_body.robot"
	FileJiraTest           = "template_jira_test_case"
	FileJiraTestExecution  = "template_jira_test_execution"
)

// RenderSet holds the template texts for the two Robot Framework output
// documents. Footer may be empty; everything else is mandatory.
type RenderSet struct {
	Includes           string
	Header             string
	Footer             string
	KeywordWithBody    string
	KeywordWithoutBody string
}

// TicketSet holds the Jira request body templates for the ticket mirror.
type TicketSet struct {
	Test          string
	TestExecution string
}

// LoadRenderSet reads all Robot Framework templates from dir. A missing
// or unreadable mandatory template fails the whole load before any
// output file is touched; a missing footer is valid and leaves
// RenderSet.Footer empty.
func LoadRenderSet(dir string) (RenderSet, error) {
	var set RenderSet
	var err error

	if set.Includes, err = readTemplate(filepath.Join(dir, FileIncludes)); err != nil {
		return RenderSet{}, err
	}
	if set.Header, err = readTemplate(filepath.Join(dir, FileHeader)); err != nil {
		return RenderSet{}, err
	}
	if set.KeywordWithBody, err = readTemplate(filepath.Join(dir, FileKeywordWithBody)); err != nil {
		return RenderSet{}, err
	}
	if set.KeywordWithoutBody, err = readTemplate(filepath.Join(dir, FileKeywordWithoutBody)); err != nil {
		return RenderSet{}, err
	}

	// The footer is optional.
	if footer, err := readTemplate(filepath.Join(dir, FileFooter)); err == nil {
		set.Footer = footer
	}

	return set, nil
}

// LoadTicketSet reads both Jira ticket body templates from dir.
func LoadTicketSet(dir string) (TicketSet, error) {
	var set TicketSet
	var err error

	if set.Test, err = readTemplate(filepath.Join(dir, FileJiraTest)); err != nil {
		return TicketSet{}, err
	}
	if set.TestExecution, err = readTemplate(filepath.Join(dir, FileJiraTestExecution)); err != nil {
		return TicketSet{}, err
	}

	return set, nil
}

func readTemplate(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("cannot read template file %s: %w", filename, err)
	}
	return string(content), nil
}
