// Package jira mirrors the discovered test cases into Jira/XRay: one
// "Test" ticket per case, linked under a single "Test Execution"
// ticket. Created ticket keys flow back into the case tags so both
// renderers pick them up.
package jira

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/internal/models"
	"github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/internal/templates"
	"go.uber.org/zap"
)

// ErrNoTicketsCreated is returned when every per-case ticket submission
// failed. A mirror run without a single created ticket is a hard
// failure for the orchestrator.
var ErrNoTicketsCreated = errors.New("no Jira Test tickets were created")

const (
	issueEndpoint    = "/jira/rest/api/2/issue/"
	testExecEndpoint = "/jira/rest/raven/1.0/api/testexec/%s/test"

	// Jira answers ticket creation with 201, the XRay link API with 200.
	statusCreated = http.StatusCreated
	statusLinked  = http.StatusOK
)

// Client talks to the Jira and XRay REST APIs with basic auth.
type Client struct {
	serverURL  string
	accessKey  string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a Jira client. accessKey is the base64-encoded
// user:token pair used for the basic auth header.
func NewClient(serverURL, accessKey string, log *zap.Logger) *Client {
	return &Client{
		serverURL:  strings.TrimSuffix(serverURL, "/"),
		accessKey:  accessKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// descriptionEscaper backslash-escapes quotation marks of both kinds
// before the description text is embedded into the JSON ticket body.
var descriptionEscaper = strings.NewReplacer(`"`, `\"`, `'`, `\'`)

// Mirror creates one Test ticket per test case and, when at least one
// succeeded, a Test Execution ticket referencing all created keys.
// Individual submission failures are logged and skipped; zero created
// tickets fail the whole mirror step.
//
// The returned slice is a copy of cases with each created ticket key
// appended to the matching case's tags. The input slice is not touched.
func (c *Client) Mirror(cases []models.TestCase, ts templates.TicketSet, specName string) ([]models.TestCase, error) {
	mirrored := make([]models.TestCase, len(cases))
	copy(mirrored, cases)

	var createdKeys []string
	for i, tc := range cases {
		body := ts.Test
		body = strings.ReplaceAll(body, templates.TokenDescription, descriptionEscaper.Replace(tc.Description))
		body = strings.ReplaceAll(body, templates.TokenTestCaseName, tc.OperationID)

		key, err := c.submit(c.serverURL+issueEndpoint, body, statusCreated, true)
		if err != nil {
			c.log.Warn("failed to create Jira Test ticket",
				zap.String("operationId", tc.OperationID), zap.Error(err))
			continue
		}
		c.log.Info("created Jira Test ticket",
			zap.String("operationId", tc.OperationID), zap.String("key", key))

		createdKeys = append(createdKeys, key)
		mirrored[i].Tags = append(append([]string(nil), tc.Tags...), key)
	}

	if len(createdKeys) == 0 {
		return nil, ErrNoTicketsCreated
	}

	c.linkExecution(createdKeys, ts.TestExecution, specName)
	return mirrored, nil
}

// linkExecution creates the Test Execution ticket and associates all
// created Test keys with it. Failures here are logged only: the tickets
// themselves already exist and the run can proceed.
func (c *Client) linkExecution(testKeys []string, executionTemplate, specName string) {
	body := strings.ReplaceAll(executionTemplate, templates.TokenAPIName, specName)

	executionKey, err := c.submit(c.serverURL+issueEndpoint, body, statusCreated, true)
	if err != nil {
		c.log.Warn("failed to create Jira Test Execution ticket", zap.Error(err))
		return
	}
	c.log.Info("created Jira Test Execution ticket", zap.String("key", executionKey))

	relation, err := json.Marshal(map[string][]string{"add": testKeys})
	if err != nil {
		c.log.Warn("failed to encode test execution relation", zap.Error(err))
		return
	}

	url := c.serverURL + fmt.Sprintf(testExecEndpoint, executionKey)
	if _, err := c.submit(url, string(relation), statusLinked, false); err != nil {
		c.log.Warn("failed to link Test tickets to Test Execution",
			zap.String("executionKey", executionKey),
			zap.Strings("testKeys", testKeys),
			zap.Error(err))
	}
}

// submit posts a JSON request body and validates the response status.
// When extractKey is set, the created ticket key is read from the
// response body; any non-matching status or unparsable body is a
// failure, never an alternate success path.
func (c *Client) submit(url, body string, expectedStatus int, extractKey bool) (string, error) {
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.accessKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != expectedStatus {
		return "", fmt.Errorf("unexpected status %d from %s (want %d)", resp.StatusCode, url, expectedStatus)
	}

	if !extractKey {
		return "", nil
	}

	var payload struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}
	if payload.Key == "" {
		return "", errors.New("response contains no ticket key")
	}

	return payload.Key, nil
}
