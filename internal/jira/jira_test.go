package jira

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/internal/models"
	"github.com/joergschultzelutter/openapi-to-robot-framework-datadriver-testgenerator/internal/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ticketSet() templates.TicketSet {
	return templates.TicketSet{
		Test:          `{"summary": "` + templates.TokenTestCaseName + `", "description": "` + templates.TokenDescription + `"}`,
		TestExecution: `{"summary": "Execution for ` + templates.TokenAPIName + `"}`,
	}
}

func mirrorCases() []models.TestCase {
	return []models.TestCase{
		{OperationID: "listPets", Method: "GET", Path: "/pets", Tags: []string{"pets"}, Description: `say "hi"`},
		{OperationID: "createPet", Method: "POST", Path: "/pets"},
	}
}

// trackerServer fakes the Jira issue endpoint and the XRay link
// endpoint. failFor contains test-case names whose creation should be
// rejected.
type trackerServer struct {
	*httptest.Server

	issueBodies []string
	linkBodies  []string
	authHeaders []string
	nextKey     int
	failFor     map[string]bool
}

func newTrackerServer(t *testing.T, failFor map[string]bool) *trackerServer {
	t.Helper()

	ts := &trackerServer{failFor: failFor}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		ts.authHeaders = append(ts.authHeaders, r.Header.Get("Authorization"))

		switch {
		case r.URL.Path == "/jira/rest/api/2/issue/":
			for name := range ts.failFor {
				if strings.Contains(string(body), name) {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
			}
			ts.issueBodies = append(ts.issueBodies, string(body))
			ts.nextKey++
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `{"key": "TEST-%d"}`, ts.nextKey)
		case strings.HasPrefix(r.URL.Path, "/jira/rest/raven/1.0/api/testexec/"):
			ts.linkBodies = append(ts.linkBodies, string(body))
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Server.Close)
	return ts
}

func TestMirrorCreatesTicketsAndLinks(t *testing.T) {
	ts := newTrackerServer(t, nil)
	client := NewClient(ts.URL, "c2VjcmV0", zap.NewNop())

	cases := mirrorCases()
	mirrored, err := client.Mirror(cases, ticketSet(), "petstore.json")
	require.NoError(t, err)

	// Two Test tickets plus one Test Execution ticket.
	require.Len(t, ts.issueBodies, 3)
	assert.Contains(t, ts.issueBodies[0], "listPets")
	assert.Contains(t, ts.issueBodies[1], "createPet")
	assert.Contains(t, ts.issueBodies[2], "Execution for petstore.json")

	// The link request references exactly the two created Test keys.
	require.Len(t, ts.linkBodies, 1)
	var relation map[string][]string
	require.NoError(t, json.Unmarshal([]byte(ts.linkBodies[0]), &relation))
	assert.Equal(t, []string{"TEST-1", "TEST-2"}, relation["add"])

	// Ticket keys land in the mirrored tags.
	assert.Equal(t, []string{"pets", "TEST-1"}, mirrored[0].Tags)
	assert.Equal(t, []string{"TEST-2"}, mirrored[1].Tags)

	for _, auth := range ts.authHeaders {
		assert.Equal(t, "Basic c2VjcmV0", auth)
	}
}

func TestMirrorEscapesDescriptionQuotes(t *testing.T) {
	ts := newTrackerServer(t, nil)
	client := NewClient(ts.URL, "c2VjcmV0", zap.NewNop())

	_, err := client.Mirror(mirrorCases(), ticketSet(), "petstore.json")
	require.NoError(t, err)

	assert.Contains(t, ts.issueBodies[0], `say \"hi\"`)
}

func TestMirrorDoesNotMutateInput(t *testing.T) {
	ts := newTrackerServer(t, nil)
	client := NewClient(ts.URL, "c2VjcmV0", zap.NewNop())

	cases := mirrorCases()
	_, err := client.Mirror(cases, ticketSet(), "petstore.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"pets"}, cases[0].Tags)
	assert.Nil(t, cases[1].Tags)
}

func TestMirrorSkipsFailedCreations(t *testing.T) {
	ts := newTrackerServer(t, map[string]bool{"listPets": true})
	client := NewClient(ts.URL, "c2VjcmV0", zap.NewNop())

	cases := mirrorCases()
	mirrored, err := client.Mirror(cases, ticketSet(), "petstore.json")
	require.NoError(t, err)

	// The failed case keeps its tags untouched.
	assert.Equal(t, []string{"pets"}, mirrored[0].Tags)
	assert.Equal(t, []string{"TEST-1"}, mirrored[1].Tags)

	var relation map[string][]string
	require.NoError(t, json.Unmarshal([]byte(ts.linkBodies[0]), &relation))
	assert.Equal(t, []string{"TEST-1"}, relation["add"])
}

func TestMirrorFailsWithoutAnyCreatedTicket(t *testing.T) {
	ts := newTrackerServer(t, map[string]bool{"listPets": true, "createPet": true})
	client := NewClient(ts.URL, "c2VjcmV0", zap.NewNop())

	_, err := client.Mirror(mirrorCases(), ticketSet(), "petstore.json")
	assert.ErrorIs(t, err, ErrNoTicketsCreated)
	assert.Empty(t, ts.linkBodies)
}

func TestMirrorRejectsUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 with a key is still a failure for the create endpoint,
		// which demands 201.
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"key": "TEST-1"}`)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "c2VjcmV0", zap.NewNop())
	_, err := client.Mirror(mirrorCases(), ticketSet(), "petstore.json")
	assert.ErrorIs(t, err, ErrNoTicketsCreated)
}

func TestMirrorRejectsBodyWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": "10023"}`)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "c2VjcmV0", zap.NewNop())
	_, err := client.Mirror(mirrorCases(), ticketSet(), "petstore.json")
	assert.ErrorIs(t, err, ErrNoTicketsCreated)
}
