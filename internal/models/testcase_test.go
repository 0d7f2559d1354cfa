package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertAppendsNewCases(t *testing.T) {
	m := &Model{}
	m.Upsert(TestCase{OperationID: "a", Method: "GET", Path: "/a"})
	m.Upsert(TestCase{OperationID: "b", Method: "GET", Path: "/b"})

	require.Len(t, m.Cases, 2)
	assert.Equal(t, "a", m.Cases[0].OperationID)
	assert.Equal(t, "b", m.Cases[1].OperationID)
}

func TestUpsertOverwritesDuplicateKeyInPlace(t *testing.T) {
	m := &Model{}
	m.Upsert(TestCase{OperationID: "a", Method: "GET", Path: "/a", Summary: "first"})
	m.Upsert(TestCase{OperationID: "b", Method: "GET", Path: "/b"})
	m.Upsert(TestCase{OperationID: "a", Method: "GET", Path: "/a", Summary: "second"})

	require.Len(t, m.Cases, 2)
	assert.Equal(t, "a", m.Cases[0].OperationID)
	assert.Equal(t, "second", m.Cases[0].Summary)
}

func TestUpsertDistinguishesMethodAndPath(t *testing.T) {
	m := &Model{}
	m.Upsert(TestCase{OperationID: "a", Method: "GET", Path: "/a"})
	m.Upsert(TestCase{OperationID: "a", Method: "POST", Path: "/a"})
	m.Upsert(TestCase{OperationID: "a", Method: "GET", Path: "/b"})

	assert.Len(t, m.Cases, 3)
}

func TestVariableColumn(t *testing.T) {
	m := &Model{Variables: []string{"age", "name", "Status"}}

	assert.Equal(t, 0, m.VariableColumn("age"))
	assert.Equal(t, 2, m.VariableColumn("Status"))
	assert.Equal(t, -1, m.VariableColumn("unknown"))
}

func TestHasBody(t *testing.T) {
	assert.False(t, TestCase{}.HasBody())
	assert.True(t, TestCase{Properties: []Property{{Name: "x"}}}.HasBody())
}
