package models

// PropertySpec carries the per-variable schema details consumed by the
// renderers. Only enum and example values are extracted; everything else
// in the property schema is ignored.
type PropertySpec struct {
	Enum    []string
	Example string
}

// Property is one request body property in document order.
type Property struct {
	Name string
	Spec PropertySpec
}

// TestCase represents one API operation normalized into a test case.
// Its identity is the (OperationID, Method, Path) triple.
type TestCase struct {
	OperationID    string
	Method         string
	Path           string
	Tags           []string
	Summary        string
	Description    string
	Properties     []Property
	Required       map[string]bool
	Example        map[string]string
	ExpectedStatus string
}

// Key returns the identity triple of the test case.
func (tc TestCase) Key() CaseKey {
	return CaseKey{OperationID: tc.OperationID, Method: tc.Method, Path: tc.Path}
}

// HasBody reports whether the operation carries a JSON request body.
func (tc TestCase) HasBody() bool {
	return len(tc.Properties) > 0
}

// CaseKey uniquely identifies a test case within one model.
type CaseKey struct {
	OperationID string
	Method      string
	Path        string
}

// Model is the normalized output of one spec traversal. Cases keep the
// document's path/method order; Variables is the deduplicated,
// case-insensitively sorted set of all request body property names and
// its order is shared by the matrix and the script renderer.
type Model struct {
	Servers   []string
	Cases     []TestCase
	Variables []string

	index map[CaseKey]int
}

// Upsert adds a test case to the model. A case with an already-known
// identity key replaces the earlier entry in place, keeping its position.
func (m *Model) Upsert(tc TestCase) {
	if m.index == nil {
		m.index = make(map[CaseKey]int)
	}
	if i, ok := m.index[tc.Key()]; ok {
		m.Cases[i] = tc
		return
	}
	m.index[tc.Key()] = len(m.Cases)
	m.Cases = append(m.Cases, tc)
}

// VariableColumn returns the position of a variable within the frozen
// variable order, or -1 when the name is unknown.
func (m *Model) VariableColumn(name string) int {
	for i, v := range m.Variables {
		if v == name {
			return i
		}
	}
	return -1
}
