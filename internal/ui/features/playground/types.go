package playground

import (
	"github.com/leapstack-labs/bettersql/pkg/compiler"
	"github.com/leapstack-labs/bettersql/pkg/parser"
)

// maxQueryBytes bounds the request body of the compile endpoints.
const maxQueryBytes = 1 << 20

// CompileRequest is the body of POST /api/compile and POST /api/parse.
type CompileRequest struct {
	Query string `json:"query"`
}

// CompileResponse is returned by a successful compile.
type CompileResponse struct {
	ID  string `json:"id"`
	SQL string `json:"sql"`
}

// ParseResponse is returned by a successful parse.
type ParseResponse struct {
	ID  string         `json:"id"`
	AST *parser.Select `json:"ast"`
}

// ErrorResponse describes a failed request. Line and Column are set for
// syntax errors.
type ErrorResponse struct {
	ID     string `json:"id"`
	Error  string `json:"error"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// ExamplesResponse lists the built-in sample queries.
type ExamplesResponse struct {
	Examples []compiler.Example `json:"examples"`
}

// Signals is the datastar signal set of the playground page.
type Signals struct {
	Query string `json:"query"`
	SQL   string `json:"sql"`
	Error string `json:"error"`
}
