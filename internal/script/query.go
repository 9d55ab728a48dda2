// Package script is the message bridge between the dispatcher and the
// scripting engine.
//
// A single engine goroutine owns the interpreter. Everything else talks to it
// by sending Query values through a Bridge: queries are evaluated strictly in
// send order, one at a time, and each Execute or ExecFile query gets exactly
// one Response. Restart has no response.
package script

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrEngineUnreachable means the engine goroutine is gone; the query had no effect.
	ErrEngineUnreachable = errors.New("script engine unreachable")
	// ErrNoResponse is returned when awaiting a query that never answers (Restart).
	ErrNoResponse = errors.New("query has no response")
)

type QueryKind int

const (
	KindExecute QueryKind = iota
	KindExecFile
	KindRestart
)

func (k QueryKind) String() string {
	switch k {
	case KindExecute:
		return "execute"
	case KindExecFile:
		return "exec_file"
	case KindRestart:
		return "restart"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// HasResponse reports whether the engine answers queries of this kind.
func (k QueryKind) HasResponse() bool {
	return k == KindExecute || k == KindExecFile
}

// Query is one request to the engine.
type Query struct {
	ID   string
	Kind QueryKind
	// Code is source for KindExecute and a file path for KindExecFile.
	Code string
}

func Execute(code string) Query {
	return Query{ID: uuid.NewString(), Kind: KindExecute, Code: code}
}

func ExecFile(path string) Query {
	return Query{ID: uuid.NewString(), Kind: KindExecFile, Code: path}
}

func Restart() Query {
	return Query{ID: uuid.NewString(), Kind: KindRestart}
}

// Response is the engine's answer to a single query. Err carries evaluation
// failures (syntax or runtime errors); transport failures are returned by
// Pending.Await instead.
type Response struct {
	QueryID string
	Output  string
	Values  []string
	Err     error
}

func (r Response) OK() bool { return r.Err == nil }
