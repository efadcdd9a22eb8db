package logging

import "github.com/kestrelrun/taskpipe/pkg/pipeline"

// NoOp discards every log entry. Useful in tests and for steps run without
// a configured logger.
type NoOp struct{}

var _ pipeline.Logger = NoOp{}

func (NoOp) Debug(string, ...any)        {}
func (NoOp) Info(string, ...any)         {}
func (NoOp) Warn(string, ...any)         {}
func (NoOp) Error(error, string, ...any) {}
func (n NoOp) With(...any) pipeline.Logger { return n }
