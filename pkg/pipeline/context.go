package pipeline

import "reflect"

// Logger is the opaque logging capability attached to a Context. The core
// never inspects it beyond passing the reference through; see
// internal/logging for the concrete zerolog-backed implementation.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(err error, msg string, fields ...any)
	With(fields ...any) Logger
}

// Context is the typed carrier flowing through a Pipeline. It is generic
// over the consumer's application-config type C, which the core never
// inspects.
type Context[C any] struct {
	AppConfig C
	Logger    Logger

	Results map[string]any
	Errors  []error

	tracker       *ProgressTracker
	currentStepID string
}

// NewContext constructs a fresh Context. Results and Errors start empty;
// the progress tracker is attached by Pipeline.Run, not by the caller.
func NewContext[C any](appConfig C, logger Logger) *Context[C] {
	return &Context[C]{
		AppConfig: appConfig,
		Logger:    logger,
		Results:   make(map[string]any),
		Errors:    nil,
	}
}

// UpdateStepProgress reports progress (0-100, clamped) for whichever step is
// currently executing on this context copy. It is a no-op if the tracker or
// the current step id is unset, matching the spec's contract for contexts
// reached outside of a step's Run.
func (c *Context[C]) UpdateStepProgress(percent float64) {
	if c == nil || c.tracker == nil || c.currentStepID == "" {
		return
	}
	c.tracker.updateStepProgress(c.currentStepID, percent)
}

// Clone returns a deep copy of Results and Errors. The progress tracker
// reference is shared, never duplicated, matching the invariant that every
// copy of a Context made for a given Pipeline.Run carries the same tracker
// identity. AppConfig and Logger are copied by value/reference as-is since
// the core treats both as opaque and, in AppConfig's case, cannot
// reflectively deep-copy an arbitrary generic type without the caller's
// cooperation.
func (c *Context[C]) Clone() *Context[C] {
	clone := &Context[C]{
		AppConfig:     c.AppConfig,
		Logger:        c.Logger,
		Results:       deepCopyResults(c.Results),
		Errors:        append([]error(nil), c.Errors...),
		tracker:       c.tracker,
		currentStepID: c.currentStepID,
	}
	return clone
}

func deepCopyResults(m map[string]any) map[string]any {
	if m == nil {
		return make(map[string]any)
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

// deepCopyValue duplicates a results value one or more levels deep for the
// common dynamic shapes (slices and maps); anything else is passed through
// by value/reference, matching the merge table's "opaque" bucket.
func deepCopyValue(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(reflect.ValueOf(deepCopyValue(rv.Index(i).Interface())))
		}
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), reflect.ValueOf(deepCopyValue(iter.Value().Interface())))
		}
		return out.Interface()
	default:
		return v
	}
}
