package prefixcache

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidKey is returned for an empty key before any store call.
	ErrInvalidKey = errors.New("prefixcache: key must not be empty")

	// ErrRetrieverRateLimited is returned when the retriever rate limit
	// rejects a miss-path invocation.
	ErrRetrieverRateLimited = errors.New("prefixcache: retriever rate limited")

	// ErrRetrieverCircuitOpen is returned while the retriever circuit
	// breaker is open.
	ErrRetrieverCircuitOpen = errors.New("prefixcache: retriever circuit open")
)

// PrefixRemovalError aggregates store delete failures from RemoveByPrefix.
// The operation keeps going past individual failures so one bad key does not
// leave the rest of the scope populated.
type PrefixRemovalError struct {
	PrefixKey string
	KeyErrs   map[string]error // composed key -> delete error
	PrefixErr error            // deleting the prefix entry itself
}

func (e *PrefixRemovalError) record(key string, err error) {
	if e.KeyErrs == nil {
		e.KeyErrs = make(map[string]error)
	}
	e.KeyErrs[key] = err
}

func (e *PrefixRemovalError) failed() bool {
	return len(e.KeyErrs) > 0 || e.PrefixErr != nil
}

func (e *PrefixRemovalError) Error() string {
	switch {
	case len(e.KeyErrs) > 0 && e.PrefixErr != nil:
		return fmt.Sprintf("remove by prefix %q: %d member delete(s) failed; prefix entry delete failed: %v",
			e.PrefixKey, len(e.KeyErrs), e.PrefixErr)
	case len(e.KeyErrs) > 0:
		return fmt.Sprintf("remove by prefix %q: %d member delete(s) failed", e.PrefixKey, len(e.KeyErrs))
	case e.PrefixErr != nil:
		return fmt.Sprintf("remove by prefix %q: prefix entry delete failed: %v", e.PrefixKey, e.PrefixErr)
	default:
		return fmt.Sprintf("remove by prefix %q: unknown error", e.PrefixKey)
	}
}

func (e *PrefixRemovalError) Unwrap() []error {
	keys := make([]string, 0, len(e.KeyErrs))
	for k := range e.KeyErrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	errs := make([]error, 0, len(keys)+1)
	for _, k := range keys {
		errs = append(errs, e.KeyErrs[k])
	}
	if e.PrefixErr != nil {
		errs = append(errs, e.PrefixErr)
	}
	return errs
}
