package prefixcache

// Envelope is the uniform result of every read operation. HasValue reports
// whether the key was present; when false, Value is V's zero value. Callers
// never see a separate "not found" signal.
type Envelope[V any] struct {
	Value    V
	HasValue bool
}

// Hit wraps a present value. The zero Envelope is the miss.
func Hit[V any](v V) Envelope[V] {
	return Envelope[V]{Value: v, HasValue: true}
}
