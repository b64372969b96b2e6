// Package resilience provides fault tolerance patterns for upstream model calls.
//
// The relay never retries a failed model; it moves on to the next configured
// model instead. Circuit breakers let that fallback skip a model that has been
// failing consistently without spending a network round trip on it.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.ModelConfig("openai", "gpt-4o-mini"))
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callUpstream()
//	})
package resilience
