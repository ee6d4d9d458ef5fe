// Package resilience groups the fault tolerance helpers used by the provider
// clients. Calls are never retried: a failed provider simply contributes an
// empty result, and the circuit breaker keeps a provider that is down from
// slowing every aggregated request.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.ProviderConfig("guardian"))
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callProvider()
//	})
package resilience
