// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

// AuthMetrics records authentication outcomes. Outcome labels are short,
// fixed strings (e.g. "success", "weak_password") and never contain user input.
type AuthMetrics interface {
	ObserveRegistration(outcome string)
	ObserveLogin(outcome string)
	ObserveEmail(template, outcome string)
}

// NopAuthMetrics discards all observations.
type NopAuthMetrics struct{}

func (NopAuthMetrics) ObserveRegistration(string)  {}
func (NopAuthMetrics) ObserveLogin(string)         {}
func (NopAuthMetrics) ObserveEmail(string, string) {}
