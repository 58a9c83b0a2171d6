// Package llm provides model provider adapters for chunk analysis.
package llm

// Usage captures token consumption reported by a provider API call.
type Usage struct {
	TokensIn  int
	TokensOut int
}

// ProviderResponse is the standardized response from a provider client.
// Provider clients return this type so the provider layer above them can
// stay payload-agnostic.
type ProviderResponse struct {
	Model string
	Text  string
	Usage Usage
}
