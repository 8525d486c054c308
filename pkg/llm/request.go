// Package llm provides the wire representations of the archive backend's
// requests and responses.
package llm

// QueryRequest is the JSON body POSTed to /query.
type QueryRequest struct {
	Prompt string `json:"prompt"`
}
