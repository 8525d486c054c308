package llm

// Response is the JSON body returned by /start and /query.
// An empty Response is treated as a malformed body by the client.
type Response struct {
	Response string `json:"response"`
}
