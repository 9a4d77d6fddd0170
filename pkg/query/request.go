// Package query provides the client side of the text-to-SQL endpoint's wire
// contract.
package query

// Request is the body POSTed to the query endpoint.
type Request struct {
	Question string `json:"question"` // Natural-language question
}
