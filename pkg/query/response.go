package query

// Response is the JSON body returned by a successful query.
type Response struct {
	SQL        string `json:"sql"`                   // Generated SQL statement
	DDLContext string `json:"ddl_context,omitempty"` // Schema excerpts the server retrieved, if it reports them
}

// wireResponse detects a missing sql field.
type wireResponse struct {
	SQL        *string `json:"sql"`
	DDLContext string  `json:"ddl_context"`
}
