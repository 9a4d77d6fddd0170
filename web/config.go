package web

// Config is the web server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// Endpoint is shown in the page footer so users know where questions go.
	Endpoint string
}
