package web

import (
	"numerai-bot/api/api"
	"numerai-bot/api/validate"
)

// Config holds the configuration for the web server
type Config struct {
	Addr string
	API  *api.API
}

// Server is the HTTP server that answers the gateway requests
type Server struct {
	api *api.API
}

// Envelope is the body of every gateway response. UpstreamStatus is the status the Numerai API answered with,
// and is left out for responses served from the archive
type Envelope struct {
	UpstreamStatus *int             `json:"upstream_status,omitempty"`
	Data           any              `json:"data"`
	Error          string           `json:"error,omitempty"`
	Issues         []validate.Issue `json:"issues,omitempty"`
	Suggestions    []string         `json:"suggestions,omitempty"`
}
