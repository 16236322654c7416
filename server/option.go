package server

type Option func(s *Server)

// WithPort sets the port the server will listen on.
func WithPort(port string) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithCORS enables cross-origin resource sharing on all endpoints.
func WithCORS() Option {
	return func(s *Server) {
		s.withCORS = true
	}
}
