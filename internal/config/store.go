package config

// Store provides indexed lookups over a validated Config. Lookups return an
// explicit found flag instead of nil pointers so callers must handle
// absence before dereferencing.
type Store struct {
	agents  map[string]*AgentConfig
	llms    map[string]*LLMConfig
	servers map[string]*ServerConfig
}

// NewStore indexes a validated configuration.
func NewStore(cfg *Config) *Store {
	s := &Store{
		agents:  make(map[string]*AgentConfig, len(cfg.Agents)),
		llms:    make(map[string]*LLMConfig, len(cfg.LLMs)),
		servers: make(map[string]*ServerConfig, len(cfg.MCPServers)),
	}
	for _, a := range cfg.Agents {
		s.agents[a.Name] = a
	}
	for _, l := range cfg.LLMs {
		s.llms[l.Name] = l
	}
	for _, srv := range cfg.MCPServers {
		s.servers[srv.Name] = srv
	}
	return s
}

// Agent returns the named agent config and whether it exists.
func (s *Store) Agent(name string) (*AgentConfig, bool) {
	a, ok := s.agents[name]
	return a, ok
}

// LLM returns the named LLM config and whether it exists.
func (s *Store) LLM(name string) (*LLMConfig, bool) {
	l, ok := s.llms[name]
	return l, ok
}

// Server returns the named MCP server config and whether it exists.
func (s *Store) Server(name string) (*ServerConfig, bool) {
	srv, ok := s.servers[name]
	return srv, ok
}

// AgentNames lists the configured agent names.
func (s *Store) AgentNames() []string {
	names := make([]string, 0, len(s.agents))
	for name := range s.agents {
		names = append(names, name)
	}
	return names
}
