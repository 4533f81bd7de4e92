package websocket

// connectionRegistry is the set of live clients keyed by id. It has no lock
// of its own; the Hub guards it together with the room index.
type connectionRegistry struct {
	clients map[string]*Client
}

func newConnectionRegistry() *connectionRegistry {
	return &connectionRegistry{clients: make(map[string]*Client)}
}

func (r *connectionRegistry) add(c *Client) {
	r.clients[c.id] = c
}

// remove deletes id and returns the client that was registered under it.
func (r *connectionRegistry) remove(id string) (*Client, bool) {
	c, ok := r.clients[id]
	if ok {
		delete(r.clients, id)
	}
	return c, ok
}

func (r *connectionRegistry) get(id string) (*Client, bool) {
	c, ok := r.clients[id]
	return c, ok
}

func (r *connectionRegistry) snapshot() []*Client {
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

func (r *connectionRegistry) len() int {
	return len(r.clients)
}
