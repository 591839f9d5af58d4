package pg

import (
	"fmt"
	"sort"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

// Registry maps provider codes to clients. It is built once at startup and
// only read afterwards.
type Registry struct {
	clients map[model.ProviderCode]Client
}

func NewRegistry(clients ...Client) (*Registry, error) {
	m := make(map[model.ProviderCode]Client, len(clients))
	for _, c := range clients {
		code := c.Code()
		if _, dup := m[code]; dup {
			return nil, fmt.Errorf("duplicate client for gateway %s", code)
		}
		m[code] = c
	}
	return &Registry{clients: m}, nil
}

func (r *Registry) Client(code model.ProviderCode) (Client, bool) {
	c, ok := r.clients[code]
	return c, ok
}

func (r *Registry) Codes() []model.ProviderCode {
	codes := make([]model.ProviderCode, 0, len(r.clients))
	for code := range r.clients {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
