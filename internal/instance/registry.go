package instance

import "fmt"

// Registry is the ordered, name-keyed set of declared instances. It is
// rebuilt from the declaration on every run and never persisted.
type Registry struct {
	order  []*ServerInstance
	byName map[string]*ServerInstance
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*ServerInstance)}
}

func (r *Registry) Add(inst *ServerInstance) error {
	if _, exists := r.byName[inst.Name]; exists {
		return fmt.Errorf("duplicate instance name %q", inst.Name)
	}
	r.byName[inst.Name] = inst
	r.order = append(r.order, inst)
	return nil
}

func (r *Registry) Get(name string) (*ServerInstance, bool) {
	inst, ok := r.byName[name]
	return inst, ok
}

// All returns every instance in declaration order.
func (r *Registry) All() []*ServerInstance {
	return r.order
}

// Enabled returns the enabled instances in declaration order. This is the
// aggregate view the port validator runs over.
func (r *Registry) Enabled() []*ServerInstance {
	var out []*ServerInstance
	for _, inst := range r.order {
		if inst.Enabled {
			out = append(out, inst)
		}
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.order)
}
