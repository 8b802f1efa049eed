package directory

import "github.com/rotisserie/eris"

// Registry maps directory names to their implementations, preserving
// registration order so runs iterate directories deterministically.
type Registry struct {
	dirs  map[string]Directory
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{dirs: make(map[string]Directory)}
}

// Register adds a directory to the registry.
func (r *Registry) Register(d Directory) {
	name := d.Name()
	if _, ok := r.dirs[name]; !ok {
		r.order = append(r.order, name)
	}
	r.dirs[name] = d
}

// Get returns a directory by name.
func (r *Registry) Get(name string) (Directory, error) {
	d, ok := r.dirs[name]
	if !ok {
		return nil, eris.Errorf("directory: unknown directory %q", name)
	}
	return d, nil
}

// All returns every registered directory in registration order.
func (r *Registry) All() []Directory {
	out := make([]Directory, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.dirs[name])
	}
	return out
}

// ForURL returns the registered directory whose profile URLs match url.
func (r *Registry) ForURL(url string) (Directory, bool) {
	for _, name := range r.order {
		if r.dirs[name].Match(url) {
			return r.dirs[name], true
		}
	}
	return nil, false
}
