package assets

import "errors"

// Resolver serves assets from a custom directory, falling back to the
// embedded ones for any file the directory lacks.
type Resolver struct {
	layers []Loader // searched in order, embedded last
}

// NewResolver creates a Resolver. An empty customBasePath uses only the
// embedded assets.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{}
	if customBasePath != "" {
		custom, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.layers = append(r.layers, custom)
	}
	r.layers = append(r.layers, NewEmbeddedLoader())
	return r, nil
}

func (r *Resolver) LoadStyle(name string) (string, error) {
	return r.first(func(l Loader) (string, error) { return l.LoadStyle(name) })
}

func (r *Resolver) DocumentTemplate() (string, error) {
	return r.first(Loader.DocumentTemplate)
}

// first returns the first layer's asset. Only not-found errors move on to
// the next layer; invalid names and read failures are returned as is.
func (r *Resolver) first(load func(Loader) (string, error)) (string, error) {
	var err error
	for _, l := range r.layers {
		var content string
		if content, err = load(l); err == nil {
			return content, nil
		}
		if !errors.Is(err, ErrStyleNotFound) && !errors.Is(err, ErrTemplateNotFound) {
			return "", err
		}
	}
	return "", err
}

var _ Loader = (*Resolver)(nil)
