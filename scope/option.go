package scope

import "github.com/ardnew/scopexpr/log"

// Option configures a [Container].
type Option func(*Container)

// WithLogger sets the logger that receives warnings from the container.
// Children added with [Container.Add] inherit it unless they have their own.
func WithLogger(logger log.Logger) Option {
	return func(c *Container) { c.logger = logger }
}

// WithParent links the container to p for name resolution without declaring
// it in p. Use [Container.Add] to make a child reachable from its parent.
func WithParent(p *Container) Option {
	return func(c *Container) { c.parent = p }
}
