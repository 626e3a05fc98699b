// Package scope provides Container, a hierarchical [lang.Scope].
//
// A container declares variables, callables and child containers. An
// expression bound to a container reads its variables directly and
// reaches everything else (names of the parent, or of child containers)
// through [Container.Get], [Container.Set] and [Container.Invoke]:
//
//	root := scope.New("root")
//	_ = root.Declare("gear", 4)
//
//	comp := scope.New("comp")
//	_ = root.Add(comp)
//	_ = comp.Declare("velocity", 10)
//
//	e, _ := lang.New(ctx, "velocity * gear", lang.Weak(comp))
//	v, _ := e.Evaluate(ctx) // 40
//
// Trees can also be read from YAML with [Load].
package scope
