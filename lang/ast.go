package lang

import (
	"strconv"
	"strings"
)

// Node is an element of an expression tree.
//
// The parser produces [Number], [Path], [Unary], [Binary], [Group] and
// [Assign] nodes. Resolution replaces every [Path] with one of [LocalRef],
// [AccessorGet], [AccessorInvoke] or [SetterRef], and every [Assign] target
// with an [AccessorSet].
type Node interface {
	// Offset returns the byte offset of the node in the source text.
	Offset() int

	write(b *strings.Builder)
}

// Render returns the text of n. For resolved trees this is the rewritten
// expression handed to the compiler.
func Render(n Node) string {
	var b strings.Builder

	n.write(&b)

	return b.String()
}

// Number is a numeric literal.
type Number struct {
	Text    string
	Value   float64
	Integer int64 // exact value when Int is set
	Int     bool  // digits only and within int64
	Pos     int
}

func (n *Number) Offset() int { return n.Pos }

func (n *Number) write(b *strings.Builder) {
	if n.Int {
		b.WriteString(strconv.FormatInt(n.Integer, 10))

		return
	}

	s := strconv.FormatFloat(n.Value, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}

	b.WriteString(s)
}

// Path is a dotted name with an optional trailer: one or more index groups,
// or a single argument list.
type Path struct {
	Name    string
	Indices [][]Node
	Args    []Node
	Call    bool
	Pos     int
}

func (n *Path) Offset() int { return n.Pos }

// Head returns the first segment of the dotted name.
func (n *Path) Head() string {
	head, _, _ := strings.Cut(n.Name, ".")

	return head
}

// Segments returns every segment of the dotted name.
func (n *Path) Segments() []string { return strings.Split(n.Name, ".") }

// flatIndices joins all index groups, so a[1][2] and a[1,2] are equivalent.
func (n *Path) flatIndices() []Node {
	var flat []Node
	for _, group := range n.Indices {
		flat = append(flat, group...)
	}

	return flat
}

func (n *Path) write(b *strings.Builder) {
	b.WriteString(n.Name)

	for _, group := range n.Indices {
		b.WriteByte('[')
		writeList(b, group)
		b.WriteByte(']')
	}

	if n.Call {
		b.WriteByte('(')
		writeList(b, n.Args)
		b.WriteByte(')')
	}
}

// Unary is a negation.
type Unary struct {
	X   Node
	Op  string
	Pos int
}

func (n *Unary) Offset() int { return n.Pos }

func (n *Unary) write(b *strings.Builder) {
	b.WriteString(n.Op)
	n.X.write(b)
}

// Binary is an arithmetic operation.
type Binary struct {
	X, Y Node
	Op   string
	Pos  int
}

func (n *Binary) Offset() int { return n.Pos }

func (n *Binary) write(b *strings.Builder) {
	n.X.write(b)
	b.WriteByte(' ')
	b.WriteString(n.Op)
	b.WriteByte(' ')
	n.Y.write(b)
}

// Quotient is a division checked for a zero divisor at run time.
type Quotient struct {
	X, Y Node
	Pos  int
}

func (n *Quotient) Offset() int { return n.Pos }

func (n *Quotient) write(b *strings.Builder) {
	b.WriteString(fnDiv)
	b.WriteByte('(')
	n.X.write(b)
	b.WriteString(", ")
	n.Y.write(b)
	b.WriteByte(')')
}

// Group is a parenthesized expression.
type Group struct {
	X   Node
	Pos int
}

func (n *Group) Offset() int { return n.Pos }

func (n *Group) write(b *strings.Builder) {
	b.WriteByte('(')
	n.X.write(b)
	b.WriteByte(')')
}

// Assign is a top-level assignment.
type Assign struct {
	Target Node
	Value  Node
	Pos    int
}

func (n *Assign) Offset() int { return n.Pos }

func (n *Assign) write(b *strings.Builder) {
	n.Target.write(b)
	b.WriteString(" = ")
	n.Value.write(b)
}

// LocalRef reads a name held directly by the scope.
type LocalRef struct {
	Name    string
	Indices []Node
	Args    []Node
	Call    bool
	Pos     int
}

func (n *LocalRef) Offset() int { return n.Pos }

func (n *LocalRef) write(b *strings.Builder) {
	b.WriteString(n.Name)

	for _, idx := range n.Indices {
		b.WriteByte('[')
		idx.write(b)
		b.WriteByte(']')
	}

	if n.Call {
		b.WriteByte('(')
		writeList(b, n.Args)
		b.WriteByte(')')
	}
}

// Accessor targets.
const (
	refScope  = "__scope"
	refParent = "__parent"
)

// Accessor function names.
const (
	fnGet    = "__get"
	fnSet    = "__set"
	fnInvoke = "__invoke"
	fnDiv    = "__div"
)

// setterName is bound to the assigned value when a single-name expression is
// written through [Expression.Set].
const setterName = "_local_setter"

// rhsPlaceholder marks where the right-hand side is spliced into a set call.
const rhsPlaceholder = "_@RHS@_"

// AccessorGet reads a name through the accessor protocol of Ref.
type AccessorGet struct {
	Ref     string
	Name    string
	Indices []Node
	Pos     int
}

func (n *AccessorGet) Offset() int { return n.Pos }

func (n *AccessorGet) write(b *strings.Builder) {
	writeCall(b, fnGet, n.Ref, n.Name, n.Indices...)
}

// AccessorInvoke calls a name through the accessor protocol of Ref.
type AccessorInvoke struct {
	Ref  string
	Name string
	Args []Node
	Pos  int
}

func (n *AccessorInvoke) Offset() int { return n.Pos }

func (n *AccessorInvoke) write(b *strings.Builder) {
	writeCall(b, fnInvoke, n.Ref, n.Name, n.Args...)
}

// AccessorSet writes Value to a name through the accessor protocol of Ref.
type AccessorSet struct {
	Value   Node
	Ref     string
	Name    string
	Indices []Node
	Pos     int
}

func (n *AccessorSet) Offset() int { return n.Pos }

func (n *AccessorSet) write(b *strings.Builder) {
	writeCall(b, fnSet, n.Ref, n.Name, append([]Node{n.Value}, n.Indices...)...)
}

// SetterRef is the value being assigned by [Expression.Set].
type SetterRef struct{ Pos int }

func (n *SetterRef) Offset() int { return n.Pos }

func (n *SetterRef) write(b *strings.Builder) { b.WriteString(setterName) }

// placeholder stands in for the right-hand side of an assignment until the
// whole expression has been rewritten.
type placeholder struct{}

func (placeholder) Offset() int { return 0 }

func (placeholder) write(b *strings.Builder) { b.WriteString(rhsPlaceholder) }

func writeCall(b *strings.Builder, fn, ref, name string, rest ...Node) {
	b.WriteString(fn)
	b.WriteByte('(')
	b.WriteString(ref)
	b.WriteString(", ")
	b.WriteString(strconv.Quote(name))

	for _, n := range rest {
		b.WriteString(", ")
		n.write(b)
	}

	b.WriteByte(')')
}

func writeList(b *strings.Builder, list []Node) {
	for i, n := range list {
		if i > 0 {
			b.WriteString(", ")
		}

		n.write(b)
	}
}
