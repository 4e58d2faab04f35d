package types

// TestUnit is one runnable test. It carries identity only; fixture
// data lives on the Context of the container that owns the unit.
type TestUnit struct {
	ID   string
	Name string
}

// Context is the shared-setup scope attached to a container suite
// (module, class or package level in the host framework). Fixtures is
// the ordered set of fixture identifiers the scope depends on.
// HasSetup/HasTeardown describe what the scope is capable of;
// ShouldSetupFixtures/ShouldTeardownFixtures are advisory flags the
// reorderer writes and the host's execution engine reads. Both
// advisory flags default to true.
type Context struct {
	Name     string
	Fixtures []string

	HasSetup    bool
	HasTeardown bool

	ShouldSetupFixtures    bool
	ShouldTeardownFixtures bool
}

// NewContext creates a Context with both advisory flags set to true.
func NewContext(name string, fixtures ...string) *Context {
	return &Context{
		Name:                   name,
		Fixtures:               fixtures,
		ShouldSetupFixtures:    true,
		ShouldTeardownFixtures: true,
	}
}

// Suite is a recursive tree node: either a container with ordered
// children and an optional Context, or a leaf wrapping a TestUnit.
type Suite struct {
	Name     string
	Context  *Context
	Children []*Suite
	Unit     *TestUnit
}

// NewContainer creates a container suite over the given children.
func NewContainer(name string, children ...*Suite) *Suite {
	return &Suite{Name: name, Children: children}
}

// NewTest creates a leaf suite wrapping a single test unit.
func NewTest(id, name string) *Suite {
	return &Suite{Name: name, Unit: &TestUnit{ID: id, Name: name}}
}

// IsLeaf reports whether the node is a test unit or a childless node.
func (s *Suite) IsLeaf() bool {
	return s.Unit != nil || len(s.Children) == 0
}

// HasFixtureScope reports whether this node owns shared setup or
// teardown responsibility. Nodes without a Context never do.
func (s *Suite) HasFixtureScope() bool {
	return s.Context != nil && (s.Context.HasSetup || s.Context.HasTeardown)
}

// Fixtures returns the fixture identifiers of the node's Context, or
// nil when no Context is attached.
func (s *Suite) Fixtures() []string {
	if s.Context == nil {
		return nil
	}
	return s.Context.Fixtures
}

// SetSetupFlag advises the node's scope whether to set up its
// fixtures. A node without a Context ignores the advice and the host
// falls back to its always-setup default.
func (s *Suite) SetSetupFlag(v bool) {
	if s.Context != nil {
		s.Context.ShouldSetupFixtures = v
	}
}

// SetTeardownFlag advises the node's scope whether to tear down its
// fixtures. A node without a Context ignores the advice.
func (s *Suite) SetTeardownFlag(v bool) {
	if s.Context != nil {
		s.Context.ShouldTeardownFixtures = v
	}
}

// CountTestUnits walks the tree and counts terminal test units.
// Childless containers count as a single unit, matching what the
// execution engine will eventually run.
func (s *Suite) CountTestUnits() int {
	if s == nil {
		return 0
	}
	if s.IsLeaf() {
		return 1
	}
	n := 0
	for _, child := range s.Children {
		n += child.CountTestUnits()
	}
	return n
}

// TestUnits returns the terminal units in execution order.
func (s *Suite) TestUnits() []*Suite {
	if s == nil {
		return nil
	}
	if s.IsLeaf() {
		return []*Suite{s}
	}
	var units []*Suite
	for _, child := range s.Children {
		units = append(units, child.TestUnits()...)
	}
	return units
}
