// Package ui renders suite trees for the list/preview mode.
package ui

import (
	"fmt"
	"strings"

	"github.com/testinfra/progressive/types"
)

// Tree hierarchy symbols using box drawing characters
const (
	TreeBranch     = "├── " // Branch connector
	TreeLastBranch = "└── " // Last branch connector
	TreeContinue   = "│   " // Parent has more siblings
	TreeIndent     = "    " // Parent was last, no vertical line needed
)

// RenderSuite pretty-prints a suite tree, annotating fixture-bearing
// scopes with their fixture sets and the setup/teardown advice the
// reorderer wrote.
func RenderSuite(root *types.Suite) string {
	if root == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(root.Name + "\n")
	renderChildren(&b, root.Children, nil)
	return b.String()
}

func renderChildren(b *strings.Builder, children []*types.Suite, parentIsLast []bool) {
	for i, child := range children {
		last := i == len(children)-1
		connector := TreeBranch
		if last {
			connector = TreeLastBranch
		}
		b.WriteString(buildPrefix(parentIsLast) + connector + label(child) + "\n")
		renderChildren(b, child.Children, append(parentIsLast, last))
	}
}

// buildPrefix generates the indentation for one row from the
// positions of its ancestors.
func buildPrefix(parentIsLast []bool) string {
	var prefix strings.Builder
	for _, isLast := range parentIsLast {
		if isLast {
			prefix.WriteString(TreeIndent)
		} else {
			prefix.WriteString(TreeContinue)
		}
	}
	return prefix.String()
}

func label(s *types.Suite) string {
	c := s.Context
	if c == nil || len(c.Fixtures) == 0 {
		return s.Name
	}
	var marks []string
	if c.ShouldSetupFixtures {
		marks = append(marks, "setup")
	}
	if c.ShouldTeardownFixtures {
		marks = append(marks, "teardown")
	}
	suffix := ""
	if len(marks) > 0 {
		suffix = " <" + strings.Join(marks, ",") + ">"
	}
	return fmt.Sprintf("%s [%s]%s", s.Name, strings.Join(c.Fixtures, ", "), suffix)
}
