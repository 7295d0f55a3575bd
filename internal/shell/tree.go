package shell

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/brettbedarf/memfs/fspath"
	"github.com/brettbedarf/memfs/provider"
)

var (
	dirStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	fileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	enumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type treeLevel struct {
	path fspath.Path
	t    *tree.Tree
}

// RenderTree draws the subtree at uri with every directory listing its
// children by name.
func RenderTree(p *provider.Provider, uri provider.URI) (string, error) {
	var (
		leaf  string
		stack []treeLevel // open directories from the walk root down
	)
	err := p.Walk(uri, func(u provider.URI, st provider.FileStat) error {
		for len(stack) > 0 && !stack[len(stack)-1].path.Equal(u.Path.Parent()) {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			if st.Type != provider.Directory {
				leaf = fileStyle.Render(u.String())
				return nil
			}
			stack = append(stack, treeLevel{path: u.Path, t: newTree().Root(dirStyle.Render(u.String()))})
			return nil
		}

		parent := stack[len(stack)-1].t
		if st.Type != provider.Directory {
			parent.Child(fileStyle.Render(u.Path.Base()))
			return nil
		}
		sub := newTree().Root(dirStyle.Render(u.Path.Base() + "/"))
		parent.Child(sub)
		stack = append(stack, treeLevel{path: u.Path, t: sub})
		return nil
	})
	if err != nil {
		return "", err
	}
	if len(stack) == 0 {
		return leaf, nil
	}
	return stack[0].t.String(), nil
}

func newTree() *tree.Tree {
	return tree.New().
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumStyle)
}
