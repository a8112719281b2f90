package main

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/tree"
	"github.com/spf13/cobra"
	"github.com/taigrr/marionette/pkg/models"
	"github.com/taigrr/marionette/pkg/scene"
	"github.com/taigrr/marionette/pkg/skeleton"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FFFFF"))
	enumStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	boneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFDC00"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <model.gltf|model.glb>",
		Short: "Print a model's node tree, skeleton and clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadModel(args[0])
			if err != nil {
				return err
			}
			inspect(cmd.OutOrStdout(), m)
			return nil
		},
	}
}

// inspect writes the report for m to w.
func inspect(w io.Writer, m *models.Model) {
	fmt.Fprintln(w, headingStyle.Render("Nodes"))
	fmt.Fprintln(w, nodeTree(m.Scene.Root, m.Skeleton))
	fmt.Fprintln(w)

	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Skeleton (%d bones)", m.Skeleton.Len())))
	fmt.Fprintln(w, boneTree(m.Skeleton))
	if len(m.Skeleton.Duplicates) > 0 {
		fmt.Fprintln(w, dimStyle.Render("duplicate names: "+strings.Join(m.Skeleton.Duplicates, ", ")))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, headingStyle.Render("Meshes"))
	for _, mesh := range m.Meshes {
		mat := "none"
		if mt := m.Material(mesh.Material); mt != nil {
			mat = mt.Name
		}
		fmt.Fprintf(w, "  %s: %d triangles, material %s\n", mesh.Name, mesh.TriangleCount(), mat)
	}
	if !m.Bounds.Empty() {
		fmt.Fprintf(w, "  bounds %v .. %v\n", m.Bounds.Min(), m.Bounds.Max())
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, headingStyle.Render("Clip"))
	fmt.Fprintln(w, clipSummary(m))
}

// nodeTree renders the imported hierarchy, marking nodes that became bones.
// Leaves are plain labels; inner nodes get their own subtree.
func nodeTree(root *scene.Node, skel *skeleton.Skeleton) *tree.Tree {
	subtree := func(n *scene.Node) *tree.Tree {
		return tree.Root(nodeLabel(n, skel)).
			Enumerator(tree.RoundedEnumerator).
			EnumeratorStyle(enumStyle)
	}

	top := subtree(root)
	inner := map[*scene.Node]*tree.Tree{root: top}
	scene.Walk(root, func(v scene.Visit) bool {
		if v.Parent == nil {
			return true
		}
		parent := inner[v.Parent]
		if len(v.Node.Children) == 0 {
			parent.Child(nodeLabel(v.Node, skel))
			return true
		}
		t := subtree(v.Node)
		inner[v.Node] = t
		parent.Child(t)
		return true
	})
	return top
}

func nodeLabel(n *scene.Node, skel *skeleton.Skeleton) string {
	label := n.Name
	if label == "" {
		// An empty tree value would be merged into its previous sibling.
		label = "(unnamed)"
	}
	if id, ok := skel.Lookup(n.Name); ok {
		label += " " + boneStyle.Render(fmt.Sprintf("[bone %d]", id))
	}
	if len(n.Meshes) > 0 {
		label += " " + dimStyle.Render(fmt.Sprintf("(%d meshes)", len(n.Meshes)))
	}
	return label
}

// boneTree renders the reduced skeleton by ID.
func boneTree(skel *skeleton.Skeleton) *tree.Tree {
	nodes := make([]*tree.Tree, skel.Len())
	for i, b := range skel.Bones {
		label := fmt.Sprintf("%d %s", b.ID, b.Name)
		if b.ID == skeleton.Root {
			label = "0 (root)"
		}
		if b.Skinned {
			label += " " + boneStyle.Render("skinned")
		}
		nodes[i] = tree.Root(label).
			Enumerator(tree.RoundedEnumerator).
			EnumeratorStyle(enumStyle)
		if b.Parent != skeleton.NoParent {
			// Parents always precede their children.
			nodes[b.Parent].Child(nodes[i])
		}
	}
	for _, e := range skel.Ends {
		nodes[e.Bone].Child(dimStyle.Render(fmt.Sprintf("end %v", e.Offset)))
	}
	return nodes[skeleton.Root]
}

// clipSummary describes the model's clip.
func clipSummary(m *models.Model) string {
	if m.Clip == nil {
		return "  none (bind pose)"
	}
	c := m.Clip
	anim := m.Animator()
	var b strings.Builder
	fmt.Fprintf(&b, "  %s: %g ticks at %g ticks/s (%.2fs), %d tracks", c.Name, c.Duration, anim.Rate, anim.Period(), len(c.Channels))
	if len(c.Skipped) > 0 {
		fmt.Fprintf(&b, "\n  skipped: %s", strings.Join(c.Skipped, ", "))
	}
	return b.String()
}
