package skeleton

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/taigrr/marionette/pkg/math3d"
	"github.com/taigrr/marionette/pkg/scene"
)

// CollectOffsets gathers the bind offset of every skinned bone in s. A mesh's
// weight records are expressed in the space of the node that references the
// mesh, so each offset is post-multiplied by the inverse of that node's
// global transform. When several meshes name the same bone the last one
// visited wins.
func CollectOffsets(s *scene.Scene) map[string]math3d.Mat4 {
	offsets := make(map[string]math3d.Mat4)
	if s == nil {
		return offsets
	}

	scene.Walk(s.Root, func(v scene.Visit) bool {
		if len(v.Node.Meshes) == 0 {
			return true
		}
		inv := v.Global.Inverse()
		for _, mi := range v.Node.Meshes {
			if mi < 0 || mi >= len(s.Meshes) {
				continue
			}
			for _, b := range s.Meshes[mi].Bones {
				if b.Name == "" {
					continue
				}
				offsets[b.Name] = b.Offset.Mul(inv)
			}
		}
		return true
	})
	return offsets
}

// record is the per-node state of the reduction pass.
type record struct {
	node     *scene.Node
	parent   int
	depth    int
	included bool
	id       int
}

// Reduce keeps every node that is a skinned bone (its name is a key of
// offsets) or has one below it, and numbers the survivors by depth, then by
// pre-order position. ID 0 is a synthetic identity root and the scene root
// hangs off it. maxBones bounds the result including the synthetic root; zero
// or less disables the check.
func Reduce(root *scene.Node, offsets map[string]math3d.Mat4, maxBones int) (*Skeleton, error) {
	if root == nil {
		return nil, scene.ErrNoScene
	}

	records := flatten(root)

	// Children follow their parent in pre-order, so a reverse sweep sees every
	// descendant before its ancestor.
	for i := len(records) - 1; i >= 0; i-- {
		r := &records[i]
		if _, ok := offsets[r.node.Name]; ok {
			r.included = true
		}
		if r.included && r.parent >= 0 {
			records[r.parent].included = true
		}
	}

	var kept []int
	for i := range records {
		if records[i].included {
			kept = append(kept, i)
		}
	}
	slices.SortStableFunc(kept, func(a, b int) int {
		return cmp.Compare(records[a].depth, records[b].depth)
	})

	if n := len(kept) + 1; maxBones > 0 && n > maxBones {
		return nil, fmt.Errorf("%w: skeleton needs %d bones, limit is %d", ErrResourceExceeded, n, maxBones)
	}

	skel := &Skeleton{
		Bones: make([]Bone, 1, len(kept)+1),
		Names: make(map[string]int, len(kept)),
	}
	skel.Bones[Root] = Bone{
		ID:         Root,
		Parent:     NoParent,
		Depth:      -1,
		Local:      math3d.Identity(),
		LocalTRS:   math3d.IdentityTRS(),
		BindOffset: math3d.Identity(),
	}

	for i, ri := range kept {
		records[ri].id = i + 1
	}

	// Inclusion spreads to every ancestor, so a kept node's scene parent is
	// kept too and its transform is already relative to its bone parent.
	for _, ri := range kept {
		r := records[ri]

		parentID := Root
		if r.parent >= 0 {
			parentID = records[r.parent].id
		}
		local := r.node.Transform

		offset, skinned := offsets[r.node.Name]
		if !skinned {
			offset = math3d.Identity()
		}

		skel.Bones = append(skel.Bones, Bone{
			ID:         r.id,
			Parent:     parentID,
			Name:       r.node.Name,
			Depth:      r.depth,
			Local:      local,
			LocalTRS:   math3d.Decompose(local),
			BindOffset: offset,
			Skinned:    skinned,
		})

		if r.node.Name == "" {
			continue
		}
		if _, dup := skel.Names[r.node.Name]; dup {
			skel.Duplicates = append(skel.Duplicates, r.node.Name)
			continue
		}
		skel.Names[r.node.Name] = r.id
	}

	for _, r := range records {
		if r.included || r.parent < 0 {
			continue
		}
		p := records[r.parent]
		if _, ok := offsets[p.node.Name]; !ok {
			continue
		}
		skel.Ends = append(skel.Ends, BoneEnd{
			Bone:   p.id,
			Offset: r.node.Transform.Translation(),
		})
	}

	return skel, nil
}

// flatten lists the hierarchy in pre-order with parent links, using an
// explicit stack.
func flatten(root *scene.Node) []record {
	type frame struct {
		node   *scene.Node
		parent int
		depth  int
	}

	var records []record
	stack := []frame{{node: root, parent: -1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx := len(records)
		records = append(records, record{
			node:   f.node,
			parent: f.parent,
			depth:  f.depth,
		})

		for i := len(f.node.Children) - 1; i >= 0; i-- {
			child := f.node.Children[i]
			stack = append(stack, frame{
				node:   child,
				parent: idx,
				depth:  f.depth + 1,
			})
		}
	}
	return records
}
