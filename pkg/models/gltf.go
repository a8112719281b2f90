package models

import (
	"fmt"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/marionette/pkg/math3d"
	"github.com/taigrr/marionette/pkg/scene"
)

// SceneRootName names the node inserted above a glTF scene with several roots.
const SceneRootName = "scene_root"

// ImportGLTF reads a .gltf or .glb file into a scene graph.
func ImportGLTF(path string) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w: %w", scene.ErrNoScene, err)
	}
	return ImportDocument(doc)
}

// ImportDocument converts a decoded glTF document. Each mesh primitive
// becomes one scene mesh attached to the node that instances it, and a skin
// becomes per-bone weight records whose offsets are the inverse bind
// matrices. Animation times are kept in seconds. A document that is not a
// tree or holds an out-of-range index fails with an error wrapping
// scene.ErrNoScene.
func ImportDocument(doc *gltf.Document) (*scene.Scene, error) {
	if doc == nil || len(doc.Nodes) == 0 {
		return nil, scene.ErrNoScene
	}

	s := &scene.Scene{Materials: importMaterials(doc)}

	nodes := make([]*scene.Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		nodes[i] = &scene.Node{
			Name:      nodeName(doc, i),
			Transform: nodeTransform(gn),
		}
	}

	hasParent := make([]bool, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < 0 || c >= len(nodes) {
				return nil, fmt.Errorf("%w: node %d: child %d out of range", scene.ErrNoScene, i, c)
			}
			if hasParent[c] {
				return nil, fmt.Errorf("%w: node %d has more than one parent", scene.ErrNoScene, c)
			}
			nodes[i].Children = append(nodes[i].Children, nodes[c])
			hasParent[c] = true
		}
	}

	for i, gn := range doc.Nodes {
		if gn.Mesh == nil {
			continue
		}
		meshes, err := importMesh(doc, gn)
		if err != nil {
			return nil, fmt.Errorf("%w: node %q: %w", scene.ErrNoScene, nodes[i].Name, err)
		}
		for _, m := range meshes {
			nodes[i].Meshes = append(nodes[i].Meshes, len(s.Meshes))
			s.Meshes = append(s.Meshes, m)
		}
	}

	roots, err := sceneRoots(doc, hasParent)
	if err != nil {
		return nil, err
	}
	switch len(roots) {
	case 0:
		return nil, scene.ErrNoScene
	case 1:
		s.Root = nodes[roots[0]]
	default:
		s.Root = &scene.Node{Name: SceneRootName, Transform: math3d.Identity()}
		for _, r := range roots {
			s.Root.Children = append(s.Root.Children, nodes[r])
		}
	}

	for i, a := range doc.Animations {
		anim, err := importAnimation(doc, a, i)
		if err != nil {
			return nil, fmt.Errorf("%w: animation %d: %w", scene.ErrNoScene, i, err)
		}
		s.Animations = append(s.Animations, anim)
	}

	return s, nil
}

func nodeName(doc *gltf.Document, i int) string {
	if name := doc.Nodes[i].Name; name != "" {
		return name
	}
	return fmt.Sprintf("node_%d", i)
}

// nodeTransform returns the node's matrix when it has one, else T*R*S.
func nodeTransform(gn *gltf.Node) math3d.Mat4 {
	m := math3d.Mat4(gn.MatrixOrDefault())
	if m != math3d.Identity() {
		return m
	}
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault()
	sc := gn.ScaleOrDefault()
	return math3d.TRS{
		Position: math3d.V3(t[0], t[1], t[2]),
		Rotation: math3d.Q(r[0], r[1], r[2], r[3]).Normalize(),
		Scale:    math3d.V3(sc[0], sc[1], sc[2]),
	}.Mat4()
}

// sceneRoots returns the root nodes of the default scene, falling back to
// every parentless node when the document declares no scenes. Listed roots
// must be parentless and distinct; with at most one parent per node that
// leaves no cycle reachable from a root.
func sceneRoots(doc *gltf.Document, hasParent []bool) ([]int, error) {
	if len(doc.Scenes) == 0 {
		var roots []int
		for i, p := range hasParent {
			if !p {
				roots = append(roots, i)
			}
		}
		return roots, nil
	}

	idx := 0
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		idx = *doc.Scene
	}
	roots := doc.Scenes[idx].Nodes
	listed := make(map[int]bool, len(roots))
	for _, r := range roots {
		switch {
		case r < 0 || r >= len(hasParent):
			return nil, fmt.Errorf("%w: scene root %d out of range", scene.ErrNoScene, r)
		case hasParent[r]:
			return nil, fmt.Errorf("%w: scene root %d has a parent", scene.ErrNoScene, r)
		case listed[r]:
			return nil, fmt.Errorf("%w: scene root %d listed twice", scene.ErrNoScene, r)
		}
		listed[r] = true
	}
	return roots, nil
}

// accessor resolves an accessor index.
func accessor(doc *gltf.Document, i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(doc.Accessors) || doc.Accessors[i] == nil {
		return nil, fmt.Errorf("accessor %d out of range", i)
	}
	return doc.Accessors[i], nil
}

func importMaterials(doc *gltf.Document) []scene.Material {
	out := make([]scene.Material, len(doc.Materials))
	for i, m := range doc.Materials {
		out[i] = scene.Material{Name: m.Name, BaseColor: [4]float64{1, 1, 1, 1}}
		if pbr := m.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
			out[i].BaseColor = *pbr.BaseColorFactor
		}
	}
	return out
}

// importMesh converts every triangle primitive of the node's mesh.
func importMesh(doc *gltf.Document, gn *gltf.Node) ([]*scene.Mesh, error) {
	if *gn.Mesh < 0 || *gn.Mesh >= len(doc.Meshes) || doc.Meshes[*gn.Mesh] == nil {
		return nil, fmt.Errorf("mesh %d out of range", *gn.Mesh)
	}
	gm := doc.Meshes[*gn.Mesh]

	var skin *gltf.Skin
	var offsets []math3d.Mat4
	if gn.Skin != nil {
		if *gn.Skin < 0 || *gn.Skin >= len(doc.Skins) || doc.Skins[*gn.Skin] == nil {
			return nil, fmt.Errorf("skin %d out of range", *gn.Skin)
		}
		skin = doc.Skins[*gn.Skin]
		for _, j := range skin.Joints {
			if j < 0 || j >= len(doc.Nodes) {
				return nil, fmt.Errorf("skin joint %d out of range", j)
			}
		}
		var err error
		if offsets, err = inverseBindMatrices(doc, skin); err != nil {
			return nil, fmt.Errorf("read inverse bind matrices: %w", err)
		}
	}

	var out []*scene.Mesh
	for pi, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Lines and points carry no surface.
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		name := gm.Name
		if len(gm.Primitives) > 1 {
			name = fmt.Sprintf("%s.%d", gm.Name, pi)
		}
		m := &scene.Mesh{Name: name, Material: -1}
		if prim.Material != nil {
			if *prim.Material < 0 || *prim.Material >= len(doc.Materials) {
				return nil, fmt.Errorf("material %d out of range", *prim.Material)
			}
			m.Material = *prim.Material
		}

		acr, err := accessor(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}
		positions, err := modeler.ReadPosition(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}
		m.Positions = make([]math3d.Vec3, len(positions))
		for i, p := range positions {
			m.Positions[i] = math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))
		}

		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			acr, err := accessor(doc, idx)
			if err != nil {
				return nil, fmt.Errorf("read normals: %w", err)
			}
			normals, err := modeler.ReadNormal(doc, acr, nil)
			if err != nil {
				return nil, fmt.Errorf("read normals: %w", err)
			}
			m.Normals = make([]math3d.Vec3, len(normals))
			for i, n := range normals {
				m.Normals[i] = math3d.V3(float64(n[0]), float64(n[1]), float64(n[2]))
			}
		}

		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			acr, err := accessor(doc, idx)
			if err != nil {
				return nil, fmt.Errorf("read uvs: %w", err)
			}
			uvs, err := modeler.ReadTextureCoord(doc, acr, nil)
			if err != nil {
				return nil, fmt.Errorf("read uvs: %w", err)
			}
			m.UVs = make([]math3d.Vec2, len(uvs))
			for i, uv := range uvs {
				m.UVs[i] = math3d.V2(float64(uv[0]), float64(uv[1]))
			}
		}

		if prim.Indices != nil {
			if acr, err = accessor(doc, *prim.Indices); err != nil {
				return nil, fmt.Errorf("read indices: %w", err)
			}
			if m.Indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
				return nil, fmt.Errorf("read indices: %w", err)
			}
			for _, i := range m.Indices {
				if int(i) >= len(m.Positions) {
					return nil, fmt.Errorf("index %d out of range for %d vertices", i, len(m.Positions))
				}
			}
		} else {
			m.Indices = make([]uint32, len(positions))
			for i := range m.Indices {
				m.Indices[i] = uint32(i)
			}
		}

		if skin != nil {
			if m.Bones, err = importWeights(doc, prim, skin, offsets); err != nil {
				return nil, err
			}
		}

		out = append(out, m)
	}
	return out, nil
}

func inverseBindMatrices(doc *gltf.Document, skin *gltf.Skin) ([]math3d.Mat4, error) {
	out := make([]math3d.Mat4, len(skin.Joints))
	for i := range out {
		out[i] = math3d.Identity()
	}
	if skin.InverseBindMatrices == nil {
		return out, nil
	}

	acr, err := accessor(doc, *skin.InverseBindMatrices)
	if err != nil {
		return nil, err
	}
	mats, err := modeler.ReadInverseBindMatrices(doc, acr, nil)
	if err != nil {
		return nil, err
	}
	for i := range min(len(mats), len(out)) {
		for c := range 4 {
			for r := range 4 {
				out[i][c*4+r] = float64(mats[i][c][r])
			}
		}
	}
	return out, nil
}

// importWeights scatters the JOINTS_n/WEIGHTS_n vertex attributes into one
// weight record per joint. Zero weights are dropped.
func importWeights(doc *gltf.Document, prim *gltf.Primitive, skin *gltf.Skin, offsets []math3d.Mat4) ([]scene.BoneWeights, error) {
	records := make([]scene.BoneWeights, len(skin.Joints))
	for j, node := range skin.Joints {
		records[j] = scene.BoneWeights{Name: nodeName(doc, node), Offset: offsets[j]}
	}

	for set := 0; ; set++ {
		jIdx, okJ := prim.Attributes[fmt.Sprintf("JOINTS_%d", set)]
		wIdx, okW := prim.Attributes[fmt.Sprintf("WEIGHTS_%d", set)]
		if !okJ || !okW {
			break
		}
		jAcr, err := accessor(doc, jIdx)
		if err != nil {
			return nil, fmt.Errorf("read joints: %w", err)
		}
		joints, err := modeler.ReadJoints(doc, jAcr, nil)
		if err != nil {
			return nil, fmt.Errorf("read joints: %w", err)
		}
		wAcr, err := accessor(doc, wIdx)
		if err != nil {
			return nil, fmt.Errorf("read weights: %w", err)
		}
		weights, err := modeler.ReadWeights(doc, wAcr, nil)
		if err != nil {
			return nil, fmt.Errorf("read weights: %w", err)
		}

		for v := range min(len(joints), len(weights)) {
			for k := range 4 {
				w := float64(weights[v][k])
				if w <= 0 {
					continue
				}
				j := int(joints[v][k])
				if j >= len(records) {
					return nil, fmt.Errorf("vertex %d: joint %d out of range", v, j)
				}
				records[j].Weights = append(records[j].Weights, scene.VertexWeight{Vertex: v, Weight: w})
			}
		}
	}

	// Joints that influence nothing still make bones.
	return records, nil
}

// importAnimation groups channels by target node. glTF keeps times in
// seconds, so the clip runs at one tick per second.
func importAnimation(doc *gltf.Document, a *gltf.Animation, index int) (*scene.Animation, error) {
	out := &scene.Animation{Name: a.Name, TicksPerSecond: 1}
	if out.Name == "" {
		out.Name = fmt.Sprintf("animation_%d", index)
	}

	byNode := make(map[int]int)
	for ci, ch := range a.Channels {
		if ch.Target.Node == nil {
			continue
		}
		if ch.Target.Path != gltf.TRSTranslation && ch.Target.Path != gltf.TRSRotation && ch.Target.Path != gltf.TRSScale {
			continue
		}
		if ch.Sampler < 0 || ch.Sampler >= len(a.Samplers) {
			return nil, fmt.Errorf("channel %d: sampler %d out of range", ci, ch.Sampler)
		}
		sampler := a.Samplers[ch.Sampler]

		times, err := readFloats(doc, sampler.Input)
		if err != nil {
			return nil, fmt.Errorf("channel %d input: %w", ci, err)
		}
		if n := len(times); n > 0 {
			out.Duration = max(out.Duration, float64(times[n-1]))
		}

		node := *ch.Target.Node
		if node < 0 || node >= len(doc.Nodes) {
			return nil, fmt.Errorf("channel %d: node %d out of range", ci, node)
		}
		slot, ok := byNode[node]
		if !ok {
			slot = len(out.Channels)
			byNode[node] = slot
			out.Channels = append(out.Channels, scene.NodeChannel{NodeName: nodeName(doc, node)})
		}
		nc := &out.Channels[slot]

		values, err := readVectors(doc, sampler.Output)
		if err != nil {
			return nil, fmt.Errorf("channel %d output: %w", ci, err)
		}
		if sampler.Interpolation == gltf.InterpolationCubicSpline {
			values = splineValues(values)
		}
		if len(values) < len(times) {
			return nil, fmt.Errorf("channel %d: %d values for %d keys", ci, len(values), len(times))
		}

		for i, t := range times {
			v := values[i]
			switch ch.Target.Path {
			case gltf.TRSTranslation:
				nc.PositionKeys = append(nc.PositionKeys, scene.VectorKey{Time: float64(t), Value: math3d.V3(v[0], v[1], v[2])})
			case gltf.TRSScale:
				nc.ScaleKeys = append(nc.ScaleKeys, scene.VectorKey{Time: float64(t), Value: math3d.V3(v[0], v[1], v[2])})
			case gltf.TRSRotation:
				nc.RotationKeys = append(nc.RotationKeys, scene.QuatKey{Time: float64(t), Value: math3d.Q(v[0], v[1], v[2], v[3]).Normalize()})
			}
		}
	}
	return out, nil
}

// splineValues keeps the value of each (in-tangent, value, out-tangent)
// triple.
func splineValues(v [][4]float64) [][4]float64 {
	out := make([][4]float64, 0, len(v)/3)
	for i := 1; i < len(v); i += 3 {
		out = append(out, v[i])
	}
	return out
}

func readFloats(doc *gltf.Document, index int) ([]float32, error) {
	acr, err := accessor(doc, index)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return nil, err
	}
	f, ok := data.([]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type %T for SCALAR", data)
	}
	return f, nil
}

// readVectors reads VEC3 or VEC4 output data. Normalized integer rotations
// are mapped back to [-1, 1].
func readVectors(doc *gltf.Document, index int) ([][4]float64, error) {
	acr, err := accessor(doc, index)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return nil, err
	}

	switch d := data.(type) {
	case [][3]float32:
		out := make([][4]float64, len(d))
		for i, v := range d {
			out[i] = [4]float64{float64(v[0]), float64(v[1]), float64(v[2]), 0}
		}
		return out, nil
	case [][4]float32:
		return convert4(d, func(c float32) float64 { return float64(c) }), nil
	case [][4]int8:
		return convert4(d, func(c int8) float64 { return math.Max(float64(c)/127, -1) }), nil
	case [][4]uint8:
		return convert4(d, func(c uint8) float64 { return float64(c) / 255 }), nil
	case [][4]int16:
		return convert4(d, func(c int16) float64 { return math.Max(float64(c)/32767, -1) }), nil
	case [][4]uint16:
		return convert4(d, func(c uint16) float64 { return float64(c) / 65535 }), nil
	default:
		return nil, fmt.Errorf("unexpected data type %T for animation output", data)
	}
}

func convert4[T any](in [][4]T, f func(T) float64) [][4]float64 {
	out := make([][4]float64, len(in))
	for i, v := range in {
		out[i] = [4]float64{f(v[0]), f(v[1]), f(v[2]), f(v[3])}
	}
	return out
}
