package models

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/taigrr/marionette/pkg/anim"
	"github.com/taigrr/marionette/pkg/math3d"
	"github.com/taigrr/marionette/pkg/pose"
	"github.com/taigrr/marionette/pkg/scene"
	"github.com/taigrr/marionette/pkg/skeleton"
	"github.com/taigrr/marionette/pkg/skin"
)

// DefaultMaxMeshes bounds the number of mesh instances in one model.
const DefaultMaxMeshes = 20

// Model is a loaded, skinned model ready to animate and draw. It is immutable
// after Load returns.
type Model struct {
	Name      string
	Skeleton  *skeleton.Skeleton
	Meshes    []Mesh
	Vertices  []SkinnedVertex
	Indices   []uint32
	Materials []scene.Material

	// Clip is nil when the scene has no usable animation.
	Clip *anim.Clip
	// Rate overrides the clip's playback rate when positive.
	Rate float64

	// Bounds encloses the bind pose.
	Bounds BoundingBox

	// Scene is the imported source, kept for inspection.
	Scene *scene.Scene
}

// Animator returns an animator playing the model's clip.
func (m *Model) Animator() *pose.Animator {
	return pose.NewAnimator(m.Skeleton, m.Clip, m.Rate)
}

// VertexCount returns the number of vertices.
func (m *Model) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Model) TriangleCount() int {
	return len(m.Indices) / 3
}

// Material returns the material at index i, or nil.
func (m *Model) Material(i int) *scene.Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// Loader turns scenes into models.
type Loader struct {
	log       *log.Logger
	maxBones  int
	maxMeshes int
	rate      float64
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger reports load progress to l.
func WithLogger(l *log.Logger) Option {
	return func(ld *Loader) { ld.log = l }
}

// WithMaxBones sets the bone limit, including the synthetic root. Zero
// disables it.
func WithMaxBones(n int) Option {
	return func(ld *Loader) { ld.maxBones = n }
}

// WithMaxMeshes sets the mesh instance limit. Zero disables it.
func WithMaxMeshes(n int) Option {
	return func(ld *Loader) { ld.maxMeshes = n }
}

// WithRate sets the playback rate in ticks per second, overriding the clip.
func WithRate(ticksPerSecond float64) Option {
	return func(ld *Loader) { ld.rate = ticksPerSecond }
}

// NewLoader creates a loader with default limits and a silent logger.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		log:       log.New(io.Discard),
		maxBones:  skeleton.DefaultMaxBones,
		maxMeshes: DefaultMaxMeshes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile imports a glTF or GLB file and loads it.
func (l *Loader) LoadFile(path string) (*Model, error) {
	s, err := ImportGLTF(path)
	if err != nil {
		return nil, err
	}
	return l.Load(filepath.Base(path), s)
}

// Load runs the rig pipeline on s: reduce the skeleton, bind every mesh
// instance, bind the first animation and measure the bind pose. Nothing is
// returned on error.
func (l *Loader) Load(name string, s *scene.Scene) (*Model, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	instances := 0
	scene.Walk(s.Root, func(v scene.Visit) bool {
		instances += len(v.Node.Meshes)
		return true
	})
	if l.maxMeshes > 0 && instances > l.maxMeshes {
		return nil, fmt.Errorf("load %s: %w: %d meshes, limit is %d", name, skeleton.ErrResourceExceeded, instances, l.maxMeshes)
	}

	skel, err := skeleton.Reduce(s.Root, skeleton.CollectOffsets(s), l.maxBones)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	l.log.Debug("skeleton reduced", "model", name, "nodes", scene.Count(s.Root), "bones", skel.Len(), "ends", len(skel.Ends))
	for _, dup := range skel.Duplicates {
		l.log.Warn("duplicate bone name", "model", name, "name", dup)
	}

	m := &Model{
		Name:      name,
		Skeleton:  skel,
		Materials: s.Materials,
		Rate:      l.rate,
		Scene:     s,
	}

	scene.Walk(s.Root, func(v scene.Visit) bool {
		for _, mi := range v.Node.Meshes {
			if mi < 0 || mi >= len(s.Meshes) {
				err = fmt.Errorf("node %q: mesh %d out of range", v.Node.Name, mi)
				return false
			}
			if err = m.addMesh(s.Meshes[mi], v.Global, skel); err != nil {
				err = fmt.Errorf("mesh %q: %w", s.Meshes[mi].Name, err)
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	l.log.Debug("meshes bound", "model", name, "meshes", len(m.Meshes), "vertices", len(m.Vertices), "triangles", m.TriangleCount())

	if len(s.Animations) > 0 {
		clip, err := anim.Bind(s.Animations[0], skel)
		switch {
		case errors.Is(err, anim.ErrDegenerateClip):
			l.log.Warn("animation ignored", "model", name, "err", err)
		case err != nil:
			return nil, fmt.Errorf("load %s: %w", name, err)
		default:
			m.Clip = clip
			for _, track := range clip.Skipped {
				l.log.Debug("track skipped", "model", name, "clip", clip.Name, "node", track)
			}
			l.log.Debug("clip bound", "model", name, "clip", clip.Name, "duration", clip.Duration, "rate", clip.Rate(l.rate))
		}
	}

	m.Bounds = AccumulateBounds(skel, m.Vertices)
	return m, nil
}

// addMesh appends mesh, placed by the global transform of the node that
// holds it, to the model's buffers.
func (m *Model) addMesh(mesh *scene.Mesh, global math3d.Mat4, skel *skeleton.Skeleton) error {
	bindings, err := skin.BindMesh(mesh, skel.Names)
	if err != nil {
		return err
	}

	normals := mesh.Normals
	if len(normals) < len(mesh.Positions) {
		normals = smoothNormals(mesh.Positions, mesh.Indices)
	}
	normalMat := global.NormalMatrix()

	base := uint32(len(m.Vertices))
	for i, p := range mesh.Positions {
		v := SkinnedVertex{
			Position: global.MulVec3(p),
			Normal:   normalMat.MulVec3Dir(normals[i]).Normalize(),
			Bones:    bindings[i].Bones,
			Weights:  bindings[i].Weights,
		}
		if i < len(mesh.UVs) {
			v.UV = mesh.UVs[i]
		}
		m.Vertices = append(m.Vertices, v)
	}

	offset := len(m.Indices)
	for _, idx := range mesh.Indices {
		if int(idx) >= len(mesh.Positions) {
			return fmt.Errorf("index %d out of range", idx)
		}
		m.Indices = append(m.Indices, base+idx)
	}
	// Drop a trailing partial triangle.
	m.Indices = m.Indices[:offset+(len(m.Indices)-offset)/3*3]

	m.Meshes = append(m.Meshes, Mesh{
		Name:     mesh.Name,
		Material: mesh.Material,
		Offset:   offset,
		Count:    len(m.Indices) - offset,
	})
	return nil
}
