package meshsource

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"fur-mask-baker/internal/mathutil"
	"fur-mask-baker/internal/mesh"
)

// LoadGLTF reads a .gltf or .glb file.
func LoadGLTF(path string, opts Options) (*mesh.Snapshot, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "meshsource: open %s", path)
	}
	return FromDocument(doc, opts)
}

// scene caches node hierarchy data for one document.
type scene struct {
	doc     *gltf.Document
	parents []int
	globals []mgl32.Mat4
}

func newScene(doc *gltf.Document) *scene {
	s := &scene{
		doc:     doc,
		parents: make([]int, len(doc.Nodes)),
		globals: make([]mgl32.Mat4, len(doc.Nodes)),
	}
	for i := range s.parents {
		s.parents[i] = -1
	}
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(s.parents) {
				s.parents[c] = i
			}
		}
	}
	done := make([]bool, len(doc.Nodes))
	for i := range doc.Nodes {
		s.global(i, done, 0)
	}
	return s
}

func localMatrix(n *gltf.Node) mgl32.Mat4 {
	if m := n.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return mgl32.Mat4(m)
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	sc := n.ScaleOrDefault()
	q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
	return mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(sc[0], sc[1], sc[2]))
}

// global resolves node i's world matrix; depth guards against cyclic
// hierarchies in malformed files.
func (s *scene) global(i int, done []bool, depth int) mgl32.Mat4 {
	if done[i] {
		return s.globals[i]
	}
	m := localMatrix(s.doc.Nodes[i])
	if p := s.parents[i]; p >= 0 && depth < len(s.doc.Nodes) {
		m = s.global(p, done, depth+1).Mul4(m)
	}
	s.globals[i] = m
	done[i] = true
	return m
}

func nodeName(doc *gltf.Document, i int) string {
	if name := doc.Nodes[i].Name; name != "" {
		return name
	}
	return fmt.Sprintf("node%d", i)
}

// path joins node names from the scene root down to node i.
func (s *scene) path(i int) string {
	var parts []string
	for n, guard := i, 0; n >= 0 && guard <= len(s.parents); n, guard = s.parents[n], guard+1 {
		parts = append(parts, nodeName(s.doc, n))
	}
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	return strings.Join(parts, "/")
}

func findMesh(doc *gltf.Document, name string) (int, error) {
	if len(doc.Meshes) == 0 {
		return 0, errors.New("meshsource: document has no meshes")
	}
	if name == "" {
		return 0, nil
	}
	for i, m := range doc.Meshes {
		if m.Name == name {
			return i, nil
		}
	}
	return 0, errors.Errorf("meshsource: mesh %q not found", name)
}

func meshNode(doc *gltf.Document, mi int) int {
	for i, n := range doc.Nodes {
		if n.Mesh != nil && int(*n.Mesh) == mi {
			return i
		}
	}
	return -1
}

func materialName(doc *gltf.Document, p *gltf.Primitive) string {
	if p.Material == nil {
		return "default"
	}
	i := int(*p.Material)
	if i < len(doc.Materials) && doc.Materials[i].Name != "" {
		return doc.Materials[i].Name
	}
	return fmt.Sprintf("material_%d", i)
}

func accessor(doc *gltf.Document, p *gltf.Primitive, attr string) (*gltf.Accessor, bool) {
	idx, ok := p.Attributes[attr]
	if !ok || int(idx) >= len(doc.Accessors) {
		return nil, false
	}
	return doc.Accessors[idx], true
}

type rawSkin struct {
	joints  [][4]uint16
	weights [][4]float32
}

// FromDocument converts one mesh of doc into a snapshot. Triangle
// primitives become submeshes sharing one vertex space; other primitive
// modes are skipped.
func FromDocument(doc *gltf.Document, opts Options) (*mesh.Snapshot, error) {
	mi, err := findMesh(doc, opts.Mesh)
	if err != nil {
		return nil, err
	}
	gm := doc.Meshes[mi]
	snap := &mesh.Snapshot{Name: gm.Name}
	var positions, normals [][3]float32
	var skin rawSkin
	hasNormals := true
	hasSkin := true

	for pi, p := range gm.Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posAcc, ok := accessor(doc, p, gltf.POSITION)
		if !ok {
			return nil, errors.Errorf("meshsource: mesh %q primitive %d has no POSITION", gm.Name, pi)
		}
		pos, err := modeler.ReadPosition(doc, posAcc, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "meshsource: primitive %d positions", pi)
		}
		base := len(positions)
		n := len(pos)
		positions = append(positions, pos...)

		if acc, ok := accessor(doc, p, gltf.NORMAL); ok && hasNormals {
			nrm, err := modeler.ReadNormal(doc, acc, nil)
			if err != nil {
				return nil, errors.Wrapf(err, "meshsource: primitive %d normals", pi)
			}
			if len(nrm) == n {
				normals = append(normals, nrm...)
			} else {
				hasNormals = false
			}
		} else {
			hasNormals = false
		}

		uvs := make([][2]float64, n)
		if acc, ok := accessor(doc, p, gltf.TEXCOORD_0); ok {
			tc, err := modeler.ReadTextureCoord(doc, acc, nil)
			if err != nil {
				return nil, errors.Wrapf(err, "meshsource: primitive %d uvs", pi)
			}
			for i := 0; i < n && i < len(tc); i++ {
				// glTF texcoords start at the top-left of the image
				uvs[i] = [2]float64{float64(tc[i][0]), 1 - float64(tc[i][1])}
			}
		}
		snap.UVs = append(snap.UVs, uvs...)

		if err := readSkin(doc, p, n, &skin); err != nil {
			return nil, errors.Wrapf(err, "meshsource: primitive %d skin", pi)
		} else if len(skin.joints) != len(positions) {
			hasSkin = false
		}

		var tris []int
		if p.Indices != nil && int(*p.Indices) < len(doc.Accessors) {
			ind, err := modeler.ReadIndices(doc, doc.Accessors[*p.Indices], nil)
			if err != nil {
				return nil, errors.Wrapf(err, "meshsource: primitive %d indices", pi)
			}
			tris = make([]int, len(ind))
			for i, v := range ind {
				tris[i] = base + int(v)
			}
		} else {
			tris = make([]int, n)
			for i := range tris {
				tris[i] = base + i
			}
		}
		snap.Submeshes = append(snap.Submeshes, mesh.Submesh{Triangles: tris, Material: materialName(doc, p)})
	}
	if len(snap.Submeshes) == 0 {
		return nil, errors.Errorf("meshsource: mesh %q has no triangle primitives", gm.Name)
	}

	sc := newScene(doc)
	node := meshNode(doc, mi)
	var gskin *gltf.Skin
	if node >= 0 && doc.Nodes[node].Skin != nil && int(*doc.Nodes[node].Skin) < len(doc.Skins) {
		gskin = doc.Skins[*doc.Nodes[node].Skin]
	}

	switch {
	case gskin != nil && hasSkin && !opts.BindPose:
		jm, err := jointMatrices(doc, sc, gskin)
		if err != nil {
			return nil, err
		}
		skinVertices(positions, normals, hasNormals, skin, jm)
	case node >= 0 && gskin == nil:
		transformVertices(positions, normals, hasNormals, sc.globals[node])
	}

	snap.Positions = make([]mathutil.Vec3, len(positions))
	for i, p := range positions {
		snap.Positions[i] = mathutil.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}
	}
	if hasNormals {
		snap.Normals = make([]mathutil.Vec3, len(normals))
		for i, n := range normals {
			snap.Normals[i] = mathutil.Vec3{float64(n[0]), float64(n[1]), float64(n[2])}.Normalize()
		}
	}
	if gskin != nil && hasSkin {
		snap.Skin = buildSkin(sc, gskin, skin)
	}
	return snap, nil
}

// readSkin appends joint data for n vertices. Primitives without skin
// attributes leave the arrays short, which disables skinning.
func readSkin(doc *gltf.Document, p *gltf.Primitive, n int, out *rawSkin) error {
	jAcc, okJ := accessor(doc, p, gltf.JOINTS_0)
	wAcc, okW := accessor(doc, p, gltf.WEIGHTS_0)
	if !okJ || !okW {
		return nil
	}
	j, err := modeler.ReadJoints(doc, jAcc, nil)
	if err != nil {
		return err
	}
	w, err := modeler.ReadWeights(doc, wAcc, nil)
	if err != nil {
		return err
	}
	if len(j) != n || len(w) != n {
		return errors.Errorf("joint/weight count %d/%d, want %d", len(j), len(w), n)
	}
	out.joints = append(out.joints, j...)
	out.weights = append(out.weights, w...)
	return nil
}

// jointMatrices returns global(joint) · inverseBind for every joint slot.
// A skin without inverse bind matrices uses identity.
func jointMatrices(doc *gltf.Document, sc *scene, skin *gltf.Skin) ([]mgl32.Mat4, error) {
	ibm := make([]mgl32.Mat4, len(skin.Joints))
	for i := range ibm {
		ibm[i] = mgl32.Ident4()
	}
	if skin.InverseBindMatrices != nil && int(*skin.InverseBindMatrices) < len(doc.Accessors) {
		data, err := modeler.ReadAccessor(doc, doc.Accessors[*skin.InverseBindMatrices], nil)
		if err != nil {
			return nil, errors.Wrap(err, "meshsource: inverse bind matrices")
		}
		mats, ok := data.([][4][4]float32)
		if !ok {
			return nil, errors.Errorf("meshsource: inverse bind matrices have type %T", data)
		}
		for i := 0; i < len(ibm) && i < len(mats); i++ {
			var m mgl32.Mat4
			for c := 0; c < 4; c++ {
				for r := 0; r < 4; r++ {
					m[c*4+r] = mats[i][c][r]
				}
			}
			ibm[i] = m
		}
	}

	out := make([]mgl32.Mat4, len(skin.Joints))
	for i, j := range skin.Joints {
		if int(j) >= len(sc.globals) {
			out[i] = mgl32.Ident4()
			continue
		}
		out[i] = sc.globals[j].Mul4(ibm[i])
	}
	return out, nil
}

// skinVertices applies linear blend skinning in place.
func skinVertices(positions, normals [][3]float32, hasNormals bool, skin rawSkin, jm []mgl32.Mat4) {
	for v := range positions {
		var blend mgl32.Mat4
		total := float32(0)
		for k := 0; k < 4; k++ {
			w := skin.weights[v][k]
			j := int(skin.joints[v][k])
			if w == 0 || j >= len(jm) {
				continue
			}
			for e := 0; e < 16; e++ {
				blend[e] += jm[j][e] * w
			}
			total += w
		}
		if total == 0 {
			continue
		}
		if total != 1 {
			blend = blend.Mul(1 / total)
		}

		p := positions[v]
		positions[v] = blend.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1}).Vec3()
		if hasNormals {
			n := normals[v]
			normals[v] = blend.Mat3().Mul3x1(mgl32.Vec3{n[0], n[1], n[2]})
		}
	}
}

// transformVertices bakes a static node transform.
func transformVertices(positions, normals [][3]float32, hasNormals bool, m mgl32.Mat4) {
	if m == mgl32.Ident4() {
		return
	}
	nm := m.Mat3().Inv().Transpose()
	for i, p := range positions {
		positions[i] = m.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1}).Vec3()
	}
	if hasNormals {
		for i, n := range normals {
			normals[i] = nm.Mul3x1(mgl32.Vec3{n[0], n[1], n[2]})
		}
	}
}

func buildSkin(sc *scene, gskin *gltf.Skin, raw rawSkin) *mesh.Skin {
	s := &mesh.Skin{
		Joints:    make([][4]int, len(raw.joints)),
		Weights:   make([][4]float64, len(raw.weights)),
		BonePaths: make([]string, len(gskin.Joints)),
	}
	for i, j := range raw.joints {
		for k := 0; k < 4; k++ {
			s.Joints[i][k] = int(j[k])
			s.Weights[i][k] = float64(raw.weights[i][k])
		}
	}
	for i, j := range gskin.Joints {
		if int(j) < len(sc.parents) {
			s.BonePaths[i] = sc.path(int(j))
		}
	}
	return s
}
