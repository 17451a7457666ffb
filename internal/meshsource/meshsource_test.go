package meshsource

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"fur-mask-baker/internal/bmd"
	"fur-mask-baker/internal/mathutil"
	"fur-mask-baker/internal/raster"
)

func near(a, b mathutil.Vec3) bool {
	return a.Dist(b) < 1e-5
}

// staticDoc has one mesh with two primitives under a translated node.
func staticDoc() *gltf.Document {
	doc := gltf.NewDocument()
	doc.Materials = []*gltf.Material{{Name: "body"}, {}}

	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	ind := modeler.WriteIndices(doc, []uint32{0, 1, 2})
	pos2 := modeler.WritePosition(doc, [][3]float32{{0, 0, 1}, {1, 0, 1}, {0, 1, 1}})
	nrm2 := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})

	doc.Meshes = []*gltf.Mesh{{
		Name: "wolf",
		Primitives: []*gltf.Primitive{
			{Indices: &ind, Attributes: map[string]uint32{gltf.POSITION: pos, gltf.TEXCOORD_0: uv}, Material: gltf.Index(0)},
			{Attributes: map[string]uint32{gltf.POSITION: pos2, gltf.NORMAL: nrm2}, Material: gltf.Index(1)},
			{Mode: gltf.PrimitiveLines, Attributes: map[string]uint32{gltf.POSITION: pos}},
		},
	}}
	doc.Nodes = []*gltf.Node{{Name: "wolf", Mesh: gltf.Index(0), Translation: [3]float32{0, 0, 5}}}
	doc.Scenes[0].Nodes = []uint32{0}
	return doc
}

func TestFromDocument_Static(t *testing.T) {
	snap, err := FromDocument(staticDoc(), Options{})
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if len(snap.Submeshes) != 2 {
		t.Fatalf("submeshes = %d, want 2 (lines skipped)", len(snap.Submeshes))
	}
	if snap.Submeshes[0].Material != "body" || snap.Submeshes[1].Material != "material_1" {
		t.Errorf("materials = %q, %q", snap.Submeshes[0].Material, snap.Submeshes[1].Material)
	}
	if snap.VertexCount() != 6 {
		t.Fatalf("vertices = %d, want 6", snap.VertexCount())
	}
	// second primitive has no indices: sequential, offset past the first
	tris := snap.Submeshes[1].Triangles
	if tris[0] != 3 || tris[1] != 4 || tris[2] != 5 {
		t.Errorf("second submesh indices = %v", tris)
	}
	if !near(snap.Positions[1], mathutil.Vec3{1, 0, 5}) {
		t.Errorf("node transform not applied: %v", snap.Positions[1])
	}
	// V flips from glTF's top-left origin; missing texcoords stay zero
	if snap.UVs[1] != [2]float64{1, 1} || snap.UVs[2] != [2]float64{0, 0} || snap.UVs[4] != [2]float64{0, 0} {
		t.Errorf("uvs = %v", snap.UVs)
	}
	// normals were incomplete, so they are left for EnsureNormals
	if snap.Normals != nil {
		t.Errorf("partial normals should be dropped, got %d", len(snap.Normals))
	}
	if snap.Skin != nil {
		t.Error("static mesh should have no skin")
	}
}

func TestFromDocument_TexcoordsRasterizeTopDown(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	// the top quarter of the image in glTF texcoords
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 0.25}})
	doc.Meshes = []*gltf.Mesh{{Name: "strip", Primitives: []*gltf.Primitive{
		{Attributes: map[string]uint32{gltf.POSITION: pos, gltf.TEXCOORD_0: uv}},
	}}}

	snap, err := FromDocument(doc, Options{})
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	const size = 16
	buf := raster.NewBuffer(size)
	if raster.RasterizeSubmesh(buf, snap, 0, raster.MaskShader{Values: []float64{1, 1, 1}}) == 0 {
		t.Fatal("nothing rasterized")
	}
	top, bottom := 0, 0
	for _, i := range buf.CoveredIndices() {
		if i/size < size/2 {
			top++
		} else {
			bottom++
		}
	}
	if top == 0 || bottom != 0 {
		t.Errorf("covered top=%d bottom=%d, want all pixels in the top half", top, bottom)
	}
}

func TestFromDocument_MeshSelection(t *testing.T) {
	doc := staticDoc()
	if _, err := FromDocument(doc, Options{Mesh: "wolf"}); err != nil {
		t.Errorf("by name: %v", err)
	}
	if _, err := FromDocument(doc, Options{Mesh: "bear"}); err == nil {
		t.Error("expected error for unknown mesh")
	}
	if _, err := FromDocument(gltf.NewDocument(), Options{}); err == nil {
		t.Error("expected error for empty document")
	}
}

// skinnedDoc binds three vertices to a two-joint chain. Tail sits one unit
// above Hips in the rest pose, and no inverse bind matrices are given.
func skinnedDoc() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	nrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	joints := modeler.WriteJoints(doc, [][4]uint16{{0, 0, 0, 0}, {1, 0, 0, 0}, {0, 1, 0, 0}})
	weights := modeler.WriteWeights(doc, [][4]float32{{1, 0, 0, 0}, {1, 0, 0, 0}, {0.5, 0.5, 0, 0}})

	doc.Meshes = []*gltf.Mesh{{
		Name: "tail",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{
				gltf.POSITION:   pos,
				gltf.NORMAL:     nrm,
				gltf.TEXCOORD_0: uv,
				gltf.JOINTS_0:   joints,
				gltf.WEIGHTS_0:  weights,
			},
		}},
	}}
	doc.Skins = []*gltf.Skin{{Joints: []uint32{1, 2}}}
	doc.Nodes = []*gltf.Node{
		{Name: "body", Mesh: gltf.Index(0), Skin: gltf.Index(0), Translation: [3]float32{9, 9, 9}},
		{Name: "Hips", Children: []uint32{2}},
		{Name: "Tail", Translation: [3]float32{0, 1, 0}},
	}
	doc.Scenes[0].Nodes = []uint32{0, 1}
	return doc
}

func TestFromDocument_Skinned(t *testing.T) {
	snap, err := FromDocument(skinnedDoc(), Options{})
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	want := []mathutil.Vec3{{0, 0, 0}, {1, 1, 0}, {0, 1.5, 0}}
	for i, w := range want {
		if !near(snap.Positions[i], w) {
			t.Errorf("vertex %d = %v, want %v", i, snap.Positions[i], w)
		}
	}
	if snap.Skin == nil {
		t.Fatal("missing skin")
	}
	if got := snap.Skin.BonePaths; len(got) != 2 || got[0] != "Hips" || got[1] != "Hips/Tail" {
		t.Errorf("bone paths = %v", got)
	}
	if snap.Skin.Weights[2] != [4]float64{0.5, 0.5, 0, 0} {
		t.Errorf("weights = %v", snap.Skin.Weights[2])
	}
	if snap.Submeshes[0].Material != "default" {
		t.Errorf("material = %q", snap.Submeshes[0].Material)
	}
}

func TestFromDocument_BindPose(t *testing.T) {
	snap, err := FromDocument(skinnedDoc(), Options{BindPose: true})
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if !near(snap.Positions[2], mathutil.Vec3{0, 1, 0}) {
		t.Errorf("bind pose moved vertex: %v", snap.Positions[2])
	}
}

func TestLoad_GLB(t *testing.T) {
	p := filepath.Join(t.TempDir(), "wolf.glb")
	if err := gltf.SaveBinary(staticDoc(), p); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap, err := Load(p, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Normals) != snap.VertexCount() {
		t.Errorf("normals = %d, want %d", len(snap.Normals), snap.VertexCount())
	}
}

func TestLoad_Unsupported(t *testing.T) {
	if _, err := Load("wolf.obj", Options{}); err == nil {
		t.Error("expected error for .obj")
	}
}

func mockModel() *bmd.Model {
	return &bmd.Model{
		Name: "wolf",
		Meshes: []bmd.Mesh{{
			Verts:       [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
			Nodes:       []int16{0, 0, 0, 0},
			Normals:     [][3]float32{{0, 0, 1}},
			NormalNodes: []int16{0},
			UVs:         [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
			Tris: []bmd.Triangle{
				{Polygon: 4, VI: [4]int16{0, 1, 2, 3}, TI: [4]int16{0, 1, 2, 3}},
				{Polygon: 3, VI: [4]int16{0, 1, 9}},
			},
			TexPath: `data\fur\wolf_body.jpg`,
		}},
		Bones: []bmd.Bone{{Name: "Root", Parent: -1, BindPosition: [3]float64{0, 0, 1}}},
	}
}

func TestFromModel(t *testing.T) {
	snap := FromModel(mockModel(), Options{})
	if snap.VertexCount() != 4 {
		t.Fatalf("vertices = %d, want 4 (shared corners welded)", snap.VertexCount())
	}
	if got := snap.Submeshes[0].TriangleCount(); got != 2 {
		t.Errorf("triangles = %d, want 2 (invalid one dropped)", got)
	}
	if snap.Submeshes[0].Material != "wolf_body" {
		t.Errorf("material = %q", snap.Submeshes[0].Material)
	}
	if !near(snap.Positions[2], mathutil.Vec3{1, 1, 1}) {
		t.Errorf("bind pose not applied: %v", snap.Positions[2])
	}
	if snap.UVs[0] != [2]float64{0, 1} {
		t.Errorf("uv not flipped: %v", snap.UVs[0])
	}
	if snap.Skin == nil || snap.Skin.Weights[3][0] != 1 || snap.Skin.BonePaths[0] != "Root" {
		t.Errorf("skin = %+v", snap.Skin)
	}

	posed := FromModel(mockModel(), Options{BindPose: true})
	if !near(posed.Positions[2], mathutil.Vec3{1, 1, 0}) {
		t.Errorf("BindPose option ignored: %v", posed.Positions[2])
	}
}

func TestLoad_BMD(t *testing.T) {
	var buf bytes.Buffer
	if err := bmd.Encode(&buf, mockModel()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	p := filepath.Join(t.TempDir(), "wolf.bmd")
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	snap, err := Load(p, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	n := snap.Normals[0]
	if math.Abs(n[2]-1) > 1e-6 {
		t.Errorf("normal = %v", n)
	}
}

func TestTextureStem(t *testing.T) {
	tests := map[string]string{
		`data\fur\wolf_body.jpg`: "wolf_body",
		"skin01.tga":             "skin01",
		"plain":                  "plain",
	}
	for in, want := range tests {
		if got := TextureStem(in); got != want {
			t.Errorf("TextureStem(%q) = %q, want %q", in, got, want)
		}
	}
}
