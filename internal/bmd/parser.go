package bmd

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Version is the only BMD revision this package reads. Versions 12 and 15
// wrap the same layout in encryption.
const Version = 10

// maxMeshes bounds the mesh count to reject garbage headers early.
const maxMeshes = 100

// ErrEncrypted is returned for BMD revisions that need decryption.
var ErrEncrypted = errors.New("bmd: encrypted revision not supported")

// Parse reads a BMD file.
func Parse(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "bmd: read %s", path)
	}
	m, err := Decode(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "bmd: %s", path)
	}
	return m, nil
}

// Decode parses BMD bytes.
func Decode(raw []byte) (*Model, error) {
	if len(raw) < 4 || string(raw[:3]) != "BMD" {
		return nil, errors.New("invalid header")
	}
	switch v := raw[3]; v {
	case Version:
	case 12, 15:
		return nil, errors.Wrapf(ErrEncrypted, "version %d", v)
	default:
		return nil, errors.Errorf("unknown version %d", v)
	}

	r := &reader{data: raw[4:]}
	m, err := r.parse()
	if err != nil {
		return nil, err
	}
	if r.short {
		return nil, errors.Wrap(io.ErrUnexpectedEOF, "truncated model")
	}
	return m, nil
}

type reader struct {
	data  []byte
	off   int
	short bool // a read ran past the end
}

func (r *reader) take(n int) []byte {
	if r.off+n > len(r.data) {
		r.off = len(r.data)
		r.short = true
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) readStr(n int) string {
	s := r.take(n)
	// Find null terminator
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return decodeName(s)
}

// decodeName returns UTF-8 names unchanged and treats anything else as
// EUC-KR, the encoding of bone and texture names in Korean-authored files.
func decodeName(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

func (r *reader) readI16() int16 {
	return int16(r.readU16())
}

func (r *reader) readU16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) readF32() float32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func (r *reader) readByte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) readVec3() [3]float32 {
	return [3]float32{r.readF32(), r.readF32(), r.readF32()}
}

func (r *reader) parse() (*Model, error) {
	name := r.readStr(32)
	meshCount := int(r.readU16())
	boneCount := int(r.readU16())
	actionCount := int(r.readU16())

	if meshCount > maxMeshes {
		return nil, errors.Errorf("invalid mesh count %d", meshCount)
	}

	meshes := make([]Mesh, 0, meshCount)
	for i := 0; i < meshCount && !r.short; i++ {
		nv := int(r.readI16())
		nn := int(r.readI16())
		ntc := int(r.readI16())
		nt := int(r.readI16())
		_ = r.readI16() // texture index
		if nv < 0 || nn < 0 || ntc < 0 || nt < 0 {
			return nil, errors.Errorf("mesh %d: negative element count", i)
		}

		// Vertices: 16 bytes each (node:i16, pad:i16, x:f32, y:f32, z:f32)
		verts := make([][3]float32, nv)
		nodes := make([]int16, nv)
		for j := 0; j < nv; j++ {
			nodes[j] = r.readI16()
			_ = r.readI16() // padding
			verts[j] = r.readVec3()
		}

		// Normals: 20 bytes each (node:i16, pad:i16, nx:f32, ny:f32, nz:f32, bind:i16, pad:i16)
		normals := make([][3]float32, nn)
		normalNodes := make([]int16, nn)
		for j := 0; j < nn; j++ {
			normalNodes[j] = r.readI16()
			_ = r.readI16() // padding
			normals[j] = r.readVec3()
			_ = r.readI16() // bindVertex
			_ = r.readI16() // padding
		}

		// TexCoords: 8 bytes each (u:f32, v:f32)
		uvs := make([][2]float32, ntc)
		for j := 0; j < ntc; j++ {
			uvs[j][0] = r.readF32()
			uvs[j][1] = r.readF32()
		}

		// Triangles: 64 bytes each
		tris := make([]Triangle, 0, nt)
		for j := 0; j < nt; j++ {
			rec := r.take(64)
			if rec == nil {
				break
			}
			var t Triangle
			t.Polygon = int(rec[0])
			for k := 0; k < 4; k++ {
				t.VI[k] = int16(binary.LittleEndian.Uint16(rec[2+k*2:]))
				t.NI[k] = int16(binary.LittleEndian.Uint16(rec[10+k*2:]))
				t.TI[k] = int16(binary.LittleEndian.Uint16(rec[18+k*2:]))
			}
			tris = append(tris, t)
		}

		texPath := strings.ReplaceAll(r.readStr(32), "\\", "/")

		meshes = append(meshes, Mesh{
			Verts:       verts,
			Nodes:       nodes,
			Normals:     normals,
			NormalNodes: normalNodes,
			UVs:         uvs,
			Tris:        tris,
			TexPath:     texPath,
		})
	}

	// Actions: only key counts matter for skipping bone tracks.
	actionKeys := make([]int, actionCount)
	for a := 0; a < actionCount; a++ {
		numKeys := int(r.readI16())
		if lockPos := r.readByte() > 0; lockPos {
			r.take(numKeys * 12) // float32 x,y,z per key
		}
		actionKeys[a] = numKeys
	}

	bones := make([]Bone, 0, boneCount)
	for b := 0; b < boneCount && !r.short; b++ {
		if isDummy := r.readByte() > 0; isDummy {
			bones = append(bones, Bone{Parent: -1, IsDummy: true})
			continue
		}

		bone := Bone{Name: r.readStr(32), Parent: int(r.readI16())}
		for a, numKeys := range actionKeys {
			if numKeys <= 0 {
				continue
			}
			// numKeys positions, then numKeys rotations; bind pose is action 0 key 0
			for k := 0; k < numKeys; k++ {
				p := r.readVec3()
				if a == 0 && k == 0 {
					bone.BindPosition = [3]float64{float64(p[0]), float64(p[1]), float64(p[2])}
				}
			}
			for k := 0; k < numKeys; k++ {
				rot := r.readVec3()
				if a == 0 && k == 0 {
					bone.BindRotation = [3]float64{float64(rot[0]), float64(rot[1]), float64(rot[2])}
				}
			}
		}
		bones = append(bones, bone)
	}

	return &Model{Name: name, Meshes: meshes, Bones: bones}, nil
}
