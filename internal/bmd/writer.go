package bmd

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
)

type writer struct {
	buf bytes.Buffer
}

func (w *writer) str(s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	w.buf.Write(b)
}

func (w *writer) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) i16(v int16) { w.u16(uint16(v)) }

func (w *writer) f32(v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	w.buf.Write(b[:])
}

func (w *writer) vec3(v [3]float32) {
	w.f32(v[0])
	w.f32(v[1])
	w.f32(v[2])
}

// Encode writes m as an unencrypted BMD. Bind poses are stored as a single
// one-key action. Normal node indices default to 0 when NormalNodes is short.
func Encode(out io.Writer, m *Model) error {
	if len(m.Meshes) > maxMeshes {
		return errors.Errorf("bmd: too many meshes (%d)", len(m.Meshes))
	}
	w := &writer{}
	w.buf.WriteString("BMD")
	w.buf.WriteByte(Version)
	w.str(m.Name, 32)
	w.u16(uint16(len(m.Meshes)))
	w.u16(uint16(len(m.Bones)))
	actions := 0
	if len(m.Bones) > 0 {
		actions = 1
	}
	w.u16(uint16(actions))

	for mi, mesh := range m.Meshes {
		w.i16(int16(len(mesh.Verts)))
		w.i16(int16(len(mesh.Normals)))
		w.i16(int16(len(mesh.UVs)))
		w.i16(int16(len(mesh.Tris)))
		w.i16(int16(mi)) // texture index
		for j, v := range mesh.Verts {
			var node int16
			if j < len(mesh.Nodes) {
				node = mesh.Nodes[j]
			}
			w.i16(node)
			w.i16(0)
			w.vec3(v)
		}
		for j, n := range mesh.Normals {
			var node int16
			if j < len(mesh.NormalNodes) {
				node = mesh.NormalNodes[j]
			}
			w.i16(node)
			w.i16(0)
			w.vec3(n)
			w.i16(0)
			w.i16(0)
		}
		for _, uv := range mesh.UVs {
			w.f32(uv[0])
			w.f32(uv[1])
		}
		for _, t := range mesh.Tris {
			rec := make([]byte, 64)
			rec[0] = byte(t.Polygon)
			for k := 0; k < 4; k++ {
				binary.LittleEndian.PutUint16(rec[2+k*2:], uint16(t.VI[k]))
				binary.LittleEndian.PutUint16(rec[10+k*2:], uint16(t.NI[k]))
				binary.LittleEndian.PutUint16(rec[18+k*2:], uint16(t.TI[k]))
			}
			w.buf.Write(rec)
		}
		w.str(strings.ReplaceAll(mesh.TexPath, "/", "\\"), 32)
	}

	if actions == 1 {
		w.i16(1)           // one key
		w.buf.WriteByte(0) // no locked positions
	}

	for _, b := range m.Bones {
		if b.IsDummy {
			w.buf.WriteByte(1)
			continue
		}
		w.buf.WriteByte(0)
		w.str(b.Name, 32)
		w.i16(int16(b.Parent))
		w.vec3([3]float32{float32(b.BindPosition[0]), float32(b.BindPosition[1]), float32(b.BindPosition[2])})
		w.vec3([3]float32{float32(b.BindRotation[0]), float32(b.BindRotation[1]), float32(b.BindRotation[2])})
	}

	_, err := out.Write(w.buf.Bytes())
	return errors.Wrap(err, "bmd: write")
}
