// Command inspect prints connectivity and UV statistics of a mesh, and
// optionally the island found from a UV seed.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"fur-mask-baker/internal/adjacency"
	"fur-mask-baker/internal/mesh"
	"fur-mask-baker/internal/meshsource"
	"fur-mask-baker/internal/raster"
	"fur-mask-baker/internal/texture"
	"fur-mask-baker/internal/uvisland"
)

func main() {
	meshPath := flag.String("mesh", "", "Mesh file (.gltf, .glb, .bmd)")
	meshName := flag.String("mesh-name", "", "glTF mesh name (default: first)")
	bindPose := flag.Bool("bind-pose", false, "Skip skinning")
	seed := flag.String("uv", "", "Seed UV as u,v to locate an island")
	sub := flag.Int("sub", 0, "Submesh for -uv")
	threshold := flag.Float64("threshold", uvisland.DefaultThreshold, "UV connectivity threshold")
	coverage := flag.Int("coverage", 0, "Report per-material UV coverage at this texture size")
	dump := flag.Bool("dump", false, "Dump the snapshot structure")
	flag.Parse()

	if *meshPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -mesh model.glb [-uv 0.5,0.5 -sub 0] [-coverage 256] [-dump]")
		os.Exit(2)
	}
	snap, err := meshsource.Load(*meshPath, meshsource.Options{Mesh: *meshName, BindPose: *bindPose})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printStats(snap)
	ix := adjacency.NewIndex()
	printDegrees(ix.Vertex(snap))

	if *seed != "" {
		uv, err := parseUV(*seed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		printIsland(snap, ix, *sub, uv, *threshold)
	}
	if *coverage > 0 {
		printCoverage(snap, *coverage)
	}
	if *dump {
		cfg := spew.NewDefaultConfig()
		cfg.DisableCapacities = true
		cfg.MaxDepth = 3
		fmt.Println(cfg.Sdump(snap))
	}
}

func parseUV(s string) ([2]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return [2]float64{}, fmt.Errorf("-uv wants u,v, got %q", s)
	}
	var uv [2]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [2]float64{}, fmt.Errorf("-uv component %q: %v", p, err)
		}
		uv[i] = v
	}
	return uv, nil
}

func printStats(snap *mesh.Snapshot) {
	fmt.Printf("Mesh %q: vertices=%d, triangles=%d, invalid=%d\n",
		snap.Name, snap.VertexCount(), snap.TriangleCount(), snap.InvalidTriangles())

	minP := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxP := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range snap.Positions {
		for k := 0; k < 3; k++ {
			minP[k] = math.Min(minP[k], p[k])
			maxP[k] = math.Max(maxP[k], p[k])
		}
	}
	fmt.Printf("  BBox: X[%.3f, %.3f] Y[%.3f, %.3f] Z[%.3f, %.3f]\n",
		minP[0], maxP[0], minP[1], maxP[1], minP[2], maxP[2])

	for i, sm := range snap.Submeshes {
		fmt.Printf("  Submesh[%d]: material=%q, tris=%d\n", i, sm.Material, sm.TriangleCount())
	}
	if snap.Skin != nil {
		fmt.Printf("  Skin: %d bones\n", len(snap.Skin.BonePaths))
		for i, p := range snap.Skin.BonePaths {
			fmt.Printf("    [%d] %s\n", i, p)
		}
	}
}

func printDegrees(adj []adjacency.Set) {
	if len(adj) == 0 {
		return
	}
	minD, maxD, sum, isolated := math.MaxInt, 0, 0, 0
	for _, s := range adj {
		d := len(s)
		sum += d
		if d < minD {
			minD = d
		}
		if d > maxD {
			maxD = d
		}
		if d == 0 {
			isolated++
		}
	}
	fmt.Printf("  Vertex degree: min=%d, max=%d, mean=%.2f, isolated=%d\n",
		minD, maxD, float64(sum)/float64(len(adj)), isolated)

	comps := adjacency.Components(adj)
	if len(comps) > 0 {
		fmt.Printf("  Shells: %d (largest %d verts)\n", len(comps), len(comps[0]))
	}
}

func printIsland(snap *mesh.Snapshot, ix *adjacency.Index, sub int, uv [2]float64, threshold float64) {
	loc := uvisland.NewLocator(nil)
	req := uvisland.Request{
		MeshID:    snap.Name,
		Snapshot:  snap,
		Adjacency: ix,
		Submesh:   sub,
		Seed:      uv,
		Threshold: threshold,
	}
	island, err := loc.Island(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Island: %v\n", err)
		return
	}
	verts, _ := loc.AnchorVertices(req)
	total := snap.Submeshes[sub].TriangleCount()
	fmt.Printf("  Island at (%.3f, %.3f) in submesh %d: %d/%d triangles, %d vertices\n",
		uv[0], uv[1], sub, len(island), total, len(verts))
}

// printCoverage rasterizes every material at size and reports how much of
// the texture real triangles cover.
func printCoverage(snap *mesh.Snapshot, size int) {
	ones := make([]float64, snap.VertexCount())
	for i := range ones {
		ones[i] = 1
	}
	layers := raster.RenderSubmeshes(snap, size, raster.MaskShader{Values: ones})
	fmt.Printf("  Coverage at %dpx:\n", size)
	for _, mat := range snap.Materials() {
		var bufs []*raster.Buffer
		for _, l := range layers {
			if l.Material == mat {
				bufs = append(bufs, l.Buffer)
			}
		}
		merged, err := texture.Merge(bufs, texture.FirstWins)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", mat, err)
			continue
		}
		c := texture.MeasureCoverage(merged)
		fmt.Printf("    %-20s %6.2f%% (%d px), %d islands, largest %d px\n",
			mat, c.Fraction*100, c.Pixels, c.Components, c.Largest)
	}
}
