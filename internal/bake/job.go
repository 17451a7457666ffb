package bake

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"fur-mask-baker/internal/adjacency"
	"fur-mask-baker/internal/collider"
	"fur-mask-baker/internal/field"
	"fur-mask-baker/internal/influence"
	"fur-mask-baker/internal/mathutil"
	"fur-mask-baker/internal/mesh"
	"fur-mask-baker/internal/raster"
	"fur-mask-baker/internal/smooth"
	"fur-mask-baker/internal/texture"
	"fur-mask-baker/internal/uvisland"
)

var (
	// ErrCancelled is returned by Result after a cancelled bake.
	ErrCancelled = errors.New("bake: cancelled")
	// ErrNotFinished is returned by Result before the bake finished.
	ErrNotFinished = errors.New("bake: not finished")
)

// ProgressFunc receives progress after every batch. Returning true cancels
// the bake.
type ProgressFunc func(title, message string, fraction float64) bool

// Anchor pins the UV island around Seed in one submesh to zero.
type Anchor struct {
	Submesh   int
	Seed      [2]float64
	Threshold float64 // 0 uses Settings.UVThreshold
}

// Params are everything one bake reads. The snapshot and collider are
// shared read-only for the lifetime of the job.
type Params struct {
	Target   string
	MeshID   string // cache identity; defaults to the snapshot name
	Kind     Kind
	Snapshot *mesh.Snapshot
	Settings Settings

	Spheres       []influence.Sphere
	Mirror        *influence.Mirrorer // nil reflects across world X
	BoneValues    map[string]float64  // bone path -> control value
	Anchors       []Anchor
	DirectionMaps map[string]field.TangentSampler // by material

	Collider  collider.Collider // optional
	Locator   *uvisland.Locator
	Adjacency *adjacency.Index // optional; shared across jobs on one mesh

	Progress ProgressFunc // optional
	Logger   *zap.Logger  // optional
}

func (p *Params) validate() error {
	var err error
	if p.Snapshot == nil {
		return errors.New("bake: nil snapshot")
	}
	if verr := p.Snapshot.Validate(); verr != nil {
		err = multierr.Append(err, verr)
	}
	if serr := p.Settings.Validate(); serr != nil {
		err = multierr.Append(err, serr)
	}
	if p.Kind != KindMask && p.Kind != KindDirection {
		err = multierr.Append(err, errors.Errorf("unknown kind %d", p.Kind))
	}
	if p.Locator == nil && len(p.Anchors) > 0 {
		err = multierr.Append(err, errors.New("anchors need a locator"))
	}
	for i, a := range p.Anchors {
		if a.Submesh < 0 || a.Submesh >= len(p.Snapshot.Submeshes) {
			err = multierr.Append(err, errors.Errorf("anchor %d: submesh %d out of range", i, a.Submesh))
		}
		if a.Threshold < 0 {
			err = multierr.Append(err, errors.Errorf("anchor %d: negative threshold", i))
		}
	}
	for i, s := range p.Spheres {
		if s.Radius < 0 {
			err = multierr.Append(err, errors.Errorf("sphere %d: negative radius", i))
		}
		if s.GradientWidth < 0 || s.GradientWidth > 1 {
			err = multierr.Append(err, errors.Errorf("sphere %d: gradient width %g outside [0,1]", i, s.GradientWidth))
		}
	}
	return err
}

// Job is one resumable bake. It is not safe for concurrent use.
type Job struct {
	p     Params
	log   *zap.Logger
	state State
	err   error

	started time.Time
	n       int

	solver     *field.Solver
	directions []mathutil.Vec3
	cursor     int
	values     []float64
	anchors    []bool
	smoother   *smooth.Smoother

	shader    raster.Shader
	layers    []raster.Layer
	materials []string
	result    map[string]*raster.Buffer
}

// NewJob validates p and returns an idle job. No work happens until Step.
func NewJob(p Params) (*Job, error) {
	if err := p.validate(); err != nil {
		return nil, errors.Wrapf(err, "bake: target %q", p.Target)
	}
	if p.MeshID == "" {
		p.MeshID = p.Snapshot.Name
	}
	if p.Adjacency == nil {
		p.Adjacency = adjacency.NewIndex()
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Job{
		p:   p,
		log: log.With(zap.String("target", p.Target), zap.Stringer("kind", p.Kind)),
		n:   p.Snapshot.VertexCount(),
	}, nil
}

// State returns the current stage.
func (j *Job) State() State { return j.state }

// Err returns the failure that aborted the job, if any.
func (j *Job) Err() error { return j.err }

func (j *Job) status(frac float64, msg string) Status {
	return Status{State: j.state, Fraction: frac, Message: msg, Err: j.err}
}

// Cancel aborts the job and discards every buffer. It is a no-op once the
// job is terminal.
func (j *Job) Cancel() {
	j.abort(nil)
}

func (j *Job) abort(err error) {
	if j.state.Terminal() {
		return
	}
	from := j.state
	j.state = Cancelled
	j.err = err
	j.solver, j.smoother = nil, nil
	j.values, j.anchors, j.directions = nil, nil, nil
	j.layers, j.result = nil, nil
	if err != nil {
		j.log.Error("bake aborted", zap.Stringer("stage", from), zap.Error(err))
	} else {
		j.log.Info("bake cancelled", zap.Stringer("stage", from))
	}
}

func (j *Job) enter(s State) {
	j.log.Debug("bake stage", zap.Stringer("from", j.state), zap.Stringer("to", s))
	j.state = s
}

// Step performs one batch of work and reports progress. After a terminal
// state it only returns the status. A panic inside the batch aborts the job
// with the recovered value as its error.
func (j *Job) Step() (st Status) {
	if j.state.Terminal() {
		return j.status(1, j.state.String())
	}
	defer func() {
		if r := recover(); r != nil {
			j.abort(errors.Errorf("bake: panic while %s: %v", j.state, r))
			st = j.status(0, "aborted")
		}
	}()

	frac, msg, err := j.advance()
	if err != nil {
		j.abort(err)
		return j.status(0, "aborted")
	}
	if j.state != Finished && j.p.Progress != nil {
		title := fmt.Sprintf("Baking %s: %s", j.p.Target, j.state)
		if j.p.Progress(title, msg, frac) {
			j.abort(nil)
		}
	}
	return j.status(frac, msg)
}

// advance runs the work of the current state and moves to the next one
// when that work is complete.
func (j *Job) advance() (float64, string, error) {
	switch j.state {
	case Idle:
		return j.start()
	case ComputingDistances:
		return j.computeDistances()
	case ApplyingUVAnchors:
		return j.applyAnchors()
	case Smoothing:
		return j.smooth()
	case GammaCorrecting:
		return j.gamma()
	case Rasterizing:
		return j.rasterize()
	case MergingPadding:
		return j.mergePad()
	}
	return 1, j.state.String(), nil
}

func (j *Job) start() (float64, string, error) {
	j.started = time.Now()
	snap := j.p.Snapshot
	j.directions = field.SampleDirections(snap, j.p.DirectionMaps)
	j.log.Info("bake started",
		zap.Int("vertices", j.n),
		zap.Int("triangles", snap.TriangleCount()),
		zap.Int("submeshes", len(snap.Submeshes)),
		zap.Int("size", j.p.Settings.TextureSize))

	if j.p.Kind == KindDirection {
		j.shader = raster.DirectionShader{Directions: j.directions, Frames: snap.ComputeTangents()}
		j.enter(Rasterizing)
		return 0, "direction bake", nil
	}

	var bones []float64
	if snap.Skin != nil && len(j.p.BoneValues) > 0 {
		bones = mesh.ResolveBoneControl(snap.Skin, j.p.BoneValues, j.n)
	}
	s := j.p.Settings
	j.solver = &field.Solver{
		Positions:   snap.Positions,
		Directions:  j.directions,
		Spheres:     j.p.Spheres,
		Mirror:      j.p.Mirror.Func(),
		BoneControl: bones,
		Collider:    j.p.Collider,
		MaxDistance: s.MaxDistance,
		Epsilon:     s.RayEpsilon,
	}
	j.solver.Init()
	j.enter(ComputingDistances)
	return 0, "initialized", nil
}

func (j *Job) computeDistances() (float64, string, error) {
	j.cursor = j.solver.ComputeRange(j.cursor, j.cursor+j.p.Settings.BatchSize)
	msg := fmt.Sprintf("vertex %d/%d", j.cursor, j.n)
	if j.cursor >= j.n {
		j.values = j.solver.Values()
		j.solver = nil
		j.enter(ApplyingUVAnchors)
		return 1, msg, nil
	}
	return float64(j.cursor) / float64(j.n), msg, nil
}

func (j *Job) applyAnchors() (float64, string, error) {
	sets := make([]adjacency.Set, 0, len(j.p.Anchors))
	for i, a := range j.p.Anchors {
		threshold := a.Threshold
		if threshold == 0 {
			threshold = j.p.Settings.UVThreshold
		}
		verts, err := j.p.Locator.AnchorVertices(uvisland.Request{
			MeshID:    j.p.MeshID,
			Snapshot:  j.p.Snapshot,
			Adjacency: j.p.Adjacency,
			Submesh:   a.Submesh,
			Seed:      a.Seed,
			Threshold: threshold,
		})
		if err != nil {
			return 0, "", errors.Wrapf(err, "bake: anchor %d", i)
		}
		sets = append(sets, verts)
	}
	j.anchors = field.ApplyAnchors(j.values, sets...)

	s := j.p.Settings
	j.smoother = smooth.New(j.values, j.p.Adjacency.VertexNeighbors(j.p.Snapshot), j.anchors, s.Iterations, s.Threshold)
	j.enter(Smoothing)
	return 1, fmt.Sprintf("%d anchors", len(sets)), nil
}

func (j *Job) smooth() (float64, string, error) {
	j.smoother.Step(j.p.Settings.BatchSize)
	msg := fmt.Sprintf("iteration %d/%d", j.smoother.Iteration(), j.p.Settings.Iterations)
	if !j.smoother.Done() {
		return j.smoother.Progress(), msg, nil
	}
	j.log.Debug("smoothing done",
		zap.Int("iterations", j.smoother.Iteration()),
		zap.Bool("converged", j.smoother.Converged()))
	j.values = j.smoother.Values()
	j.smoother = nil
	j.enter(GammaCorrecting)
	return 1, msg, nil
}

func (j *Job) gamma() (float64, string, error) {
	field.ApplyGamma(j.values, j.p.Settings.Gamma)
	j.shader = raster.MaskShader{Values: j.values}
	j.enter(Rasterizing)
	return 1, fmt.Sprintf("gamma %g", j.p.Settings.Gamma), nil
}

func (j *Job) rasterize() (float64, string, error) {
	subs := j.p.Snapshot.Submeshes
	si := len(j.layers)
	if si < len(subs) {
		buf := raster.NewBuffer(j.p.Settings.TextureSize)
		raster.RasterizeSubmesh(buf, j.p.Snapshot, si, j.shader)
		j.layers = append(j.layers, raster.Layer{Submesh: si, Material: subs[si].Material, Buffer: buf})
	}
	msg := fmt.Sprintf("submesh %d/%d", len(j.layers), len(subs))
	if len(j.layers) < len(subs) {
		return float64(len(j.layers)) / float64(len(subs)), msg, nil
	}
	j.materials = j.p.Snapshot.Materials()
	j.result = make(map[string]*raster.Buffer, len(j.materials))
	j.enter(MergingPadding)
	return 1, msg, nil
}

// mergePad finishes one material per call.
func (j *Job) mergePad() (float64, string, error) {
	done := len(j.result)
	mat := j.materials[done]
	var bufs []*raster.Buffer
	for _, l := range j.layers {
		if l.Material == mat {
			bufs = append(bufs, l.Buffer)
		}
	}
	prec := texture.MaskPrecedence
	if j.p.Kind == KindDirection {
		prec = texture.FirstWins
	}
	merged, err := texture.Merge(bufs, prec)
	if err != nil {
		return 0, "", errors.Wrapf(err, "bake: material %q", mat)
	}
	radius := texture.PaddingRadius(j.p.Settings.TextureSize, j.p.Settings.Padding)
	padded := texture.Dilate(merged, radius)
	j.result[mat] = merged
	j.log.Debug("material merged",
		zap.String("material", mat),
		zap.Int("layers", len(bufs)),
		zap.Int("padded", padded))

	msg := fmt.Sprintf("material %d/%d", len(j.result), len(j.materials))
	if len(j.result) < len(j.materials) {
		return float64(len(j.result)) / float64(len(j.materials)), msg, nil
	}
	j.layers = nil
	j.values, j.anchors, j.directions = nil, nil, nil
	j.enter(Finished)
	j.log.Info("bake finished",
		zap.Int("materials", len(j.result)),
		zap.Duration("elapsed", time.Since(j.started)))
	return 1, msg, nil
}

// Result returns one buffer per material. It fails unless the job finished.
func (j *Job) Result() (map[string]*raster.Buffer, error) {
	switch j.state {
	case Finished:
		return j.result, nil
	case Cancelled:
		if j.err != nil {
			return nil, errors.Wrap(ErrCancelled, j.err.Error())
		}
		return nil, ErrCancelled
	}
	return nil, ErrNotFinished
}

// Run steps job until it is terminal and returns its result.
func Run(job *Job) (map[string]*raster.Buffer, error) {
	for !job.State().Terminal() {
		job.Step()
	}
	return job.Result()
}
