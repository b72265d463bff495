package planner

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/mppi/internal/dynamo"
)

// Config is the construction surface for an MPPI controller. Zero values
// take documented defaults; everything else is validated by New.
type Config struct {
	Samples  int // K, trajectories sampled per decision step
	Horizon  int // T, timesteps planned over
	StateDim int // nx

	Lambda float64 // temperature, > 0; larger flattens weights toward uniform

	// Control bounds, per dimension. If only one side is given the other is
	// derived by negation. Nil means unbounded.
	UMin []float64
	UMax []float64

	UScale      float64 // actions are scaled by this before hitting dynamics; default 1
	UPerCommand int     // leading actions returned per Command; default 1

	// UInit is appended to the nominal sequence at every warm-start shift
	// and is the action forced on the last sample under SampleNullAction.
	// Defaults to zero.
	UInit []float64

	// InitSequence seeds the nominal sequence (Horizon x nu). When nil the
	// sequence is sampled from the noise model.
	InitSequence [][]float64

	StepDependent    bool // pass the timestep index to the dynamics boundary
	SampleNullAction bool // force the last sample to the UInit action sequence
	NoiseAbsCost     bool // use |noise| in the control-effort cost

	// Rand is the controller's random source. When nil one is built from
	// Seed, so a fixed Seed gives reproducible planning.
	Rand *rand.Rand
	Seed int64
}

// Plan is the outcome of one decision step.
type Plan struct {
	// Actions holds the first UPerCommand entries of the updated nominal
	// sequence, scaled by UScale. Copies, never internal references.
	Actions []dynamo.Control

	// Rollout is the predicted state sequence of the updated nominal plan
	// from the commanded state, length Horizon, initial state excluded.
	Rollout []dynamo.State

	// Costs and Weights are the per-trajectory total costs and normalized
	// importance weights of this step, kept for inspection.
	Costs   []float64
	Weights []float64
}

// First returns the immediate action to apply, the common case when
// re-planning after every step.
func (p Plan) First() dynamo.Control {
	if len(p.Actions) == 0 {
		return nil
	}
	return p.Actions[0]
}

// MPPI is a Model Predictive Path Integral controller. It owns the nominal
// control sequence, which persists and is warm-started across decision
// steps. Not safe for concurrent Command calls on one instance.
type MPPI struct {
	kSamples int
	horizon  int
	nx, nu   int

	lambda      float64
	uScale      float64
	uPerCommand int

	uMin, uMax []float64
	uInit      []float64

	stepDependent    bool
	sampleNullAction bool
	noiseAbsCost     bool

	noise *Gaussian
	rng   *rand.Rand
	dyn   Dynamics
	cost  TrajectoryCost

	u [][]float64 // nominal sequence, Horizon x nu
}

// New builds an MPPI controller over the given boundaries. cost may be nil,
// in which case only the control-effort cost contributes. All configuration
// errors surface here, never at Command time.
func New(dyn Dynamics, cost TrajectoryCost, noise *Gaussian, cfg Config) (*MPPI, error) {
	if dyn == nil {
		return nil, fmt.Errorf("nil dynamics boundary: %w", ErrBadConfig)
	}
	if noise == nil {
		return nil, fmt.Errorf("nil noise model: %w", ErrBadConfig)
	}
	if cfg.Samples < 1 {
		return nil, fmt.Errorf("samples must be >= 1, got %d: %w", cfg.Samples, ErrBadConfig)
	}
	if cfg.Horizon < 1 {
		return nil, fmt.Errorf("horizon must be >= 1, got %d: %w", cfg.Horizon, ErrBadConfig)
	}
	if cfg.StateDim < 1 {
		return nil, fmt.Errorf("state dimension must be >= 1, got %d: %w", cfg.StateDim, ErrBadConfig)
	}
	if cfg.Lambda <= 0 {
		return nil, fmt.Errorf("lambda must be positive, got %f: %w", cfg.Lambda, ErrBadConfig)
	}

	nu := noise.Dim()

	m := &MPPI{
		kSamples:         cfg.Samples,
		horizon:          cfg.Horizon,
		nx:               cfg.StateDim,
		nu:               nu,
		lambda:           cfg.Lambda,
		uScale:           cfg.UScale,
		uPerCommand:      cfg.UPerCommand,
		stepDependent:    cfg.StepDependent,
		sampleNullAction: cfg.SampleNullAction,
		noiseAbsCost:     cfg.NoiseAbsCost,
		noise:            noise,
		dyn:              dyn,
		cost:             cost,
	}

	if m.uScale == 0 {
		m.uScale = 1
	}
	if m.uScale <= 0 {
		return nil, fmt.Errorf("control scale must be positive, got %f: %w", cfg.UScale, ErrBadConfig)
	}
	if m.uPerCommand == 0 {
		m.uPerCommand = 1
	}
	if m.uPerCommand < 1 || m.uPerCommand > m.horizon {
		return nil, fmt.Errorf("actions per command must be in [1, %d], got %d: %w",
			m.horizon, cfg.UPerCommand, ErrBadConfig)
	}

	if cfg.UInit == nil {
		m.uInit = make([]float64, nu)
	} else {
		if len(cfg.UInit) != nu {
			return nil, fmt.Errorf("init action has %d components, control dimension is %d: %w",
				len(cfg.UInit), nu, ErrBadConfig)
		}
		m.uInit = append([]float64(nil), cfg.UInit...)
	}

	if err := m.resolveBounds(cfg.UMin, cfg.UMax); err != nil {
		return nil, err
	}

	m.rng = cfg.Rand
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(cfg.Seed))
	}

	if cfg.InitSequence != nil {
		if len(cfg.InitSequence) != m.horizon {
			return nil, fmt.Errorf("init sequence has %d entries, horizon is %d: %w",
				len(cfg.InitSequence), m.horizon, ErrBadConfig)
		}
		m.u = make([][]float64, m.horizon)
		for t, row := range cfg.InitSequence {
			if len(row) != nu {
				return nil, fmt.Errorf("init sequence entry %d has %d components, control dimension is %d: %w",
					t, len(row), nu, ErrBadConfig)
			}
			m.u[t] = append([]float64(nil), row...)
		}
	} else {
		m.u = make([][]float64, m.horizon)
		for t := range m.u {
			m.u[t] = noise.Sample(m.rng)
		}
	}

	return m, nil
}

// resolveBounds applies the symmetric-bound convention: a single supplied
// side derives the other by negation.
func (m *MPPI) resolveBounds(uMin, uMax []float64) error {
	if uMax != nil && uMin == nil {
		uMin = negate(uMax)
	}
	if uMin != nil && uMax == nil {
		uMax = negate(uMin)
	}
	if uMin == nil {
		return nil
	}
	if len(uMin) != m.nu || len(uMax) != m.nu {
		return fmt.Errorf("bounds have %d/%d components, control dimension is %d: %w",
			len(uMin), len(uMax), m.nu, ErrBadBounds)
	}
	for i := range uMin {
		if uMin[i] > uMax[i] {
			return fmt.Errorf("dimension %d: min %f > max %f: %w", i, uMin[i], uMax[i], ErrBadBounds)
		}
	}
	m.uMin = append([]float64(nil), uMin...)
	m.uMax = append([]float64(nil), uMax...)
	return nil
}

func negate(v []float64) []float64 {
	n := make([]float64, len(v))
	for i := range v {
		n[i] = -v[i]
	}
	return n
}

func (m *MPPI) Horizon() int    { return m.horizon }
func (m *MPPI) Samples() int    { return m.kSamples }
func (m *MPPI) StateDim() int   { return m.nx }
func (m *MPPI) ControlDim() int { return m.nu }

// Nominal returns a copy of the current nominal control sequence. Note the
// sequence is only clamped when sampled perturbations are formed, so right
// after a Command the returned values can transiently exceed the configured
// bounds; the next planning pass re-clamps. Kept for compatibility with
// callers that read the raw plan between steps.
func (m *MPPI) Nominal() [][]float64 {
	out := make([][]float64, len(m.u))
	for t := range m.u {
		out[t] = append([]float64(nil), m.u[t]...)
	}
	return out
}

// Reset resamples the nominal sequence from the noise model. Used at trial
// boundaries so a stale plan is not carried into an unrelated episode.
func (m *MPPI) Reset() {
	for t := range m.u {
		m.u[t] = m.noise.Sample(m.rng)
	}
}

// Command plans from a single state estimate and returns the next action(s).
// The nominal sequence is mutated exactly once per successful call (shift
// plus weighted update); on any error it is left as it was before the call.
func (m *MPPI) Command(x dynamo.State) (Plan, error) {
	if len(x) != m.nx {
		return Plan{}, fmt.Errorf("state has %d components, expected %d: %w",
			len(x), m.nx, dynamo.ErrDimensionMismatch)
	}
	states := make([]dynamo.State, m.kSamples)
	for k := range states {
		states[k] = x.Clone()
	}
	return m.command(states)
}

// CommandEnsemble plans over K state hypotheses instead of a point estimate,
// one per sampled trajectory (e.g. particles from an uncertain estimator).
// The hypothesis count must equal the sample count; the explicit method
// keeps a K x nx batch from ever being confused with a single state when K
// happens to equal nx.
func (m *MPPI) CommandEnsemble(xs []dynamo.State) (Plan, error) {
	if len(xs) != m.kSamples {
		return Plan{}, fmt.Errorf("got %d state hypotheses, expected K=%d: %w",
			len(xs), m.kSamples, dynamo.ErrDimensionMismatch)
	}
	states := make([]dynamo.State, m.kSamples)
	for k, x := range xs {
		if len(x) != m.nx {
			return Plan{}, fmt.Errorf("hypothesis %d has %d components, expected %d: %w",
				k, len(x), m.nx, dynamo.ErrDimensionMismatch)
		}
		states[k] = x.Clone()
	}
	return m.command(states)
}

func (m *MPPI) command(states []dynamo.State) (Plan, error) {
	prior := m.Nominal()

	// Warm start: shift left one step, append the init action.
	first := m.u[0]
	copy(m.u, m.u[1:])
	copy(first, m.uInit)
	m.u[m.horizon-1] = first

	noise := m.sampleNoise()
	perturbed := m.perturb(noise)

	// Re-derive the noise from the clamped actions so the control-effort
	// cost only reflects the realizable perturbation.
	for k := 0; k < m.kSamples; k++ {
		for t := 0; t < m.horizon; t++ {
			m.clamp(perturbed[k][t])
			for i := 0; i < m.nu; i++ {
				noise[k][t][i] = perturbed[k][t][i] - m.u[t][i]
			}
		}
	}

	stateSeq, actionSeq, err := m.rollout(states, perturbed)
	if err != nil {
		m.restore(prior)
		return Plan{}, err
	}

	total := make([]float64, m.kSamples)
	if m.cost != nil {
		trajCost, err := m.cost.Cost(stateSeq, actionSeq)
		if err != nil {
			m.restore(prior)
			return Plan{}, fmt.Errorf("trajectory cost boundary: %w", err)
		}
		if len(trajCost) != m.kSamples {
			m.restore(prior)
			return Plan{}, fmt.Errorf("cost boundary returned %d values for %d trajectories: %w",
				len(trajCost), m.kSamples, dynamo.ErrDimensionMismatch)
		}
		copy(total, trajCost)
	}
	m.addControlEffort(total, noise)

	for _, c := range total {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			m.restore(prior)
			return Plan{}, ErrNonFiniteCost
		}
	}

	weights := importanceWeights(total, m.lambda)

	for t := 0; t < m.horizon; t++ {
		for i := 0; i < m.nu; i++ {
			delta := 0.0
			for k := 0; k < m.kSamples; k++ {
				delta += weights[k] * noise[k][t][i]
			}
			m.u[t][i] += delta
		}
	}

	plan := Plan{
		Actions: make([]dynamo.Control, m.uPerCommand),
		Costs:   total,
		Weights: weights,
	}
	for i := 0; i < m.uPerCommand; i++ {
		a := make(dynamo.Control, m.nu)
		for j := 0; j < m.nu; j++ {
			a[j] = m.uScale * m.u[i][j]
		}
		plan.Actions[i] = a
	}

	rollout, err := m.Rollouts(states[0], 1)
	if err != nil {
		m.restore(prior)
		return Plan{}, err
	}
	plan.Rollout = rollout[0]

	return plan, nil
}

func (m *MPPI) sampleNoise() [][][]float64 {
	noise := make([][][]float64, m.kSamples)
	for k := range noise {
		noise[k] = make([][]float64, m.horizon)
		for t := range noise[k] {
			noise[k][t] = m.noise.Sample(m.rng)
		}
	}
	return noise
}

func (m *MPPI) perturb(noise [][][]float64) [][][]float64 {
	perturbed := make([][][]float64, m.kSamples)
	for k := range perturbed {
		perturbed[k] = make([][]float64, m.horizon)
		for t := range perturbed[k] {
			p := make([]float64, m.nu)
			for i := 0; i < m.nu; i++ {
				p[i] = m.u[t][i] + noise[k][t][i]
			}
			perturbed[k][t] = p
		}
	}
	if m.sampleNullAction {
		last := perturbed[m.kSamples-1]
		for t := range last {
			copy(last[t], m.uInit)
		}
	}
	return perturbed
}

func (m *MPPI) clamp(u []float64) {
	if m.uMin == nil {
		return
	}
	for i := range u {
		if u[i] < m.uMin[i] {
			u[i] = m.uMin[i]
		}
		if u[i] > m.uMax[i] {
			u[i] = m.uMax[i]
		}
	}
}

// rollout advances all K trajectories through the dynamics boundary and
// records the visited states and the scaled actions that produced them.
func (m *MPPI) rollout(states []dynamo.State, perturbed [][][]float64) ([][]dynamo.State, [][]dynamo.Control, error) {
	stateSeq := make([][]dynamo.State, m.kSamples)
	actionSeq := make([][]dynamo.Control, m.kSamples)
	for k := range stateSeq {
		stateSeq[k] = make([]dynamo.State, m.horizon)
		actionSeq[k] = make([]dynamo.Control, m.horizon)
	}

	cur := states
	actions := make([]dynamo.Control, m.kSamples)
	for t := 0; t < m.horizon; t++ {
		for k := 0; k < m.kSamples; k++ {
			a := make(dynamo.Control, m.nu)
			for i := 0; i < m.nu; i++ {
				a[i] = m.uScale * perturbed[k][t][i]
			}
			actions[k] = a
		}

		next, err := m.dyn.Step(cur, actions, m.stepIndex(t))
		if err != nil {
			return nil, nil, fmt.Errorf("dynamics boundary at step %d: %w", t, err)
		}
		if len(next) != m.kSamples {
			return nil, nil, fmt.Errorf("dynamics boundary returned %d states for %d trajectories: %w",
				len(next), m.kSamples, dynamo.ErrDimensionMismatch)
		}

		for k := 0; k < m.kSamples; k++ {
			stateSeq[k][t] = next[k]
			actionSeq[k][t] = actions[k]
		}
		cur = next
	}

	return stateSeq, actionSeq, nil
}

func (m *MPPI) stepIndex(t int) int {
	if m.stepDependent {
		return t
	}
	return 0
}

// addControlEffort accumulates lambda * sum_t noise_t' * Sigma^-1 * U_t into
// the per-trajectory totals.
func (m *MPPI) addControlEffort(total []float64, noise [][][]float64) {
	prec := m.noise.Precision()

	// Sigma^-1 * U_t, shared across trajectories.
	precU := make([][]float64, m.horizon)
	for t := range precU {
		row := make([]float64, m.nu)
		for i := 0; i < m.nu; i++ {
			sum := 0.0
			for j := 0; j < m.nu; j++ {
				sum += prec.At(i, j) * m.u[t][j]
			}
			row[i] = sum
		}
		precU[t] = row
	}

	for k := 0; k < m.kSamples; k++ {
		effort := 0.0
		for t := 0; t < m.horizon; t++ {
			for i := 0; i < m.nu; i++ {
				n := noise[k][t][i]
				if m.noiseAbsCost {
					n = math.Abs(n)
				}
				effort += n * precU[t][i]
			}
		}
		total[k] += m.lambda * effort
	}
}

// importanceWeights computes the beta-shifted softmax over negative costs.
// Subtracting the minimum keeps the exponentials in range; when all costs
// are equal every weight is exp(0) and the normalization yields uniform
// weights, so degeneracy needs no special case.
func importanceWeights(costs []float64, lambda float64) []float64 {
	beta := costs[0]
	for _, c := range costs[1:] {
		if c < beta {
			beta = c
		}
	}

	weights := make([]float64, len(costs))
	eta := 0.0
	for i, c := range costs {
		w := math.Exp(-(c - beta) / lambda)
		weights[i] = w
		eta += w
	}
	for i := range weights {
		weights[i] /= eta
	}
	return weights
}

func (m *MPPI) restore(prior [][]float64) {
	for t := range m.u {
		copy(m.u[t], prior[t])
	}
}

// Rollouts replays the current nominal sequence from the given state,
// replicated numRollouts times (useful with stochastic dynamics to
// visualize the spread of outcomes under one plan). The nominal sequence is
// not mutated. The returned trajectories have length Horizon and exclude
// the initial state.
func (m *MPPI) Rollouts(x dynamo.State, numRollouts int) ([][]dynamo.State, error) {
	if len(x) != m.nx {
		return nil, fmt.Errorf("state has %d components, expected %d: %w",
			len(x), m.nx, dynamo.ErrDimensionMismatch)
	}
	if numRollouts < 1 {
		numRollouts = 1
	}

	cur := make([]dynamo.State, numRollouts)
	for r := range cur {
		cur[r] = x.Clone()
	}

	out := make([][]dynamo.State, numRollouts)
	for r := range out {
		out[r] = make([]dynamo.State, m.horizon)
	}

	actions := make([]dynamo.Control, numRollouts)
	for t := 0; t < m.horizon; t++ {
		a := make(dynamo.Control, m.nu)
		for i := 0; i < m.nu; i++ {
			a[i] = m.uScale * m.u[t][i]
		}
		for r := range actions {
			actions[r] = a.Clone()
		}

		next, err := m.dyn.Step(cur, actions, m.stepIndex(t))
		if err != nil {
			return nil, fmt.Errorf("dynamics boundary at step %d: %w", t, err)
		}
		if len(next) != numRollouts {
			return nil, fmt.Errorf("dynamics boundary returned %d states for %d rollouts: %w",
				len(next), numRollouts, dynamo.ErrDimensionMismatch)
		}

		for r := range next {
			out[r][t] = next[r]
		}
		cur = next
	}

	return out, nil
}
