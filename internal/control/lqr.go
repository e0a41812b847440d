package control

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/magsat/internal/adcs"
	"github.com/san-kum/magsat/internal/plant"
	"github.com/san-kum/magsat/internal/riccati"
)

// FallbackPolicy selects what the controller commands when a cycle
// faults. Either way, a fault never reaches the actuator as NaN.
type FallbackPolicy int

const (
	// HoldLast repeats the last valid command (zero if none yet).
	HoldLast FallbackPolicy = iota
	// ZeroDipole always commands zero dipole on a fault.
	ZeroDipole
)

// Result is the typed outcome of one control cycle.
type Result struct {
	// Dipole is the command to apply. Always finite.
	Dipole adcs.Dipole
	// Held reports that Dipole is a fallback, not a fresh solution.
	Held bool
	// Iterations is the Riccati iteration count for this cycle.
	Iterations int
	// Err is the fault that triggered the fallback, nil on success.
	Err error
}

// LQR is the per-cycle control pipeline: input model, Riccati solve,
// gain synthesis, command. It owns its full matrix workspace and must
// be driven by exactly one caller.
type LQR struct {
	model  *plant.Model
	input  *plant.InputModel
	solver *riccati.Solver
	gains  *gainSynth

	xVec *mat.VecDense // 6
	uVec *mat.VecDense // 3

	lastK    *mat.Dense
	last     adcs.Dipole
	haveLast bool
	policy   FallbackPolicy
}

// NewLQR builds a controller around the given constant-block model.
func NewLQR(m *plant.Model, policy FallbackPolicy) (*LQR, error) {
	solver, err := riccati.NewSolver(m)
	if err != nil {
		return nil, err
	}
	return &LQR{
		model:  m,
		input:  plant.NewInputModel(m),
		solver: solver,
		gains:  newGainSynth(m),
		xVec:   mat.NewVecDense(6, nil),
		uVec:   mat.NewVecDense(3, nil),
		policy: policy,
	}, nil
}

// Step runs one control cycle for the measured state deviation and
// magnetic field. On any fault it falls back per the configured policy
// and reports the fault in Result.Err.
func (c *LQR) Step(x adcs.State, b adcs.Field) Result {
	if len(x) != 6 {
		return c.fallback(fmt.Errorf("%w: state has %d components", adcs.ErrDimensionMismatch, len(x)))
	}
	if !x.IsValid() {
		return c.fallback(adcs.ErrInvalidState)
	}

	if err := c.input.Update(b); err != nil {
		return c.fallback(err)
	}

	p, stats, err := c.solver.Solve(c.input.Bd)
	if err != nil {
		res := c.fallback(err)
		res.Iterations = stats.Iterations
		return res
	}

	k, err := c.gains.compute(p, c.input.Bd)
	if err != nil {
		res := c.fallback(err)
		res.Iterations = stats.Iterations
		return res
	}

	// u = -K*x
	for i := 0; i < 6; i++ {
		c.xVec.SetVec(i, x[i])
	}
	c.uVec.MulVec(k, c.xVec)
	u := adcs.Dipole{-c.uVec.AtVec(0), -c.uVec.AtVec(1), -c.uVec.AtVec(2)}
	if !u.IsValid() {
		res := c.fallback(fmt.Errorf("%w: command is not finite", adcs.ErrSingularMatrix))
		res.Iterations = stats.Iterations
		return res
	}

	c.lastK = k
	c.last = u
	c.haveLast = true
	return Result{Dipole: u, Iterations: stats.Iterations}
}

// Command adapts Step to the closed-loop simulation contract: the
// returned dipole is always safe to apply, and the error reports the
// fault that forced a fallback, if any.
func (c *LQR) Command(x adcs.State, b adcs.Field, t float64) (adcs.Dipole, error) {
	res := c.Step(x, b)
	return res.Dipole, res.Err
}

// LastGain returns the most recent feedback gain, or nil before the
// first successful cycle. Owned by the controller; read-only.
func (c *LQR) LastGain() *mat.Dense {
	return c.lastK
}

func (c *LQR) fallback(err error) Result {
	res := Result{Held: true, Err: err}
	if c.policy == HoldLast && c.haveLast {
		res.Dipole = c.last
	}
	return res
}
