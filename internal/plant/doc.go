// Package plant builds the state-space model of the satellite's
// rotational dynamics: the constant blocks (linearized plant, its
// discretization, cost and inertia matrices) and the per-cycle input
// matrices derived from the measured magnetic field.
package plant
