// Package control implements the per-tick LQR pipeline for the
// magnetorquers and the cycle orchestrator that connects it to the
// sensor and actuator collaborators.
//
//	sensors -> input model -> riccati solve -> gain -> u = -K*x -> actuator
//
// Every fault (degenerate field, singular matrix, non-convergence)
// short-circuits the cycle and falls back to holding the last valid
// command or commanding zero; an invalid or NaN command never reaches
// the actuator.
package control
