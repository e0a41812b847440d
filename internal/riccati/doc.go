// Package riccati solves the discrete-time algebraic Riccati equation
// arising from the time-varying LQR problem, using the Hamiltonian
// matrix-square-root Newton-Raphson method.
package riccati
