// Package linalg is a thin capability layer over gonum/mat for the
// operations the control law needs: LU inversion with singularity
// detection, matrix exponential, skew operators, and block assembly.
// Pipeline code depends on this surface rather than on the backend.
package linalg
