// Package sim is the closed-loop verification harness: it propagates
// the linearized attitude deviation dynamics under the controller's
// dipole commands, sampling an orbital magnetic-field model at the
// control cadence.
package sim
