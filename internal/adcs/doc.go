// Package adcs provides the core vocabulary for the magnetorquer
// attitude controller.
//
// The package defines the fundamental types exchanged between the
// control pipeline stages:
//
//   - [State]: 6-vector attitude/rate deviation from equilibrium
//   - [Field]: measured body-frame magnetic field
//   - [Dipole]: commanded magnetic dipole moment
//   - [Sensors], [Actuator]: the external collaborators of the cycle
//
// # Thread Safety
//
// Controller instances are NOT thread-safe. Each controller owns its
// full matrix workspace exclusively and is driven by exactly one
// caller at a fixed cadence.
package adcs
