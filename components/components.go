// Package components defines ECS components for entities that live alongside
// the particle grid.
package components
