// Package registry maps the kind labels used in deck files (for example
// "lumped_port" or "surface_flux") onto the Go input structs and build
// functions that produce entity records.
//
// Every entity module registers its kinds through the Module interface when
// the application starts. The registry is then validated so that a malformed
// input struct fails at startup instead of at the first deck that uses it.
package registry
