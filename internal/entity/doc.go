// Package entity contains the pure constructors for every record that can be
// placed into a simulation document: the problem and model sections,
// materials, boundary conditions, postprocessing probes and solver blocks.
//
// Builders take an input struct whose optional fields are opt.Opt values.
// The returned record carries an ordered Payload holding exactly the supplied
// fields, in the order the input struct declares them. Records belonging to a
// tagged family (boundaries, postprocessing, solver blocks) also carry their
// kind, which the document uses to group them.
//
// Nothing in this package performs I/O or keeps state between calls.
package entity
