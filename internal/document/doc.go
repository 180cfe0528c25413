// Package document assembles entity records into the nested configuration
// document consumed by the solver.
//
// A Document is created for one problem type and then receives its Model,
// Domains, Boundaries and Solver sections, each through a single add call.
// Tagged records are grouped by kind: a kind with one record is encoded as a
// bare object, a kind with several records as an array, and an absent kind
// is omitted. Serialization is refused until Problem, Model, Domains and
// Solver have all been supplied.
package document
