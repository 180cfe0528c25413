// Package analysis turns the output of an eigenmode simulation into circuit
// quantities: junction energy, qubit anharmonicity, dispersive shift, Lamb
// shift and qubit-resonator coupling. It reads the saved configuration
// document for the junction inductance and two mode-keyed result tables for
// frequencies and energy participation ratios.
package analysis
