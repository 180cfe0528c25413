// Package hcl provides the concrete HCL implementation of config.Loader. It
// parses deck files, decodes them into the schema structs, and translates the
// result into entity records through the decoders held by the registry.
package hcl
