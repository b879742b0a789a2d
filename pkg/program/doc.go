// Package program describes turtle drawings as data: an ordered list of
// steps, each naming an engine operation with its arguments and options.
//
// Programs are read from YAML or JSON files, built in Go with a Builder, or
// received as JSON by the HTTP and MCP transports. Either way they reach the
// engine through Apply, which resolves aliases (fd, lt, pu, ...), fills the
// default arguments and converts loosely typed values.
package program
