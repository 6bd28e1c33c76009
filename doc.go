// Package kvtable contains the core components of kvtable, a partitioned
// key-value table engine. This root package defines the types which are
// employed during regular use of the engine, as well as in the extension of
// the engine with new sources and sinks, and is a good overview of kvtable's
// key concepts.
package kvtable
