// Package rotation detects the start and end of physical stage rotation
// from angle samples.
//
// Start detection is a threshold crossing on the absolute delta from a
// reference angle; stop detection is stagnation: two samples spaced at least
// one check interval apart that read numerically equal. Both are explicit
// poll cycles because the underlying stage readout is poll-based; the
// sample-by-sample semantics are what the acquisition tests rely on.
package rotation
