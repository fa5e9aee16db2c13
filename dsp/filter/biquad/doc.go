// Package biquad implements second-order IIR filter sections and cascades.
//
// A Section processes audio through the Direct Form II Transposed structure,
// which keeps round-off noise low and makes coefficient updates safe while
// the filter is running. A Chain cascades sections for higher-order filters
// such as the Butterworth stacks used by crossovers.
package biquad
