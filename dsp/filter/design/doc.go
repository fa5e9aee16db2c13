// Package design derives biquad coefficients for the filter shapes used by
// the equalizer and spatializer.
//
// The parametric shapes (peaking, shelving, low/highpass) follow the Audio EQ
// Cookbook by Robert Bristow-Johnson. Butterworth and Linkwitz-Riley cascades
// are built from the same second-order prototypes with section Q values from
// the Butterworth pole angles.
//
// Every designer is total: for inputs that would produce a non-finite or
// degenerate transfer function, the result is the unity bypass section rather
// than an error. Audio keeps flowing; the caller never has to check.
package design
