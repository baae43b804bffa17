// Package analysis inspects recorded command signals in the frequency
// domain. High energy near the Nyquist rate means the controller is
// chattering between wheel commands rather than steering smoothly.
package analysis
