// Package transform provides small image post-processing operations:
// Gaussian blur, uniform downscaling, non-uniform scaling and alpha-composited
// watermarking.
//
// Every operation is a pure function over decoded images. The *File variants
// add decoding, output path derivation and atomic writes around them. The
// package works entirely in memory; no network or GPU is required.
package transform
