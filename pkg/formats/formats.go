// Package formats provides parsers and encoders for the binary files the
// motion engine consumes.
//
// VMD (Vocaloid Motion Data) is implemented in vmd.go.
package formats
