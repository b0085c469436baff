// Package postype defines the branded position and length types shared by
// every other engine package: byte offsets, byte lengths, UTF-16 char
// offsets, and 0-indexed line numbers. Keeping these as distinct types
// instead of plain int64 prevents UTF-8 byte math from leaking into UTF-16
// code-unit math, and vice versa.
package postype
