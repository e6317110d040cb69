// Package driver walks format targets and applies the brace reflow to every
// accepted file, persisting the result.
//
// Per-file failures never abort a run: they are returned as Results carrying
// an *AccessError and traversal continues with the remaining paths.
package driver
