//go:build !es_legacy_lifecycle

package esmsg

// Default target is 11.0 or newer, where the kernel refcounts delivered
// messages and acquire/release are O(1).
const buildRegime = regimeRetain
