//go:build es_legacy_lifecycle

package esmsg

// 10.15 target: the kernel does not refcount, so acquiring a record means
// deep-duplicating the native message before the delivery callback returns.
const buildRegime = regimeCopy
