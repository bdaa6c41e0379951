// Package logic implements the gopck commands on top of the pack builder:
// resolving inputs, building, key generation, verification and pattern checks.
package logic
