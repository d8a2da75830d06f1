// Package tempo converts between absolute seconds and 1-based measure numbers
// under a piecewise-constant tempo map.
package tempo
