// Package analytics computes the dataset-wide views of the dashboard: the
// per-coin return-volatility ranking (with its buy-recommendation
// heuristic) and the correlation of a selected coin's daily returns against
// all other coins.
//
// Both computations are pure functions of a loaded dataset. The volatility
// table is independent of any coin selection and is worth memoizing per
// dataset version; correlation vectors are cheap and recomputed on demand.
package analytics
