package cakes

// Metric is any callable distance function over items of type I producing a
// distance value of type T. A metric is assumed pure; for the Par* engines
// it must also be safe to call concurrently from multiple goroutines.
type Metric[I any, T DistanceValue] func(a, b I) T
