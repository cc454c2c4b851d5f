// Package cakes implements a metric-space similarity-search index: a
// hierarchical tree of nested balls built over a collection of items
// equipped with an arbitrary distance function, answering ranged and
// k-nearest-neighbor queries against it.
//
// The tree is built once, top-down from the root, by repeatedly choosing
// two extremal "poles" in a slice of items and partitioning the slice
// around them (bipolar_split.go). How many children a cluster gets, and
// when to stop splitting, is governed by a PartitionStrategy
// (strategy.go). Four search engines answer queries against a built Tree,
// each with a sequential and a parallel variant: ranged search
// (rnn_chess.go), depth-first knn (knn_dfs.go), breadth-first knn
// (knn_bfs.go), and knn via repeated ranged search
// (knn_rrnn.go).
package cakes
