// Package wot computes growth-aware unbalanced optimal transport between
// cell populations observed at two time points.
//
// Given a cost matrix between source cells (earlier time point) and target
// cells (later time point), and a proliferation score per source cell, wot
// finds an entropically regularized coupling whose row sums follow the
// expected growth of each source and whose rows spread over a plausible
// number of descendants.
//
// # Features
//
//   - Stabilized Sinkhorn scaling: scaling factors are absorbed into
//     log-domain potentials so small epsilon does not overflow
//   - Adaptive parameter search over epsilon and the marginal regularization
//   - Logistic growth weights from raw proliferation scores
//   - Structured errors and zerolog-based logging
//
// # Installation
//
//	go get github.com/YuminosukeSato/wot
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/wot/ot"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    cost := mat.NewDense(2, 2, []float64{0, 1, 1, 0})
//
//	    res, err := ot.Search(ot.Problem{Cost: cost}, []float64{0, 0},
//	        ot.WithTransportFraction(0.05, 1),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println("epsilon:", res.Epsilon, "lambda:", res.Lambda1)
//	    fmt.Println("coupling:", mat.Formatted(res.Transport))
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - ot: Transport solver, growth weights and parameter search
//   - metrics: Average transport, growth fit and marginal residuals
//   - config: YAML run files with environment overrides
//   - core/parallel: Parallel processing utilities
//   - pkg/errors: Structured errors and warnings
//   - pkg/log: Structured logging
//
// The wot command (cmd/wot) solves the problem described by a run file:
//
//	wot transport --config run.yaml
//
// # Performance
//
// Kernel construction and coupling scaling run in parallel across CPU cores
// once the number of source points exceeds ot.Config.ParallelThreshold
// (256 by default). Results do not depend on the degree of parallelism.
package wot
