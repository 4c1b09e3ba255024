// Package ot computes regularized unbalanced optimal-transport couplings
// between two point sets, such as cell populations at two time points.
//
// Transport runs a fixed number of stabilized Sinkhorn scaling iterations
// for one parameter setting (epsilon, lambda1, lambda2). When a scaling
// factor exceeds StabilizationThreshold its scale is absorbed into
// log-domain potentials (see Absorb) so small epsilon does not overflow.
//
// Search wraps Transport in a parameter search. It derives growth weights
// from raw growth rates (GrowthWeights), then adjusts epsilon and a shared
// regularization multiplier until the average effective support of the
// coupling rows falls inside a band relative to the number of target
// points:
//
//	cost := mat.NewDense(2, 2, []float64{0, 1, 1, 0})
//	res, err := ot.Search(ot.Problem{Cost: cost}, []float64{0, 0},
//	    ot.WithTransportFraction(0, 1),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Epsilon, res.Lambda1, res.Lambda2)
//
// The search has no natural iteration bound. Callers running it inside a
// service should set WithMaxIterations or use SearchContext.
package ot
