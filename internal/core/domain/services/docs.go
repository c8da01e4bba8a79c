// Package services provides domain services that turn a set of delivery
// demand points and a travel cost matrix into an ordered stop sequence.
// It implements the sequencing strategies used during route planning.
//
// The package includes:
//   - NearestNeighborSequence: greedy shortest-distance ordering
//   - SolveCVRP: capacitated, time-window aware ordering with stop dropping
//   - ManualSequence: caller-supplied ordering preserved as-is
//   - SequenceFromPermutation: validation and costing of an externally
//     computed visit order
//   - SelectAlgorithm: the policy choosing between the strategies
//
// All strategies are pure functions over their inputs. They never touch
// storage or the network; cost matrices are computed by the caller.
package services
