/*
Package assert holds the error aggregation and invariant checks used across superbus.

A [Collector] gathers typed errors, like handler faults or failed scenario files, and reports them as one error that still works with [errors.Is] and [errors.As].

[True] guards internal invariants, like the bus cache cursor never running past its registry bucket.
Build with the 'noassert' tag to compile the checks out of hot dispatch paths.
*/
package assert
