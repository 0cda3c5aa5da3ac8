/*
Package observability exposes Prometheus metrics for graph operations:
copies, node clones, value pulls, and store round trips.

The HTTP adapter mounts the registry's handler at /metrics; embedded
hosts can register the collectors on their own registry instead.
*/
package observability
