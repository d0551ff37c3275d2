/*
Package domain contains the core models of the civicflow engine.

It defines the entities a flow is made of and the errors a flow can raise. This package
is kept pure and free of I/O, following the same hexagonal layout as the rest of the
module: adapters live under pkg/adapters, the walk itself lives in internal/runtime.

# Key Entities

  - Step: a named unit of work operating on a shared Context.
  - Outcome: the label a Step returns to select its outgoing Transition.
  - Transition: a directed edge between two steps, keyed by an Outcome.
  - Context: the single mutable state object passed through one execution.
  - Key: a typed accessor for a well-known Context entry.
*/
package domain
