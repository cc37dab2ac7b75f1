/*
Package domain contains the core domain models for the OpenAir panel engine.

It defines the fundamental entities of a control surface: declarative Nodes,
the bounded ValueModel every widget manages, and the CompositeState coupling
a master value to dependent channels. This package is kept pure and free of
I/O or rendering dependencies, following Hexagonal Architecture principles.

# Key Entities

  - Node: one entry of the declarative widget tree (kind tag + path fragment + properties).
  - ValueModel: a bounded, typed scalar with range, default and optional wrap-around.
  - CompositeState: a master ValueModel plus dependent channels with preserved offsets.
  - LifecycleHooks: observability callbacks for registration, publish and remote apply.
*/
package domain
