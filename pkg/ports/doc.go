/*
Package ports defines the driven ports (interfaces) for the OpenAir panel engine.

These interfaces decouple the core logic from external implementations,
allowing the engine to work with various message brokers and rendering
surfaces.

# Key Interfaces

  - Bus: the publish/subscribe message broker carrying widget state.
  - Canvas: the retained drawing surface widgets render onto.
  - Widget: any live control composed onto a panel.
  - Scheduler: the single-goroutine mutation point all cross-thread work
    is handed off to.
  - TreeLoader: the source of the declarative widget tree.
*/
package ports
