/*
Package ports defines the driven ports (interfaces) around the turtle engine.

These interfaces decouple sessions from external implementations, allowing the
transports to work with various storage backends, lock services and renderers.

# Key Interfaces

  - SessionStore: Responsible for persisting and loading session records.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - Renderer: Turns a command log into an output document (e.g., SVG).
*/
package ports
