/*
Package domain contains the core domain models of the turtle engine.

It defines the turtle state, the drawing commands appended to the command log,
colors and the persisted session record. This package is kept pure and free of
I/O so that adapters (HTTP, MCP, Redis) and renderers can share the same
vocabulary without depending on the engine itself.

# Key Entities

  - State: the live turtle pose and pen/fill style.
  - Snapshot: the subset of State copied into every emitted Command.
  - Command: an immutable, tagged drawing record ("line", "circle", "write", ...).
  - Color: either a named color or an "rgb(r, g, b)" triple.
  - Record: a persisted session (canvas, state, counter and the full command log).
*/
package domain
