/*
Package turtle is a 2D turtle-graphics engine that records every drawing
operation in an append-only command log.

A turtle has a position, a heading, a pen and a fill state. Each mutating call
updates that state and appends exactly one self-describing command carrying a
snapshot of the turtle. Renderers (an SVG writer, a browser canvas, a test)
consume the log incrementally; the engine never draws anything itself.

# Coordinates

The origin is the canvas center, y grows upwards, and the heading is measured
in degrees counter-clockwise from +x. A fresh turtle sits at (0, 0) facing 90
(up) with the pen down, drawing black with width 1.

# Usage

	eng := turtle.New(turtle.WithCanvas(640, 480, false))

	for i := 0; i < 4; i++ {
		_ = eng.Forward(100)
		_ = eng.Left(90)
	}

	for _, cmd := range eng.Log().Commands() {
		fmt.Println(cmd.ID, cmd.Type)
	}

Commands whose operation describes a motion (line, left, right, circle and the
spirals) carry the pose before the motion; every other command carries the
state after the change. A renderer that remembers the last ID it drew can
resume with Log().Since(id).

# Persistence

Engine.Snapshot returns a domain.Record that a ports.SessionStore can persist,
and Restore continues from it without gaps in the ID sequence. The session
package binds engines, stores and locks together for the HTTP and MCP
transports.
*/
package turtle
