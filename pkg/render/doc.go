// Package render replays turtle command logs.
//
// SVG is the reference renderer: it draws a log the way an interactive canvas
// would once every animation has finished, so the output of a session can be
// inspected, served over HTTP or compared in tests.
package render
