/*
Package session binds turtle engines to persistent sessions.

A Manager loads the record of a session, rebuilds its engine, runs the caller's
operations, persists the result and broadcasts the newly appended commands.
Calls on the same session are serialized in-process with a reference-counted
mutex and, when a DistributedLocker is configured, across replicas.
*/
package session
