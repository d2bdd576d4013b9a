// Package artifact contains concrete implementations of core.ArtifactStore.
//
// Artifacts are named byte blobs produced during one orchestration run
// (scripts, reports, synthesized audio). Every store scopes them by run id so
// all actors of a team tree, including nested teams, see the same set.
//
// Two backends are provided: InMemoryStore for tests and single process use,
// and DirStore which persists each run under its own directory on disk.
package artifact
