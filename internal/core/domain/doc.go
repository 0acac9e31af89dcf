// Package domain defines the core entities of the LearnQuest sync client.
//
// This package is the innermost layer of the hexagon. It holds the
// entities that are cached and synchronised:
//
//   - Student: a learner with level and experience points
//   - Quest: a scored activity made of ordered questions and answers
//   - Progress: one attempt of a student at a quest
//   - PendingOperation: a deferred mutation waiting for replay
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
