// Package source loads policy rule documents into the engine.
//
// A Source yields named rule documents; the Loader registers each one as
// a policy through the engine, so documents on disk (or in a git
// repository, see the git subpackage) become executable policies. The
// directory source can watch for file changes and re-sync.
package source
