// Package git tracks rule documents in a git repository.
//
// The repository source clones a single branch, loads *.rules documents
// from a path inside the checkout, and can poll the remote for new
// commits. Together with the loader this gives GitOps-style policy
// management: merged rule changes become registered policies on the next
// poll.
package git
