// Package social holds the view-models behind the CineVibe screens. Each one
// pairs a feed.Controller for its paged list with an operation.Machine for
// writes, and a feed.Mutator where a toggle is shown ahead of the server.
//
// Inputs are validated before any request is made. A successful write that
// changes the list (create, update, delete, follow, accept, reject) reloads
// it from the first page; likes are settled in place.
package social
