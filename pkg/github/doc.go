// Package github implements the GitHub side of the connection setup flow.
// It fetches user and organization profiles over REST and GraphQL,
// normalizes the two payload shapes into one Account record, reconciles
// freshly fetched accounts with a previously persisted selection, and
// validates credentials against github.com or a self-managed host.
package github
