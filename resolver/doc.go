// Package resolver provides modload.Resolver implementations: a file system
// resolver with extension probing, an in-memory map and a chain that tries
// resolvers in order.
//
// Identifiers are strings or values implementing Ref. Any other identifier
// type fails with a resolution error whose chain contains
// errors.ErrUnsupported.
package resolver
