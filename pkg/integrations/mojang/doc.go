// Package mojang provides a client and schemas for Mojang's Piston
// metadata service.
//
// # Overview
//
// Vanilla resolution is a three-step walk:
//
//  1. The version manifest lists every release and snapshot with the URL
//     and SHA1 of its version JSON
//  2. The version JSON declares libraries, arguments, the main class, the
//     client jar and the asset index
//  3. The asset index maps asset names to content hashes
//
// Version JSON and asset indexes are content-addressed by SHA1. Both are
// verified after download, refetched once on mismatch, and kept in the
// persistent store keyed by their hash.
//
// # Rules
//
// Libraries and arguments carry rules that select them by operating
// system, architecture or launcher feature. [Env] describes the machine the
// descriptor is resolved for and [Allowed] evaluates a rule list against
// it.
package mojang
