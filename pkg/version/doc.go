// Package version defines the normalized launch descriptor every loader
// resolves to.
//
// A [Version] is the single wire contract between metadata resolution and
// everything downstream (installers, download pipelines, argument builders).
// Vanilla produces one directly from the Piston manifest; every mod loader
// produces one by overlaying its own data on the vanilla descriptor for the
// same Minecraft version.
//
// # Merge rules
//
// Libraries are deduplicated by their Maven key (group:artifact). The base
// descriptor's libraries are inserted first, then the overlay's, so an
// overlay can pin a different version of a library the base already ships:
//
//	merged := version.MergeLibraries(vanilla.Libraries, fabric.Libraries)
//
// Game arguments are concatenated base first. JVM arguments distinguish
// "absent" (nil) from "present but empty":
//
//	MergeJVM([a], [b]) = [a b]
//	MergeJVM([a], nil) = [a]
//	MergeJVM(nil, [b]) = [b]
//	MergeJVM(nil, nil) = nil
//
// Natives, the client jar and the asset index are inherited from the base.
package version
