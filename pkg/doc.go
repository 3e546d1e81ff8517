// Package pkg provides the core libraries for Lodestone, a Minecraft launch
// profile resolver.
//
// # Overview
//
// Lodestone turns a profile (a Minecraft version plus an optional mod loader
// and loader version) into a single merged launch descriptor: main class,
// arguments, libraries, assets and Java requirements. Descriptors are built
// by layering loader data on top of the vanilla version document.
//
// # Architecture
//
//	Profile (minecraft, loader, loader version)
//	         ↓
//	    [resolve] picks the loader for the profile
//	         ↓
//	    [loaders] fetch raw upstream data through [integrations]
//	         ↓
//	    [version] merges overlays onto the vanilla base
//	         ↓
//	    [manifest] caches raw and per-query results
//
// # Main Packages
//
// [version] - Profile, launch descriptor, overlay layers and library merging.
//
// [loaders] - One subpackage per loader (vanilla, fabric, quilt, forge,
// neoforge, updateserver) plus the Forge-style install processor planner.
//
// [manifest] - Two-level cache (raw upstream data and derived query views)
// with TTL expiry and single-flight fetches.
//
// [integrations] - HTTP clients for Mojang, Fabric and Quilt meta, the
// Forge and NeoForge installer repositories and update servers.
//
// [resolve] - Wires configuration, transport, store and loaders together.
//
// # Infrastructure
//
// [cache] - In-memory TTL cache with optional persistent [store] backing.
//
// [store] - File, Redis and no-op persistent stores.
//
// [httputil] - HTTP transport with DNS caching and per-host circuit breakers.
//
// [config] - TOML and environment configuration.
//
// [errors] - Coded errors shared by the CLI and HTTP server.
//
// [observability] - Resolution event hooks and Prometheus metrics.
//
// # Quick Start
//
//	cfg := config.Default()
//	r, _ := resolve.New(ctx, cfg, resolve.Options{})
//	defer r.Close()
//
//	p := &version.Profile{Name: "demo", MinecraftVersion: "1.20.1", Loader: version.Fabric}
//	v, _ := r.Resolve(ctx, p)
//	fmt.Println(v.MainClass)
//
// [version]: https://pkg.go.dev/github.com/matzehuels/lodestone/pkg/version
// [loaders]: https://pkg.go.dev/github.com/matzehuels/lodestone/pkg/loaders
// [manifest]: https://pkg.go.dev/github.com/matzehuels/lodestone/pkg/manifest
// [integrations]: https://pkg.go.dev/github.com/matzehuels/lodestone/pkg/integrations
// [resolve]: https://pkg.go.dev/github.com/matzehuels/lodestone/pkg/resolve
// [cache]: https://pkg.go.dev/github.com/matzehuels/lodestone/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/lodestone/pkg/store
// [httputil]: https://pkg.go.dev/github.com/matzehuels/lodestone/pkg/httputil
// [config]: https://pkg.go.dev/github.com/matzehuels/lodestone/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/lodestone/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/lodestone/pkg/observability
package pkg
