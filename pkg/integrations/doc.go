// Package integrations provides HTTP clients for the upstream metadata
// services loaders resolve against.
//
// # Overview
//
// Each upstream has its own subpackage holding its response schemas and a
// thin client:
//
//   - [mojang]: Piston version manifest, version JSON and asset indexes
//   - [loadermeta]: Fabric and Quilt loader-profile JSON plus Maven sidecars
//   - [installer]: Forge and NeoForge installer JARs
//   - [updateserver]: custom update-server directories and metadata
//
// # Client Pattern
//
// All upstream clients embed the shared [Client] and add a base URL:
//
//	base := integrations.NewClient(httpClient, integrations.Options{Store: st})
//	pm := mojang.NewClient(base, mojang.DefaultManifestURL)
//	manifest, err := pm.FetchManifest(ctx)
//
// [Client] maps HTTP outcomes onto pkg/errors codes:
//
//   - 404 → NOT_FOUND
//   - 429 → RATE_LIMITED (with Retry-After)
//   - 5xx, transport failures, open breakers → NETWORK_ERROR
//
// Nothing here retries. A failure reaches the caller, and the manifest
// caches never store failures.
//
// # Persistent Caching
//
// [Client.Cached] keeps decoded documents in a [store.Store] between runs.
// Only content-addressed or slow-changing documents go through it.
//
// [mojang]: github.com/matzehuels/lodestone/pkg/integrations/mojang
// [loadermeta]: github.com/matzehuels/lodestone/pkg/integrations/loadermeta
// [installer]: github.com/matzehuels/lodestone/pkg/integrations/installer
// [updateserver]: github.com/matzehuels/lodestone/pkg/integrations/updateserver
// [store.Store]: github.com/matzehuels/lodestone/pkg/store.Store
package integrations
