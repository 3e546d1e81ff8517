// Package quilt resolves Quilt loader profiles merged over vanilla.
//
// Quilt's meta service publishes Fabric-compatible launcher profiles, so
// the resolution itself is package fabric's; this package binds it to the
// Quilt service and loader name.
package quilt

import (
	"github.com/matzehuels/lodestone/pkg/integrations/loadermeta"
	"github.com/matzehuels/lodestone/pkg/loaders"
	"github.com/matzehuels/lodestone/pkg/loaders/fabric"
	"github.com/matzehuels/lodestone/pkg/version"
)

// KnotClient is the Quilt client entry point.
const KnotClient = "org.quiltmc.loader.impl.launch.knot.KnotClient"

// Options configures the loader.
type Options = fabric.Options

// New creates the Quilt loader. client must point at a Quilt meta
// service such as loadermeta.QuiltURL; base resolves vanilla descriptors.
func New(client *loadermeta.Client, base loaders.Base, opts Options) *fabric.Loader {
	return fabric.NewLoader(version.Quilt, client, base, opts)
}
