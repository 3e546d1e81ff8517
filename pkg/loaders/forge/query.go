package forge

// Query names one view of a merged Forge or NeoForge version.
type Query int

const (
	Libraries Query = iota
	Arguments
	MainClass
	Full
)

// Queries lists every variant.
var Queries = []Query{Libraries, Arguments, MainClass, Full}

func (q Query) String() string {
	switch q {
	case Libraries:
		return "libraries"
	case Arguments:
		return "arguments"
	case MainClass:
		return "main-class"
	case Full:
		return "full"
	}
	return "unknown"
}
