package updateserver

// Query names one view of an update-server version.
type Query int

const (
	Libraries Query = iota
	Arguments
	MainClass
	Mods
	Full
)

// Queries lists every variant.
var Queries = []Query{Libraries, Arguments, MainClass, Mods, Full}

func (q Query) String() string {
	switch q {
	case Libraries:
		return "libraries"
	case Arguments:
		return "arguments"
	case MainClass:
		return "main-class"
	case Mods:
		return "mods"
	case Full:
		return "full"
	}
	return "unknown"
}
