package fabric

// Query names one view of a merged Fabric or Quilt version.
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
