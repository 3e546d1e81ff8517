package vanilla

// Query names one view of a vanilla version.
type Query int

const (
	Libraries Query = iota
	Arguments
	MainClass
	JavaVersion
	Natives
	Client
	AssetIndex
	Assets
	Full
)

// Queries lists every variant.
var Queries = []Query{Libraries, Arguments, MainClass, JavaVersion, Natives, Client, AssetIndex, Assets, Full}

var queryNames = [...]string{
	Libraries:   "libraries",
	Arguments:   "arguments",
	MainClass:   "main-class",
	JavaVersion: "java-version",
	Natives:     "natives",
	Client:      "client",
	AssetIndex:  "asset-index",
	Assets:      "assets",
	Full:        "full",
}

func (q Query) String() string {
	if q < 0 || int(q) >= len(queryNames) {
		return "unknown"
	}
	return queryNames[q]
}
