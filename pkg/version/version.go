package version

// DefaultJavaVersion is assumed when a manifest predates javaVersion.
const DefaultJavaVersion = 8

// Version is the normalized launch descriptor.
type Version struct {
	ID          string           `json:"id,omitempty"`
	MainClass   string           `json:"main_class"`
	JavaVersion int              `json:"java_version"`
	Arguments   Arguments        `json:"arguments"`
	Libraries   []Library        `json:"libraries"`
	Natives     []Native         `json:"natives,omitempty"`
	Client      *Download        `json:"client,omitempty"`
	AssetIndex  *AssetIndex      `json:"asset_index,omitempty"`
	Assets      map[string]Asset `json:"assets,omitempty"`
	Mods        []Mod            `json:"mods,omitempty"`
}

// Arguments holds the ordered game and JVM argument lists. A nil JVM slice
// means the manifest declared no JVM arguments at all.
type Arguments struct {
	Game []string `json:"game"`
	JVM  []string `json:"jvm,omitempty"`
}

// Library is one classpath entry. Only Name is guaranteed; loaders that
// publish bare coordinates leave the rest to be completed later.
type Library struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// MavenKey returns group:artifact, the identity used for deduplication.
// A classifier is kept (group:artifact:classifier) so that a platform
// jar never replaces the main artifact it accompanies. Names that are not
// Maven coordinates are returned unchanged.
func (l Library) MavenKey() string {
	c, err := ParseCoordinate(l.Name)
	if err != nil {
		return l.Name
	}
	if c.Classifier != "" {
		return c.Key() + ":" + c.Classifier
	}
	return c.Key()
}

// Native is a platform-specific archive extracted into the natives directory.
type Native struct {
	Library
	Exclude []string `json:"exclude,omitempty"`
}

// Download describes a single artifact such as the client jar.
type Download struct {
	URL  string `json:"url"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
	Path string `json:"path,omitempty"`
}

// AssetIndex points at the asset index document for a game version.
type AssetIndex struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	SHA1      string `json:"sha1,omitempty"`
	Size      int64  `json:"size,omitempty"`
	TotalSize int64  `json:"total_size,omitempty"`
}

// Asset is one object in the asset store, addressed by hash.
type Asset struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// Path returns the object path relative to the assets/objects directory.
func (a Asset) Path() string {
	if len(a.Hash) < 2 {
		return a.Hash
	}
	return a.Hash[:2] + "/" + a.Hash
}

// Mod is a mod jar shipped by an update server.
type Mod struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Path     string `json:"path"`
	SHA1     string `json:"sha1,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

// MetaData is the result of one query against a loader: either a single
// field of a Version or the full descriptor. The set of implementations
// is closed.
type MetaData interface {
	isMetaData()
}

// Named sub-views of a Version returned by loader queries.
type (
	Libraries   []Library
	Natives     []Native
	Assets      map[string]Asset
	Mods        []Mod
	MainClass   string
	JavaVersion int
)

func (Libraries) isMetaData()   {}
func (Natives) isMetaData()     {}
func (Assets) isMetaData()      {}
func (Mods) isMetaData()        {}
func (MainClass) isMetaData()   {}
func (JavaVersion) isMetaData() {}
func (*Arguments) isMetaData()  {}
func (*Download) isMetaData()   {}
func (*AssetIndex) isMetaData() {}
func (*Version) isMetaData()    {}

// Clone returns a deep copy of v. Cached descriptors are shared between
// callers, so anything that needs to edit one works on a clone.
func (v *Version) Clone() *Version {
	if v == nil {
		return nil
	}
	out := *v
	out.Arguments = v.Arguments.Clone()
	out.Libraries = cloneSlice(v.Libraries)
	out.Mods = cloneSlice(v.Mods)
	if v.Natives != nil {
		out.Natives = make([]Native, len(v.Natives))
		for i, n := range v.Natives {
			n.Exclude = cloneSlice(n.Exclude)
			out.Natives[i] = n
		}
	}
	if v.Client != nil {
		c := *v.Client
		out.Client = &c
	}
	if v.AssetIndex != nil {
		a := *v.AssetIndex
		out.AssetIndex = &a
	}
	if v.Assets != nil {
		out.Assets = make(map[string]Asset, len(v.Assets))
		for k, a := range v.Assets {
			out.Assets[k] = a
		}
	}
	return &out
}

// CloneMetaData returns a deep copy of a query result.
func CloneMetaData(md MetaData) MetaData {
	switch m := md.(type) {
	case *Version:
		return m.Clone()
	case Libraries:
		return Libraries(cloneSlice(m))
	case Natives:
		if m == nil {
			return m
		}
		out := make(Natives, len(m))
		for i, n := range m {
			n.Exclude = cloneSlice(n.Exclude)
			out[i] = n
		}
		return out
	case Mods:
		return Mods(cloneSlice(m))
	case Assets:
		if m == nil {
			return m
		}
		out := make(Assets, len(m))
		for k, a := range m {
			out[k] = a
		}
		return out
	case *Arguments:
		if m == nil {
			return m
		}
		a := m.Clone()
		return &a
	case *Download:
		if m == nil {
			return m
		}
		d := *m
		return &d
	case *AssetIndex:
		if m == nil {
			return m
		}
		a := *m
		return &a
	}
	return md
}

// Clone returns a deep copy of a, preserving nil JVM arguments.
func (a Arguments) Clone() Arguments {
	return Arguments{Game: cloneSlice(a.Game), JVM: cloneSlice(a.JVM)}
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
