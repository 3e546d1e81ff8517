package mojang

import (
	"encoding/json"
	"fmt"
)

// Manifest is the Piston version manifest.
type Manifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []ManifestEntry `json:"versions"`
}

// ManifestEntry is one version in the manifest.
type ManifestEntry struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Time        string `json:"time"`
	ReleaseTime string `json:"releaseTime"`
	SHA1        string `json:"sha1"`
}

// Find returns the entry with the given id.
func (m *Manifest) Find(id string) (ManifestEntry, bool) {
	for _, e := range m.Versions {
		if e.ID == id {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

// VersionDetail is a version JSON document. Forge and NeoForge embed
// documents of the same shape in their installers.
type VersionDetail struct {
	ID                 string         `json:"id"`
	InheritsFrom       string         `json:"inheritsFrom,omitempty"`
	Type               string         `json:"type,omitempty"`
	MainClass          string         `json:"mainClass"`
	Arguments          *ArgumentSet   `json:"arguments,omitempty"`
	MinecraftArguments string         `json:"minecraftArguments,omitempty"`
	Libraries          []Library      `json:"libraries"`
	Downloads          *Downloads     `json:"downloads,omitempty"`
	AssetIndex         *AssetIndexRef `json:"assetIndex,omitempty"`
	Assets             string         `json:"assets,omitempty"`
	JavaVersion        *JavaVersion   `json:"javaVersion,omitempty"`
}

// ArgumentSet holds modern (1.13+) arguments. A nil JVM slice means the
// document had no jvm key.
type ArgumentSet struct {
	Game []Argument `json:"game"`
	JVM  []Argument `json:"jvm,omitempty"`
}

// Argument is either a plain string or a rule-guarded value.
type Argument struct {
	Rules []Rule
	Value []string
}

// UnmarshalJSON accepts "value", {"rules": [...], "value": "v"} and
// {"rules": [...], "value": ["a", "b"]}.
func (a *Argument) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Argument{Value: []string{s}}
		return nil
	}
	var obj struct {
		Rules []Rule          `json:"rules"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("argument: %w", err)
	}
	a.Rules = obj.Rules
	if err := json.Unmarshal(obj.Value, &s); err == nil {
		a.Value = []string{s}
		return nil
	}
	if err := json.Unmarshal(obj.Value, &a.Value); err != nil {
		return fmt.Errorf("argument value: %w", err)
	}
	return nil
}

// MarshalJSON writes plain arguments back as strings.
func (a Argument) MarshalJSON() ([]byte, error) {
	if len(a.Rules) == 0 && len(a.Value) == 1 {
		return json.Marshal(a.Value[0])
	}
	return json.Marshal(struct {
		Rules []Rule   `json:"rules,omitempty"`
		Value []string `json:"value"`
	}{a.Rules, a.Value})
}

// Library is a library entry in a version JSON.
type Library struct {
	Name      string            `json:"name"`
	URL       string            `json:"url,omitempty"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	Natives   map[string]string `json:"natives,omitempty"`
	Extract   *Extract          `json:"extract,omitempty"`
	Rules     []Rule            `json:"rules,omitempty"`

	// Fabric and Quilt profiles inline integrity data.
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// LibraryDownloads lists the files of a library.
type LibraryDownloads struct {
	Artifact    *Artifact           `json:"artifact,omitempty"`
	Classifiers map[string]Artifact `json:"classifiers,omitempty"`
}

// Artifact is a downloadable file.
type Artifact struct {
	Path string `json:"path,omitempty"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// Extract lists paths skipped when unpacking a native archive.
type Extract struct {
	Exclude []string `json:"exclude,omitempty"`
}

// Downloads lists the game jars.
type Downloads struct {
	Client *Artifact `json:"client,omitempty"`
	Server *Artifact `json:"server,omitempty"`
}

// AssetIndexRef points at an asset index.
type AssetIndexRef struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize"`
	URL       string `json:"url"`
}

// JavaVersion is the runtime requirement.
type JavaVersion struct {
	Component    string `json:"component"`
	MajorVersion int    `json:"majorVersion"`
}

// AssetIndex is an asset index document.
type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`
	Virtual bool                   `json:"virtual,omitempty"`
}

// AssetObject is one entry of an asset index.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}
