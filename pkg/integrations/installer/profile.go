package installer

import "github.com/matzehuels/lodestone/pkg/integrations/mojang"

// InstallProfile is install_profile.json. Modern installers (spec 0 and
// 1) point at an embedded version.json and describe a processor pipeline;
// legacy installers (1.12.2 and older) embed the version document as
// versionInfo.
type InstallProfile struct {
	Spec       int                  `json:"spec"`
	Profile    string               `json:"profile"`
	Version    string               `json:"version"`
	JSON       string               `json:"json"`
	Path       string               `json:"path,omitempty"`
	Minecraft  string               `json:"minecraft"`
	Data       map[string]DataEntry `json:"data,omitempty"`
	Processors []Processor          `json:"processors,omitempty"`
	Libraries  []mojang.Library     `json:"libraries,omitempty"`

	VersionInfo *mojang.VersionDetail `json:"versionInfo,omitempty"`
	Install     *LegacyInstall        `json:"install,omitempty"`
}

// DataEntry holds a processor variable per side.
type DataEntry struct {
	Client string `json:"client"`
	Server string `json:"server"`
}

// Side returns the value for side ("client" or "server").
func (d DataEntry) Side(side string) string {
	if side == "server" {
		return d.Server
	}
	return d.Client
}

// Processor is one step of the post-install pipeline.
type Processor struct {
	Sides     []string          `json:"sides,omitempty"`
	Jar       string            `json:"jar"`
	Classpath []string          `json:"classpath"`
	Args      []string          `json:"args"`
	Outputs   map[string]string `json:"outputs,omitempty"`
}

// RunsOn reports whether the processor applies to side. No sides means
// every side.
func (p Processor) RunsOn(side string) bool {
	if len(p.Sides) == 0 {
		return true
	}
	for _, s := range p.Sides {
		if s == side {
			return true
		}
	}
	return false
}

// LegacyInstall is the install section of a legacy profile.
type LegacyInstall struct {
	ProfileName string `json:"profileName"`
	Target      string `json:"target"`
	Path        string `json:"path"`
	Version     string `json:"version"`
	FilePath    string `json:"filePath"`
	Minecraft   string `json:"minecraft"`
}
