package mojangtest

import "github.com/matzehuels/lodestone/pkg/integrations/mojang"

// Release returns a modern version document and asset index for id. It
// declares, in order:
//
//   - com.mojang:brigadier:1.1.8 (all platforms)
//   - org.ow2.asm:asm:9.3 (all platforms)
//   - org.lwjgl:lwjgl:3.3.1 and its natives-linux / natives-macos jars
//   - ca.weblite:java-objc-bridge:1.1 (osx only)
//
// Game arguments include a feature-gated --width pair; JVM arguments
// include an osx-only -XstartOnFirstThread.
func Release(id string) (*mojang.VersionDetail, *mojang.AssetIndex) {
	lib := func(name, path string, rules ...mojang.Rule) mojang.Library {
		return mojang.Library{
			Name: name,
			Downloads: &mojang.LibraryDownloads{Artifact: &mojang.Artifact{
				Path: path,
				URL:  "https://libraries.minecraft.net/" + path,
				SHA1: "sha1-" + name,
				Size: 1000,
			}},
			Rules: rules,
		}
	}
	linux := mojang.Rule{Action: "allow", OS: &mojang.OSRule{Name: "linux"}}
	osx := mojang.Rule{Action: "allow", OS: &mojang.OSRule{Name: "osx"}}

	detail := &mojang.VersionDetail{
		ID:        id,
		Type:      "release",
		MainClass: "net.minecraft.client.main.Main",
		Arguments: &mojang.ArgumentSet{
			Game: []mojang.Argument{
				{Value: []string{"--username"}},
				{Value: []string{"${auth_player_name}"}},
				{Value: []string{"--version"}},
				{Value: []string{"${version_name}"}},
				{
					Rules: []mojang.Rule{{Action: "allow", Features: map[string]bool{"has_custom_resolution": true}}},
					Value: []string{"--width", "${resolution_width}"},
				},
			},
			JVM: []mojang.Argument{
				{Rules: []mojang.Rule{osx}, Value: []string{"-XstartOnFirstThread"}},
				{Value: []string{"-Djava.library.path=${natives_directory}"}},
				{Value: []string{"-cp"}},
				{Value: []string{"${classpath}"}},
			},
		},
		Libraries: []mojang.Library{
			lib("com.mojang:brigadier:1.1.8", "com/mojang/brigadier/1.1.8/brigadier-1.1.8.jar"),
			lib("org.ow2.asm:asm:9.3", "org/ow2/asm/asm/9.3/asm-9.3.jar"),
			lib("org.lwjgl:lwjgl:3.3.1", "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1.jar"),
			lib("org.lwjgl:lwjgl:3.3.1:natives-linux", "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-linux.jar", linux),
			lib("org.lwjgl:lwjgl:3.3.1:natives-macos", "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-macos.jar", osx),
			lib("ca.weblite:java-objc-bridge:1.1", "ca/weblite/java-objc-bridge/1.1/java-objc-bridge-1.1.jar", osx),
		},
		Downloads: &mojang.Downloads{
			Client: &mojang.Artifact{
				URL:  "https://piston-data.mojang.com/v1/objects/0c3ec587af28e5a785c0b4a7b8a30f9a8f78f838/client.jar",
				SHA1: "0c3ec587af28e5a785c0b4a7b8a30f9a8f78f838",
				Size: 23028853,
			},
		},
		AssetIndex:  &mojang.AssetIndexRef{ID: "5"},
		Assets:      "5",
		JavaVersion: &mojang.JavaVersion{Component: "java-runtime-gamma", MajorVersion: 17},
	}
	index := &mojang.AssetIndex{Objects: map[string]mojang.AssetObject{
		"icons/icon_16x16.png":       {Hash: "bdf48ef6b5d0d23bbb02e17d04865216179f510a", Size: 3665},
		"minecraft/sounds/click.ogg": {Hash: "7e9f4c4b7c9bd6e7c1d2f0b9a9e1c1a4b5f0e2d3", Size: 4041},
	}}
	return detail, index
}

// Legacy returns a pre-1.13 version document: minecraftArguments, no
// javaVersion and a natives map with an ${arch} classifier.
func Legacy(id string) (*mojang.VersionDetail, *mojang.AssetIndex) {
	detail := &mojang.VersionDetail{
		ID:                 id,
		Type:               "release",
		MainClass:          "net.minecraft.client.main.Main",
		MinecraftArguments: "--username ${auth_player_name} --version ${version_name} --gameDir ${game_directory}",
		Libraries: []mojang.Library{
			{
				Name: "net.sf.jopt-simple:jopt-simple:4.6",
				Downloads: &mojang.LibraryDownloads{Artifact: &mojang.Artifact{
					Path: "net/sf/jopt-simple/jopt-simple/4.6/jopt-simple-4.6.jar",
					URL:  "https://libraries.minecraft.net/net/sf/jopt-simple/jopt-simple/4.6/jopt-simple-4.6.jar",
					SHA1: "306816fb57cf94f108a43c95731b08934dcae15c",
					Size: 62477,
				}},
			},
			{
				Name:    "org.lwjgl.lwjgl:lwjgl-platform:2.9.4-nightly-20150209",
				Natives: map[string]string{"linux": "natives-linux", "windows": "natives-windows-${arch}"},
				Extract: &mojang.Extract{Exclude: []string{"META-INF/"}},
				Downloads: &mojang.LibraryDownloads{Classifiers: map[string]mojang.Artifact{
					"natives-linux": {
						Path: "org/lwjgl/lwjgl/lwjgl-platform/2.9.4-nightly-20150209/lwjgl-platform-2.9.4-nightly-20150209-natives-linux.jar",
						URL:  "https://libraries.minecraft.net/org/lwjgl/lwjgl/lwjgl-platform/2.9.4-nightly-20150209/lwjgl-platform-2.9.4-nightly-20150209-natives-linux.jar",
						SHA1: "931074f46c795d2f7b30ed6395df5715cfd7675b",
						Size: 578680,
					},
				}},
			},
			{Name: "com.mojang:legacy-bare:1.0"},
		},
		Downloads: &mojang.Downloads{
			Client: &mojang.Artifact{URL: "https://piston-data.mojang.com/v1/objects/legacy/client.jar", SHA1: "legacy", Size: 1},
		},
		AssetIndex: &mojang.AssetIndexRef{ID: "1.12"},
		Assets:     "1.12",
	}
	index := &mojang.AssetIndex{Objects: map[string]mojang.AssetObject{
		"minecraft/lang/en_us.lang": {Hash: "b4f0e0ff5fcbc2b1bf3a2d1b0b6c8a0a3b0e1f22", Size: 100},
	}}
	return detail, index
}

// LinuxEnv is the platform the fixtures are evaluated for in tests.
var LinuxEnv = mojang.Env{OS: "linux", Arch: "x86_64"}
