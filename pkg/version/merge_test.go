package version

import (
	"reflect"
	"testing"
)

func TestMergeLibrariesOverlayWins(t *testing.T) {
	base := []Library{
		{Name: "org.example:a:1.0"},
		{Name: "org.example:b:2.0"},
	}
	overlay := []Library{
		{Name: "org.example:a:1.5"},
		{Name: "org.example:c:3.0"},
	}

	got := MergeLibraries(base, overlay)
	want := []Library{
		{Name: "org.example:a:1.5"},
		{Name: "org.example:b:2.0"},
		{Name: "org.example:c:3.0"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeLibraries() = %v, want %v", got, want)
	}

	if base[0].Name != "org.example:a:1.0" {
		t.Error("MergeLibraries modified its base input")
	}
}

func TestMergeLibrariesClassifiers(t *testing.T) {
	base := []Library{
		{Name: "org.lwjgl:lwjgl:3.3.1"},
		{Name: "org.lwjgl:lwjgl:3.3.1:natives-linux"},
	}
	overlay := []Library{{Name: "org.lwjgl:lwjgl:3.3.2:natives-linux"}}

	got := MergeLibraries(base, overlay)
	want := []Library{
		{Name: "org.lwjgl:lwjgl:3.3.1"},
		{Name: "org.lwjgl:lwjgl:3.3.2:natives-linux"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeLibraries() = %v, want %v", got, want)
	}
}

func TestMergeArgumentsOrder(t *testing.T) {
	got := MergeArguments(
		Arguments{Game: []string{"--x", "--shared"}},
		Arguments{Game: []string{"--y", "--shared"}},
	)
	want := []string{"--x", "--shared", "--y", "--shared"}
	if !reflect.DeepEqual(got.Game, want) {
		t.Errorf("Game = %v, want %v", got.Game, want)
	}
}

func TestMergeJVM(t *testing.T) {
	tests := []struct {
		name          string
		base, overlay []string
		want          []string
	}{
		{"both present", []string{"a"}, []string{"b"}, []string{"a", "b"}},
		{"overlay absent", []string{"a"}, nil, []string{"a"}},
		{"base absent", nil, []string{"b"}, []string{"b"}},
		{"both absent", nil, nil, nil},
		{"both empty", []string{}, []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeJVM(tt.base, tt.overlay)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("MergeJVM() nil = %v, want nil = %v", got == nil, tt.want == nil)
			}
			if len(got) != 0 && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeJVM() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverlay(t *testing.T) {
	base := &Version{
		ID:          "1.20.1",
		MainClass:   "net.minecraft.client.main.Main",
		JavaVersion: 17,
		Arguments:   Arguments{Game: []string{"--username"}, JVM: []string{"-Xss1M"}},
		Libraries:   []Library{{Name: "org.ow2.asm:asm:9.3"}},
		Natives:     []Native{{Library: Library{Name: "org.lwjgl:lwjgl:3.3.1:natives-linux"}}},
		Client:      &Download{URL: "https://example.com/client.jar", SHA1: "abc"},
		AssetIndex:  &AssetIndex{ID: "5", URL: "https://example.com/5.json"},
		Assets:      map[string]Asset{"icons/icon_16x16.png": {Hash: "bdf4", Size: 3665}},
	}

	t.Run("loader main class wins", func(t *testing.T) {
		got := Overlay(base, Layer{
			MainClass: "net.fabricmc.loader.impl.launch.knot.KnotClient",
			Arguments: Arguments{Game: []string{"--fabric"}},
			Libraries: []Library{{Name: "org.ow2.asm:asm:9.6"}, {Name: "net.fabricmc:fabric-loader:0.15.0"}},
		})

		if got.MainClass != "net.fabricmc.loader.impl.launch.knot.KnotClient" {
			t.Errorf("MainClass = %q", got.MainClass)
		}
		if got.JavaVersion != 17 {
			t.Errorf("JavaVersion = %d, want inherited 17", got.JavaVersion)
		}
		if !reflect.DeepEqual(got.Arguments.Game, []string{"--username", "--fabric"}) {
			t.Errorf("Game = %v", got.Arguments.Game)
		}
		if !reflect.DeepEqual(got.Arguments.JVM, []string{"-Xss1M"}) {
			t.Errorf("JVM = %v", got.Arguments.JVM)
		}
		if len(got.Libraries) != 2 || got.Libraries[0].Name != "org.ow2.asm:asm:9.6" {
			t.Errorf("Libraries = %v", got.Libraries)
		}
		if !reflect.DeepEqual(got.Client, base.Client) || !reflect.DeepEqual(got.AssetIndex, base.AssetIndex) {
			t.Error("client and asset index should be inherited")
		}
		if !reflect.DeepEqual(got.Natives, base.Natives) || !reflect.DeepEqual(got.Assets, base.Assets) {
			t.Error("natives and assets should be inherited")
		}
	})

	t.Run("empty main class falls back", func(t *testing.T) {
		got := Overlay(base, Layer{})
		if got.MainClass != base.MainClass {
			t.Errorf("MainClass = %q, want %q", got.MainClass, base.MainClass)
		}
	})

	t.Run("base untouched", func(t *testing.T) {
		got := Overlay(base, Layer{Libraries: []Library{{Name: "a:b:1"}}})
		got.Client.URL = "changed"
		got.Assets["new"] = Asset{}
		if base.Client.URL == "changed" || len(base.Assets) != 1 || len(base.Libraries) != 1 {
			t.Error("Overlay result aliases base")
		}
	})
}
