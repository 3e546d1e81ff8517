package version

import (
	"fmt"
	"testing"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		in       string
		want     Coordinate
		wantPath string
		wantErr  bool
	}{
		{
			in:       "net.fabricmc:fabric-loader:0.15.0",
			want:     Coordinate{Group: "net.fabricmc", Artifact: "fabric-loader", Version: "0.15.0", Extension: "jar"},
			wantPath: "net/fabricmc/fabric-loader/0.15.0/fabric-loader-0.15.0.jar",
		},
		{
			in:       "org.lwjgl:lwjgl:3.3.1:natives-linux",
			want:     Coordinate{Group: "org.lwjgl", Artifact: "lwjgl", Version: "3.3.1", Classifier: "natives-linux", Extension: "jar"},
			wantPath: "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-linux.jar",
		},
		{
			in:       "de.oceanlabs.mcp:mcp_config:1.20.1-20230612.114412@zip",
			want:     Coordinate{Group: "de.oceanlabs.mcp", Artifact: "mcp_config", Version: "1.20.1-20230612.114412", Extension: "zip"},
			wantPath: "de/oceanlabs/mcp/mcp_config/1.20.1-20230612.114412/mcp_config-1.20.1-20230612.114412.zip",
		},
		{
			in:       "net.minecraft:client:1.20.1-20230612.114412:mappings@txt",
			want:     Coordinate{Group: "net.minecraft", Artifact: "client", Version: "1.20.1-20230612.114412", Classifier: "mappings", Extension: "txt"},
			wantPath: "net/minecraft/client/1.20.1-20230612.114412/client-1.20.1-20230612.114412-mappings.txt",
		},
		{in: "just-a-name", wantErr: true},
		{in: "a::1", wantErr: true},
		{in: "a:b:c:d:e", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCoordinate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCoordinate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("ParseCoordinate(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if p := got.Path(); p != tt.wantPath {
				t.Errorf("Path() = %q, want %q", p, tt.wantPath)
			}
			back, err := CoordinateFromPath(got.Path())
			if err != nil {
				t.Fatalf("CoordinateFromPath(%q) error = %v", got.Path(), err)
			}
			if back != got {
				t.Errorf("CoordinateFromPath(%q) = %+v, want %+v", got.Path(), back, got)
			}
		})
	}
}

func TestCoordinateFromPathRejects(t *testing.T) {
	for _, p := range []string{
		"lwjgl-3.3.1.jar",
		"org/lwjgl/lwjgl/3.3.1/other-3.3.1.jar",
		"org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1",
	} {
		if _, err := CoordinateFromPath(p); err == nil {
			t.Errorf("CoordinateFromPath(%q) succeeded, want error", p)
		}
	}
}

func TestLibraryMavenKey(t *testing.T) {
	tests := map[string]string{
		"net.fabricmc:intermediary:1.20.1":           "net.fabricmc:intermediary",
		"org.lwjgl:lwjgl:3.3.1:natives-windows":      "org.lwjgl:lwjgl:natives-windows",
		"net.minecraftforge:forge:1.20.1-47.2.0@zip": "net.minecraftforge:forge",
		"not-maven": "not-maven",
	}
	for name, want := range tests {
		if got := (Library{Name: name}).MavenKey(); got != want {
			t.Errorf("MavenKey(%q) = %q, want %q", name, got, want)
		}
	}
}

func ExampleCoordinate_Path() {
	c, _ := ParseCoordinate("net.fabricmc:fabric-loader:0.15.0")
	fmt.Println(c.Path())
	// Output: net/fabricmc/fabric-loader/0.15.0/fabric-loader-0.15.0.jar
}
