package fsutil

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/lodestone/pkg/errors"
)

// maxEntrySize bounds how much of a single archive entry ReadEntry will
// load into memory.
const maxEntrySize = 64 << 20

// Zip gives random access to the entries of an archive on disk.
type Zip struct {
	r     *zip.ReadCloser
	index map[string]*zip.File
}

// OpenZip opens the archive at path.
func OpenZip(path string) (*Zip, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open archive %s", path)
	}
	index := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		index[f.Name] = f
	}
	return &Zip{r: r, index: index}, nil
}

// ListEntries returns entry names in archive order.
func (z *Zip) ListEntries() []string {
	names := make([]string, 0, len(z.r.File))
	for _, f := range z.r.File {
		names = append(names, f.Name)
	}
	return names
}

// Has reports whether the archive contains name.
func (z *Zip) Has(name string) bool {
	_, ok := z.index[name]
	return ok
}

// ReadEntry returns the uncompressed contents of name.
func (z *Zip) ReadEntry(name string) ([]byte, error) {
	f, ok := z.index[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "archive entry %q not found", name)
	}
	if f.UncompressedSize64 > maxEntrySize {
		return nil, errors.New(errors.ErrCodeIO, "archive entry %q too large (%d bytes)", name, f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open archive entry %q", name)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read archive entry %q", name)
	}
	return data, nil
}

// ReadJSON decodes the entry name into v.
func (z *Zip) ReadJSON(name string, v any) error {
	data, err := z.ReadEntry(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeJSONParse, err, "decode %s", name)
	}
	return nil
}

// Manifest parses META-INF/MANIFEST.MF into its main-section attributes.
func (z *Zip) Manifest() (map[string]string, error) {
	data, err := z.ReadEntry("META-INF/MANIFEST.MF")
	if err != nil {
		return nil, err
	}
	return ParseManifest(data), nil
}

// Close closes the archive.
func (z *Zip) Close() error {
	return z.r.Close()
}

func (z *Zip) String() string {
	return fmt.Sprintf("zip(%d entries)", len(z.r.File))
}
