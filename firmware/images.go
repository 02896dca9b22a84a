package firmware

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
)

// Image is a module executable held in main memory.
type Image struct {
	Name string
	Data []byte
}

// Len is the image size passed to the loader.
func (i Image) Len() int { return len(i.Data) }

// Images maps module names to their executables.
type Images map[string]Image

// Lookup returns the image for m.
func (im Images) Lookup(m Module) (Image, error) {
	img, ok := im[m.Name]
	if !ok {
		return Image{}, fmt.Errorf("%s: %w", m.Name, ErrMissingImage)
	}
	return img, nil
}

// LoadImages reads "<name>.irx" for every image module in plan from fsys,
// typically the SDK's iop/irx directory.
func LoadImages(fsys fs.FS, plan []Module) (Images, error) {
	out := make(Images, len(plan))
	for _, m := range plan {
		if m.Source != SourceImage {
			continue
		}
		name := path.Clean(m.Name + ".irx")
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%s: %w", name, ErrMissingImage)
			}
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("%s: empty image: %w", name, ErrMissingImage)
		}
		out[m.Name] = Image{Name: m.Name, Data: data}
	}
	return out, nil
}

// irxMagic starts every synthetic image so it reads as an ELF object.
var irxMagic = []byte{0x7f, 'E', 'L', 'F'}

// SyntheticImages returns placeholder images for the host simulator, which
// only checks that an image is present and non-empty.
func SyntheticImages(plan []Module) Images {
	out := make(Images, len(plan))
	for _, m := range plan {
		if m.Source != SourceImage {
			continue
		}
		data := append(append([]byte(nil), irxMagic...), m.Name...)
		out[m.Name] = Image{Name: m.Name, Data: data}
	}
	return out
}
