package raster

import (
	"fmt"
	"image"

	"golang.org/x/image/tiff"

	"github.com/geowatch-data/landcover.report/internal/fsutil"
	"github.com/geowatch-data/landcover.report/internal/httputil"
)

// RasterReadError reports a scene that could not be loaded: missing or
// corrupt file, undecodable TIFF, or a band layout below the one-band
// minimum. It is fatal for the comparison that needed the scene; retry
// policy belongs to the job layer above.
type RasterReadError struct {
	Source string
	Err    error
}

func (e *RasterReadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("raster read %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("raster read %s", e.Source)
}

func (e *RasterReadError) Unwrap() error { return e.Err }

// BandStack is the raw output of a Source: ordered band planes plus
// optional geo metadata, before the band-naming policy is applied.
type BandStack struct {
	Planes []*Plane
	Geo    *GeoTransform
}

// Source supplies raw band planes for one raster observation. The
// loader turns a source into a Scene; acquisition (satellite provider
// APIs, tile downloads) happens upstream of this interface.
type Source interface {
	// Read returns the ordered band planes and any geo metadata.
	Read() (*BandStack, error)
	// Describe identifies the source for error messages.
	Describe() string
}

// LoadScene reads a source and applies the band-count policy:
//
//   - 4+ planes: red, green, blue, nir in order, with swir1/swir2 as
//     optional fifth and sixth bands.
//   - exactly 3: RGB only; nir approximated from green (degraded
//     accuracy, no SWIR-derived indices available).
//   - 1 or 2: grayscale degraded mode; every channel shares the first
//     plane (a second plane with no band assignment is ignored).
//
// Zero planes or mismatched plane shapes is a RasterReadError.
func LoadScene(src Source) (*Scene, error) {
	stack, err := src.Read()
	if err != nil {
		return nil, &RasterReadError{Source: src.Describe(), Err: err}
	}
	return SceneFromStack(stack, src.Describe())
}

// SceneFromStack applies the band-count policy to an already-read stack.
func SceneFromStack(stack *BandStack, desc string) (*Scene, error) {
	if stack == nil || len(stack.Planes) == 0 {
		return nil, &RasterReadError{Source: desc, Err: fmt.Errorf("no bands")}
	}
	first := stack.Planes[0]
	for i, p := range stack.Planes {
		if p == nil || !p.SameShape(first) {
			return nil, &RasterReadError{Source: desc, Err: fmt.Errorf("band %d shape differs from band 0", i)}
		}
	}

	bands := make(map[string]*Plane, len(stack.Planes))
	switch n := len(stack.Planes); {
	case n >= 4:
		bands[BandRed] = stack.Planes[0]
		bands[BandGreen] = stack.Planes[1]
		bands[BandBlue] = stack.Planes[2]
		bands[BandNIR] = stack.Planes[3]
		if n >= 5 {
			bands[BandSWIR1] = stack.Planes[4]
		}
		if n >= 6 {
			bands[BandSWIR2] = stack.Planes[5]
		}
	case n == 3:
		bands[BandRed] = stack.Planes[0]
		bands[BandGreen] = stack.Planes[1]
		bands[BandBlue] = stack.Planes[2]
		// NIR approximation from green. Vegetation reflects strongly in
		// both green and NIR, so a scaled green plane preserves the sign
		// of NDVI deltas even though the magnitudes are unreliable.
		bands[BandNIR] = stack.Planes[1].Scale(1.5)
	default:
		bands[BandRed] = stack.Planes[0]
		bands[BandGreen] = stack.Planes[0]
		bands[BandBlue] = stack.Planes[0]
		bands[BandNIR] = stack.Planes[0]
	}

	return &Scene{
		Width:  first.Width,
		Height: first.Height,
		Bands:  bands,
		Geo:    stack.Geo,
	}, nil
}

// FileSource reads band planes from TIFF files: one grayscale file per
// band (Sentinel-2 exports commonly deliver band-per-file), or a single
// RGB composite that is split into three planes. Geo metadata, when
// known, is supplied alongside since baseline TIFF carries none.
type FileSource struct {
	Paths []string
	Geo   *GeoTransform

	// FS overrides the filesystem used to open band files. Nil means
	// the real OS filesystem.
	FS fsutil.FileSystem
}

// Describe identifies the source by its first path.
func (f *FileSource) Describe() string {
	if len(f.Paths) == 0 {
		return "(no paths)"
	}
	if len(f.Paths) == 1 {
		return f.Paths[0]
	}
	return fmt.Sprintf("%s (+%d bands)", f.Paths[0], len(f.Paths)-1)
}

// Read decodes every file and flattens the resulting planes in order.
func (f *FileSource) Read() (*BandStack, error) {
	if len(f.Paths) == 0 {
		return nil, fmt.Errorf("no paths")
	}
	fsys := f.FS
	if fsys == nil {
		fsys = &fsutil.OSFileSystem{}
	}
	var planes []*Plane
	for _, path := range f.Paths {
		fh, err := fsys.Open(path)
		if err != nil {
			return nil, err
		}
		img, err := tiff.Decode(fh)
		fh.Close()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		planes = append(planes, planesFromImage(img)...)
	}
	return &BandStack{Planes: planes, Geo: f.Geo}, nil
}

// URLSource fetches band TIFFs over HTTP, one URL per band file. Useful
// against tile servers and signed object-store URLs; anything needing
// auth headers should fetch upstream and use MemorySource instead.
type URLSource struct {
	URLs []string
	Geo  *GeoTransform

	// Client overrides the HTTP client. Nil means http.DefaultClient.
	Client httputil.HTTPClient
}

// Describe identifies the source by its first URL.
func (u *URLSource) Describe() string {
	if len(u.URLs) == 0 {
		return "(no urls)"
	}
	if len(u.URLs) == 1 {
		return u.URLs[0]
	}
	return fmt.Sprintf("%s (+%d bands)", u.URLs[0], len(u.URLs)-1)
}

// Read fetches and decodes every URL, flattening the planes in order.
func (u *URLSource) Read() (*BandStack, error) {
	if len(u.URLs) == 0 {
		return nil, fmt.Errorf("no urls")
	}
	client := u.Client
	if client == nil {
		client = httputil.NewStandardClient(nil)
	}
	var planes []*Plane
	for _, url := range u.URLs {
		resp, err := client.Get(url)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		if resp.StatusCode != 200 {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
		}
		img, err := tiff.Decode(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", url, err)
		}
		planes = append(planes, planesFromImage(img)...)
	}
	return &BandStack{Planes: planes, Geo: u.Geo}, nil
}

// MemorySource wraps already-materialised planes, used by tests and by
// callers that fetched imagery themselves.
type MemorySource struct {
	Name   string
	Planes []*Plane
	Geo    *GeoTransform
}

func (m *MemorySource) Describe() string { return m.Name }

func (m *MemorySource) Read() (*BandStack, error) {
	return &BandStack{Planes: m.Planes, Geo: m.Geo}, nil
}

// planesFromImage converts a decoded image into band planes: grayscale
// images become a single plane, everything else splits into R, G, B.
func planesFromImage(img image.Image) []*Plane {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch im := img.(type) {
	case *image.Gray:
		p := NewPlane(w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				p.Set(x, y, float32(im.GrayAt(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
		return []*Plane{p}
	case *image.Gray16:
		p := NewPlane(w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				p.Set(x, y, float32(im.Gray16At(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
		return []*Plane{p}
	}

	r := NewPlane(w, h)
	g := NewPlane(w, h)
	bl := NewPlane(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cr, cg, cb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r.Set(x, y, float32(cr>>8))
			g.Set(x, y, float32(cg>>8))
			bl.Set(x, y, float32(cb>>8))
		}
	}
	return []*Plane{r, g, bl}
}
