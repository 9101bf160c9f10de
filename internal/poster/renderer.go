package poster

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"strings"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"cartographix/internal/apperr"
	"cartographix/internal/mapdata"
	"cartographix/internal/storage"
)

const attributionText = "Map data © OpenStreetMap contributors"

// maxRenderEdges bounds the street count a single poster may composite.
// Past this the memory and time budget is considered blown.
const maxRenderEdges = 150000

// gradientFraction is the share of the frame height each fade covers.
const gradientFraction = 0.25

// Road tier stroke widths at the 1080px reference dimension.
const (
	widthMajor = 2.5
	widthMid   = 1.5
	widthMinor = 0.8
)

// Landmark is a named point placed on the poster.
type Landmark struct {
	Name string
	Lat  float64
	Lon  float64
}

// Request carries everything one render needs.
type Request struct {
	Graph       *mapdata.Graph
	Features    *mapdata.FeatureSet
	Theme       Theme
	Format      Format
	City        string
	Country     string
	CustomTitle string
	Center      mapdata.Point
	Landmarks   []Landmark
	Gradients   bool
}

// Renderer composites posters layer by layer and persists them through the
// artifact store.
type Renderer struct {
	store   *storage.FileStore
	log     zerolog.Logger
	regular *truetype.Font
	bold    *truetype.Font
	upper   cases.Caser
}

// NewRenderer builds a Renderer with the embedded Go fonts.
func NewRenderer(store *storage.FileStore, log zerolog.Logger) (*Renderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("poster: parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("poster: parse bold font: %w", err)
	}
	return &Renderer{
		store:   store,
		log:     log,
		regular: regular,
		bold:    bold,
		upper:   cases.Upper(language.Und),
	}, nil
}

// Render composites all layers into a PNG and returns the artifact path.
// Unexpected internal failures surface as RenderFailed; recognized domain
// errors pass through unchanged.
func (r *Renderer) Render(ctx context.Context, req Request) (path string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Msg("render panicked")
			err = apperr.Wrap(apperr.KindRenderFailed, "", fmt.Errorf("panic: %v", rec))
		}
	}()

	if req.Graph == nil || len(req.Graph.Edges) == 0 {
		return "", apperr.Wrap(apperr.KindRenderFailed, "", fmt.Errorf("poster: empty street graph"))
	}
	if len(req.Graph.Edges) > maxRenderEdges {
		return "", apperr.New(apperr.KindAreaTooLarge, "")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	w, h := req.Format.Width, req.Format.Height
	limits := ComputeAxisLimits(req.Graph.Bounds, req.Format)
	project := func(p mapdata.Point) (float64, float64) {
		x := (p.Lon - limits.MinLon) / limits.Width() * float64(w)
		y := float64(h) - (p.Lat-limits.MinLat)/limits.Height()*float64(h)
		return x, y
	}

	dc := gg.NewContext(w, h)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	// Layer 1: opaque background.
	dc.SetHexColor(req.Theme.Background)
	dc.Clear()

	// Layers 2-3: water and park polygons.
	if req.Features != nil {
		r.fillPolygons(dc, req.Features.Water, req.Theme.Water, project)
		r.fillPolygons(dc, req.Features.Parks, req.Theme.Park, project)
	}

	// Layer 4: road network, least prominent tier first.
	scale := float64(req.Format.MinDimension()) / 1080
	r.strokeTier(dc, req.Graph.Edges, tierMinor, req.Theme.RoadMinor, widthMinor*scale, project)
	r.strokeTier(dc, req.Graph.Edges, tierMid, req.Theme.RoadMid, widthMid*scale, project)
	r.strokeTier(dc, req.Graph.Edges, tierMajor, req.Theme.RoadMajor, widthMajor*scale, project)

	// Layer 5: gradient fades toward the background color.
	if req.Gradients {
		r.drawGradients(dc, req.Theme.Background, w, h)
	}

	// Layers 6-7: landmarks, then typography.
	unit := float64(req.Format.MinDimension()) / 12
	r.drawLandmarks(dc, req, unit, project)
	r.drawTypography(dc, req, unit)

	var buf bytes.Buffer
	if encodeErr := dc.EncodePNG(&buf); encodeErr != nil {
		return "", apperr.Wrap(apperr.KindRenderFailed, "", encodeErr)
	}

	filename := posterFilename(req.City, req.Theme.ID)
	path, writeErr := r.store.Write(filename, withDensity(buf.Bytes(), req.Format.DPI))
	if writeErr != nil {
		return "", apperr.Wrap(apperr.KindRenderFailed, "", writeErr)
	}
	r.log.Info().Str("path", path).Int("edges", len(req.Graph.Edges)).Msg("poster rendered")
	return path, nil
}

type roadTier int

const (
	tierMinor roadTier = iota
	tierMid
	tierMajor
)

// classifyHighway maps an OSM highway value to a styling tier. Values may be
// a single tag or a semicolon-joined list; the first element decides, and an
// empty value counts as unclassified.
func classifyHighway(highway string) roadTier {
	if i := strings.IndexByte(highway, ';'); i >= 0 {
		highway = highway[:i]
	}
	switch strings.TrimSpace(highway) {
	case "motorway", "motorway_link", "trunk", "trunk_link", "primary", "primary_link":
		return tierMajor
	case "secondary", "secondary_link", "tertiary", "tertiary_link":
		return tierMid
	default:
		return tierMinor
	}
}

func (r *Renderer) strokeTier(dc *gg.Context, edges []mapdata.Edge, tier roadTier, hex string, width float64, project func(mapdata.Point) (float64, float64)) {
	dc.SetHexColor(hex)
	dc.SetLineWidth(width)
	for _, edge := range edges {
		if classifyHighway(edge.Highway) != tier || len(edge.Points) < 2 {
			continue
		}
		x, y := project(edge.Points[0])
		dc.MoveTo(x, y)
		for _, p := range edge.Points[1:] {
			x, y = project(p)
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()
}

func (r *Renderer) fillPolygons(dc *gg.Context, polygons []mapdata.Polygon, hex string, project func(mapdata.Point) (float64, float64)) {
	if len(polygons) == 0 {
		return
	}
	dc.SetHexColor(hex)
	for _, poly := range polygons {
		if len(poly) < 3 {
			continue
		}
		x, y := project(poly[0])
		dc.MoveTo(x, y)
		for _, p := range poly[1:] {
			x, y = project(p)
			dc.LineTo(x, y)
		}
		dc.ClosePath()
	}
	dc.Fill()
}

func (r *Renderer) drawGradients(dc *gg.Context, backgroundHex string, w, h int) {
	bg := parseHexColor(backgroundHex)
	transparent := color.NRGBA{R: bg.R, G: bg.G, B: bg.B, A: 0}
	fade := gradientFraction * float64(h)

	top := gg.NewLinearGradient(0, 0, 0, fade)
	top.AddColorStop(0, bg)
	top.AddColorStop(1, transparent)
	dc.SetFillStyle(top)
	dc.DrawRectangle(0, 0, float64(w), fade)
	dc.Fill()

	bottom := gg.NewLinearGradient(0, float64(h), 0, float64(h)-fade)
	bottom.AddColorStop(0, bg)
	bottom.AddColorStop(1, transparent)
	dc.SetFillStyle(bottom)
	dc.DrawRectangle(0, float64(h)-fade, float64(w), fade)
	dc.Fill()
}

func (r *Renderer) drawLandmarks(dc *gg.Context, req Request, unit float64, project func(mapdata.Point) (float64, float64)) {
	if len(req.Landmarks) == 0 {
		return
	}
	radius := unit * 0.16
	face := truetype.NewFace(r.bold, &truetype.Options{Size: unit * 0.24})
	for _, lm := range req.Landmarks {
		x, y := project(mapdata.Point{Lat: lm.Lat, Lon: lm.Lon})
		dc.SetHexColor(req.Theme.RoadMajor)
		dc.DrawCircle(x, y, radius)
		dc.Fill()
		dc.SetHexColor(req.Theme.Background)
		dc.DrawCircle(x, y, radius*0.45)
		dc.Fill()
		if lm.Name != "" {
			dc.SetFontFace(face)
			dc.SetHexColor(req.Theme.Text)
			dc.DrawStringAnchored(lm.Name, x, y-radius*1.9, 0.5, 1)
		}
	}
}

func (r *Renderer) drawTypography(dc *gg.Context, req Request, unit float64) {
	w := float64(req.Format.Width)
	h := float64(req.Format.Height)
	centerX := w / 2

	title := strings.TrimSpace(req.CustomTitle)
	if title == "" {
		title = r.upper.String(req.City)
	}

	// Long titles shrink so they stay inside the frame.
	size := unit
	if n := len([]rune(title)); n > 12 {
		size = unit * 12 / float64(n)
		if size < unit*0.45 {
			size = unit * 0.45
		}
	}

	dc.SetHexColor(req.Theme.Text)
	titleFace := truetype.NewFace(r.bold, &truetype.Options{Size: size})
	dc.SetFontFace(titleFace)
	tracking := 0.0
	if isLatinScript(title) {
		tracking = size * 0.18
	}
	drawTracked(dc, title, centerX, h-2.55*unit, tracking)

	if country := strings.TrimSpace(req.Country); country != "" {
		subFace := truetype.NewFace(r.regular, &truetype.Options{Size: unit * 0.34})
		dc.SetFontFace(subFace)
		sub := r.upper.String(country)
		subTracking := 0.0
		if isLatinScript(sub) {
			subTracking = unit * 0.34 * 0.3
		}
		drawTracked(dc, sub, centerX, h-1.95*unit, subTracking)
	}

	coordsFace := truetype.NewFace(r.regular, &truetype.Options{Size: unit * 0.26})
	dc.SetFontFace(coordsFace)
	dc.DrawStringAnchored(formatCoordinates(req.Center.Lat, req.Center.Lon), centerX, h-1.5*unit, 0.5, 0.5)

	attrFace := truetype.NewFace(r.regular, &truetype.Options{Size: unit * 0.15})
	dc.SetFontFace(attrFace)
	dc.DrawStringAnchored(attributionText, w-0.25*unit, h-0.25*unit, 1, 0.5)
}

// drawTracked draws s centered at x with extra spacing between characters.
func drawTracked(dc *gg.Context, s string, x, y, tracking float64) {
	runes := []rune(s)
	if tracking == 0 || len(runes) < 2 {
		dc.DrawStringAnchored(s, x, y, 0.5, 0.5)
		return
	}
	total := tracking * float64(len(runes)-1)
	widths := make([]float64, len(runes))
	for i, c := range runes {
		cw, _ := dc.MeasureString(string(c))
		widths[i] = cw
		total += cw
	}
	pos := x - total/2
	for i, c := range runes {
		dc.DrawStringAnchored(string(c), pos+widths[i]/2, y, 0.5, 0.5)
		pos += widths[i] + tracking
	}
}

// isLatinScript reports whether every letter in s belongs to the Latin
// script; letter-spacing is only applied then.
func isLatinScript(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.Is(unicode.Latin, r) {
			return false
		}
	}
	return true
}

// formatCoordinates renders a coordinate pair with hemisphere letters,
// e.g. "48.8566°N / 2.3522°E".
func formatCoordinates(lat, lon float64) string {
	ns := "N"
	if lat < 0 {
		ns = "S"
		lat = -lat
	}
	ew := "E"
	if lon < 0 {
		ew = "W"
		lon = -lon
	}
	return fmt.Sprintf("%.4f°%s / %.4f°%s", lat, ns, lon, ew)
}

// posterFilename derives a collision-safe artifact name from the place and
// theme. Only alphanumerics, underscores and hyphens survive sanitization.
func posterFilename(city, themeID string) string {
	slug := sanitizeSlug(city)
	if slug == "" {
		slug = "poster"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s.png", slug, themeID, suffix)
}

func sanitizeSlug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	slug := b.String()
	if len(slug) > 40 {
		slug = slug[:40]
	}
	return slug
}

func parseHexColor(s string) color.NRGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var r, g, b uint8
	if len(s) == 6 {
		fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b)
	} else if len(s) == 3 {
		fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b)
		r *= 17
		g *= 17
		b *= 17
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
