package poster

// Format is a named output preset bundling pixel resolution and print DPI.
type Format struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	DPI    int    `json:"dpi"`
}

// Ratio returns the width/height aspect ratio.
func (f Format) Ratio() float64 {
	return float64(f.Width) / float64(f.Height)
}

// MinDimension returns the smaller of the pixel dimensions; text and marker
// sizes scale from it so posters look the same across formats.
func (f Format) MinDimension() int {
	if f.Width < f.Height {
		return f.Width
	}
	return f.Height
}

// Formats is the fixed set of supported output presets, in display order.
var Formats = []Format{
	{ID: "instagram", Label: "Instagram (1080×1080)", Width: 1080, Height: 1080, DPI: 200},
	{ID: "mobile_wallpaper", Label: "Mobile Wallpaper (1080×1920)", Width: 1080, Height: 1920, DPI: 250},
	{ID: "hd_wallpaper", Label: "HD Wallpaper (1920×1080)", Width: 1920, Height: 1080, DPI: 200},
	{ID: "4k_wallpaper", Label: "4K Wallpaper (3840×2160)", Width: 3840, Height: 2160, DPI: 200},
	{ID: "a4_print", Label: "A4 Print (2480×3508)", Width: 2480, Height: 3508, DPI: 250},
}

// LookupFormat returns the preset for id.
func LookupFormat(id string) (Format, bool) {
	for _, f := range Formats {
		if f.ID == id {
			return f, true
		}
	}
	return Format{}, false
}
