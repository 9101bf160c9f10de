package poster

// Theme is a closed named palette. Road tiers map to poster prominence:
// RoadMajor styles motorway/trunk/primary edges, RoadMid styles
// secondary/tertiary, RoadMinor everything else.
type Theme struct {
	ID          string
	Name        string
	Description string

	Background string
	RoadMajor  string
	RoadMid    string
	RoadMinor  string
	Water      string
	Park       string
	Text       string
}

// PreviewColors returns the four-swatch preview used by theme pickers:
// background, primary, secondary, accent.
func (t Theme) PreviewColors() []string {
	return []string{t.Background, t.RoadMid, t.RoadMinor, t.RoadMajor}
}

// Themes is the fixed palette table, in display order.
var Themes = []Theme{
	{ID: "default", Name: "Default", Description: "Clean and modern with a pop of coral red",
		Background: "#FFFFFF", RoadMajor: "#FF6B6B", RoadMid: "#333333", RoadMinor: "#999999",
		Water: "#C9E8F5", Park: "#D9EAD3", Text: "#333333"},
	{ID: "classic", Name: "Classic", Description: "Warm beige tones with earthy accents",
		Background: "#F5F5DC", RoadMajor: "#CD853F", RoadMid: "#2F2F2F", RoadMinor: "#8B8B83",
		Water: "#B8D4D9", Park: "#C8D5B9", Text: "#2F2F2F"},
	{ID: "midnight", Name: "Midnight", Description: "Deep dark blues for a nighttime feel",
		Background: "#0D1117", RoadMajor: "#0F3460", RoadMid: "#1A1A2E", RoadMinor: "#16213E",
		Water: "#0A1A33", Park: "#10241C", Text: "#8899AA"},
	{ID: "ocean", Name: "Ocean", Description: "Deep sea blues with teal highlights",
		Background: "#001529", RoadMajor: "#83C5BE", RoadMid: "#003566", RoadMinor: "#006D77",
		Water: "#012A4A", Park: "#0B3D2E", Text: "#83C5BE"},
	{ID: "forest", Name: "Forest", Description: "Rich greens inspired by dense woodlands",
		Background: "#1A1C16", RoadMajor: "#8FBC8F", RoadMid: "#2D3A25", RoadMinor: "#4A6741",
		Water: "#1E3A36", Park: "#243420", Text: "#8FBC8F"},
	{ID: "sunset", Name: "Sunset", Description: "Warm oranges and yellows over a purple sky",
		Background: "#1A0A2E", RoadMajor: "#FCE762", RoadMid: "#FF6B35", RoadMinor: "#FF9F1C",
		Water: "#2A1A4E", Park: "#2E1E3E", Text: "#FF9F1C"},
	{ID: "neon", Name: "Neon", Description: "Electric neon colors on a dark background",
		Background: "#0A0A0A", RoadMajor: "#39FF14", RoadMid: "#FF00FF", RoadMinor: "#00FFFF",
		Water: "#001A1A", Park: "#0A1A0A", Text: "#00FFFF"},
	{ID: "pastel", Name: "Pastel", Description: "Soft pastel pinks and lavenders",
		Background: "#FFF0F5", RoadMajor: "#B0E0E6", RoadMid: "#FFB6C1", RoadMinor: "#DDA0DD",
		Water: "#C6E4EE", Park: "#D6E8D4", Text: "#C08497"},
	{ID: "monochrome", Name: "Monochrome", Description: "Timeless black and white with grey tones",
		Background: "#FFFFFF", RoadMajor: "#808080", RoadMid: "#000000", RoadMinor: "#404040",
		Water: "#E8E8E8", Park: "#F0F0F0", Text: "#000000"},
	{ID: "vintage", Name: "Vintage", Description: "Aged parchment with warm brown tones",
		Background: "#F4E4C1", RoadMajor: "#CD9B1D", RoadMid: "#5C4033", RoadMinor: "#8B6914",
		Water: "#CBD5C0", Park: "#D8D3A8", Text: "#5C4033"},
	{ID: "arctic", Name: "Arctic", Description: "Icy blues and cool steel tones",
		Background: "#F0F8FF", RoadMajor: "#4682B4", RoadMid: "#B0C4DE", RoadMinor: "#87CEEB",
		Water: "#CFE6F5", Park: "#DCEBE0", Text: "#4682B4"},
	{ID: "desert", Name: "Desert", Description: "Sandy warmth with terracotta accents",
		Background: "#F5DEB3", RoadMajor: "#CD853F", RoadMid: "#D2691E", RoadMinor: "#DEB887",
		Water: "#B9D2C9", Park: "#CBC39A", Text: "#8B4513"},
	{ID: "cyberpunk", Name: "Cyberpunk", Description: "Futuristic neon pink and cyan on dark violet",
		Background: "#0D0221", RoadMajor: "#D1F7FF", RoadMid: "#FF2A6D", RoadMinor: "#05D9E8",
		Water: "#160A33", Park: "#1A0F3C", Text: "#05D9E8"},
	{ID: "watercolor", Name: "Watercolor", Description: "Soft muted greens on linen",
		Background: "#FAF0E6", RoadMajor: "#C4D7D1", RoadMid: "#6B8E8E", RoadMinor: "#9DB5B2",
		Water: "#CBDDE6", Park: "#D7E3CE", Text: "#6B8E8E"},
	{ID: "blueprint", Name: "Blueprint", Description: "Technical blue with white line work",
		Background: "#003082", RoadMajor: "#FFFFFF", RoadMid: "#4A90D9", RoadMinor: "#7EC8E3",
		Water: "#00276B", Park: "#113A8C", Text: "#FFFFFF"},
	{ID: "autumn", Name: "Autumn", Description: "Rich fall colors with golden highlights",
		Background: "#2D1B00", RoadMajor: "#FFD700", RoadMid: "#D2691E", RoadMinor: "#FF8C00",
		Water: "#1F2A33", Park: "#3A2E10", Text: "#FFD700"},
	{ID: "minimal", Name: "Minimal", Description: "Subtle greys for an understated look",
		Background: "#FAFAFA", RoadMajor: "#9E9E9E", RoadMid: "#E0E0E0", RoadMinor: "#BDBDBD",
		Water: "#EDEDED", Park: "#F2F2F2", Text: "#9E9E9E"},
}

// LookupTheme returns the theme for id.
func LookupTheme(id string) (Theme, bool) {
	for _, t := range Themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}
