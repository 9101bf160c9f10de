package handlers

import (
	"net/http"

	"cartographix/internal/poster"
)

type themeItem struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	PreviewColors []string `json:"preview_colors"`
}

// Themes lists the available poster palettes with their preview swatches.
func (a *App) Themes(w http.ResponseWriter, r *http.Request) {
	items := make([]themeItem, 0, len(poster.Themes))
	for _, theme := range poster.Themes {
		items = append(items, themeItem{
			ID:            theme.ID,
			Name:          theme.Name,
			Description:   theme.Description,
			PreviewColors: theme.PreviewColors(),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"themes": items})
}
