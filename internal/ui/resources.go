package ui

import (
	"fyne.io/fyne/v2"
)

// AppIcon is the window icon looked up next to the executable's working dir
const AppIcon = "fbgrabber.png"

// LoadLogoResource loads the logo from file path
func LoadLogoResource() (fyne.Resource, error) {
	return fyne.LoadResourceFromPath(AppIcon)
}
