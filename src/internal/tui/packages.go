package tui

// PackageRow is one package in a listing
type PackageRow struct {
	Name        string
	Namespace   string
	Version     string
	Library     bool
	Description string
	Path        string
}

// RenderPackages renders installed packages as a table. Libraries are highlighted.
// showPath adds the install directory column.
func RenderPackages(title string, rows []PackageRow, showPath bool) string {
	headers := []string{"Package", "Version", "Type", "Description"}
	if showPath {
		headers = append(headers, "Path")
	}

	table := NewTable(headers...)
	table.SetTitle(title)
	for _, r := range rows {
		kind := "app"
		if r.Library {
			kind = "library"
		}
		cells := []string{RenderFullName(r.Namespace, r.Name), RenderVersion(r.Version), kind, r.Description}
		if showPath {
			cells = append(cells, RenderMuted(r.Path))
		}
		if r.Library {
			table.AddHighlightedRow(cells...)
		} else {
			table.AddRow(cells...)
		}
	}
	return table.Render()
}
