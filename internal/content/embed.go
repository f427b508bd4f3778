package content

import "embed"

//go:embed data/*.yaml
var defaultTables embed.FS

const (
	episodesFile = "episodes.yaml"
	faqFile      = "faq.yaml"
	aboutFile    = "about.yaml"
)
