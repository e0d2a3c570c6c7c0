package assessment

type band struct {
	max   int
	label string
}

// Upper bounds are inclusive; the last band has no bound.
var bands = map[Category][]band{
	PHQ9: {
		{4, "Minimal"},
		{9, "Mild"},
		{14, "Moderate"},
		{19, "Moderately Severe"},
	},
	BDI: {
		{13, "Minimal"},
		{19, "Mild"},
		{28, "Moderate"},
	},
	HDRS: {
		{7, "Normal"},
		{13, "Mild"},
		{18, "Moderate"},
		{22, "Severe"},
	},
}

var topBand = map[Category]string{
	PHQ9: "Severe",
	BDI:  "Severe",
	HDRS: "Very Severe",
}

// Severity maps a category total onto its clinical band label. Unknown
// categories yield an empty label.
func Severity(category Category, total int) string {
	list, ok := bands[category]
	if !ok {
		return ""
	}
	for _, b := range list {
		if total <= b.max {
			return b.label
		}
	}
	return topBand[category]
}
