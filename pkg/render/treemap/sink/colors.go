package sink

import (
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// palette is the categorical color cycle for group keys.
var palette = []string{
	"#4e79a7", "#f28e2b", "#59a14f", "#b07aa1", "#76b7b2",
	"#edc948", "#ff9da7", "#9c755f", "#e15759", "#bab0ac",
}

var bucketColors = map[string]string{
	treemap.BucketExcellent:      "#2e7d32",
	treemap.BucketGood:           "#f9a825",
	treemap.BucketNeedsAttention: "#c62828",
	treemap.BucketHighWeight:     "#1b5e20",
	treemap.BucketMediumWeight:   "#43a047",
	treemap.BucketLowWeight:      "#a5d6a7",
}

// Colors assigns a fill color to every group of res.
func Colors(res treemap.Result) map[string]string {
	out := make(map[string]string, len(res.Groups))
	semantic := res.GroupBy == treemap.GroupByPerformance || res.GroupBy == treemap.GroupByWeight
	i := 0
	for _, g := range res.Groups {
		if c, ok := bucketColors[g.Key]; ok && semantic {
			out[g.Key] = c
			continue
		}
		out[g.Key] = palette[i%len(palette)]
		i++
	}
	return out
}

// textColor picks black or white for legibility on the given fill.
func textColor(hex string) string {
	if len(hex) != 7 || hex[0] != '#' {
		return "#000000"
	}
	var rgb [3]int
	for i := range rgb {
		rgb[i] = hexByte(hex[1+2*i])<<4 | hexByte(hex[2+2*i])
	}
	// perceived luminance, ITU-R BT.601
	if 299*rgb[0]+587*rgb[1]+114*rgb[2] > 150_000 {
		return "#000000"
	}
	return "#ffffff"
}

func hexByte(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}
