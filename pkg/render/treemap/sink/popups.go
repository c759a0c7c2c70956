package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/popdyn/pkg/treemap"
)

const (
	popupCSS = `
    .popup { pointer-events: none; transition: opacity 0.15s ease; }
    .popup[visibility="hidden"] { opacity: 0; }
    .popup[visibility="visible"] { opacity: 1; }`

	popupJS = `
    const svg = document.querySelector('svg');
    const vb = svg.viewBox.baseVal;
    document.querySelectorAll('.tile').forEach(el => {
      const id = el.id.replace('tile-', '');
      const popup = document.querySelector('.popup[data-for="' + id + '"]');
      if (!popup) return;
      el.style.cursor = 'pointer';
      el.addEventListener('mouseenter', () => {
        const box = el.getBBox();
        const pb = popup.getBBox();
        let x = box.x + box.width/2 - pb.width/2;
        let y = box.y + box.height + 8;
        if (y + pb.height > vb.y + vb.height - 4) y = box.y - pb.height - 8;
        if (y < vb.y + 4) y = vb.y + 4;
        x = Math.max(vb.x + 4, Math.min(x, vb.x + vb.width - pb.width - 4));
        popup.setAttribute('transform', 'translate(' + x.toFixed(1) + ',' + y.toFixed(1) + ')');
        popup.setAttribute('visibility', 'visible');
      });
      el.addEventListener('mouseleave', () => popup.setAttribute('visibility', 'hidden'));
    });`

	popupWidth      = 200.0
	popupLineHeight = 16.0
	popupPadding    = 8.0
)

// popupLines is the detail card content of a tile.
func popupLines(t treemap.Tile) []string {
	lines := []string{t.DisplayName()}
	if t.Target > 0 {
		lines = append(lines, fmt.Sprintf("Value: %g / %g (%.0f%%)", t.Value, t.Target, t.Ratio()*100))
	} else {
		lines = append(lines, fmt.Sprintf("Value: %g", t.Value))
	}
	lines = append(lines, fmt.Sprintf("Weight: %g", t.Weight))
	if t.Sector != "" {
		lines = append(lines, "Sector: "+t.Sector)
	}
	return lines
}

func renderPopup(buf *bytes.Buffer, t treemap.Tile) {
	lines := popupLines(t)
	h := popupPadding*2 + popupLineHeight*float64(len(lines))
	fmt.Fprintf(buf, `  <g class="popup" data-for="%s" visibility="hidden">`+"\n", escapeXML(t.ID))
	fmt.Fprintf(buf, `    <rect width="%.0f" height="%.0f" rx="4" fill="#ffffff" stroke="#333333" stroke-width="1"/>`+"\n", popupWidth, h)
	for i, line := range lines {
		weight := "normal"
		if i == 0 {
			weight = "bold"
		}
		fmt.Fprintf(buf, `    <text x="%.0f" y="%.0f" font-family="Helvetica, Arial, sans-serif" font-size="12" font-weight="%s" fill="#222222">%s</text>`+"\n",
			popupPadding, popupPadding+popupLineHeight*float64(i+1)-4, weight, escapeXML(line))
	}
	buf.WriteString("  </g>\n")
}

func renderPopupScript(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", popupCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", popupJS)
}
