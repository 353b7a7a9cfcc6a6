package photoshop

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/danieljhkim/layerctl/internal/host"
)

// ElementPlacement values of the Photoshop scripting model.
const (
	psPlaceBefore = 3
	psPlaceAfter  = 4
)

// typeLayerSet is the typename Photoshop reports for groups.
const typeLayerSet = "LayerSet"

// layerKinds maps LayerKind enum values to the names layerctl reports.
var layerKinds = map[int]string{
	1:  "normal",
	2:  "text",
	3:  "solidfill",
	4:  "gradientfill",
	5:  "patternfill",
	6:  "levels",
	7:  "curves",
	8:  "colorbalance",
	9:  "brightnesscontrast",
	10: "huesaturation",
	11: "selectivecolor",
	12: "channelmixer",
	13: "gradientmap",
	14: "inversion",
	15: "threshold",
	16: "posterize",
	17: "smartobject",
	18: "photofilter",
	19: "exposure",
	20: "layer3d",
	21: "video",
	22: "blackandwhite",
	23: "vibrance",
}

// kindName converts a LayerKind property value. Unknown values are reported
// by number so nothing is lost.
func kindName(value any) (string, error) {
	n, err := cast.ToIntE(value)
	if err != nil {
		return "", fmt.Errorf("unexpected layer kind %v: %w", value, err)
	}
	if name, ok := layerKinds[n]; ok {
		return name, nil
	}
	return fmt.Sprintf("kind%d", n), nil
}

// placementCode converts a placement to its ElementPlacement value.
func placementCode(p host.Placement) (int, error) {
	switch p {
	case host.PlaceBefore:
		return psPlaceBefore, nil
	case host.PlaceAfter:
		return psPlaceAfter, nil
	default:
		return 0, fmt.Errorf("unsupported placement %s", p)
	}
}
