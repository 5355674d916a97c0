package state

import "github.com/planbay/planbay/internal/scene"

// deepMerge merges src into dst: nested maps merge recursively, any other
// value (including slices) replaces wholesale. dst is modified and
// returned.
func deepMerge(dst, src map[string]any) map[string]any {
	for k, v := range src {
		sv, srcIsMap := v.(map[string]any)
		dv, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[k] = deepMerge(dv, sv)
			continue
		}
		dst[k] = v
	}
	return dst
}

// sanitize defensively defaults a loaded scene: nil collections become
// empty, item angles are normalized, items without a usable identity or
// size are dropped, and a floor plan below the minimum area is discarded
// rather than installed.
func sanitize(in scene.Scene) scene.Scene {
	out := in
	if out.Items == nil {
		out.Items = []scene.Item{}
	}
	if out.Settings == nil {
		out.Settings = map[string]any{}
	}

	items := out.Items[:0:0]
	seen := make(map[string]bool, len(out.Items))
	for _, it := range out.Items {
		if it.ID == "" || seen[it.ID] {
			continue
		}
		if it.LengthFt <= 0 || it.WidthFt <= 0 {
			continue
		}
		it.AngleDeg = scene.NormalizeAngle(it.AngleDeg)
		seen[it.ID] = true
		items = append(items, it)
	}
	out.Items = items

	if out.FloorPlan != nil && !out.FloorPlan.Valid() {
		out.FloorPlan = nil
	}
	return out
}
