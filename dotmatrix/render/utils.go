package render

import "github.com/valerio/go-dotmatrix/dotmatrix/video"

// GetHalfBlockChar returns the character that best represents two vertically
// stacked shades in one terminal cell.
func GetHalfBlockChar(topShade, bottomShade uint8) rune {
	switch {
	case topShade == bottomShade:
		return '█'
	case topShade == 0 && bottomShade != 0:
		return '▄'
	case topShade != 0 && bottomShade == 0:
		return '▀'
	default:
		return '▀'
	}
}

// RenderFrameToHalfBlocks converts a frame to half-block text, two pixel rows
// per line. Used by the terminal renderer and headless snapshots.
func RenderFrameToHalfBlocks(frame []uint32, width, height int) []string {
	if len(frame) < width*height {
		return nil
	}

	lines := make([]string, 0, (height+1)/2)
	for y := 0; y < height; y += 2 {
		line := make([]rune, width)
		for x := 0; x < width; x++ {
			top := video.ColorToShade(frame[y*width+x])
			bottom := uint8(0)
			if y+1 < height {
				bottom = video.ColorToShade(frame[(y+1)*width+x])
			}
			line[x] = GetHalfBlockChar(top, bottom)
		}
		lines = append(lines, string(line))
	}
	return lines
}
