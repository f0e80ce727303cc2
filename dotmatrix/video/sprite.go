package video

import (
	"sort"

	"github.com/valerio/go-dotmatrix/dotmatrix/bit"
)

// Sprite is one OAM entry. Y and X carry the hardware offsets: the top-left
// corner of the screen is (8, 16).
type Sprite struct {
	y          uint8
	x          uint8
	tileIndex  uint8
	attributes uint8
	oamIndex   int
}

const (
	attrPalette  = 4 // 0=OBP0, 1=OBP1
	attrFlipX    = 5
	attrFlipY    = 6
	attrPriority = 7 // background wins over the sprite unless BG color is 0
)

// scanOAM collects up to 10 sprites overlapping the scanline, in OAM order,
// then stable-sorts them by X so the leftmost sprite wins ties (OAM order
// breaks equal X).
func scanOAM(oam []uint8, ly uint8, tallSprites bool) []Sprite {
	height := uint8(8)
	if tallSprites {
		height = 16
	}

	candidates := make([]Sprite, 0, 10)
	for i := 0; i < 40; i++ {
		y := oam[i*4]
		if uint16(ly)+16 < uint16(y) || uint16(ly)+16 >= uint16(y)+uint16(height) {
			continue
		}
		candidates = append(candidates, Sprite{
			y:          y,
			x:          oam[i*4+1],
			tileIndex:  oam[i*4+2],
			attributes: oam[i*4+3],
			oamIndex:   i,
		})
		if len(candidates) == 10 {
			break
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].x < candidates[b].x
	})
	return candidates
}

// buildSpriteLine flattens the X-sorted candidates into a 160-entry pixel
// buffer. The first writer keeps each slot, which realizes X-then-OAM
// priority because the candidates arrive pre-sorted. Transparent (color 0)
// sprite pixels never claim a slot.
func buildSpriteLine(line *[FramebufferWidth]*Pixel, sprites []Sprite, vram []uint8, ly uint8, tallSprites bool) {
	for i := range line {
		line[i] = nil
	}

	height := uint8(8)
	if tallSprites {
		height = 16
	}

	for _, s := range sprites {
		row := ly + 16 - s.y
		if bit.IsSet(attrFlipY, s.attributes) {
			row = height - 1 - row
		}

		tile := s.tileIndex
		if tallSprites {
			tile &= 0xFE
			if row >= 8 {
				tile++
				row -= 8
			}
		}

		// Sprites always use unsigned addressing from 0x8000.
		dataAddr := uint16(tile)*16 + uint16(row)*2
		low := vram[dataAddr&0x1FFF]
		high := vram[(dataAddr+1)&0x1FFF]

		for px := 0; px < 8; px++ {
			screenX := int(s.x) - 8 + px
			if screenX < 0 || screenX >= FramebufferWidth {
				continue
			}

			shift := uint8(7 - px)
			if bit.IsSet(attrFlipX, s.attributes) {
				shift = uint8(px)
			}
			color := bit.Value(shift, high)<<1 | bit.Value(shift, low)
			if color == 0 {
				continue
			}

			if line[screenX] == nil {
				palette := paletteOBP0
				if bit.IsSet(attrPalette, s.attributes) {
					palette = paletteOBP1
				}
				line[screenX] = &Pixel{
					color:      color,
					palette:    palette,
					bgPriority: bit.IsSet(attrPriority, s.attributes),
					isSprite:   true,
				}
			}
		}
	}
}
