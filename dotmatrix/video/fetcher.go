package video

import "github.com/valerio/go-dotmatrix/dotmatrix/bit"

// fetcherState is the stage the tile fetcher is in. Every stage except Push
// takes two dots; Push retries each dot until the FIFO has room.
type fetcherState uint8

const (
	fetchGetTile fetcherState = iota
	fetchGetDataLow
	fetchGetDataHigh
	fetchPush
)

// fetcher walks the tile map and refills the background FIFO, eight pixels
// at a time. It reads either the background or, once triggered, the window.
type fetcher struct {
	state  fetcherState
	dotter uint8 // sub-state dot counter (stages take 2 dots)

	tileIndex uint8
	dataLow   uint8
	dataHigh  uint8

	mapX           uint8 // 0..31, column inside the 32x32 tile map
	windowLine     uint8
	fetchingWindow bool
}

// reset re-arms the fetcher for a fresh scanline.
func (f *fetcher) reset(scx uint8) {
	f.state = fetchGetTile
	f.dotter = 0
	f.mapX = scx / 8
	f.fetchingWindow = false
}

// startWindow switches the fetcher to the window map from column zero.
func (f *fetcher) startWindow(windowLine uint8) {
	f.fetchingWindow = true
	f.state = fetchGetTile
	f.mapX = 0
	f.windowLine = windowLine
}

// tick advances the fetcher by one dot.
func (f *fetcher) tick(fifo *pixelFIFO, vram []uint8, lcdc, scy, ly uint8) {
	if f.state != fetchPush {
		f.dotter++
		if f.dotter < 2 {
			return
		}
		f.dotter = 0
	}

	switch f.state {
	case fetchGetTile:
		mapY := (ly + scy) / 8 % 32
		if f.fetchingWindow {
			mapY = f.windowLine / 8
		}
		f.tileIndex = vram[f.mapAddress(mapY, lcdc)&0x1FFF]
		f.state = fetchGetDataLow

	case fetchGetDataLow:
		f.dataLow = vram[f.dataAddress(scy, ly, lcdc)&0x1FFF]
		f.state = fetchGetDataHigh

	case fetchGetDataHigh:
		f.dataHigh = vram[(f.dataAddress(scy, ly, lcdc)+1)&0x1FFF]
		f.state = fetchPush

	case fetchPush:
		if fifo.Len() > 8 {
			return
		}
		for i := 7; i >= 0; i-- {
			color := bit.Value(uint8(i), f.dataHigh)<<1 | bit.Value(uint8(i), f.dataLow)
			fifo.Push(Pixel{color: color, palette: paletteBG})
		}
		f.mapX = (f.mapX + 1) % 32
		f.state = fetchGetTile
	}
}

// mapAddress is the VRAM address of the current tile index. The background
// and window each pick their map base from an LCDC bit.
func (f *fetcher) mapAddress(mapY, lcdc uint8) uint16 {
	mapSelect := uint8(3) // LCDC bit 3: BG tile map
	if f.fetchingWindow {
		mapSelect = 6 // LCDC bit 6: window tile map
	}
	base := uint16(0x9800)
	if bit.IsSet(mapSelect, lcdc) {
		base = 0x9C00
	}
	return base + uint16(mapY)*32 + uint16(f.mapX)
}

// dataAddress is the VRAM address of the current tile row's low byte,
// honoring the LCDC bit 4 addressing mode.
func (f *fetcher) dataAddress(scy, ly, lcdc uint8) uint16 {
	row := (ly + scy) % 8
	if f.fetchingWindow {
		row = f.windowLine % 8
	}

	if bit.IsSet(4, lcdc) {
		return 0x8000 + uint16(f.tileIndex)*16 + uint16(row)*2
	}
	// Signed addressing around 0x9000.
	return uint16(0x9000+int32(int8(f.tileIndex))*16) + uint16(row)*2
}
