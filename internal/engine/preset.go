package engine

import (
	"encoding/binary"
	"math"

	"github.com/bennyp/audiofx/dsp/eq"
)

// Compact preset record layout, little-endian, 4-byte aligned:
//
//	offset  0: name, 31 bytes + NUL terminator
//	offset 32: category byte, 3 bytes padding
//	offset 36: 16 bands x {freq f32, gain f32, q f32}
//	offset 228: 6 suitability weight f32
const (
	presetNameBytes = 32
	presetBandBytes = 3 * 4

	// PresetRecordSize is the stride of one encoded preset.
	PresetRecordSize = presetNameBytes + 4 +
		eq.NumBands*presetBandBytes + eq.NumSuitabilityWeights*4
)

// DecodePresets parses count consecutive preset records from buf. A nil
// or short buffer, or a non-positive count, yields nil; the caller treats
// that as "nothing loaded" rather than an error, matching the silent-safe
// contract of the control surface.
//
// Decoded parameters are stored as transmitted; clamping happens when a
// preset is applied to an equalizer.
func DecodePresets(buf []byte, count int) []eq.Preset {
	if count <= 0 || len(buf) < count*PresetRecordSize {
		return nil
	}

	presets := make([]eq.Preset, count)
	for i := range presets {
		decodePreset(buf[i*PresetRecordSize:(i+1)*PresetRecordSize], &presets[i])
	}

	return presets
}

func decodePreset(rec []byte, p *eq.Preset) {
	nameLen := 0
	for nameLen < eq.MaxPresetNameLen && rec[nameLen] != 0 {
		nameLen++
	}

	p.Name = string(rec[:nameLen])
	p.Category = rec[presetNameBytes]

	off := presetNameBytes + 4
	for b := range p.Bands {
		p.Bands[b].Freq = float64(readF32(rec, off))
		p.Bands[b].Gain = float64(readF32(rec, off+4))
		p.Bands[b].Q = float64(readF32(rec, off+8))
		off += presetBandBytes
	}

	for w := range p.SuitabilityWeights {
		p.SuitabilityWeights[w] = readF32(rec, off)
		off += 4
	}
}

// EncodePresets serializes presets into the compact record layout. Names
// longer than 31 bytes are truncated.
func EncodePresets(presets []eq.Preset) []byte {
	buf := make([]byte, len(presets)*PresetRecordSize)
	for i := range presets {
		encodePreset(buf[i*PresetRecordSize:(i+1)*PresetRecordSize], &presets[i])
	}

	return buf
}

func encodePreset(rec []byte, p *eq.Preset) {
	name := p.Name
	if len(name) > eq.MaxPresetNameLen {
		name = name[:eq.MaxPresetNameLen]
	}

	copy(rec, name)
	rec[presetNameBytes] = p.Category

	off := presetNameBytes + 4
	for b := range p.Bands {
		writeF32(rec, off, float32(p.Bands[b].Freq))
		writeF32(rec, off+4, float32(p.Bands[b].Gain))
		writeF32(rec, off+8, float32(p.Bands[b].Q))
		off += presetBandBytes
	}

	for w := range p.SuitabilityWeights {
		writeF32(rec, off, p.SuitabilityWeights[w])
		off += 4
	}
}

func readF32(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func writeF32(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
}
