//go:build js && wasm

// Command wasm exposes the equalizer and spatializer to a host page as a
// flat C-style API on a single global object. Processors are addressed by
// opaque integer handles; audio buffers cross the boundary as
// Float32Array copies.
package main

import (
	"syscall/js"

	"github.com/bennyp/audiofx/dsp/eq"
	"github.com/bennyp/audiofx/dsp/filter/design"
	"github.com/bennyp/audiofx/dsp/spatial"
	"github.com/bennyp/audiofx/dsp/spectrum"
	"github.com/bennyp/audiofx/internal/engine"
)

var (
	registry = engine.NewRegistry()
	analyzer *spectrum.Analyzer
	funcs    []js.Func
)

func main() {
	api := js.Global().Get("Object").New()

	api.Set("create_equalizer", export(func(args []js.Value) any {
		sr := 44100.0
		if len(args) > 0 {
			sr = args[0].Float()
		}

		handle, err := registry.CreateEqualizer(sr)
		if err != nil {
			return 0
		}

		return handle
	}))

	api.Set("destroy_equalizer", export(func(args []js.Value) any {
		if len(args) > 0 {
			registry.Destroy(int32(args[0].Int()))
		}

		return js.Null()
	}))

	api.Set("set_band", export(func(args []js.Value) any {
		e, ok := equalizerArg(args, 5)
		if !ok {
			return js.Null()
		}

		typ := design.TypePeaking
		if len(args) > 5 {
			typ = design.FilterTypeFromInt(args[5].Int())
		}

		e.SetBand(args[1].Int(), args[2].Float(), args[3].Float(), args[4].Float(), typ)

		return js.Null()
	}))

	api.Set("equalizer_load_presets", export(func(args []js.Value) any {
		e, ok := equalizerArg(args, 3)
		if !ok {
			return js.Null()
		}

		buf := make([]byte, args[1].Length())
		js.CopyBytesToGo(buf, args[1])

		presets := engine.DecodePresets(buf, args[2].Int())
		if presets == nil {
			return js.Null()
		}

		e.LoadPresets(presets)

		return js.Null()
	}))

	api.Set("equalizer_apply_preset", export(func(args []js.Value) any {
		e, ok := equalizerArg(args, 3)
		if !ok {
			return js.Null()
		}

		e.ApplyPreset(args[1].Int(), args[2].Int() != 0)

		return js.Null()
	}))

	api.Set("equalizer_select_adaptive_preset", export(func(args []js.Value) any {
		e, ok := equalizerArg(args, 1)
		if !ok {
			return -1
		}

		return e.SelectAdaptivePreset()
	}))

	api.Set("equalizer_apply_relative_gain", export(func(args []js.Value) any {
		e, ok := equalizerArg(args, 2)
		if !ok {
			return js.Null()
		}

		e.ApplyRelativeGain(args[1].Float())

		return js.Null()
	}))

	api.Set("equalizer_process_buffer", export(func(args []js.Value) any {
		e, ok := equalizerArg(args, 2)
		if !ok {
			return js.Null()
		}

		buf := float32ArrayToGo(args[1])
		e.Process(buf)

		return float32ArrayToJS(buf)
	}))

	api.Set("equalizer_get_analysis", export(func(args []js.Value) any {
		e, ok := equalizerArg(args, 1)
		if !ok {
			return js.Null()
		}

		a := e.Analysis()
		obj := js.Global().Get("Object").New()
		obj.Set("rmsLevel", a.RMSLevel)
		obj.Set("peakLevel", a.PeakLevel)
		obj.Set("spectralCentroid", a.SpectralCentroid)
		obj.Set("bassEnergy", a.BassEnergy)
		obj.Set("midEnergy", a.MidEnergy)
		obj.Set("trebleEnergy", a.TrebleEnergy)

		return obj
	}))

	api.Set("equalizer_get_spectrum", export(func(args []js.Value) any {
		e, ok := equalizerArg(args, 1)
		if !ok {
			return js.Global().Get("Float32Array").New(0)
		}

		if analyzer == nil {
			a, err := spectrum.NewAnalyzer()
			if err != nil {
				return js.Global().Get("Float32Array").New(0)
			}

			analyzer = a
		}

		if err := analyzer.Compute(e.Window()); err != nil {
			return js.Global().Get("Float32Array").New(0)
		}

		mags := analyzer.Magnitudes()
		arr := js.Global().Get("Float32Array").New(len(mags))
		for i, m := range mags {
			arr.SetIndex(i, float32(m))
		}

		return arr
	}))

	api.Set("equalizer_get_active_preset", export(func(args []js.Value) any {
		e, ok := equalizerArg(args, 1)
		if !ok {
			return -1
		}

		return e.ActivePreset()
	}))

	api.Set("equalizer_reset", export(func(args []js.Value) any {
		e, ok := equalizerArg(args, 1)
		if !ok {
			return js.Null()
		}

		e.Reset()

		return js.Null()
	}))

	api.Set("create_spatializer", export(func(args []js.Value) any {
		sr := 44100.0
		if len(args) > 0 {
			sr = args[0].Float()
		}

		handle, err := registry.CreateSpatializer(sr)
		if err != nil {
			return 0
		}

		return handle
	}))

	api.Set("destroy_spatializer", export(func(args []js.Value) any {
		if len(args) > 0 {
			registry.Destroy(int32(args[0].Int()))
		}

		return js.Null()
	}))

	api.Set("spatializer_process_buffer", export(func(args []js.Value) any {
		sp, ok := spatializerArg(args, 2)
		if !ok {
			return js.Null()
		}

		buf := float32ArrayToGo(args[1])
		sp.Process(buf)

		return float32ArrayToJS(buf)
	}))

	api.Set("spatializer_reset", export(func(args []js.Value) any {
		sp, ok := spatializerArg(args, 1)
		if !ok {
			return js.Null()
		}

		sp.Reset()

		return js.Null()
	}))

	spatialSetter(api, "spatializer_set_width", (*spatial.Spatializer).SetWidth)
	spatialSetter(api, "spatializer_set_decay", (*spatial.Spatializer).SetDecay)
	spatialSetter(api, "spatializer_set_damping", (*spatial.Spatializer).SetDamping)
	spatialSetter(api, "spatializer_set_mix", (*spatial.Spatializer).SetMix)
	spatialSetter(api, "spatializer_set_crossover_freq", (*spatial.Spatializer).SetCrossoverFreq)
	spatialSetter(api, "spatializer_set_low_width_factor", (*spatial.Spatializer).SetLowWidthFactor)
	spatialSetter(api, "spatializer_set_high_width_factor", (*spatial.Spatializer).SetHighWidthFactor)

	spatialGetter(api, "spatializer_get_width", (*spatial.Spatializer).Width)
	spatialGetter(api, "spatializer_get_decay", (*spatial.Spatializer).Decay)
	spatialGetter(api, "spatializer_get_damping", (*spatial.Spatializer).Damping)
	spatialGetter(api, "spatializer_get_mix", (*spatial.Spatializer).Mix)
	spatialGetter(api, "spatializer_get_crossover_freq", (*spatial.Spatializer).CrossoverFreq)
	spatialGetter(api, "spatializer_get_low_width_factor", (*spatial.Spatializer).LowWidthFactor)
	spatialGetter(api, "spatializer_get_high_width_factor", (*spatial.Spatializer).HighWidthFactor)

	js.Global().Set("AudioFX", api)
	select {}
}

// export wraps a handler as a js.Func and retains it so the Go side
// keeps the callback alive for the lifetime of the program.
func export(fn func(args []js.Value) any) js.Func {
	f := js.FuncOf(func(this js.Value, args []js.Value) any {
		return fn(args)
	})

	funcs = append(funcs, f)

	return f
}

func equalizerArg(args []js.Value, minArgs int) (*eq.Equalizer, bool) {
	if len(args) < minArgs {
		return nil, false
	}

	return registry.Equalizer(int32(args[0].Int()))
}

func spatializerArg(args []js.Value, minArgs int) (*spatial.Spatializer, bool) {
	if len(args) < minArgs {
		return nil, false
	}

	return registry.Spatializer(int32(args[0].Int()))
}

func spatialSetter(api js.Value, name string, set func(*spatial.Spatializer, float64)) {
	api.Set(name, export(func(args []js.Value) any {
		sp, ok := spatializerArg(args, 2)
		if !ok {
			return js.Null()
		}

		set(sp, args[1].Float())

		return js.Null()
	}))
}

func spatialGetter(api js.Value, name string, get func(*spatial.Spatializer) float64) {
	api.Set(name, export(func(args []js.Value) any {
		sp, ok := spatializerArg(args, 1)
		if !ok {
			return js.Null()
		}

		return get(sp)
	}))
}

func float32ArrayToGo(arr js.Value) []float32 {
	buf := make([]float32, arr.Length())
	for i := range buf {
		buf[i] = float32(arr.Index(i).Float())
	}

	return buf
}

func float32ArrayToJS(buf []float32) js.Value {
	arr := js.Global().Get("Float32Array").New(len(buf))
	for i, v := range buf {
		arr.SetIndex(i, v)
	}

	return arr
}
