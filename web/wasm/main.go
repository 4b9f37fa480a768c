//go:build js && wasm

package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"syscall/js"

	"github.com/RyanBlaney/sonido-pyin/algorithms/tonal"
	"github.com/RyanBlaney/sonido-pyin/logging"
	"github.com/RyanBlaney/sonido-pyin/transcode"
)

var funcs []js.Func

func main() {
	logging.SetGlobalLogger(nil)

	// wasmPYin(wav: Float32Array, sr, frameLength, fmin, fmax, resolution?)
	// returns {f0, voicedFlag, voicedProb, times} or an error string
	js.Global().Set("wasmPYin", export(func(args []js.Value) any {
		if len(args) < 5 {
			return fmt.Sprintf("wasmPYin: expected at least 5 arguments, got %d", len(args))
		}

		samples, err := float32Samples(args[0])
		if err != nil {
			return "wasmPYin: " + err.Error()
		}

		resolution := 0.0
		if len(args) > 5 && args[5].Type() == js.TypeNumber {
			resolution = args[5].Float()
		}

		res, err := tonal.PYIN(samples, args[1].Int(), args[2].Int(), args[3].Float(), args[4].Float(), resolution)
		if err != nil {
			return err.Error()
		}

		out := js.Global().Get("Object").New()
		out.Set("f0", float32Array(res.F0))
		out.Set("voicedProb", float32Array(res.VoicedProb))
		out.Set("times", float32Array(res.Times))

		flags := js.Global().Get("Uint8Array").New(res.Len())
		for i, v := range res.VoicedFlag {
			if v {
				flags.SetIndex(i, 1)
			}
		}
		out.Set("voicedFlag", flags)

		return out
	}))

	select {}
}

// float32Samples copies a Float32Array out of JS memory in one transfer.
// Anything else, nested arrays included, is the wrong shape.
func float32Samples(wav js.Value) ([]float32, error) {
	if !wav.InstanceOf(js.Global().Get("Float32Array")) {
		if js.Global().Get("Array").Call("isArray", wav).Bool() &&
			wav.Length() > 0 && wav.Index(0).Type() == js.TypeObject {
			return nil, fmt.Errorf("%w: wav must be one-dimensional", tonal.ErrInvalidInputShape)
		}
		return nil, fmt.Errorf("%w: wav must be a Float32Array", tonal.ErrInvalidInputShape)
	}

	view := js.Global().Get("Uint8Array").New(wav.Get("buffer"), wav.Get("byteOffset"), wav.Get("byteLength"))
	raw := make([]byte, view.Length())
	js.CopyBytesToGo(raw, view)
	return transcode.DecodeFloat32LE(raw)
}

func float32Array(data []float64) js.Value {
	raw := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(float32(v)))
	}
	bytes := js.Global().Get("Uint8Array").New(len(raw))
	js.CopyBytesToJS(bytes, raw)
	return js.Global().Get("Float32Array").New(bytes.Get("buffer"))
}

// export wraps fn as a JS function; panics come back as error strings
func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) (result any) {
		defer func() {
			if r := recover(); r != nil {
				result = fmt.Sprintf("wasmPYin: %v", r)
			}
		}()
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
