//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/landbuilder/api"
	"github.com/voxelsplace/landbuilder/codec"
	"github.com/voxelsplace/landbuilder/config"
	"github.com/voxelsplace/landbuilder/editor"
	"github.com/voxelsplace/landbuilder/hittest"
	"github.com/voxelsplace/landbuilder/lattice"
	"github.com/voxelsplace/landbuilder/mesh"
	"github.com/voxelsplace/landbuilder/regionfill"
)

var (
	cfg     = config.Default()
	session = editor.New(cfg)
)

func bytesFromJS(v js.Value) []byte {
	b := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(b, v)
	return b
}

func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

func vec3(v js.Value) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.Index(0).Float()), float32(v.Index(1).Float()), float32(v.Index(2).Float())}
}

func vec3ToJS(v mgl32.Vec3) js.Value {
	return js.ValueOf([]any{v[0], v[1], v[2]})
}

func posToJS(p lattice.Pos) js.Value {
	return js.ValueOf([]any{p.X, p.Y, p.Z})
}

func errorValue(err error) js.Value {
	if err == nil {
		return js.Null()
	}
	return js.ValueOf(err.Error())
}

// pointerRay builds the pick ray from (camera, px, py, width, height).
// camera is {position, target, up, fov, aspect}.
func pointerRay(args []js.Value) (hittest.Ray, bool) {
	if len(args) < 5 {
		return hittest.Ray{}, false
	}
	c := args[0]
	cam := hittest.Camera{
		Position: vec3(c.Get("position")),
		Target:   vec3(c.Get("target")),
		Up:       mgl32.Vec3{0, 1, 0},
		FovY:     float32(c.Get("fov").Float()),
		Aspect:   float32(c.Get("aspect").Float()),
	}
	if up := c.Get("up"); !up.IsUndefined() {
		cam.Up = vec3(up)
	}
	nx, ny := hittest.NDC(args[1].Float(), args[2].Float(), args[3].Int(), args[4].Int())
	return cam.Ray(nx, ny), true
}

// landLoad(bytes) replaces the session content with a record document and
// returns the number of dropped entries.
func landLoad(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing record bytes")
	}
	rec, err := codec.Decode(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	rep := session.LoadFrom(rec)
	return js.ValueOf(rep.Dropped())
}

func landExport(this js.Value, args []js.Value) any {
	out, err := codec.Encode(session.ExportAll())
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

// landPointerDown(camera, px, py, width, height) dispatches a press and
// returns {action, cell, error}.
func landPointerDown(this js.Value, args []js.Value) any {
	ray, ok := pointerRay(args)
	if !ok {
		return js.ValueOf("missing pointer")
	}
	out := session.PointerDown(ray)
	res := js.Global().Get("Object").New()
	res.Set("action", out.Action.String())
	res.Set("cell", posToJS(out.Cell))
	res.Set("error", errorValue(out.Err))
	return res
}

// landHover(camera, px, py, width, height) returns the roll-over cell or null.
func landHover(this js.Value, args []js.Value) any {
	ray, ok := pointerRay(args)
	if !ok {
		return js.Null()
	}
	cell, ok := session.Hover(ray)
	if !ok {
		return js.Null()
	}
	return posToJS(cell)
}

// landPickHandle(camera, px, py, width, height) returns the grabbed axis or -1.
func landPickHandle(this js.Value, args []js.Value) any {
	ray, ok := pointerRay(args)
	if !ok {
		return js.ValueOf(-1)
	}
	axis, ok := session.PickHandle(ray)
	if !ok {
		return js.ValueOf(-1)
	}
	return js.ValueOf(axis)
}

// landDragHandle(axis, camera, px, py, width, height) moves a handle under
// the pointer and returns the live extents.
func landDragHandle(this js.Value, args []js.Value) any {
	if len(args) < 6 {
		return js.ValueOf("missing handle drag")
	}
	ray, _ := pointerRay(args[1:])
	session.DragHandleRay(args[0].Int(), ray)
	return extentsToJS(session.GestureExtents())
}

func extentsToJS(e regionfill.Extents) js.Value {
	return js.ValueOf([]any{e.X, e.Y, e.Z})
}

// landGesture returns {state, extents, handles, preview} for drawing.
func landGesture(this js.Value, args []js.Value) any {
	res := js.Global().Get("Object").New()
	res.Set("state", session.GestureState().String())
	res.Set("extents", extentsToJS(session.GestureExtents()))
	handles := make([]any, 0, 3)
	for _, h := range session.Handles() {
		handles = append(handles, vec3ToJS(h.Center))
	}
	res.Set("handles", js.ValueOf(handles))
	preview := make([]any, 0)
	for _, p := range session.Preview() {
		preview = append(preview, posToJS(p))
	}
	res.Set("preview", js.ValueOf(preview))
	return res
}

func landCancelRegionFill(this js.Value, args []js.Value) any {
	session.CancelRegionFill()
	return js.Null()
}

func landClearAll(this js.Value, args []js.Value) any {
	session.ClearAll()
	return js.Null()
}

func landSetCategory(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing category")
	}
	return errorValue(session.SetCategory(args[0].Int()))
}

func landSetColor(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing colour")
	}
	return errorValue(session.SetColor(args[0].String()))
}

// landSetExtents(x, y, z)
func landSetExtents(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return js.ValueOf("missing extents")
	}
	session.SetExtents(regionfill.Extents{X: args[0].Int(), Y: args[1].Int(), Z: args[2].Int()})
	return extentsToJS(session.Extents())
}

func landSetInputMode(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing input mode")
	}
	m, err := editor.ParseInputMode(args[0].String())
	if err != nil {
		return errorValue(err)
	}
	session.SetInputMode(m)
	return js.Null()
}

func landSetInputType(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing input type")
	}
	t, err := editor.ParseInputType(args[0].String())
	if err != nil {
		return errorValue(err)
	}
	session.SetInputType(t)
	return js.Null()
}

func landSetDeleteMode(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing delete flag")
	}
	session.SetDeleteMode(args[0].Truthy())
	return extentsToJS(session.Extents())
}

// landSetDecalSource(image, url)
func landSetDecalSource(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing image or url")
	}
	session.SetDecalSource(args[0].String(), args[1].String())
	return js.Null()
}

// landCounters returns {remaining: [...], decalsRemaining, images: [...]}.
func landCounters(this js.Value, args []js.Value) any {
	res := js.Global().Get("Object").New()
	remaining := make([]any, len(cfg.Categories))
	for c := range remaining {
		remaining[c] = session.Remaining(c)
	}
	res.Set("remaining", js.ValueOf(remaining))
	res.Set("decalsRemaining", session.DecalsRemaining())
	images := make([]any, len(session.Decals()))
	for i := range images {
		images[i] = session.ImageURI(i)
	}
	res.Set("images", js.ValueOf(images))
	return res
}

func landToGLB(this js.Value, args []js.Value) any {
	out, err := mesh.ToGLB(mesh.FromStore(session.Store()))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func landPack(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing files object")
	}
	filesObj := args[0]
	files := map[string][]byte{}
	keys := js.Global().Get("Object").Call("keys", filesObj)
	for i := 0; i < keys.Length(); i++ {
		k := keys.Index(i).String()
		files[k] = bytesFromJS(filesObj.Get(k))
	}
	out, err := api.PackRecords(files, codec.CompZstd)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func landUnpack(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing pack bytes")
	}
	files, err := api.UnpackToMemory(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	result := js.Global().Get("Object").New()
	for name, b := range files {
		result.Set(name, bytesToJS(b))
	}
	return result
}

func main() {
	funcs := map[string]func(js.Value, []js.Value) any{
		"landLoad":             landLoad,
		"landExport":           landExport,
		"landPointerDown":      landPointerDown,
		"landHover":            landHover,
		"landPickHandle":       landPickHandle,
		"landDragHandle":       landDragHandle,
		"landGesture":          landGesture,
		"landCancelRegionFill": landCancelRegionFill,
		"landClearAll":         landClearAll,
		"landSetCategory":      landSetCategory,
		"landSetColor":         landSetColor,
		"landSetExtents":       landSetExtents,
		"landSetInputMode":     landSetInputMode,
		"landSetInputType":     landSetInputType,
		"landSetDeleteMode":    landSetDeleteMode,
		"landSetDecalSource":   landSetDecalSource,
		"landCounters":         landCounters,
		"landToGLB":            landToGLB,
		"landPack":             landPack,
		"landUnpack":           landUnpack,
	}
	for name, fn := range funcs {
		js.Global().Set(name, js.FuncOf(fn))
	}
	select {}
}
