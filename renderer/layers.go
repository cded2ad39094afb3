package renderer

import (
	"fmt"
	"log/slog"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sandfall/systems"
)

// layerShader is a loaded fragment shader and its cached uniform locations.
type layerShader struct {
	shader rl.Shader
	locs   map[string]int32
}

func (s *layerShader) loc(name string) int32 {
	if l, ok := s.locs[name]; ok {
		return l
	}
	l := rl.GetShaderLocation(s.shader, name)
	s.locs[name] = l
	return l
}

// LayerRenderer draws one texture per particle type, stretched over the
// screen, in registration order.
type LayerRenderer struct {
	ps *systems.ParticleSystem

	textures map[string]rl.Texture2D
	shaders  map[string]*layerShader // keyed by type name
	byPath   map[string]*layerShader // shared between types using one file

	pixelScaleUniform string
	timeUniform       string

	screenW, screenH float32
}

// NewLayerRenderer creates a renderer for the given particle system.
// pixelScaleUniform and timeUniform are fed to every particle shader that
// declares them.
func NewLayerRenderer(ps *systems.ParticleSystem, screenW, screenH int32, pixelScaleUniform, timeUniform string) *LayerRenderer {
	return &LayerRenderer{
		ps:                ps,
		textures:          make(map[string]rl.Texture2D),
		shaders:           make(map[string]*layerShader),
		byPath:            make(map[string]*layerShader),
		pixelScaleUniform: pixelScaleUniform,
		timeUniform:       timeUniform,
		screenW:           float32(screenW),
		screenH:           float32(screenH),
	}
}

// sync creates textures and loads shaders for types registered since the last
// frame. Must run after the raylib window exists.
func (r *LayerRenderer) sync() {
	w, h := r.ps.Width(), r.ps.Height()
	for _, name := range r.ps.Registry.Names() {
		if _, ok := r.textures[name]; !ok {
			img := rl.GenImageColor(w, h, rl.Blank)
			tex := rl.LoadTextureFromImage(img)
			rl.SetTextureFilter(tex, rl.FilterPoint)
			rl.UnloadImage(img)
			r.textures[name] = tex
		}

		if _, ok := r.shaders[name]; ok {
			continue
		}
		path, ok := r.ps.Shaders.Path(name)
		if !ok {
			continue
		}
		s, ok := r.byPath[path]
		if !ok {
			shader := rl.LoadShader("", path)
			if shader.ID == 0 {
				slog.Warn("failed to load particle shader", "type", name, "path", path)
				r.shaders[name] = nil
				continue
			}
			s = &layerShader{shader: shader, locs: make(map[string]int32)}
			cw, ch := r.ps.PixelScale()
			if loc := s.loc(r.pixelScaleUniform); loc >= 0 {
				rl.SetShaderValue(shader, loc, []float32{cw, ch}, rl.ShaderUniformVec2)
			}
			r.byPath[path] = s
		}
		r.shaders[name] = s
	}
}

// applyUniforms uploads queued uniform updates to their shaders.
func (r *LayerRenderer) applyUniforms() {
	for _, u := range r.ps.Shaders.Drain() {
		s := r.shaders[u.Type]
		if s == nil {
			continue
		}
		loc := s.loc(u.Uniform)
		if loc < 0 {
			continue
		}
		values, typ, err := uniformValue(u.Value)
		if err != nil {
			slog.Warn("skipping uniform update", "type", u.Type, "uniform", u.Uniform, "error", err)
			continue
		}
		rl.SetShaderValue(s.shader, loc, values, typ)
	}
}

// uniformValue converts a queued value to raylib's uniform representation.
func uniformValue(v any) ([]float32, rl.ShaderUniformDataType, error) {
	switch val := v.(type) {
	case float32:
		return []float32{val}, rl.ShaderUniformFloat, nil
	case float64:
		return []float32{float32(val)}, rl.ShaderUniformFloat, nil
	case int:
		// raylib-go only takes []float32; pass the int's bits through.
		return []float32{math.Float32frombits(uint32(int32(val)))}, rl.ShaderUniformInt, nil
	case int32:
		return []float32{math.Float32frombits(uint32(val))}, rl.ShaderUniformInt, nil
	case rl.Vector2:
		return []float32{val.X, val.Y}, rl.ShaderUniformVec2, nil
	case rl.Vector3:
		return []float32{val.X, val.Y, val.Z}, rl.ShaderUniformVec3, nil
	case rl.Vector4:
		return []float32{val.X, val.Y, val.Z, val.W}, rl.ShaderUniformVec4, nil
	case []float32:
		switch len(val) {
		case 1:
			return val, rl.ShaderUniformFloat, nil
		case 2:
			return val, rl.ShaderUniformVec2, nil
		case 3:
			return val, rl.ShaderUniformVec3, nil
		case 4:
			return val, rl.ShaderUniformVec4, nil
		}
		return nil, 0, fmt.Errorf("unsupported vector length %d", len(val))
	}
	return nil, 0, fmt.Errorf("unsupported uniform type %T", v)
}

// Draw uploads the current color buffers and draws every layer.
// Call RecomputeColorBuffers on the particle system first.
func (r *LayerRenderer) Draw(time float32) {
	r.sync()
	r.applyUniforms()

	w, h := r.ps.Width(), r.ps.Height()
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(w), Height: float32(h)}
	cw, ch := r.ps.PixelScale()
	dst := rl.Rectangle{X: 0, Y: 0, Width: min(float32(w)*cw, r.screenW), Height: min(float32(h)*ch, r.screenH)}

	for _, layer := range r.ps.Layers() {
		tex := r.textures[layer.Name]
		rl.UpdateTexture(tex, layer.Pixels)

		s := r.shaders[layer.Name]
		if s == nil {
			rl.DrawTexturePro(tex, src, dst, rl.Vector2{}, 0, rl.White)
			continue
		}

		if loc := s.loc(r.timeUniform); loc >= 0 {
			rl.SetShaderValue(s.shader, loc, []float32{time}, rl.ShaderUniformFloat)
		}
		rl.BeginShaderMode(s.shader)
		rl.DrawTexturePro(tex, src, dst, rl.Vector2{}, 0, rl.White)
		rl.EndShaderMode()
	}
}

// Unload frees all textures and shaders.
func (r *LayerRenderer) Unload() {
	for name, tex := range r.textures {
		rl.UnloadTexture(tex)
		delete(r.textures, name)
	}
	for path, s := range r.byPath {
		rl.UnloadShader(s.shader)
		delete(r.byPath, path)
	}
	clear(r.shaders)
}
