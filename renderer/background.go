package renderer

import (
	"image/color"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// BackgroundRenderer draws the layer beneath all particles: a flat color, an
// image stretched over the screen, or an animated fragment shader.
type BackgroundRenderer struct {
	color      color.RGBA
	imagePath  string
	shaderPath string

	texture       rl.Texture2D
	hasTexture    bool
	shader        rl.Shader
	hasShader     bool
	timeLoc       int32
	resolutionLoc int32
	baseColorLoc  int32

	screenW, screenH float32
	initialized      bool
}

// NewBackgroundRenderer creates a new background renderer. imagePath and
// shaderPath are optional.
func NewBackgroundRenderer(screenW, screenH int32, c color.RGBA, imagePath, shaderPath string) *BackgroundRenderer {
	return &BackgroundRenderer{
		color:      c,
		imagePath:  imagePath,
		shaderPath: shaderPath,
		screenW:    float32(screenW),
		screenH:    float32(screenH),
	}
}

// Init initializes the renderer (must be called after raylib window is created).
func (b *BackgroundRenderer) Init() {
	if b.initialized {
		return
	}

	if b.imagePath != "" {
		b.texture = rl.LoadTexture(b.imagePath)
		if b.texture.ID == 0 {
			slog.Warn("failed to load background image", "path", b.imagePath)
		} else {
			b.hasTexture = true
		}
	}

	if b.shaderPath != "" {
		b.shader = rl.LoadShader("", b.shaderPath)
		if b.shader.ID == 0 {
			slog.Warn("failed to load background shader", "path", b.shaderPath)
		} else {
			b.hasShader = true
			b.timeLoc = rl.GetShaderLocation(b.shader, "time")
			b.resolutionLoc = rl.GetShaderLocation(b.shader, "resolution")
			b.baseColorLoc = rl.GetShaderLocation(b.shader, "baseColor")

			// Set static uniforms
			rl.SetShaderValue(b.shader, b.resolutionLoc, []float32{b.screenW, b.screenH}, rl.ShaderUniformVec2)
			baseColor := []float32{
				float32(b.color.R) / 255.0,
				float32(b.color.G) / 255.0,
				float32(b.color.B) / 255.0,
			}
			rl.SetShaderValue(b.shader, b.baseColorLoc, baseColor, rl.ShaderUniformVec3)
		}
	}

	b.initialized = true
}

// Draw renders the background.
func (b *BackgroundRenderer) Draw(time float32) {
	if !b.initialized {
		b.Init()
	}

	switch {
	case b.hasShader:
		rl.SetShaderValue(b.shader, b.timeLoc, []float32{time}, rl.ShaderUniformFloat)
		rl.BeginShaderMode(b.shader)
		rl.DrawRectangle(0, 0, int32(b.screenW), int32(b.screenH), rl.White)
		rl.EndShaderMode()
	case b.hasTexture:
		src := rl.Rectangle{X: 0, Y: 0, Width: float32(b.texture.Width), Height: float32(b.texture.Height)}
		dst := rl.Rectangle{X: 0, Y: 0, Width: b.screenW, Height: b.screenH}
		rl.DrawTexturePro(b.texture, src, dst, rl.Vector2{}, 0, rl.White)
	default:
		rl.DrawRectangle(0, 0, int32(b.screenW), int32(b.screenH), b.color)
	}
}

// Unload frees resources.
func (b *BackgroundRenderer) Unload() {
	if !b.initialized {
		return
	}
	if b.hasTexture {
		rl.UnloadTexture(b.texture)
		b.hasTexture = false
	}
	if b.hasShader {
		rl.UnloadShader(b.shader)
		b.hasShader = false
	}
	b.initialized = false
}
